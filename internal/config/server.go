// Package config provides functionality for managing configuration options
// for the StockKeeper binaries using command-line flags, environment
// variables and config files.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

// ServerOptions holds the configuration values for the API server.
type ServerOptions struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"addr"`

	// DatabaseDSN holds the database connection string.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the JSON config file.
	Config string `json:"-"`

	// JWTSecret signs access tokens.
	JWTSecret string `json:"jwt_secret"`

	// AccessTokenTTL and RefreshTokenTTL bound token lifetimes.
	AccessTokenTTL  time.Duration `json:"-"`
	RefreshTokenTTL time.Duration `json:"-"`

	// TLSCert and TLSKey switch the server to HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`
}

const (
	defaultAddr       = "localhost:3000"
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// ParseServer parses args (without the program name) and the environment.
// Precedence, lowest first: flag defaults, config file, flags given on the
// command line, environment variables.
func ParseServer(args []string) (*ServerOptions, error) {
	options := &ServerOptions{}
	fs := flag.NewFlagSet("stockkeeper-server", flag.ContinueOnError)
	fs.StringVar(&options.Addr, "a", defaultAddr, "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.JWTSecret, "jwt-secret", "", "secret used to sign access tokens")
	fs.DurationVar(&options.AccessTokenTTL, "access-ttl", defaultAccessTTL, "access token lifetime")
	fs.DurationVar(&options.RefreshTokenTTL, "refresh-ttl", defaultRefreshTTL, "refresh token lifetime")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if options.Config != "" {
		if err := loadJSON(options.Config, options); err != nil {
			return nil, err
		}
		// explicit flags win over the file
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		options.Addr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		options.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		options.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	var err error
	if options.AccessTokenTTL, err = envDuration("ACCESS_TOKEN_TTL", options.AccessTokenTTL); err != nil {
		return nil, err
	}
	if options.RefreshTokenTTL, err = envDuration("REFRESH_TOKEN_TTL", options.RefreshTokenTTL); err != nil {
		return nil, err
	}

	if options.JWTSecret == "" {
		return nil, errors.New("jwt secret is required (-jwt-secret or JWT_SECRET)")
	}
	if (options.TLSCert == "") != (options.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}
	return options, nil
}

// loadJSON overlays the file at path onto options. A missing file is not an error.
func loadJSON(path string, options *ServerOptions) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, options); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
