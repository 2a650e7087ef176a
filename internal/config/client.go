package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ClientOptions holds the configuration of the interactive client.
type ClientOptions struct {
	APIURL      string
	SessionFile string
	CAFile      string
	LogLevel    string
	HTTPTimeout time.Duration
}

// LoadClient reads the client configuration from the environment, after
// loading any of the given .env files that exist. Real environment
// variables take precedence over .env values.
func LoadClient(envFiles ...string) (*ClientOptions, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// missing files are fine
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetDefault("API_URL", "http://localhost:3000")
	v.SetDefault("SESSION_FILE", "session.json")
	v.SetDefault("CA_FILE", "")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.AutomaticEnv()

	cfg := &ClientOptions{
		APIURL:      v.GetString("API_URL"),
		SessionFile: v.GetString("SESSION_FILE"),
		CAFile:      v.GetString("CA_FILE"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}

	timeout := v.GetString("HTTP_TIMEOUT")
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT: invalid duration %q", timeout)
	}
	cfg.HTTPTimeout = d

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("API_URL: %q is not an absolute URL", cfg.APIURL)
	}
	return cfg, nil
}
