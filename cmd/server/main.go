// Package main starts the StockKeeper development API server: it loads the
// configuration, opens PostgreSQL, wires repositories, services and handlers
// and serves HTTP, or HTTPS when a certificate is configured.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/config"
	"github.com/atinyakov/StockKeeper/internal/db"
	"github.com/atinyakov/StockKeeper/internal/logger"
	"github.com/atinyakov/StockKeeper/internal/repository"
	"github.com/atinyakov/StockKeeper/internal/server/handler/http"
	"github.com/atinyakov/StockKeeper/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// loginRate bounds login attempts per client IP.
const loginRate = "5-M"

func main() {
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartTokenCleaner(ctx, postgresDB, time.Hour, zapLogger)

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	inventoryRepo := repository.NewPostgresInventoryRepository(postgresDB)

	authService := service.NewAuthService(authRepo, service.TokenConfig{
		Secret:     []byte(options.JWTSecret),
		AccessTTL:  options.AccessTokenTTL,
		RefreshTTL: options.RefreshTokenTTL,
	})
	inventoryService := service.NewInventoryService(inventoryRepo)

	rate, err := limiter.NewRateFromFormatted(loginRate)
	if err != nil {
		zapLogger.Fatal("invalid login rate", zap.Error(err))
	}
	loginLimiter := limiter.New(memory.NewStore(), rate)

	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService, Log: zapLogger},
		&http.InventoryHandler{Inventory: inventoryService, Log: zapLogger},
		authService,
		loginLimiter,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCert != "" {
			server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
		zapLogger.Info("server stopped")
	}
}
