// Package main is the StockKeeper terminal client: an interactive shell over
// the inventory API that keeps its session in a local file.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/client/api"
	"github.com/atinyakov/StockKeeper/internal/client/prompt"
	"github.com/atinyakov/StockKeeper/internal/client/session"
	"github.com/atinyakov/StockKeeper/internal/config"
	"github.com/atinyakov/StockKeeper/internal/logger"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	showVersion := flag.Bool("version", false, "print build information and exit")
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
		fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))
		return
	}

	options, err := config.LoadClient(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.InitConsole(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	store, err := session.OpenFile(options.SessionFile)
	if err != nil {
		zapLogger.Fatal("failed to open session", zap.String("path", options.SessionFile), zap.Error(err))
	}

	httpClient, err := api.NewHTTPClient(options.CAFile, options.HTTPTimeout)
	if err != nil {
		zapLogger.Fatal("failed to build HTTP client", zap.Error(err))
	}

	client, err := api.New(options.APIURL, store,
		api.WithHTTPClient(httpClient),
		api.WithLogger(zapLogger),
		api.WithLoginRedirect(func() {
			fmt.Println("\nYour session has expired. Please log in again (command: login).")
		}),
	)
	if err != nil {
		zapLogger.Fatal("failed to create API client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := prompt.New(os.Stdin, os.Stdout)
	sh := newShell(client, p, os.Stdout, zapLogger)

	fmt.Printf("StockKeeper client, API %s. Type help for commands.\n", options.APIURL)
	if store.AccessToken() == "" {
		fmt.Println("Not logged in.")
	}
	sh.run(ctx)
}
