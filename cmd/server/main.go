// Package main is the entry point for the lead analytics dashboard
// server. It reads configuration from the environment, builds the
// logger, and starts the server; everything else lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oppkey/leadboard/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// The three source locators are the deployment's data contract:
	// spreadsheet export URLs in production, file paths in development.
	locators := []string{
		os.Getenv("SOURCE_URL_1"),
		os.Getenv("SOURCE_URL_2"),
		os.Getenv("SOURCE_URL_3"),
	}
	for i, l := range locators {
		if l == "" {
			logger.Error("missing source locator", slog.Int("index", i+1))
			os.Exit(1)
		}
	}

	// Snapshot cache: defaults to data/leadboard.db, CACHE_PATH=off
	// disables it entirely.
	cachePath := "data/leadboard.db"
	if env := os.Getenv("CACHE_PATH"); env != "" {
		cachePath = env
	}
	if cachePath == "off" {
		cachePath = ""
	} else {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
			logger.Error("failed to create cache directory",
				slog.String("dir", filepath.Dir(cachePath)),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	assetDir := "assets"
	if env := os.Getenv("ASSET_DIR"); env != "" {
		assetDir = env
	}

	cfg := server.Config{
		Port:           port,
		Password:       os.Getenv("DASHBOARD_PASSWORD"),
		PasswordHash:   os.Getenv("DASHBOARD_PASSWORD_HASH"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SourceLocators: locators,
		AccessToken:    os.Getenv("SOURCE_ACCESS_TOKEN"),
		CachePath:      cachePath,
		AssetDir:       assetDir,
		FetchTimeout:   30 * time.Second,
		SecureCookies:  os.Getenv("SECURE_COOKIES") == "true",
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
