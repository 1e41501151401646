package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/addrnav-dev/addrnav"
	"github.com/addrnav-dev/addrnav/internal/config"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		address    string
		basePath   string
		devMode    bool
		admins     []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the addrnav server",
		Long: `Start the live channel server and the group admin console.

Configuration is read from addrnav.json in the working directory;
flags override file settings.

Examples:
  addrnav serve
  addrnav serve --address 0.0.0.0:8080 --base-path /hue
  addrnav serve --dev --admin root`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, address, basePath, devMode, admins)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "Path to the configuration file")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from "+config.ConfigFileName+")")
	cmd.Flags().StringVarP(&basePath, "base-path", "b", "", "Deployment base-path prefix")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Development mode (relaxed origin checks, no client caching)")
	cmd.Flags().StringSliceVar(&admins, "admin", nil, "Usernames allowed to mutate groups")

	return cmd
}

func runServe(configPath, address, basePath string, devMode bool, admins []string) error {
	cfg, err := addrnav.FromFile(configPath)
	if err != nil {
		// A missing file is fine for flag-only runs; anything else is
		// a real configuration problem.
		if _, statErr := os.Stat(configPath); statErr == nil || !errors.Is(statErr, os.ErrNotExist) {
			return err
		}
		cfg = addrnav.Config{}
	}

	if address != "" {
		cfg.Address = address
	}
	if basePath != "" {
		cfg.BasePath = basePath
	}
	if devMode {
		cfg.DevMode = true
	}
	if len(admins) > 0 {
		cfg.Admin.Admins = admins
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	app := addrnav.New(cfg)

	printBanner()
	fmt.Println()
	info("address:   %s", valueOr(cfg.Address, "localhost:3000"))
	info("base path: %s", valueOr(app.BasePath(), "(none)"))
	if cfg.DevMode {
		warn("development mode, do not use in production")
	}
	fmt.Println()

	return app.Run(context.Background())
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
