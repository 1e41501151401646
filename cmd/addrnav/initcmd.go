package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/addrnav-dev/addrnav/internal/config"
	"github.com/addrnav-dev/addrnav/internal/errors"
)

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a default configuration file",
		Long: `Write a default ` + config.ConfigFileName + ` into the given directory
(the working directory by default). Existing files are never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")

	return cmd
}

func runInit(dir, name string) error {
	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return errors.New("A201", errors.CategoryCLI, config.ConfigFileName+" already exists").
			WithDetail("Found " + path).
			WithSuggestion("Remove it first or edit it in place")
	}

	cfg := config.New()
	cfg.Name = name
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success("created %s", path)
	info("run `addrnav serve` to start the server")
	return nil
}
