package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/addrnav-dev/addrnav/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌┬┐┌┬┐┬─┐┌┐┌┌─┐┬  ┬
  ├─┤ ││ ││├┬┘│││├─┤└┐┌┘
  ┴ ┴─┴┘─┴┘┴└─┘└┘┴ ┴ └┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "addrnav",
		Short: "Server-driven address-bar navigation",
		Long: `addrnav keeps browser address bars in sync with server-side state.

The server rewrites URLs over a live WebSocket channel while a thin
JavaScript client applies them with the History API. A server-rendered
console manages user groups and their permissions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		publishCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			fmt.Fprintln(os.Stderr, appErr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
