// Package cli provides the command-line interface for paginas.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasvnasc/paginas-semelhantes/internal/client"
	"github.com/lucasvnasc/paginas-semelhantes/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global config, loaded before every command runs
	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "paginas",
	Short: "Keyword cannibalization detector for Search Console exports",
	Long: `Paginas groups pages of a site that rank for largely the same queries,
using a Google Search Console performance export as input.

Pages whose query sets overlap beyond a threshold are clustered together,
and the page with the most clicks is suggested as the one to keep. Run the
analysis locally with 'analyze', or against a running server with 'submit'.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// The CLI keeps stderr quiet unless -v is given; the JSON log
		// file still receives everything.
		stderr := io.Writer(io.Discard)
		if verbose {
			stderr = os.Stderr
		}
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logCloser = logFile.Close
		slog.SetDefault(config.SetupLoggerWithWriters(stderr, logFile, cfg.LogLevel))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			if err := logCloser(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

var logCloser func() error

// newClient builds an API client for the configured (or overridden) server.
func newClient() *client.Client {
	url := cfg.ServerURL
	if serverURL != "" {
		url = serverURL
	}
	return client.New(url)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (overrides config)")
}
