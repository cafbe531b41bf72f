// Command salesintel is the terminal client of the site-analysis service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/sales-intel/internal/client/app"
	"github.com/and161185/sales-intel/internal/config"
	"github.com/and161185/sales-intel/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var r reported
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every command is a fresh process start
// that restores the session from the credential store exactly once.
func newRootCmd() *cobra.Command {
	var (
		apiURL   string
		logLevel string
		a        *app.App
	)

	root := &cobra.Command{
		Use:           "salesintel",
		Short:         "Sales intelligence client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			a, err = app.New(cfg, log, nil)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				_ = a.Log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides SALESINTEL_API_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides SALESINTEL_LOG_LEVEL)")

	get := func() *app.App { return a }
	root.AddCommand(
		versionCmd(),
		loginCmd(get),
		logoutCmd(get),
		statusCmd(get),
		analyzeCmd(get),
		pagesCmd(get),
		adminCmd(get),
		shellCmd(get),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "salesintel %s (%s)\n", version, buildDate)
		},
	}
}

var errLoginRequired = errors.New("login required")
