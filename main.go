package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/config"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/server"
	"github.com/spf13/cobra"
)

var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags
type rootOptions struct {
	configFile string
	logLevel   string
	app        *application
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "loe",
		Short: "Loss-of-exclusivity dates from the FDA Orange Book",
		Long: `loe estimates when U.S. drugs lose market exclusivity.

It joins Drugs@FDA approvals with Orange Book patents and exclusivities,
adds the 12-year biologic exclusivity for BLAs and reports the latest
of those dates as the effective loss-of-exclusivity date.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (overrides "+config.ConfigFileEnv+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(profileCmd(opts))
	cmd.AddCommand(scanCmd(opts))
	cmd.AddCommand(refreshCmd(opts))

	return cmd
}

// initialize loads .env, the configuration and the logger, then wires the
// application. Only serve writes log files.
func (o *rootOptions) initialize(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if o.configFile != "" {
		if err := os.Setenv(config.ConfigFileEnv, o.configFile); err != nil {
			return err
		}
	}
	if o.logLevel != "" {
		if err := os.Setenv("LOG_LEVEL", o.logLevel); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logDir := ""
	if cmd.Name() == "serve" {
		logDir = cfg.LogDir
	}
	logging.InitLoggerWithRetention(logDir, cfg.LogLevel, cfg.LogRetentionWeeks)

	o.app = newApplication(cfg, nil)
	return nil
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the daily Orange Book refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app

			jobs := app.scheduler()
			if err := jobs.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer jobs.Stop()

			srv := server.NewServer(app.config, app.httpHandler())

			// Channel to listen for interrupt signals
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			serverErr := make(chan error, 1)
			go func() {
				serverErr <- srv.Start()
			}()

			select {
			case err := <-serverErr:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case sig := <-quit:
				logging.Info("Received signal", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func profileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <drug>",
		Short: "Print the patent profile of one drug as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if err := app.validator.ValidateInput(args[0]); err != nil {
				return err
			}

			profile, err := app.builder.BuildProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if profile == nil {
				return fmt.Errorf("no FDA approval found for %q", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func scanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <condition>",
		Short: "Print profiles of drugs for a condition, earliest LOE first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if err := app.validator.ValidateInput(args[0]); err != nil {
				return err
			}

			profiles, err := app.scanner.ScanCondition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), profiles)
		},
	}
}

func refreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Download the Orange Book archive into the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app

			tables, err := app.store.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			report := app.validator.ReportDataQuality(tables)
			fmt.Fprintf(cmd.OutOrStdout(), "Orange Book refreshed into %s: %d products, %d patents, %d exclusivities\n",
				app.config.CacheDir, len(tables.Products), len(tables.Patents), len(tables.Exclusivities))
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
