package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"godmon/internal/config"
	"godmon/internal/logger"
	"godmon/internal/source"
	"godmon/internal/status"
	"godmon/pkg/logging"
)

var version = "dev"

var (
	configFile  string
	stateFile   string
	quiet       bool
	debug       bool
	openBrowser bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "godmon [god name]",
		Short: "Terminal dashboard for your Godville hero",
		Long:  "godmon polls the game's status API, renders the hero state in fixed text panels and raises pop-up warnings on status changes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/godmon/godmon.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "", "Read state from a local JSON file instead of the network")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress notification commands")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&openBrowser, "open-browser", false, "Open the hero page in a browser on start when the session is expired")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(dumpCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the YAML config and folds the command line into it.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Auth.GodName = args[0]
	}
	if stateFile != "" {
		cfg.Source.StateFile = stateFile
	}
	if quiet {
		cfg.Notifications.Quiet = true
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	if openBrowser {
		cfg.Session.OpenBrowserOnStart = true
	}
	return cfg, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [god name]",
		Short: "Start the dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig(args)
			if err != nil {
				earlyLog.Error("Failed to load config: %v", err)
				return err
			}

			log, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
			if err != nil {
				earlyLog.Error("Failed to init logger: %v", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				earlyLog.Error("Failed to initialize: %v", err)
				return err
			}

			err = app.Run(ctx)
			app.Shutdown()
			if err != nil && err != context.Canceled {
				log.Errorw("Stopped with error", "error", err)
				fmt.Fprintf(os.Stderr, "godmon: %v (details in %s)\n", err, cfg.Logging.File)
				return err
			}
			return nil
		},
	}
}

// dumpCmd fetches the state once and writes it, pretty-printed, to
// <god name>.json in the current directory.
func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [god name]",
		Short: "Fetch the raw state once and save it to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig(args)
			if err != nil {
				earlyLog.Error("Failed to load config: %v", err)
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			src, err := source.New(cfg.Source, logger.NopLogger())
			if err != nil {
				return err
			}
			body, err := src.Fetch(ctx, cfg.Auth.GodName, cfg.Auth.Token)
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			snap, err := status.Parse(body)
			if err != nil {
				return err
			}

			pretty, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			outFile := cfg.Auth.GodName + ".json"
			if err := os.WriteFile(outFile, pretty, 0o644); err != nil {
				return err
			}
			fmt.Printf("state written to %s\n", outFile)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("godmon %s\n", version)
		},
	}
}
