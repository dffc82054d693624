// Package cli defines the command-line interface for rpnd.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rpnd/internal/config"
	"github.com/example/rpnd/internal/logging"
)

const (
	// defaultConfigPath is the default path to the configuration file.
	defaultConfigPath = "rpnd.yaml"
	// defaultEnvFile is loaded when present.
	defaultEnvFile = ".env"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	NoColor    bool

	// Config is resolved in PersistentPreRunE from file, env and flags.
	Config config.Config
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: defaultConfigPath,
		EnvFile:    defaultEnvFile,
	}
	var fromEnv baseEnv
	if err := parseEnv(&fromEnv); err != nil {
		return err
	}
	if fromEnv.ConfigPath != "" {
		rootOpts.ConfigPath = fromEnv.ConfigPath
	}
	if fromEnv.EnvFile != "" {
		rootOpts.EnvFile = fromEnv.EnvFile
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rpnd",
		Short:         "rpnd serves named RPN calculator stacks over HTTP",
		Long:          "rpnd keeps named stacks of numbers in memory and applies +, -, * and / to their top two values. Run 'rpnd serve' to start the service and 'rpnd stack' to talk to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				Path:         opts.ConfigPath,
				PathRequired: cmd.Flags().Changed("config"),
				EnvFile:      opts.EnvFile,
			})
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.LogLevel
			}
			if cmd.Flags().Changed("no-color") {
				cfg.NoColor = opts.NoColor
			}
			opts.Config = cfg

			level := logging.ParseLevel(cfg.LogLevel)
			logger = logging.NewLoggerWithOptions(cmd.ErrOrStderr(), logging.Options{Level: level, NoColor: cfg.NoColor})
			cmd.SetContext(context.WithValue(cmd.Context(), loggerContextKey, logger))
			logger.Debug("logger initialized", "level", level, "config", opts.ConfigPath)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "Path to rpnd.yaml configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "Path to a .env file with RPND_* variables")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored log output")

	cmd.AddCommand(
		newServeCommand(opts),
		newStackCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

type contextKey int

const loggerContextKey contextKey = iota

// commandLogger returns the logger installed by the root pre-run hook. Commands
// run without the hook (tests, direct Execute of a subcommand) log to their own
// stderr at info level.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if l, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
			return l
		}
	}
	return logging.NewLogger(cmd.ErrOrStderr(), logging.LevelInfo)
}
