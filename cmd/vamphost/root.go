package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/felixgeelhaar/vamphost/internal/adapters/logging"
	"github.com/felixgeelhaar/vamphost/internal/app"
	"github.com/felixgeelhaar/vamphost/internal/domain/config"
	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "vamphost",
	Short: "Discover, inspect and run audio analysis plugins",
	Long: `vamphost finds audio feature extraction plugins on the plugin search path
and runs them over audio files.

Plugins are named by key, library:identifier, for example
vamp-example-plugins:percussiononsets. Libraries are looked up in the
directories listed by 'vamphost path'.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: vamphost.yaml, .toml or .ini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// loadHost reads the configuration and builds the host the commands share.
// Log output goes to the command's error stream.
func loadHost(cmd *cobra.Command) (*app.Host, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	return app.New(app.Options{
		Config: cfg,
		Logger: newLogger(cmd.ErrOrStderr(), cfg.Log, cmd.Name()),
	})
}

func newLogger(w io.Writer, cfg config.LogConfig, component string) ports.Logger {
	level, err := ports.ParseLevel(cfg.Level)
	if err != nil {
		level = ports.LevelInfo
	}
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(cfg.Format == "json"),
		logging.WithLevelLabel(true),
		logging.WithTimestamp(verbose),
		logging.WithColor(w == os.Stderr),
		logging.WithComponent(component),
	)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" && userErr.Context != userErr.Message {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	var list *config.ErrorList
	if errors.As(err, &list) {
		return list.Format()
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error.Render("Error:"), formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml", "ini"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tHuman readable lines",
			"json\tOne JSON object per line",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
