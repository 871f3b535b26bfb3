package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/timeago/internal/config"
	"github.com/spetersoncode/timeago/internal/errors"
	"github.com/spetersoncode/timeago/internal/settings"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath      string
	jsonOut     bool
	quiet       bool
	verbose     bool
	noColor     bool
	localeName  string
	allowFuture bool
)

// Global configuration (loaded once at startup)
var globalConfig *config.Config

// out and errOut receive command output. Tests swap them for buffers.
var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

// skipSettingsCommands lists commands that never render, so a broken locale
// setting does not stop them.
var skipSettingsCommands = map[string]bool{
	"help":    true,
	"version": true,
	"init":    true,
}

var rootCmd = &cobra.Command{
	Use:   "timeago",
	Short: "Relative time phrases that keep themselves up to date",
	Long: `timeago turns timestamps into phrases like "about an hour ago" and
keeps stored entries re-rendered as time passes.

Use "timeago phrase <timestamp>" for a one-off phrase.
Use "timeago init" to create the config file and the entries database.
Use "timeago --help" to see all available commands.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applySettings(cmd)
	},
}

func init() {
	// Load global configuration at startup
	var err error
	globalConfig, err = config.Load()
	if err != nil {
		// If config file is invalid, print warning but continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		globalConfig = config.DefaultConfig()
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default ~/.timeago/timeago.db)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&localeName, "locale", "", "Built-in locale for phrases (see 'timeago locales')")
	rootCmd.PersistentFlags().BoolVar(&allowFuture, "allow-future", false, "Render future instants as \"... from now\"")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.InvalidArgs("%s", err.Error()).
			WithSuggestion(fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath()))
	})

	// Set version template for --version flag
	rootCmd.SetVersionTemplate(fmt.Sprintf("timeago %s (%s, %s)\n", Version, shortCommit(), shortDate()))

	rootCmd.AddCommand(versionCmd)
}

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// applySettings installs the configured rendering defaults, with the
// --locale and --allow-future flags layered on top.
func applySettings(cmd *cobra.Command) error {
	if skipSettingsCommands[cmd.Name()] {
		return nil
	}

	cfg := *GetConfig()
	if localeName != "" {
		cfg.Locale = localeName
		cfg.LocaleFile = ""
	}
	if cmd.Flags().Changed("allow-future") {
		cfg.AllowFuture = allowFuture
	}

	s, err := cfg.Settings()
	if err != nil {
		return err
	}
	return settings.SetDefaults(s)
}

// newLogger returns the logger handed to the scheduler, board and server.
// Verbose mode enables V(1) messages; quiet mode drops everything.
func newLogger() logr.Logger {
	if quiet {
		return logr.Discard()
	}
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(errOut, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(errOut, args)
	}, funcr.Options{Verbosity: verbosity})
}

// GetDBPath returns the database path from flags, config, or default.
// Priority: flag > env > config file > default
func GetDBPath() string {
	// Command-line flag has highest priority
	if dbPath != "" {
		return dbPath
	}
	// Config already handles env > file > default
	if globalConfig != nil {
		return globalConfig.GetDB()
	}
	return "" // Will use default in db.Open
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsNoColor returns whether colored output should be disabled.
// Priority: flag > env > config file > default
func IsNoColor() bool {
	// Command-line flag has highest priority
	if noColor {
		return true
	}
	// Config already handles env > file > default
	if globalConfig != nil {
		return globalConfig.NoColor
	}
	return false
}

// GetConfig returns the global configuration.
// This should only be used when direct access to all config values is needed.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// Output prints to stdout unless quiet mode is enabled
func Output(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// OutputLine prints a line to stdout unless quiet mode is enabled
func OutputLine(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format+"\n", args...)
	}
}

// OutputJSON prints v as indented JSON. JSON output ignores quiet mode.
func OutputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapInternal(err, "failed to marshal JSON")
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// VerboseOutput prints to stdout only in verbose mode
func VerboseOutput(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// ErrorOutput prints to stderr
func ErrorOutput(format string, args ...interface{}) {
	fmt.Fprintf(errOut, format, args...)
}

// exactArgs is cobra.ExactArgs reporting an invalid-arguments error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return errors.InvalidArgs("%s", err.Error()).
				WithSuggestion(fmt.Sprintf("Usage: %s", cmd.UseLine()))
		}
		return nil
	}
}
