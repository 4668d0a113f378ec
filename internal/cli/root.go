// Package cli implements the pokedex command line.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Sternrassler/pokedex-client/internal/config"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

// annotationTUI marks commands that own the terminal; their logs go to a file.
const annotationTUI = "pokedex/tui"

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop()

// rootOptions carries persistent flags and the loaded configuration to the
// subcommands.
type rootOptions struct {
	debug      bool
	logFile    string
	configFile string

	cfg       config.Config
	logOutput io.Closer
}

// NewRootCmd creates the root command for the pokedex CLI.
func NewRootCmd(ver string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pokedex",
		Short:         "Browse the Pokémon catalog",
		Long:          "pokedex: page through and search the PokeAPI Pokémon list from the terminal or over HTTP",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return setupLogging(cmd, opts)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.logOutput != nil {
				return opts.logOutput.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file (environment variables still apply)")

	cmd.AddCommand(
		newBrowseCmd(opts),
		newListCmd(opts),
		newServeCmd(opts, ver),
		newEnvCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Browse interactively
  pokedex browse

  # Print page 3 as a table
  pokedex list --page 3

  # Search page 1 and include detail documents as JSON
  pokedex list --search char --details --output json

  # Serve the list over HTTP with a shared Redis cache
  POKEDEX_CACHE_BACKEND=redis REDIS_URL=redis://localhost:6379/0 pokedex serve

  # Show all configuration variables
  pokedex env`

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// setupLogging configures logging based on configuration and CLI flags.
func setupLogging(cmd *cobra.Command, opts *rootOptions) error {
	loggingCfg := opts.cfg.LoggingConfig(cmd.ErrOrStderr())
	if opts.debug {
		loggingCfg.Level = logging.LevelDebug
	}

	_, ownsTerminal := cmd.Annotations[annotationTUI]

	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		opts.logOutput = f
		loggingCfg.Output = f
		loggingCfg.NoColor = true
	case ownsTerminal:
		loggingCfg.Output = io.Discard
	case !loggingCfg.Pretty && isTerminal(os.Stderr):
		loggingCfg.Pretty = true
	}

	logging.Setup(loggingCfg)
	logger = logging.NewLogger("cli")
	logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return nil
}
