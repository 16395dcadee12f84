// Package cli implements the nativefs command line.
package cli

import (
	"fmt"

	"github.com/CageChen/nativefs/internal/config"
	"github.com/CageChen/nativefs/internal/layout"
	"github.com/CageChen/nativefs/internal/logging"
	"github.com/CageChen/nativefs/internal/nativefs"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	configPath string
	debug      bool

	cfg     *config.Config
	printer = message.NewPrinter(language.English)
)

// moduleFor builds the native module for a loaded configuration.
var moduleFor = func(c *config.Config) (*nativefs.Module, error) {
	dirs, err := layout.Resolve(c.BinPath, c.HomePath)
	if err != nil {
		return nil, fmt.Errorf("resolving installation layout: %w", err)
	}
	return nativefs.InitDefault(dirs), nil
}

var module *nativefs.Module

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log native call timing")
}

var rootCmd = &cobra.Command{
	Use:   "nativefs",
	Short: "Inspect the filesystem through the optional native module",
	Long: `nativefs locates and loads the platform-specific native filesystem module
and uses it to report file metadata, resolve symbolic links and list
directories, falling back to the portable implementation when it is absent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		configureLogging(cfg)

		module, err = moduleFor(cfg)
		return err
	},
}

// configureLogging applies the configured level. LOG_LEVEL and
// NATIVEFS_DEBUG take precedence over the config file.
func configureLogging(c *config.Config) {
	logger := logging.GetLogger()
	if level, ok := logging.EnvLevel(); ok {
		logger.SetLevel(level)
	} else if level, ok := logging.ParseLevel(c.LogLevel); ok {
		logger.SetLevel(level)
	}
	if (debug || c.Debug) && !logger.IsDebugEnabled() {
		logger.SetLevel(logging.LevelDebug)
	}
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
