// Package cmd provides the linkpage command-line interface.
//
// Settings are read from, highest priority first:
//  1. Command-line flags (--port, --log-level, ...)
//  2. Environment variables: LINKPAGE_<SECTION>_<OPTION>, plus CONFIG_PATH,
//     INVALIDATE_TOKEN, PORT and ENVIRONMENT
//  3. The settings file given by --config or LINKPAGE_CONFIG_FILE, else
//     .linkpage.yml in the working directory
//  4. Built-in defaults
//
// The settings file configures the server. The profile shown on the page
// lives in a separate JSON file (profile.path, default config.json).
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/linkpage/internal/config"
	"github.com/conneroisu/linkpage/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "linkpage",
	Short: "A self-hosted link-in-bio page",
	Long: `LinkPage serves a single profile page with your links, optional
sub-pages and a social card, all driven by one JSON file.

Quick Start:
  linkpage serve            Serve config.json on port 3000
  linkpage serve --dev      Serve with live reload and the settings panel
  linkpage validate         Check config.json for mistakes
  linkpage icons            List the keys with a built-in icon

Documentation: https://github.com/kldzj/linkpage`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is .linkpage.yml, can also use LINKPAGE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	AddFlagValidation(rootCmd, "config", ValidateFileExists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the settings file and enables environment
// overrides. A missing settings file is not an error.
func initConfig() {
	v := viper.GetViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		v.SetConfigFile(envConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".linkpage")
	}

	config.SetDefaults(v)
	config.ConfigureEnv(v)

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && v.ConfigFileUsed() != "" {
		fmt.Fprintf(os.Stderr, "Warning: cannot read config file %s: %v\n", v.ConfigFileUsed(), err)
	}
}

// loadSettings decodes and validates the merged settings.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) logging.Logger {
	return logging.NewLogger(cfg.LoggerConfig(w))
}
