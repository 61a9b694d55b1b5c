package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect server settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the settings the server would run with, after merging the
settings file, environment variables and defaults. The invalidation token
is redacted.`,
	RunE: runConfigShow,
}

var configShowOutput *OutputFlags

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)

	configShowOutput = AddOutputFlags(configShowCmd, FormatYAML, FormatJSON)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := configShowOutput.Validate(); err != nil {
		return err
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	return configShowOutput.Write(cmd.OutOrStdout(), cfg.Redacted(), func(io.Writer) error {
		return fmt.Errorf("unsupported format %s", configShowOutput.Format)
	})
}
