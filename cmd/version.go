package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/linkpage/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersionCommand,
}

var (
	versionOutput *OutputFlags
	versionShort  bool
)

func init() {
	rootCmd.AddCommand(versionCmd)

	versionOutput = AddOutputFlags(versionCmd, "text", FormatJSON, FormatYAML)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, _ []string) error {
	if err := versionOutput.Validate(); err != nil {
		return err
	}

	info := version.Get()
	return versionOutput.Write(cmd.OutOrStdout(), info, func(w io.Writer) error {
		if versionShort {
			_, err := fmt.Fprintln(w, info.Short())
			return err
		}
		_, err := fmt.Fprintf(w, "linkpage %s\n%s\n", info.Short(), info)
		return err
	})
}
