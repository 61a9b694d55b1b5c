package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/linkpage/internal/links"
)

var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "List link keys with a built-in icon",
	Long: `List the link keys that get an icon and a display name without any
extra configuration. Matching ignores case, dashes, underscores and spaces,
so "GitHub", "git-hub" and "github" are the same key.`,
	RunE: runIcons,
}

var iconsOutput *OutputFlags

func init() {
	rootCmd.AddCommand(iconsCmd)
	iconsOutput = AddOutputFlags(iconsCmd)
}

// IconRow describes one built-in key.
type IconRow struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

func runIcons(cmd *cobra.Command, _ []string) error {
	if err := iconsOutput.Validate(); err != nil {
		return err
	}

	keys := links.AllSocialIcons()
	rows := make([]IconRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, IconRow{
			Key:  key,
			Name: links.SocialDisplayName(key),
			Icon: string(links.SocialIcon(key)),
		})
	}

	return iconsOutput.Write(cmd.OutOrStdout(), rows, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tICON")
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Key, row.Name, row.Icon)
		}
		return tw.Flush()
	})
}
