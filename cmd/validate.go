package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/profile"
)

var validateCmd = &cobra.Command{
	Use:   "validate [profile.json]",
	Short: "Check a profile file",
	Long: `Parse a profile file the same way the server does and report fields
that will load but probably not render as intended, such as rich links
without a title, nested sub-pages or unknown colour schemes.

A file that cannot be read or parsed is an error. Lint issues are only
reported unless --strict is given.

Examples:
  linkpage validate
  linkpage validate site.json --strict
  linkpage validate -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var (
	validateOutput *OutputFlags
	validateStrict bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateOutput = AddOutputFlags(validateCmd)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail when any issue is found")
}

// ValidateResult is the report printed by validate.
type ValidateResult struct {
	Path   string          `json:"path" yaml:"path"`
	Valid  bool            `json:"valid" yaml:"valid"`
	Links  int             `json:"links" yaml:"links"`
	Issues []profile.Issue `json:"issues" yaml:"issues"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := validateOutput.Validate(); err != nil {
		return err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		path = cfg.Profile.Path
	}

	resolved, err := profile.ResolvePath(path)
	if err != nil {
		return errors.NewConfigReadError(path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return errors.NewConfigReadError(resolved, err)
	}

	p, err := profile.Parse(data)
	if err != nil {
		return errors.NewConfigParseError(resolved, err)
	}

	issues := profile.Lint(p)
	if issues == nil {
		issues = []profile.Issue{}
	}
	result := ValidateResult{
		Path:   resolved,
		Valid:  len(issues) == 0,
		Links:  p.Links.Len(),
		Issues: issues,
	}

	if err := validateOutput.Write(cmd.OutOrStdout(), result, func(w io.Writer) error {
		return writeValidateTable(w, result)
	}); err != nil {
		return err
	}

	if validateStrict && !result.Valid {
		return fmt.Errorf("%d issue(s) found in %s", len(issues), resolved)
	}
	return nil
}

func writeValidateTable(w io.Writer, result ValidateResult) error {
	if result.Valid {
		_, err := fmt.Fprintf(w, "%s: OK (%d links)\n", result.Path, result.Links)
		return err
	}

	fmt.Fprintf(w, "%s: %d issue(s)\n", result.Path, len(result.Issues))
	for _, issue := range result.Issues {
		if _, err := fmt.Fprintf(w, "  - %s\n", issue); err != nil {
			return err
		}
	}
	return nil
}
