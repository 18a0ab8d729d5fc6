package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pane-dev/pane/internal/skills"
)

var validateCmd = &cobra.Command{
	Use:   "validate [manifest...]",
	Short: "Check skill manifests",
	Long: `Check skill manifests and report every problem found.

Without arguments every configured skill root is scanned and shadowed skills
are reported alongside broken manifests. With arguments only the named
manifest files are checked.

Exits 1 when any manifest is broken.`,
	RunE: validateSkills,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateSkills(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		failed := 0
		for _, path := range args {
			s, err := checkManifest(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(out, "✓ %s: %s (%s)\n", path, s.ID, s.Mode)
		}
		if failed > 0 {
			return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d manifest(s) invalid", failed, len(args))}
		}
		return nil
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	reg, diags := e.buildRegistry()
	for _, d := range diags {
		mark := "✗"
		if !d.Defect() {
			mark = "·"
		}
		fmt.Fprintf(out, "%s %s\n", mark, d)
	}
	defects := countDefects(diags)
	fmt.Fprintf(out, "%d skill(s) loaded, %d manifest(s) broken, %d shadowed\n", reg.Len(), defects, len(diags)-defects)
	if defects > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

// checkManifest parses and validates one manifest file as a project skill.
func checkManifest(path string) (skills.Skill, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return skills.Skill{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return skills.Skill{}, &skills.ParseError{Kind: skills.KindUnreadable, Err: err}
	}
	m, err := skills.Parse(data)
	if err != nil {
		return skills.Skill{}, err
	}
	return skills.Validate(m, skills.ScopeProject, abs)
}
