package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pane-dev/pane/internal/skills"
)

var (
	listJSON bool
	listTag  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available skills",
	Long: `List every skill that survived discovery, validation and precedence.

Examples:
  pane list
  pane list --tag git
  pane list --json`,
	Args: cobra.NoArgs,
	RunE: listSkills,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "print skills as JSON")
	listCmd.Flags().StringVar(&listTag, "tag", "", "only list skills carrying this tag")
}

// listedSkill is the JSON shape of one skill in 'pane list --json'.
type listedSkill struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Version       string   `json:"version"`
	Scope         string   `json:"scope"`
	Mode          string   `json:"mode"`
	Fullscreen    bool     `json:"fullscreen,omitempty"`
	Tags          []string `json:"tags"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Exec          string   `json:"exec"`
	Args          []string `json:"args"`
	Manifest      string   `json:"manifest"`
}

func newListedSkill(s skills.Skill) listedSkill {
	tags, args := s.Tags, s.Args
	if tags == nil {
		tags = []string{}
	}
	if args == nil {
		args = []string{}
	}
	return listedSkill{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		Version:       s.Version,
		Scope:         s.Scope.String(),
		Mode:          s.Mode.String(),
		Fullscreen:    s.Fullscreen,
		Tags:          tags,
		EstimatedTime: s.EstimatedTime,
		Exec:          s.Exec,
		Args:          args,
		Manifest:      s.ManifestPath,
	}
}

func listSkills(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	reg, diags := e.buildRegistry()
	var shown []skills.Skill
	for _, s := range reg.All() {
		if listTag != "" && !s.HasTag(strings.ToLower(listTag)) {
			continue
		}
		shown = append(shown, s)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		listed := make([]listedSkill, 0, len(shown))
		for _, s := range shown {
			listed = append(listed, newListedSkill(s))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(listed); err != nil {
			return fmt.Errorf("failed to encode skills: %w", err)
		}
	} else if len(shown) == 0 {
		fmt.Fprintln(out, "No skills found.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSCOPE\tMODE\tDESCRIPTION")
		for _, s := range shown {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Scope, s.Mode, truncate(s.Description, 60))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if n := countDefects(diags); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d manifest(s) skipped; run 'pane validate' for details\n", n)
	}
	return nil
}

func countDefects(diags []skills.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Defect() {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
