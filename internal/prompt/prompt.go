// Package prompt handles the two operator-facing interactions: asking
// for the source repository on a first run, and displaying the update
// plan before reinstallation begins.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Plan is what the operator sees before any filesystem mutation. It is
// display only; execution proceeds without a confirm step.
type Plan struct {
	From   string
	To     string
	Update []string
	Skip   []string
	Notes  []string
}

type Prompter interface {
	// RepoPath blocks until the operator supplies the source repository
	// location. Only invoked when no metadata exists yet.
	RepoPath() (string, error)

	// ShowPlan renders the plan. Never gates execution.
	ShowPlan(p Plan)
}

// Terminal is the interactive Prompter over stdio.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

func (t *Terminal) RepoPath() (string, error) {
	fmt.Fprint(t.Out, "Path or URL of the skills source repository: ")
	scanner := bufio.NewScanner(t.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("PRM_REPO_PATH: %w", err)
		}
		return "", fmt.Errorf("PRM_REPO_PATH: no source repository supplied")
	}
	path := strings.TrimSpace(scanner.Text())
	if path == "" {
		return "", fmt.Errorf("PRM_REPO_PATH: no source repository supplied")
	}
	return path, nil
}

func (t *Terminal) ShowPlan(p Plan) {
	fmt.Fprintf(t.Out, "Updating %s -> %s\n", orUnset(p.From), p.To)
	if len(p.Notes) > 0 {
		fmt.Fprintln(t.Out, "Changes in this release:")
		for _, n := range p.Notes {
			fmt.Fprintf(t.Out, "  - %s\n", n)
		}
	}
	if len(p.Update) == 0 {
		fmt.Fprintln(t.Out, "No installed skills changed; recording the new version only.")
	} else {
		fmt.Fprintf(t.Out, "Skills to update: %s\n", strings.Join(p.Update, ", "))
	}
	if len(p.Skip) > 0 {
		fmt.Fprintf(t.Out, "Unchanged, skipping: %s\n", strings.Join(p.Skip, ", "))
	}
}

func orUnset(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
