// Package installer invokes a skill's self-contained install procedure.
// The procedure itself is opaque: an executable entry point in the
// skill's directory that takes the project root as its only argument
// and exits zero on success.
package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Installer abstracts the install invocation so the orchestrator never
// shells out directly and tests can substitute a fake.
type Installer interface {
	Install(ctx context.Context, skill, projectRoot string) error
}

type runFunc func(ctx context.Context, script, dir string, args ...string) ([]byte, error)

func defaultRun(ctx context.Context, script, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, script, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w\n%s", filepath.Base(script), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Script runs the entry-point script checked out in the source
// repository's working tree.
type Script struct {
	RepoPath   string
	EntryPoint string
	run        runFunc
}

func NewScript(repoPath, entryPoint string) *Script {
	return &Script{RepoPath: repoPath, EntryPoint: entryPoint, run: defaultRun}
}

func (s *Script) Install(ctx context.Context, skill, projectRoot string) error {
	skillDir := filepath.Join(s.RepoPath, skill)
	script := filepath.Join(skillDir, s.EntryPoint)
	if _, err := os.Stat(script); err != nil {
		return fmt.Errorf("INS_ENTRY_MISSING: skill %q has no %s: %w", skill, s.EntryPoint, err)
	}
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("INS_PROJECT_ROOT: %w", err)
	}
	if _, err := s.run(ctx, script, skillDir, root); err != nil {
		return fmt.Errorf("INS_RUN: skill %q: %w", skill, err)
	}
	return nil
}
