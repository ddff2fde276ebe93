package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, repo, skill, body string) {
	t.Helper()
	dir := filepath.Join(repo, skill)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "install.sh"), []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func TestInstallPassesProjectRootToEntryPoint(t *testing.T) {
	repo := t.TempDir()
	writeScript(t, repo, "alpha", "#!/bin/sh\nexit 0\n")

	var gotScript, gotDir string
	var gotArgs []string
	s := &Script{RepoPath: repo, EntryPoint: "install.sh", run: func(_ context.Context, script, dir string, args ...string) ([]byte, error) {
		gotScript, gotDir, gotArgs = script, dir, args
		return nil, nil
	}}

	if err := s.Install(context.Background(), "alpha", "."); err != nil {
		t.Fatalf("install: %v", err)
	}
	if gotScript != filepath.Join(repo, "alpha", "install.sh") {
		t.Errorf("script = %q", gotScript)
	}
	if gotDir != filepath.Join(repo, "alpha") {
		t.Errorf("dir = %q", gotDir)
	}
	if len(gotArgs) != 1 || !filepath.IsAbs(gotArgs[0]) {
		t.Errorf("args = %v, want one absolute project root", gotArgs)
	}
}

func TestInstallMissingEntryPoint(t *testing.T) {
	s := &Script{RepoPath: t.TempDir(), EntryPoint: "install.sh", run: func(_ context.Context, _, _ string, _ ...string) ([]byte, error) {
		t.Fatal("run must not be called without an entry point")
		return nil, nil
	}}
	err := s.Install(context.Background(), "ghost", ".")
	if err == nil || !strings.Contains(err.Error(), "INS_ENTRY_MISSING") {
		t.Fatalf("expected entry-missing error, got %v", err)
	}
}

func TestInstallAttributesFailureToSkill(t *testing.T) {
	repo := t.TempDir()
	writeScript(t, repo, "alpha", "#!/bin/sh\nexit 1\n")

	s := &Script{RepoPath: repo, EntryPoint: "install.sh", run: func(_ context.Context, _, _ string, _ ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}}
	err := s.Install(context.Background(), "alpha", ".")
	if err == nil || !strings.Contains(err.Error(), `skill "alpha"`) {
		t.Fatalf("expected skill-attributed error, got %v", err)
	}
}

func TestInstallRunsRealScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not runnable on windows")
	}
	repo := t.TempDir()
	project := t.TempDir()
	writeScript(t, repo, "alpha", "#!/bin/sh\necho installed > \"$1/alpha.out\"\n")

	s := NewScript(repo, "install.sh")
	if err := s.Install(context.Background(), "alpha", project); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(project, "alpha.out")); err != nil {
		t.Fatalf("install script did not run against project root: %v", err)
	}
}
