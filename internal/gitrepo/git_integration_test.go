package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

// setupTaggedRepo builds a local repo with two tagged versions: v1.0.0
// carries skills alpha and gamma; v1.1.0 modifies alpha and adds beta.
func setupTaggedRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available on PATH")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, string(out))
		}
	}
	write := func(rel, content string) {
		t.Helper()
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o755); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	run("init", "-b", "main")
	write("alpha/install.sh", "#!/bin/sh\nexit 0\n")
	write("alpha/SKILL.md", "# alpha v1\n")
	write("gamma/install.sh", "#!/bin/sh\nexit 0\n")
	write("README.md", "docs\n")
	run("add", "-A")
	run("commit", "-m", "initial release")
	run("tag", "v1.0.0")

	write("alpha/SKILL.md", "# alpha v2\n")
	write("beta/install.sh", "#!/bin/sh\nexit 0\n")
	run("add", "-A")
	run("commit", "-m", "rework alpha, add beta")
	run("tag", "v1.1.0")

	return dir
}

func TestGitAgainstRealRepository(t *testing.T) {
	dir := setupTaggedRepo(t)
	g := Open(dir, "install.sh")
	ctx := context.Background()

	// Local-only clone: fetch is a no-op, not a failure.
	if err := g.FetchTags(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	tags, err := g.Tags(ctx)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"v1.0.0", "v1.1.0"}) {
		t.Fatalf("tags = %v", tags)
	}

	changed, err := g.ChangedTopLevelDirs(ctx, "v1.0.0", "v1.1.0")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if !reflect.DeepEqual(changed, []string{"alpha", "beta"}) {
		t.Fatalf("changed = %v", changed)
	}

	skills, err := g.SkillDirs(ctx, "v1.1.0")
	if err != nil {
		t.Fatalf("skill dirs: %v", err)
	}
	if !reflect.DeepEqual(skills, []string{"alpha", "beta", "gamma"}) {
		t.Fatalf("skills = %v", skills)
	}

	notes, err := g.ReleaseNotes(ctx, "v1.0.0", "v1.1.0", 5)
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if len(notes) != 1 || notes[0] != "rework alpha, add beta" {
		t.Fatalf("notes = %v", notes)
	}

	if err := g.Checkout(ctx, "v1.0.0"); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	blob, err := os.ReadFile(filepath.Join(dir, "alpha", "SKILL.md"))
	if err != nil {
		t.Fatalf("read after checkout: %v", err)
	}
	if string(blob) != "# alpha v1\n" {
		t.Fatalf("working tree not at v1.0.0: %q", blob)
	}

	if err := g.Checkout(ctx, "v9.9.9"); err == nil {
		t.Fatal("expected checkout of missing tag to fail")
	}
}
