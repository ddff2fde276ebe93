package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

type gitExecFunc func(ctx context.Context, dir string, args ...string) ([]byte, error)

func defaultGitExec(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return out, nil
}

// Git is the Repository implementation over a local clone, driven
// through the git binary.
type Git struct {
	dir        string
	entryPoint string
	execGit    gitExecFunc
}

// Open returns a Git repository rooted at dir. entryPoint is the file
// name that marks a top-level directory as an installable skill.
func Open(dir, entryPoint string) *Git {
	return &Git{dir: dir, entryPoint: entryPoint, execGit: defaultGitExec}
}

func (g *Git) FetchTags(ctx context.Context) error {
	remotes, err := g.execGit(ctx, g.dir, "remote")
	if err != nil {
		return &FetchError{Err: err}
	}
	// A purely local clone has nothing to fetch; its tags are already
	// the source of truth.
	if strings.TrimSpace(string(remotes)) == "" {
		return nil
	}
	if _, err := g.execGit(ctx, g.dir, "fetch", "--tags", "--force"); err != nil {
		return &FetchError{Err: err}
	}
	return nil
}

func (g *Git) Tags(ctx context.Context) ([]string, error) {
	out, err := g.execGit(ctx, g.dir, "tag", "--list")
	if err != nil {
		return nil, fmt.Errorf("SRC_GIT_TAGS: %w", err)
	}
	return splitLines(out), nil
}

func (g *Git) ChangedTopLevelDirs(ctx context.Context, fromTag, toTag string) ([]string, error) {
	out, err := g.execGit(ctx, g.dir, "diff", "--name-only", fromTag, toTag)
	if err != nil {
		return nil, fmt.Errorf("SRC_GIT_DIFF: %s..%s: %w", fromTag, toTag, err)
	}
	seen := map[string]struct{}{}
	dirs := []string{}
	for _, path := range splitLines(out) {
		seg := path
		if i := strings.IndexByte(path, '/'); i > 0 {
			seg = path[:i]
		}
		if _, ok := seen[seg]; ok {
			continue
		}
		seen[seg] = struct{}{}
		dirs = append(dirs, seg)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (g *Git) SkillDirs(ctx context.Context, tag string) ([]string, error) {
	out, err := g.execGit(ctx, g.dir, "ls-tree", "-r", "--name-only", tag)
	if err != nil {
		return nil, fmt.Errorf("SRC_GIT_TREE: %s: %w", tag, err)
	}
	seen := map[string]struct{}{}
	dirs := []string{}
	for _, path := range splitLines(out) {
		dir, rest, ok := strings.Cut(path, "/")
		if !ok || rest != g.entryPoint {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (g *Git) ReleaseNotes(ctx context.Context, fromTag, toTag string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rev := toTag
	if fromTag != "" {
		rev = fromTag + ".." + toTag
	}
	out, err := g.execGit(ctx, g.dir, "log", "--no-merges", "-n", strconv.Itoa(limit), "--pretty=format:%s", rev)
	if err != nil {
		return nil, fmt.Errorf("SRC_GIT_LOG: %s: %w", rev, err)
	}
	return splitLines(out), nil
}

func (g *Git) Checkout(ctx context.Context, tag string) error {
	_, err := g.execGit(ctx, g.dir, "-c", "advice.detachedHead=false", "checkout", "--force", tag)
	if err != nil {
		return fmt.Errorf("SRC_GIT_CHECKOUT: %s: %w", tag, err)
	}
	return nil
}

func splitLines(out []byte) []string {
	lines := []string{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
