// Package gitrepo wraps read-mostly operations against the versioned
// source repository the skills are distributed from.
package gitrepo

import "context"

// Repository is the capability surface the updater needs from a
// version-controlled source. Everything except Checkout is computed
// from refs and trees without touching the working tree, so the full
// plan can be shown before any filesystem mutation.
type Repository interface {
	// FetchTags synchronizes local knowledge of remote tags. Failure is
	// a connectivity error, distinct from "no update available".
	FetchTags(ctx context.Context) error

	// Tags lists every tag the repository exposes, unordered.
	Tags(ctx context.Context) ([]string, error)

	// ChangedTopLevelDirs returns the first path segment of every file
	// that differs between the two tags' trees.
	ChangedTopLevelDirs(ctx context.Context, fromTag, toTag string) ([]string, error)

	// SkillDirs returns the top-level directories at tag that carry an
	// install entry point, i.e. the installable skills.
	SkillDirs(ctx context.Context, tag string) ([]string, error)

	// ReleaseNotes returns up to limit commit subjects between the two
	// tags, newest first. fromTag may be empty when no prior version is
	// known.
	ReleaseNotes(ctx context.Context, fromTag, toTag string, limit int) ([]string, error)

	// Checkout moves the working tree to tag. The only mutating
	// operation; callers invoke it only after an update is confirmed.
	Checkout(ctx context.Context, tag string) error
}

// FetchError marks a failure to reach the source repository. Callers
// must surface it as "cannot tell", never as "up to date".
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "SRC_GIT_FETCH: cannot reach source repository: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }
