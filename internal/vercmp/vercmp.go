// Package vercmp decides whether an installed version is current with
// respect to the tags a source repository exposes. Pure functions, no
// I/O.
package vercmp

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

type Outcome int

const (
	// UpToDate means the installed version normalizes equal to the
	// latest tag.
	UpToDate Outcome = iota
	// NoReleases means the repository exposes no tags at all. An
	// unversioned repository is a terminal state, not an error.
	NoReleases
	// UpdateAvailable means a tag newer than the installed version
	// exists.
	UpdateAvailable
)

func (o Outcome) String() string {
	switch o {
	case UpToDate:
		return "up-to-date"
	case NoReleases:
		return "no-releases"
	case UpdateAvailable:
		return "update-available"
	}
	return "unknown"
}

// Decision is the comparator verdict. Latest carries the tag exactly as
// the repository names it (possibly with a leading v); it is empty for
// NoReleases.
type Decision struct {
	Outcome Outcome
	Latest  string
}

// Decide compares the installed version record against the full tag
// list. The installed record may or may not carry the leading v the tag
// carries; "1.2.0" and "v1.2.0" are the same version.
func Decide(installed string, tags []string) Decision {
	latest, ok := Latest(tags)
	if !ok {
		return Decision{Outcome: NoReleases}
	}
	if Equal(installed, latest) {
		return Decision{Outcome: UpToDate, Latest: latest}
	}
	return Decision{Outcome: UpdateAvailable, Latest: latest}
}

// Equal reports whether two version identifiers name the same version
// once a leading v prefix is stripped from either side.
func Equal(a, b string) bool {
	a = Strip(a)
	b = Strip(b)
	return a != "" && a == b
}

// Strip returns the version without a leading v prefix. This is the
// form recorded in installation metadata.
func Strip(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// Latest returns the highest version-ordered tag. Tags are ordered by
// semantic version where valid; tags that do not parse as semver sort
// below all valid ones, lexically among themselves. Returns false when
// the list is empty.
func Latest(tags []string) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}
	sorted := append([]string(nil), tags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi := normalize(sorted[i])
		vj := normalize(sorted[j])
		if vi == "" && vj == "" {
			return sorted[i] > sorted[j]
		}
		if vi == "" || vj == "" {
			return vi != ""
		}
		return semver.Compare(vi, vj) > 0
	})
	return sorted[0], true
}

// Match finds the repository tag that names the given installed
// version, used as the diff base for change computation.
func Match(tags []string, version string) (string, bool) {
	for _, t := range tags {
		if Equal(t, version) {
			return t, true
		}
	}
	return "", false
}

func normalize(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
