// Package changeset computes which installed skills need reinstalling
// between two versions of the source repository. Pure set logic, no
// I/O.
package changeset

import "sort"

// ChangeSet is the per-run reinstall plan. Update holds the skills to
// reinstall; Skip holds tracked skills left untouched, exposed purely
// for operator-facing reporting.
type ChangeSet struct {
	Update []string
	Skip   []string
}

// Resolve intersects the changed top-level directories with the
// tracked skill set. When nothing is tracked yet (first run, or state
// predating per-skill tracking) the fallback is every changed directory
// that is a recognizable skill, so an empty set never silently skips an
// update. Both inputs may be unsorted; the result is sorted.
func Resolve(changed, installed, installable []string) ChangeSet {
	if len(installed) == 0 {
		return ChangeSet{Update: intersect(changed, installable)}
	}
	update := intersect(changed, installed)
	return ChangeSet{
		Update: update,
		Skip:   subtract(installed, update),
	}
}

func intersect(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, s := range b {
		in[s] = struct{}{}
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range a {
		if _, ok := in[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func subtract(a, b []string) []string {
	drop := make(map[string]struct{}, len(b))
	for _, s := range b {
		drop[s] = struct{}{}
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range a {
		if _, ok := drop[s]; ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
