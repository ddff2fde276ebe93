package update

import "fmt"

// Step identifies a phase of the run. Failures carry the step they
// originated in.
type Step string

const (
	StepCheckingMetadata  Step = "checking-metadata"
	StepFetchingRemote    Step = "fetching-remote"
	StepComparingVersions Step = "comparing-versions"
	StepResolvingChanges  Step = "resolving-changes"
	StepReinstalling      Step = "reinstalling"
	StepPersistingState   Step = "persisting-state"
)

// RunError is an unrecoverable failure, attributed to the step that
// raised it.
type RunError struct {
	Step Step
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("update failed while %s: %v", e.Step, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

type Outcome string

const (
	// OutcomeUpToDate: installed version equals the latest tag and
	// nothing is pending. No state mutation occurred.
	OutcomeUpToDate Outcome = "up-to-date"
	// OutcomeNoReleases: the source repository has no tags. Terminal,
	// not an error; no state mutation occurred.
	OutcomeNoReleases Outcome = "no-releases"
	// OutcomeUpdateAvailable: reported by check-only runs that stop
	// after the plan.
	OutcomeUpdateAvailable Outcome = "update-available"
	// OutcomeUpdated: the run reinstalled (or version-bumped past) the
	// change set and persisted new state. Failed may be non-empty.
	OutcomeUpdated Outcome = "updated"
)

// SkillFailure attributes one failed install to its skill.
type SkillFailure struct {
	Skill string `json:"skill"`
	Error string `json:"error"`
}

// Report summarizes a run for the operator.
type Report struct {
	Outcome   Outcome        `json:"outcome"`
	From      string         `json:"from,omitempty"`
	To        string         `json:"to,omitempty"`
	Updated   []string       `json:"updated,omitempty"`
	Failed    []SkillFailure `json:"failed,omitempty"`
	Skipped   []string       `json:"skipped,omitempty"`
	Missing   []string       `json:"missing,omitempty"`
	Notes     []string       `json:"notes,omitempty"`
	CheckOnly bool           `json:"checkOnly,omitempty"`
}
