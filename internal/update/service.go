// Package update orchestrates one run of the skill updater: load or
// create metadata, fetch and compare versions, resolve the change set,
// reinstall changed skills, persist new state.
package update

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"svkup/internal/audit"
	"svkup/internal/changeset"
	"svkup/internal/gitrepo"
	"svkup/internal/installer"
	"svkup/internal/metadata"
	"svkup/internal/prompt"
	"svkup/internal/vercmp"
)

// Service wires the run. OpenRepo and NewInstaller are factories
// because the repository path is only known after metadata is loaded
// or prompted for.
type Service struct {
	ProjectRoot  string
	Store        *metadata.Store
	OpenRepo     func(repoPath string) gitrepo.Repository
	NewInstaller func(repoPath string) installer.Installer
	Prompter     prompt.Prompter
	Audit        *audit.Logger
	Log          *log.Logger

	// DefaultRepo seeds the source repository on a first run without
	// prompting (flag or config). Empty means ask the operator.
	DefaultRepo string
	NotesLimit  int
	// CheckOnly stops after displaying the plan: no checkout, no
	// installs, no state mutation.
	CheckOnly bool
}

func (s *Service) Run(ctx context.Context) (Report, error) {
	s.enter(StepCheckingMetadata)
	meta, err := s.loadOrCreateMetadata()
	if err != nil {
		return Report{}, err
	}
	repo := s.OpenRepo(meta.SourceRepoPath)

	s.enter(StepFetchingRemote)
	if err := repo.FetchTags(ctx); err != nil {
		return Report{}, s.fail(StepFetchingRemote, err)
	}
	tags, err := repo.Tags(ctx)
	if err != nil {
		return Report{}, s.fail(StepFetchingRemote, err)
	}

	s.enter(StepComparingVersions)
	dec := vercmp.Decide(meta.InstalledVersion, tags)
	switch dec.Outcome {
	case vercmp.NoReleases:
		s.infof("source repository has no releases")
		return Report{Outcome: OutcomeNoReleases}, nil
	case vercmp.UpToDate:
		if len(meta.PendingSkills) == 0 {
			s.infof("already up to date at %s", meta.InstalledVersion)
			return Report{Outcome: OutcomeUpToDate, From: meta.InstalledVersion, To: dec.Latest}, nil
		}
		s.infof("up to date at %s, retrying %d pending skill(s)", meta.InstalledVersion, len(meta.PendingSkills))
	}
	latest := dec.Latest

	s.enter(StepResolvingChanges)
	installable, err := repo.SkillDirs(ctx, latest)
	if err != nil {
		return Report{}, s.fail(StepResolvingChanges, err)
	}

	var cs changeset.ChangeSet
	var notes []string
	if dec.Outcome == vercmp.UpdateAvailable {
		var changed []string
		if baseTag, ok := vercmp.Match(tags, meta.InstalledVersion); ok {
			changed, err = repo.ChangedTopLevelDirs(ctx, baseTag, latest)
			if err != nil {
				return Report{}, s.fail(StepResolvingChanges, err)
			}
			notes, _ = repo.ReleaseNotes(ctx, baseTag, latest, s.NotesLimit)
		} else {
			// No usable diff base: first run, or the installed tag no
			// longer exists upstream. Every installable skill counts
			// as changed.
			changed = installable
			notes, _ = repo.ReleaseNotes(ctx, "", latest, s.NotesLimit)
		}
		cs = changeset.Resolve(changed, meta.InstalledSkills, installable)
	}
	toUpdate, missing := withPending(cs.Update, meta.PendingSkills, installable)
	for _, skill := range missing {
		s.warnf("skill %s is no longer present in the source repository, skipping", skill)
	}

	if s.Prompter != nil {
		from := meta.InstalledVersion
		if from == metadata.VersionUnknown {
			from = ""
		}
		s.Prompter.ShowPlan(prompt.Plan{From: from, To: latest, Update: toUpdate, Skip: cs.Skip, Notes: notes})
	}
	if s.CheckOnly {
		return Report{
			Outcome:   OutcomeUpdateAvailable,
			From:      meta.InstalledVersion,
			To:        vercmp.Strip(latest),
			Updated:   toUpdate,
			Skipped:   cs.Skip,
			Missing:   missing,
			Notes:     notes,
			CheckOnly: true,
		}, nil
	}

	s.enter(StepReinstalling)
	if dec.Outcome == vercmp.UpdateAvailable {
		if err := repo.Checkout(ctx, latest); err != nil {
			return Report{}, s.fail(StepReinstalling, err)
		}
	}
	inst := s.NewInstaller(meta.SourceRepoPath)
	var updated []string
	var failed []SkillFailure
	for _, skill := range toUpdate {
		if err := inst.Install(ctx, skill, s.ProjectRoot); err != nil {
			s.warnf("install failed for %s: %v", skill, err)
			s.event(audit.Event{Step: string(StepReinstalling), Status: "fail", Skill: skill, Message: err.Error()})
			failed = append(failed, SkillFailure{Skill: skill, Error: err.Error()})
			continue
		}
		s.infof("reinstalled %s", skill)
		s.event(audit.Event{Step: string(StepReinstalling), Status: "ok", Skill: skill})
		updated = append(updated, skill)
	}

	// Partial success is still progress: persist the new version and
	// the successes so the next run retries only what failed.
	s.enter(StepPersistingState)
	prev := meta.InstalledVersion
	meta.InstalledVersion = vercmp.Strip(latest)
	meta.AddSkills(updated...)
	meta.PendingSkills = failedSkills(failed)
	meta.Touch(time.Now())
	if err := s.Store.Save(meta); err != nil {
		return Report{}, s.fail(StepPersistingState,
			fmt.Errorf("UPD_STATE_SAVE: skills were updated on disk but the tracking state could not be saved; rerun once the cause is fixed: %w", err))
	}

	sort.Strings(updated)
	return Report{
		Outcome: OutcomeUpdated,
		From:    prev,
		To:      meta.InstalledVersion,
		Updated: updated,
		Failed:  failed,
		Skipped: cs.Skip,
		Missing: missing,
		Notes:   notes,
	}, nil
}

// loadOrCreateMetadata returns the installation record, creating and
// persisting a first-run record (version unknown, no skills) before
// anything else happens, so a failed first update still leaves a valid
// re-runnable state file pointing at the right repository.
func (s *Service) loadOrCreateMetadata() (metadata.Metadata, error) {
	meta, err := s.Store.Load()
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, metadata.ErrNotFound) {
		return metadata.Metadata{}, s.fail(StepCheckingMetadata, err)
	}
	repoPath := s.DefaultRepo
	if repoPath == "" {
		if s.Prompter == nil {
			return metadata.Metadata{}, s.fail(StepCheckingMetadata,
				fmt.Errorf("UPD_NO_SOURCE: no source repository configured and no prompt available"))
		}
		repoPath, err = s.Prompter.RepoPath()
		if err != nil {
			return metadata.Metadata{}, s.fail(StepCheckingMetadata, err)
		}
	}
	meta = metadata.New(repoPath)
	if err := s.Store.Save(meta); err != nil {
		return metadata.Metadata{}, s.fail(StepCheckingMetadata, err)
	}
	s.infof("tracking source repository %s", repoPath)
	return meta, nil
}

// withPending unions the skills left over from a previously failed run
// into the change set, dropping (and reporting) any that no longer
// exist as installable skills.
func withPending(update, pending, installable []string) (toUpdate, missing []string) {
	in := make(map[string]struct{}, len(installable))
	for _, s := range installable {
		in[s] = struct{}{}
	}
	seen := map[string]struct{}{}
	toUpdate = []string{}
	missing = []string{}
	for _, s := range append(append([]string{}, update...), pending...) {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := in[s]; ok {
			toUpdate = append(toUpdate, s)
		} else {
			missing = append(missing, s)
		}
	}
	sort.Strings(toUpdate)
	sort.Strings(missing)
	return toUpdate, missing
}

func failedSkills(failures []SkillFailure) []string {
	if len(failures) == 0 {
		return nil
	}
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.Skill)
	}
	sort.Strings(out)
	return out
}

func (s *Service) enter(step Step) {
	s.debugf("step: %s", step)
	s.event(audit.Event{Step: string(step), Status: "ok"})
}

func (s *Service) fail(step Step, err error) error {
	s.event(audit.Event{Step: string(step), Status: "fail", Message: err.Error()})
	return &RunError{Step: step, Err: err}
}

func (s *Service) event(ev audit.Event) {
	if s.Audit != nil {
		_ = s.Audit.Log(ev)
	}
}

func (s *Service) infof(format string, args ...any) {
	if s.Log != nil {
		s.Log.Infof(format, args...)
	}
}

func (s *Service) warnf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Warnf(format, args...)
	}
}

func (s *Service) debugf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Debugf(format, args...)
	}
}
