// Package metadata persists the installation record: which source
// repository is in use, which version is installed, and which skills
// this installation tracks.
package metadata

import (
	"encoding/json"
	"sort"
	"time"
)

// VersionUnknown is the sentinel recorded before the first successful
// update, when no installed version is known yet.
const VersionUnknown = "unknown"

// Metadata is the single persistent entity. InstalledAt is diagnostic
// only and never consulted by comparison logic. PendingSkills carries
// the skills whose reinstall failed in the previous run so the next run
// retries exactly those.
type Metadata struct {
	SourceRepoPath   string
	InstalledVersion string
	InstalledSkills  []string
	InstalledAt      string
	PendingSkills    []string

	// extra round-trips fields written by newer versions of the tool.
	extra map[string]json.RawMessage
}

// New returns the first-run record for a freshly supplied repository
// path: version unknown, no skills tracked.
func New(repoPath string) Metadata {
	return Metadata{
		SourceRepoPath:   repoPath,
		InstalledVersion: VersionUnknown,
		InstalledSkills:  []string{},
	}
}

// AddSkills unions names into the tracked skill set.
func (m *Metadata) AddSkills(names ...string) {
	seen := make(map[string]struct{}, len(m.InstalledSkills)+len(names))
	for _, s := range m.InstalledSkills {
		seen[s] = struct{}{}
	}
	for _, s := range names {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		m.InstalledSkills = append(m.InstalledSkills, s)
	}
	sort.Strings(m.InstalledSkills)
}

// HasSkill reports whether name is tracked as installed.
func (m *Metadata) HasSkill(name string) bool {
	for _, s := range m.InstalledSkills {
		if s == name {
			return true
		}
	}
	return false
}

// Touch stamps the record with the time of the last successful update.
func (m *Metadata) Touch(now time.Time) {
	m.InstalledAt = now.UTC().Format(time.RFC3339)
}

var knownKeys = []string{
	"sourceRepoPath",
	"installedVersion",
	"installedSkills",
	"installedAt",
	"pendingSkills",
}

// MarshalJSON emits the documented schema and re-emits any unknown
// fields observed at load time.
func (m Metadata) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(m.extra)+len(knownKeys))
	for k, v := range m.extra {
		doc[k] = v
	}
	doc["sourceRepoPath"] = m.SourceRepoPath
	doc["installedVersion"] = m.InstalledVersion
	doc["installedSkills"] = nonNil(m.InstalledSkills)
	doc["installedAt"] = m.InstalledAt
	if len(m.PendingSkills) > 0 {
		doc["pendingSkills"] = m.PendingSkills
	} else {
		delete(doc, "pendingSkills")
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the documented fields and retains everything
// else verbatim, so state written by a newer tool survives a save.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if raw, ok := doc["sourceRepoPath"]; ok {
		if err := json.Unmarshal(raw, &m.SourceRepoPath); err != nil {
			return err
		}
	}
	if raw, ok := doc["installedVersion"]; ok {
		if err := json.Unmarshal(raw, &m.InstalledVersion); err != nil {
			return err
		}
	}
	if raw, ok := doc["installedSkills"]; ok {
		if err := json.Unmarshal(raw, &m.InstalledSkills); err != nil {
			return err
		}
	}
	if raw, ok := doc["installedAt"]; ok {
		if err := json.Unmarshal(raw, &m.InstalledAt); err != nil {
			return err
		}
	}
	if raw, ok := doc["pendingSkills"]; ok {
		if err := json.Unmarshal(raw, &m.PendingSkills); err != nil {
			return err
		}
	}
	for _, k := range knownKeys {
		delete(doc, k)
	}
	if len(doc) > 0 {
		m.extra = doc
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
