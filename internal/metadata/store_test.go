package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsErrNotFound(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if _, err := st.Load(); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), ".svkup", "state.json"))
	m := New("/repo")
	m.AddSkills("beta", "alpha", "alpha")
	m.InstalledVersion = "1.2.0"
	m.Touch(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := st.Save(m); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SourceRepoPath != "/repo" {
		t.Errorf("sourceRepoPath = %q", loaded.SourceRepoPath)
	}
	if loaded.InstalledVersion != "1.2.0" {
		t.Errorf("installedVersion = %q", loaded.InstalledVersion)
	}
	if got := strings.Join(loaded.InstalledSkills, ","); got != "alpha,beta" {
		t.Errorf("installedSkills = %q, want sorted dedup", got)
	}
	if loaded.InstalledAt != "2026-03-01T12:00:00Z" {
		t.Errorf("installedAt = %q", loaded.InstalledAt)
	}
}

func TestFirstRunRecordHasUnknownVersion(t *testing.T) {
	m := New("/repo")
	if m.InstalledVersion != VersionUnknown {
		t.Fatalf("installedVersion = %q, want %q", m.InstalledVersion, VersionUnknown)
	}
	if m.InstalledSkills == nil || len(m.InstalledSkills) != 0 {
		t.Fatalf("installedSkills = %#v, want empty set", m.InstalledSkills)
	}
}

func TestUnknownFieldsSurviveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	doc := `{
  "sourceRepoPath": "/repo",
  "installedVersion": "1.0.0",
  "installedSkills": ["alpha"],
  "installedAt": "2026-01-01T00:00:00Z",
  "futureField": {"nested": true}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	st := NewStore(path)
	m, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m.InstalledVersion = "1.1.0"
	if err := st.Save(m); err != nil {
		t.Fatalf("save: %v", err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("parse saved state: %v", err)
	}
	if _, ok := raw["futureField"]; !ok {
		t.Error("futureField dropped on save")
	}
	if string(raw["installedVersion"]) != `"1.1.0"` {
		t.Errorf("installedVersion = %s", raw["installedVersion"])
	}
}

func TestSaveLeavesPriorStateIntactOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	st := NewStore(path)
	if err := st.Save(New("/repo")); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	before, _ := os.ReadFile(path)

	// A record with no repo path is rejected before any write happens.
	if err := st.Save(Metadata{}); err == nil {
		t.Fatal("expected schema error")
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("failed save mutated the prior state file")
	}
}

func TestLoadRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := NewStore(path).Load()
	if err == nil || !strings.Contains(err.Error(), "DOC_META_PARSE") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestPendingSkillsOmittedWhenEmpty(t *testing.T) {
	m := New("/repo")
	blob, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(blob), "pendingSkills") {
		t.Errorf("empty pendingSkills serialized: %s", blob)
	}
	m.PendingSkills = []string{"alpha"}
	blob, _ = json.Marshal(m)
	if !strings.Contains(string(blob), "pendingSkills") {
		t.Errorf("pendingSkills missing: %s", blob)
	}
}
