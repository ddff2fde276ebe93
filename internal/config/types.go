package config

// Config is the v1 schema for .svkup/config.toml at a project root.
// Every field has a working default; the file exists so operators can
// pin a source repository and tune output.
type Config struct {
	Version int           `toml:"version"`
	Source  SourceConfig  `toml:"source"`
	Storage StorageConfig `toml:"storage"`
	Update  UpdateConfig  `toml:"update"`
	Logging LoggingConfig `toml:"logging"`
}

// SourceConfig pins the skills source repository so first runs need no
// interactive prompt.
type SourceConfig struct {
	Repo string `toml:"repo,omitempty"`
}

type StorageConfig struct {
	StateFile string `toml:"state_file"`
	AuditLog  string `toml:"audit_log"`
}

type UpdateConfig struct {
	// EntryPoint is the file marking a top-level repository directory
	// as an installable skill, and the script invoked to install it.
	EntryPoint string `toml:"entry_point"`
	// NotesLimit caps the release-note excerpt shown in the plan.
	NotesLimit int `toml:"notes_limit"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}
