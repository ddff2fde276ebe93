package config

const SchemaVersion = 1

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Storage: StorageConfig{
			StateFile: ".svkup/state.json",
			AuditLog:  ".svkup/audit.jsonl",
		},
		Update: UpdateConfig{
			EntryPoint: "install.sh",
			NotesLimit: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Normalize fills gaps in a loaded document with defaults so partial
// config files keep working.
func Normalize(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = def.Version
	}
	if cfg.Storage.StateFile == "" {
		cfg.Storage.StateFile = def.Storage.StateFile
	}
	if cfg.Storage.AuditLog == "" {
		cfg.Storage.AuditLog = def.Storage.AuditLog
	}
	if cfg.Update.EntryPoint == "" {
		cfg.Update.EntryPoint = def.Update.EntryPoint
	}
	if cfg.Update.NotesLimit == 0 {
		cfg.Update.NotesLimit = def.Update.NotesLimit
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	return cfg
}
