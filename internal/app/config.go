package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JoblistPath string

	ProfilePath string
	ProfileName string

	Executor        string
	ErrorStrategy   string
	MaxRetries      int
	Queue           string
	Memory          int
	MemoryUnits     string
	Time            int
	TimeUnits       string
	CPUs            int
	QueueSize       int
	WorkDir         string
	ProjectName     string
	Executable      string
	RemoveLogs      bool
	ForceRemoveLogs bool

	SwitchToLocal    bool
	RetryIncreaseMem bool
	AbsPaths         bool
	InstallMissing   bool
	SkipEngineCheck  bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// SetFlags names the flags that were explicitly passed on the command
	// line, so they override profile values instead of flag defaults doing so.
	SetFlags map[string]bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.JoblistPath == "" {
		return nil, errors.New("JoblistPath is a required configuration field and cannot be empty")
	}
	if cfg.ProfileName != "" && cfg.ProfilePath == "" {
		return nil, errors.New("a profile name was given without a profile path")
	}
	if cfg.ProfilePath != "" && cfg.ProfileName == "" {
		return nil, errors.New("a profile path was given without a profile name")
	}
	if cfg.SetFlags == nil {
		cfg.SetFlags = map[string]bool{}
	}
	return &cfg, nil
}
