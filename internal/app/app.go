package app

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Run states reported by the healthcheck endpoint.
const (
	stateIdle      = "idle"
	stateRunning   = "running"
	stateSucceeded = "succeeded"
	stateFailed    = "failed"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle for a single pipeline run.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	runID  string

	mu    sync.Mutex
	state string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated, run-scoped logger.
func NewApp(outW io.Writer, cfg *Config) *App {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		cfg:    cfg,
		runID:  runID,
		state:  stateIdle,
	}
}

// RunID returns the unique identifier attached to this run's log lines.
func (a *App) RunID() string {
	return a.runID
}

func (a *App) setState(s string) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// State reports the current run state. This is primarily for the
// healthcheck endpoint and tests.
func (a *App) State() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}
