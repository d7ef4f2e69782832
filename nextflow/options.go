package nextflow

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultExecutable is the engine binary resolved through $PATH when no
// explicit path override is given.
const DefaultExecutable = "nextflow"

// MemoryUnit is the unit attached to the per-process memory limit.
type MemoryUnit string

const (
	MemoryB  MemoryUnit = "B"
	MemoryKB MemoryUnit = "KB"
	MemoryMB MemoryUnit = "MB"
	MemoryGB MemoryUnit = "GB"
	MemoryTB MemoryUnit = "TB"
)

// TimeUnit is the unit attached to the per-process time limit.
type TimeUnit string

const (
	TimeSeconds TimeUnit = "s"
	TimeMinutes TimeUnit = "m"
	TimeHours   TimeUnit = "h"
	TimeDays    TimeUnit = "d"
)

// Error strategies understood by the engine's errorStrategy directive.
const (
	StrategyRetry     = "retry"
	StrategyIgnore    = "ignore"
	StrategyTerminate = "terminate"
	StrategyFinish    = "finish"
)

var errorStrategies = map[string]bool{
	StrategyRetry:     true,
	StrategyIgnore:    true,
	StrategyTerminate: true,
	StrategyFinish:    true,
}

var memoryUnits = map[MemoryUnit]uint64{
	MemoryB:  1,
	MemoryKB: 1 << 10,
	MemoryMB: 1 << 20,
	MemoryGB: 1 << 30,
	MemoryTB: 1 << 40,
}

var timeUnits = map[TimeUnit]bool{
	TimeSeconds: true,
	TimeMinutes: true,
	TimeHours:   true,
	TimeDays:    true,
}

// Nextflow drives one engine invocation. The configuration is immutable once
// New returns; Execute may be called repeatedly against the same project
// directory.
type Nextflow struct {
	executable       string
	executor         Executor
	errorStrategy    string
	maxRetries       int
	queue            string
	memory           int
	memoryUnit       MemoryUnit
	timeLimit        int
	timeUnit         TimeUnit
	cpus             int
	queueSize        int
	removeLogs       bool
	forceRemoveLogs  bool
	wd               string
	projectName      string
	switchToLocal    bool
	retryIncreaseMem bool
	skipEngineCheck  bool
	engineChecked    bool

	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer

	projectDir string
}

// Option customizes a Nextflow runner at construction time.
type Option func(*Nextflow)

// WithExecutable overrides the path to the engine executable.
func WithExecutable(path string) Option {
	return func(nf *Nextflow) { nf.executable = path }
}

// WithExecutor selects the engine executor kind.
func WithExecutor(e Executor) Option {
	return func(nf *Nextflow) { nf.executor = e }
}

// WithErrorStrategy sets the engine's per-process error strategy.
func WithErrorStrategy(s string) Option {
	return func(nf *Nextflow) { nf.errorStrategy = s }
}

// WithMaxRetries sets the retry count used by the retry error strategy.
func WithMaxRetries(n int) Option {
	return func(nf *Nextflow) { nf.maxRetries = n }
}

// WithQueue names the batch queue jobs are submitted to.
func WithQueue(q string) Option {
	return func(nf *Nextflow) { nf.queue = q }
}

// WithMemory sets the per-process memory limit.
func WithMemory(n int, unit MemoryUnit) Option {
	return func(nf *Nextflow) { nf.memory, nf.memoryUnit = n, unit }
}

// WithTime sets the per-process time limit.
func WithTime(n int, unit TimeUnit) Option {
	return func(nf *Nextflow) { nf.timeLimit, nf.timeUnit = n, unit }
}

// WithCPUs sets the per-process cpu count.
func WithCPUs(n int) Option {
	return func(nf *Nextflow) { nf.cpus = n }
}

// WithQueueSize caps how many jobs the engine keeps in flight at once.
func WithQueueSize(n int) Option {
	return func(nf *Nextflow) { nf.queueSize = n }
}

// WithRemoveLogs removes the project directory after a successful run.
func WithRemoveLogs(remove bool) Option {
	return func(nf *Nextflow) { nf.removeLogs = remove }
}

// WithForceRemoveLogs removes the project directory after every run,
// successful or not.
func WithForceRemoveLogs(remove bool) Option {
	return func(nf *Nextflow) { nf.forceRemoveLogs = remove }
}

// WithWorkDir sets the directory the project directory is created under.
// Defaults to the current working directory.
func WithWorkDir(dir string) Option {
	return func(nf *Nextflow) { nf.wd = dir }
}

// WithProjectName names the per-run project directory.
func WithProjectName(name string) Option {
	return func(nf *Nextflow) { nf.projectName = name }
}

// WithSwitchToLocal degrades to the local executor, with a warning, when the
// requested cluster executor is not accessible instead of failing fast.
func WithSwitchToLocal(switchToLocal bool) Option {
	return func(nf *Nextflow) { nf.switchToLocal = switchToLocal }
}

// WithRetryIncreaseMem scales the memory limit by the attempt number on each
// retry, so transient out-of-memory failures get more room.
func WithRetryIncreaseMem(increase bool) Option {
	return func(nf *Nextflow) { nf.retryIncreaseMem = increase }
}

// WithoutEngineCheck skips the engine executable check at construction time.
// The check still runs before the first execution.
func WithoutEngineCheck() Option {
	return func(nf *Nextflow) { nf.skipEngineCheck = true }
}

// WithLogger attaches a logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(nf *Nextflow) { nf.logger = logger }
}

// WithStdout redirects the engine child process stdout.
func WithStdout(w io.Writer) Option {
	return func(nf *Nextflow) { nf.stdout = w }
}

// WithStderr redirects the engine child process stderr.
func WithStderr(w io.Writer) Option {
	return func(nf *Nextflow) { nf.stderr = w }
}

// New builds a Nextflow runner and fails fast on any invalid parameter:
// unknown executor, error strategy, or unit, non-positive limits, a missing
// working directory, or an unreachable engine executable.
func New(opts ...Option) (*Nextflow, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current directory: %w", err)
	}

	nf := &Nextflow{
		executable:    DefaultExecutable,
		executor:      ExecutorLocal,
		errorStrategy: StrategyRetry,
		maxRetries:    3,
		queue:         "batch",
		memory:        10,
		memoryUnit:    MemoryGB,
		timeLimit:     1,
		timeUnit:      TimeHours,
		cpus:          1,
		queueSize:     100,
		wd:            cwd,
		projectName:   fmt.Sprintf("nextflow_project_at_%d", time.Now().Unix()),
		stdout:        os.Stdout,
		stderr:        os.Stderr,
	}
	for _, opt := range opts {
		opt(nf)
	}
	if nf.logger == nil {
		nf.logger = slog.Default()
	}

	if err := nf.validate(); err != nil {
		return nil, err
	}

	absWD, err := filepath.Abs(nf.wd)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory %q: %w", nf.wd, err)
	}
	nf.wd = absWD
	nf.projectDir = filepath.Join(nf.wd, nf.projectName)

	if !nf.skipEngineCheck {
		if err := nf.checkEngine(); err != nil {
			return nil, err
		}
	}

	if nf.executor == ExecutorLocal {
		nf.warnIfOversubscribed()
	}

	return nf, nil
}

func (nf *Nextflow) validate() error {
	if !errorStrategies[nf.errorStrategy] {
		return fmt.Errorf("unknown error strategy %q", nf.errorStrategy)
	}
	if _, ok := memoryUnits[nf.memoryUnit]; !ok {
		return fmt.Errorf("unknown memory unit %q", nf.memoryUnit)
	}
	if !timeUnits[nf.timeUnit] {
		return fmt.Errorf("unknown time unit %q", nf.timeUnit)
	}
	if nf.maxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", nf.maxRetries)
	}
	if nf.memory < 1 {
		return fmt.Errorf("memory limit must be positive, got %d", nf.memory)
	}
	if nf.timeLimit < 1 {
		return fmt.Errorf("time limit must be positive, got %d", nf.timeLimit)
	}
	if nf.cpus < 1 {
		return fmt.Errorf("cpu count must be positive, got %d", nf.cpus)
	}
	if nf.queueSize < 1 {
		return fmt.Errorf("queue size must be positive, got %d", nf.queueSize)
	}
	if nf.projectName == "" {
		return errors.New("project name must not be empty")
	}

	info, err := os.Stat(nf.wd)
	if err != nil {
		return fmt.Errorf("working directory %q is not accessible: %w", nf.wd, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory %q is not a directory", nf.wd)
	}

	if err := CheckExecutor(nf.executor); err != nil {
		if nf.switchToLocal && errors.Is(err, ErrExecutorUnavailable) {
			nf.logger.Warn("Requested executor is not accessible, switching to local.",
				"requested", string(nf.executor))
			nf.executor = ExecutorLocal
			return nil
		}
		return err
	}
	return nil
}

// checkEngine verifies the engine executable is reachable. Explicit path
// overrides are resolved to absolute paths; the default name is resolved
// through $PATH.
func (nf *Nextflow) checkEngine() error {
	if filepath.Base(nf.executable) != nf.executable {
		abs, err := filepath.Abs(nf.executable)
		if err != nil {
			return fmt.Errorf("failed to resolve engine executable path %q: %w", nf.executable, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("engine executable %q is not accessible: %w", abs, err)
		}
		if info.IsDir() {
			return fmt.Errorf("engine executable %q is a directory", abs)
		}
		nf.executable = abs
	} else {
		resolved, err := exec.LookPath(nf.executable)
		if err != nil {
			return fmt.Errorf("engine executable %q not found on $PATH "+
				"(see https://www.nextflow.io for installation): %w", nf.executable, err)
		}
		nf.executable = resolved
	}
	nf.engineChecked = true
	return nil
}

// ProjectDir returns the absolute path of the per-run project directory.
func (nf *Nextflow) ProjectDir() string {
	return nf.projectDir
}

// ExecutorKind returns the executor the runner settled on, which may differ
// from the requested one when the local fallback was taken.
func (nf *Nextflow) ExecutorKind() Executor {
	return nf.executor
}
