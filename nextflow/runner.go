package nextflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Pipeline outcomes. Execute never reports anything finer grained; callers
// inspect the engine's own logs for per-task details.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// executeConfig carries per-execution overrides.
type executeConfig struct {
	configFile string
}

// ExecuteOption customizes a single Execute call.
type ExecuteOption func(*executeConfig)

// WithConfigFile uses a pre-existing engine configuration file instead of
// generating one.
func WithConfigFile(path string) ExecuteOption {
	return func(ec *executeConfig) { ec.configFile = path }
}

// Execute runs the joblist through the engine and blocks until it finishes.
// The returned status is ExitSuccess or ExitFailure; an engine failure is a
// value, not an error. Errors are reserved for local problems: an invalid
// joblist, an unwritable project directory, or a missing executable.
func (nf *Nextflow) Execute(ctx context.Context, jobs []string, opts ...ExecuteOption) (int, error) {
	var ec executeConfig
	for _, opt := range opts {
		opt(&ec)
	}

	if !nf.engineChecked {
		if err := nf.checkEngine(); err != nil {
			return ExitFailure, err
		}
	}

	if err := os.MkdirAll(nf.projectDir, 0o755); err != nil {
		return ExitFailure, fmt.Errorf("failed to create project directory %q: %w", nf.projectDir, err)
	}

	joblistPath, err := nf.writeJoblist(jobs)
	if err != nil {
		return ExitFailure, err
	}
	scriptPath, err := nf.writeScript(joblistPath)
	if err != nil {
		return ExitFailure, err
	}

	configPath := ec.configFile
	if configPath == "" {
		configPath, err = nf.writeConfig()
		if err != nil {
			return ExitFailure, err
		}
	} else {
		configPath, err = filepath.Abs(configPath)
		if err != nil {
			return ExitFailure, fmt.Errorf("failed to resolve config file %q: %w", ec.configFile, err)
		}
		if _, err := os.Stat(configPath); err != nil {
			return ExitFailure, fmt.Errorf("config file override %q is not accessible: %w", configPath, err)
		}
	}

	nf.logger.Info("Starting nextflow pipeline.",
		"project", nf.projectName,
		"executor", string(nf.executor),
		"jobs", len(jobs),
	)

	cmd := exec.CommandContext(ctx, nf.executable, scriptPath, "-c", configPath)
	cmd.Dir = nf.projectDir
	cmd.Stdout = nf.stdout
	cmd.Stderr = nf.stderr

	status := ExitSuccess
	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			nf.cleanup(ExitFailure)
			return ExitFailure, fmt.Errorf("pipeline canceled: %w", ctx.Err())
		case errors.As(runErr, &exitErr):
			status = ExitFailure
			nf.logger.Warn("Nextflow pipeline failed.",
				"project", nf.projectName,
				"exit_code", exitErr.ExitCode(),
			)
		default:
			nf.cleanup(ExitFailure)
			return ExitFailure, fmt.Errorf("failed to run engine executable %q: %w", nf.executable, runErr)
		}
	}

	nf.cleanup(status)

	if status == ExitSuccess {
		nf.logger.Info("Nextflow pipeline finished.", "project", nf.projectName)
	}
	return status, nil
}

// cleanup applies the log-removal flags: force removal drops the project
// directory after every outcome, plain removal only after success.
func (nf *Nextflow) cleanup(status int) {
	if !nf.forceRemoveLogs && !(nf.removeLogs && status == ExitSuccess) {
		return
	}
	if err := os.RemoveAll(nf.projectDir); err != nil {
		nf.logger.Warn("Failed to remove project directory.",
			"dir", nf.projectDir, "error", err)
		return
	}
	nf.logger.Debug("Removed project directory.", "dir", nf.projectDir)
}
