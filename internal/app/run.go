package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/nfbatch/internal/ctxlog"
	"github.com/vk/nfbatch/internal/fsutil"
	"github.com/vk/nfbatch/internal/nflog"
	"github.com/vk/nfbatch/internal/profile"
	"github.com/vk/nfbatch/nextflow"
)

// Run executes the configured pipeline and returns its binary status. An
// error is returned only for local failures (bad joblist, bad profile,
// invalid runner configuration); an engine failure is just a status of 1.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.cfg.HealthcheckPort)
	}

	jobs, err := readJoblist(a.cfg.JoblistPath)
	if err != nil {
		return nextflow.ExitFailure, err
	}
	a.logger.Debug("Joblist read.", "path", a.cfg.JoblistPath, "jobs", len(jobs))

	if a.cfg.AbsPaths {
		jobs = fsutil.AbsPathsInJoblist(jobs)
	}

	opts, err := a.buildOptions(ctx)
	if err != nil {
		return nextflow.ExitFailure, err
	}

	nf, err := nextflow.New(opts...)
	if err != nil {
		return nextflow.ExitFailure, fmt.Errorf("failed to configure nextflow runner: %w", err)
	}
	a.logger.Debug("Runner configured.", "executor", string(nf.ExecutorKind()), "project_dir", nf.ProjectDir())

	a.setState(stateRunning)
	status, err := nf.Execute(ctx, jobs)
	if err != nil {
		a.setState(stateFailed)
		return status, err
	}

	if status == nextflow.ExitSuccess {
		a.setState(stateSucceeded)
	} else {
		a.setState(stateFailed)
		a.logFailedTasks(nf.ProjectDir())
	}
	a.logger.Debug("App.Run method finished.", "status", status)
	return status, nil
}

// buildOptions layers runner options: base wiring first, then the selected
// profile, then explicitly-set command-line flags on top.
func (a *App) buildOptions(ctx context.Context) ([]nextflow.Option, error) {
	opts := []nextflow.Option{
		nextflow.WithLogger(a.logger),
		nextflow.WithStdout(a.outW),
		nextflow.WithStderr(a.outW),
	}

	if a.cfg.ProfilePath != "" {
		profiles, err := profile.Load(ctx, a.cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		p, err := profile.Get(profiles, a.cfg.ProfileName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, p.Options()...)
		a.logger.Debug("Profile applied.", "profile", a.cfg.ProfileName)
	}

	opts = append(opts, a.flagOptions()...)

	if a.cfg.InstallMissing && a.cfg.Executable == "" {
		dir := a.cfg.WorkDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve current directory: %w", err)
			}
			dir = cwd
		}
		path, err := nextflow.EnsureInstalled(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to install nextflow: %w", err)
		}
		opts = append(opts, nextflow.WithExecutable(path))
		a.logger.Info("Using nextflow executable.", "path", path)
	}

	return opts, nil
}

// flagOptions converts explicitly-set flags into runner options. Value flags
// are only applied when present on the command line; boolean flags are
// applied when true.
func (a *App) flagOptions() []nextflow.Option {
	cfg := a.cfg
	set := cfg.SetFlags

	var opts []nextflow.Option
	if set["executor"] {
		opts = append(opts, nextflow.WithExecutor(nextflow.Executor(cfg.Executor)))
	}
	if set["error-strategy"] {
		opts = append(opts, nextflow.WithErrorStrategy(cfg.ErrorStrategy))
	}
	if set["max-retries"] {
		opts = append(opts, nextflow.WithMaxRetries(cfg.MaxRetries))
	}
	if set["queue"] {
		opts = append(opts, nextflow.WithQueue(cfg.Queue))
	}
	if set["memory"] || set["memory-units"] {
		opts = append(opts, nextflow.WithMemory(cfg.Memory, nextflow.MemoryUnit(cfg.MemoryUnits)))
	}
	if set["time"] || set["time-units"] {
		opts = append(opts, nextflow.WithTime(cfg.Time, nextflow.TimeUnit(cfg.TimeUnits)))
	}
	if set["cpus"] {
		opts = append(opts, nextflow.WithCPUs(cfg.CPUs))
	}
	if set["queue-size"] {
		opts = append(opts, nextflow.WithQueueSize(cfg.QueueSize))
	}
	if set["wd"] {
		opts = append(opts, nextflow.WithWorkDir(cfg.WorkDir))
	}
	if set["project-name"] {
		opts = append(opts, nextflow.WithProjectName(cfg.ProjectName))
	}
	if set["executable"] {
		opts = append(opts, nextflow.WithExecutable(cfg.Executable))
	}
	if cfg.RemoveLogs {
		opts = append(opts, nextflow.WithRemoveLogs(true))
	}
	if cfg.ForceRemoveLogs {
		opts = append(opts, nextflow.WithForceRemoveLogs(true))
	}
	if cfg.SwitchToLocal {
		opts = append(opts, nextflow.WithSwitchToLocal(true))
	}
	if cfg.RetryIncreaseMem {
		opts = append(opts, nextflow.WithRetryIncreaseMem(true))
	}
	if cfg.SkipEngineCheck {
		opts = append(opts, nextflow.WithoutEngineCheck())
	}
	return opts
}

// logFailedTasks summarizes the engine's own log after a failed run. Best
// effort: the project directory may already be gone when log removal was
// forced.
func (a *App) logFailedTasks(projectDir string) {
	engineLog, err := nflog.Parse(projectDir)
	if err != nil {
		a.logger.Debug("Engine log analysis skipped.", "error", err)
		return
	}
	failed := engineLog.Failed()
	a.logger.Warn("Pipeline finished with failed tasks.", "failed_count", len(failed))
	for _, t := range failed {
		a.logger.Warn("Task failed.",
			"id", t.ID,
			"name", t.Name,
			"status", t.Status,
			"exit", t.ExitCode,
			"work_dir", t.WorkDir,
		)
	}
}

// readJoblist reads one shell command per line, skipping blank lines and
// '#' comments.
func readJoblist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open joblist file %q: %w", path, err)
	}
	defer f.Close()

	var jobs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		jobs = append(jobs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read joblist file %q: %w", path, err)
	}
	return jobs, nil
}
