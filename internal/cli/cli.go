package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/nfbatch/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("nfbatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
nfbatch - Run a batch of independent shell commands through Nextflow.

Usage:
  nfbatch [options] [JOBLIST_PATH]

Arguments:
  JOBLIST_PATH
    Path to a text file with one shell command per line. Blank lines and
    lines starting with '#' are skipped.

Options:
`)
		flagSet.PrintDefaults()
	}

	joblistFlag := flagSet.String("joblist", "", "Path to the joblist file.")
	jFlag := flagSet.String("j", "", "Path to the joblist file (shorthand).")

	profileFlag := flagSet.String("profile", "", "Path to an HCL profile file or directory.")
	profileNameFlag := flagSet.String("profile-name", "", "Name of the profile to apply.")

	executorFlag := flagSet.String("executor", "local", "Nextflow executor. Options: 'local', 'slurm', 'lsf', 'sge', 'pbs', 'pbspro', 'condor', 'nqsii', 'moab'.")
	errorStrategyFlag := flagSet.String("error-strategy", "retry", "Per-process error strategy. Options: 'retry', 'ignore', 'terminate', 'finish'.")
	maxRetriesFlag := flagSet.Int("max-retries", 3, "Retry count used by the 'retry' error strategy.")
	queueFlag := flagSet.String("queue", "batch", "Batch queue to submit jobs to.")
	memoryFlag := flagSet.Int("memory", 10, "Per-process memory limit.")
	memoryUnitsFlag := flagSet.String("memory-units", "GB", "Memory limit unit. Options: 'B', 'KB', 'MB', 'GB', 'TB'.")
	timeFlag := flagSet.Int("time", 1, "Per-process time limit.")
	timeUnitsFlag := flagSet.String("time-units", "h", "Time limit unit. Options: 's', 'm', 'h', 'd'.")
	cpusFlag := flagSet.Int("cpus", 1, "Per-process cpu count.")
	queueSizeFlag := flagSet.Int("queue-size", 100, "Maximum number of jobs the engine keeps in flight.")
	wdFlag := flagSet.String("wd", "", "Directory the project directory is created under. Defaults to the current directory.")
	projectNameFlag := flagSet.String("project-name", "", "Name of the per-run project directory.")
	executableFlag := flagSet.String("executable", "", "Path to the nextflow executable. Defaults to 'nextflow' on $PATH.")

	removeLogsFlag := flagSet.Bool("remove-logs", false, "Remove the project directory after a successful run.")
	forceRemoveLogsFlag := flagSet.Bool("force-remove-logs", false, "Remove the project directory after every run.")
	switchToLocalFlag := flagSet.Bool("switch-to-local", false, "Fall back to the local executor when the requested one is not accessible.")
	retryIncreaseMemFlag := flagSet.Bool("retry-increase-mem", false, "Scale the memory limit by the attempt number on retries.")
	absPathsFlag := flagSet.Bool("abs-paths", false, "Rewrite relative paths in jobs to absolute paths before execution.")
	installMissingFlag := flagSet.Bool("install-missing", false, "Download the nextflow launcher when no executable is found.")
	noEngineCheckFlag := flagSet.Bool("no-engine-check", false, "Skip the nextflow executable check at startup.")

	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *joblistFlag != "" {
		path = *joblistFlag
	} else if *jFlag != "" {
		path = *jFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Joblist path determined.", "path", path)

	if path == "" {
		slog.Debug("No joblist path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	setFlags := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	config, err := app.NewConfig(app.Config{
		JoblistPath:      path,
		ProfilePath:      *profileFlag,
		ProfileName:      *profileNameFlag,
		Executor:         *executorFlag,
		ErrorStrategy:    *errorStrategyFlag,
		MaxRetries:       *maxRetriesFlag,
		Queue:            *queueFlag,
		Memory:           *memoryFlag,
		MemoryUnits:      *memoryUnitsFlag,
		Time:             *timeFlag,
		TimeUnits:        *timeUnitsFlag,
		CPUs:             *cpusFlag,
		QueueSize:        *queueSizeFlag,
		WorkDir:          *wdFlag,
		ProjectName:      *projectNameFlag,
		Executable:       *executableFlag,
		RemoveLogs:       *removeLogsFlag,
		ForceRemoveLogs:  *forceRemoveLogsFlag,
		SwitchToLocal:    *switchToLocalFlag,
		RetryIncreaseMem: *retryIncreaseMemFlag,
		AbsPaths:         *absPathsFlag,
		InstallMissing:   *installMissingFlag,
		SkipEngineCheck:  *noEngineCheckFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		HealthcheckPort:  *healthPortFlag,
		SetFlags:         setFlags,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
