package nextflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Generated artifact names inside the project directory.
const (
	JoblistFileName = "joblist.txt"
	ScriptFileName  = "script.nf"
	ConfigFileName  = "config.nf"
)

// ErrEmptyJoblist is returned when Execute is called with no jobs.
var ErrEmptyJoblist = errors.New("joblist must not be empty")

// ErrBlankJob is returned when a job entry is empty or whitespace only.
var ErrBlankJob = errors.New("job must be a non-blank command string")

var configTemplate = template.Must(template.New("config").Parse(
	`// automatically generated config file for project {{.ProjectName}}
process.executor = '{{.Executor}}'
process.queue = '{{.Queue}}'
process.memory = '{{.Memory}}'
process.time = '{{.Time}}'
process.cpus = '{{.CPUs}}'
executor.queueSize = {{.QueueSize}}
`))

var scriptTemplate = template.Must(template.New("script").Parse(
	`// automatically generated script for project {{.ProjectName}}
joblist_path = '{{.JoblistPath}}'
joblist = file(joblist_path)
lines = Channel.from(joblist.readLines())

process execute_jobs {
    errorStrategy '{{.ErrorStrategy}}'
    maxRetries {{.MaxRetries}}
{{- if .RetryMemory}}
    memory { {{.RetryMemory}} * task.attempt }
{{- end}}

    input:
    val line from lines

    "${line}"
}
`))

// memoryString renders the memory limit the way the engine's configuration
// syntax expects, e.g. "10 GB".
func (nf *Nextflow) memoryString() string {
	return fmt.Sprintf("%d %s", nf.memory, nf.memoryUnit)
}

// timeString renders the time limit, e.g. "1h".
func (nf *Nextflow) timeString() string {
	return fmt.Sprintf("%d%s", nf.timeLimit, nf.timeUnit)
}

// retryMemoryString renders the memory directive operand used when the limit
// scales with the attempt number, e.g. "10.GB".
func (nf *Nextflow) retryMemoryString() string {
	return fmt.Sprintf("%d.%s", nf.memory, nf.memoryUnit)
}

// writeJoblist validates the job list and writes it into the project
// directory, one command per line. Every job appears exactly once.
func (nf *Nextflow) writeJoblist(jobs []string) (string, error) {
	if len(jobs) == 0 {
		return "", ErrEmptyJoblist
	}
	var sb strings.Builder
	for i, job := range jobs {
		job = strings.TrimSpace(job)
		if job == "" {
			return "", fmt.Errorf("%w (entry %d)", ErrBlankJob, i)
		}
		sb.WriteString(job)
		sb.WriteByte('\n')
	}

	path := filepath.Join(nf.projectDir, JoblistFileName)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write joblist: %w", err)
	}
	return path, nil
}

// writeConfig renders the engine configuration file into the project
// directory.
func (nf *Nextflow) writeConfig() (string, error) {
	data := struct {
		ProjectName string
		Executor    Executor
		Queue       string
		Memory      string
		Time        string
		CPUs        int
		QueueSize   int
	}{
		ProjectName: nf.projectName,
		Executor:    nf.executor,
		Queue:       nf.queue,
		Memory:      nf.memoryString(),
		Time:        nf.timeString(),
		CPUs:        nf.cpus,
		QueueSize:   nf.queueSize,
	}

	path := filepath.Join(nf.projectDir, ConfigFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := configTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render config file: %w", err)
	}
	return path, nil
}

// writeScript renders the pipeline script into the project directory. The
// script feeds the joblist file into a single engine process, line by line.
func (nf *Nextflow) writeScript(joblistPath string) (string, error) {
	data := struct {
		ProjectName   string
		JoblistPath   string
		ErrorStrategy string
		MaxRetries    int
		RetryMemory   string
	}{
		ProjectName:   nf.projectName,
		JoblistPath:   joblistPath,
		ErrorStrategy: nf.errorStrategy,
		MaxRetries:    nf.maxRetries,
	}
	if nf.retryIncreaseMem {
		data.RetryMemory = nf.retryMemoryString()
	}

	path := filepath.Join(nf.projectDir, ScriptFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create pipeline script: %w", err)
	}
	defer f.Close()

	if err := scriptTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render pipeline script: %w", err)
	}
	return path, nil
}
