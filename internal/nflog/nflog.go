// Package nflog reads the engine's own log and work files out of a project
// directory, so a failed run can be summarized without re-implementing any
// engine behavior.
package nflog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	logFileName = ".nextflow.log"

	launcherMarker    = "DEBUG nextflow.cli.Launcher"
	taskMonitorMarker = "[Task monitor] DEBUG n.processor.TaskPollingMonitor"

	taskStdoutFile  = ".command.out"
	taskStderrFile  = ".command.err"
	taskCommandFile = ".command.sh"
)

// Task is one task execution record extracted from the engine log.
type Task struct {
	ID       string
	Name     string
	Status   string
	ExitCode string
	WorkDir  string
}

// Succeeded reports whether the task completed with a zero exit code.
func (t Task) Succeeded() bool {
	return t.Status == "COMPLETED" && t.ExitCode == "0"
}

// Command returns the exact shell command the engine ran for this task.
func (t Task) Command() (string, error) {
	return t.readWorkFile(taskCommandFile)
}

// Stdout returns the captured stdout of this task.
func (t Task) Stdout() (string, error) {
	return t.readWorkFile(taskStdoutFile)
}

// Stderr returns the captured stderr of this task.
func (t Task) Stderr() (string, error) {
	return t.readWorkFile(taskStderrFile)
}

func (t Task) readWorkFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(t.WorkDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read task file %q: %w", name, err)
	}
	return string(data), nil
}

// Log is the parsed view of one project directory's engine log.
type Log struct {
	LauncherCmd string
	Tasks       []Task
}

// Failed returns the tasks that did not finish with a zero exit code.
func (l *Log) Failed() []Task {
	var failed []Task
	for _, t := range l.Tasks {
		if !t.Succeeded() {
			failed = append(failed, t)
		}
	}
	return failed
}

// Parse reads the .nextflow.log file inside projectDir into task records.
// It fails when the directory does not look like an engine project directory.
func Parse(projectDir string) (*Log, error) {
	logPath := filepath.Join(projectDir, logFileName)
	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("%q is not a nextflow project directory: %w", projectDir, err)
	}
	defer f.Close()

	log := &Log{}
	scanner := bufio.NewScanner(f)
	// Engine log lines can be long when commands are echoed back.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, launcherMarker):
			if _, cmd, found := strings.Cut(line, "$> "); found {
				log.LauncherCmd = strings.TrimSpace(cmd)
			}
		case strings.Contains(line, taskMonitorMarker):
			if task, ok := parseTaskLine(line); ok {
				log.Tasks = append(log.Tasks, task)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", logPath, err)
	}
	return log, nil
}

// parseTaskLine extracts the "key: value; ..." fields from a task monitor
// line such as:
//
//	... TaskHandler[id: 3; name: execute_jobs (3); status: COMPLETED; exit: 0; workDir: /x/work/ab/cd]
func parseTaskLine(line string) (Task, bool) {
	// The handler's field block is the last bracketed segment on the line;
	// the leading "[Task monitor]" tag never comes after it.
	start := strings.LastIndex(line, "[")
	if start < 0 {
		return Task{}, false
	}
	block := strings.TrimSuffix(strings.TrimSpace(line[start+1:]), "]")

	var task Task
	for _, field := range strings.Split(block, "; ") {
		key, value, found := strings.Cut(field, ": ")
		if !found {
			continue
		}
		switch key {
		case "id":
			task.ID = value
		case "name":
			task.Name = value
		case "status":
			task.Status = value
		case "exit":
			task.ExitCode = value
		case "workDir":
			task.WorkDir = value
		}
	}
	if task.ID == "" && task.Name == "" {
		return Task{}, false
	}
	return task, true
}
