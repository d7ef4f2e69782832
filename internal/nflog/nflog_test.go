package nflog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture lays out a minimal engine project directory: a .nextflow.log
// with one succeeded and one failed task, plus their work directories.
func writeFixture(t *testing.T) (projectDir string, failedWorkDir string) {
	t.Helper()

	projectDir = t.TempDir()

	okDir := filepath.Join(projectDir, "work", "aa", "bb")
	failDir := filepath.Join(projectDir, "work", "cc", "dd")
	for dir, files := range map[string]map[string]string{
		okDir: {
			".command.sh":  "echo one\n",
			".command.out": "one\n",
			".command.err": "",
		},
		failDir: {
			".command.sh":  "not_a_script.py in/0.txt out/0.txt\n",
			".command.out": "",
			".command.err": "not_a_script.py: command not found\n",
		},
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for name, content := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		}
	}

	logContent := fmt.Sprintf(
		"Jan-01 10:00:00.000 [main] DEBUG nextflow.cli.Launcher - $> nextflow script.nf -c config.nf\n"+
			"Jan-01 10:00:01.000 [Task monitor] DEBUG n.processor.TaskPollingMonitor - Task completed > TaskHandler[id: 1; name: execute_jobs (1); status: COMPLETED; exit: 0; workDir: %s]\n"+
			"Jan-01 10:00:02.000 [Task monitor] DEBUG n.processor.TaskPollingMonitor - Task completed > TaskHandler[id: 2; name: execute_jobs (2); status: COMPLETED; exit: 127; workDir: %s]\n"+
			"Jan-01 10:00:03.000 [main] INFO  nextflow.Session - Session await > all processes finished\n",
		okDir, failDir,
	)
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".nextflow.log"), []byte(logContent), 0o644))

	return projectDir, failDir
}

func TestParse(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	projectDir, failDir := writeFixture(t)

	// --- Act ---
	engineLog, err := Parse(projectDir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "nextflow script.nf -c config.nf", engineLog.LauncherCmd)
	require.Len(t, engineLog.Tasks, 2)

	ok := engineLog.Tasks[0]
	assert.Equal(t, "1", ok.ID)
	assert.Equal(t, "execute_jobs (1)", ok.Name)
	assert.True(t, ok.Succeeded())

	failed := engineLog.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].ID)
	assert.Equal(t, "127", failed[0].ExitCode)
	assert.Equal(t, failDir, failed[0].WorkDir)
}

func TestTaskWorkFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	projectDir, _ := writeFixture(t)
	engineLog, err := Parse(projectDir)
	require.NoError(t, err)
	failed := engineLog.Failed()
	require.Len(t, failed, 1)

	// --- Act / Assert ---
	cmd, err := failed[0].Command()
	require.NoError(t, err)
	assert.Equal(t, "not_a_script.py in/0.txt out/0.txt\n", cmd)

	stderr, err := failed[0].Stderr()
	require.NoError(t, err)
	assert.Contains(t, stderr, "command not found")

	stdout, err := failed[0].Stdout()
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestParse_NotAProjectDir(t *testing.T) {
	t.Parallel()

	_, err := Parse(t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, "not a nextflow project directory")
}
