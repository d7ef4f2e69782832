package nextflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	nf := newTestRunner(t, "exit 0")
	jobs := []string{
		"echo one",
		"echo two",
		"echo three",
	}

	// --- Act ---
	status, err := nf.Execute(context.Background(), jobs)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)

	// Every job appears exactly once in the generated joblist.
	joblist, readErr := os.ReadFile(filepath.Join(nf.ProjectDir(), JoblistFileName))
	require.NoError(t, readErr)
	for _, job := range jobs {
		assert.Equal(t, 1, strings.Count(string(joblist), job+"\n"))
	}

	script, readErr := os.ReadFile(filepath.Join(nf.ProjectDir(), ScriptFileName))
	require.NoError(t, readErr)
	assert.Contains(t, string(script), filepath.Join(nf.ProjectDir(), JoblistFileName))
	assert.Contains(t, string(script), "errorStrategy 'retry'")
	assert.Contains(t, string(script), "maxRetries 3")
	assert.NotContains(t, string(script), "task.attempt")

	config, readErr := os.ReadFile(filepath.Join(nf.ProjectDir(), ConfigFileName))
	require.NoError(t, readErr)
	assert.Contains(t, string(config), "process.executor = 'local'")
	assert.Contains(t, string(config), "process.queue = 'batch'")
	assert.Contains(t, string(config), "process.memory = '10 GB'")
	assert.Contains(t, string(config), "process.time = '1h'")
	assert.Contains(t, string(config), "process.cpus = '1'")
	assert.Contains(t, string(config), "executor.queueSize = 100")
}

func TestExecute_EngineFailureIsAValue(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	nf := newTestRunner(t, "exit 3")

	// --- Act ---
	status, err := nf.Execute(context.Background(), []string{"false"})

	// --- Assert ---
	require.NoError(t, err, "an engine failure must not surface as an error")
	assert.Equal(t, ExitFailure, status)
}

func TestExecute_EmptyJoblist(t *testing.T) {
	t.Parallel()

	nf := newTestRunner(t, "exit 0")

	status, err := nf.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyJoblist)
	assert.Equal(t, ExitFailure, status)
}

func TestExecute_BlankJob(t *testing.T) {
	t.Parallel()

	nf := newTestRunner(t, "exit 0")

	status, err := nf.Execute(context.Background(), []string{"echo ok", "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlankJob)
	assert.Equal(t, ExitFailure, status)
}

func TestExecute_RemoveLogs(t *testing.T) {
	t.Parallel()

	t.Run("removes artifacts on success", func(t *testing.T) {
		t.Parallel()

		nf := newTestRunner(t, "exit 0", WithRemoveLogs(true))
		status, err := nf.Execute(context.Background(), []string{"echo ok"})

		require.NoError(t, err)
		assert.Equal(t, ExitSuccess, status)
		assert.NoDirExists(t, nf.ProjectDir())
	})

	t.Run("keeps artifacts on failure", func(t *testing.T) {
		t.Parallel()

		nf := newTestRunner(t, "exit 1", WithRemoveLogs(true))
		status, err := nf.Execute(context.Background(), []string{"echo ok"})

		require.NoError(t, err)
		assert.Equal(t, ExitFailure, status)
		assert.DirExists(t, nf.ProjectDir())
	})
}

func TestExecute_ForceRemoveLogs(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		stub string
		want int
	}{
		{"success", "exit 0", ExitSuccess},
		{"failure", "exit 1", ExitFailure},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			nf := newTestRunner(t, tc.stub, WithForceRemoveLogs(true))
			status, err := nf.Execute(context.Background(), []string{"echo ok"})

			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
			assert.NoDirExists(t, nf.ProjectDir())
		})
	}
}

func TestExecute_ConfigFileOverride(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The stub records its arguments so the override path can be verified.
	nf := newTestRunner(t, `echo "$@" > invocation.txt; exit 0`)
	override := filepath.Join(t.TempDir(), "custom.nf")
	require.NoError(t, os.WriteFile(override, []byte("process.executor = 'local'\n"), 0o644))

	// --- Act ---
	status, err := nf.Execute(context.Background(), []string{"echo ok"}, WithConfigFile(override))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)

	invocation, readErr := os.ReadFile(filepath.Join(nf.ProjectDir(), "invocation.txt"))
	require.NoError(t, readErr)
	assert.Contains(t, string(invocation), override)

	// No config was generated when an override is supplied.
	assert.NoFileExists(t, filepath.Join(nf.ProjectDir(), ConfigFileName))
}

func TestExecute_MissingConfigFileOverride(t *testing.T) {
	t.Parallel()

	nf := newTestRunner(t, "exit 0")

	status, err := nf.Execute(context.Background(), []string{"echo ok"},
		WithConfigFile(filepath.Join(t.TempDir(), "nope.nf")))
	require.Error(t, err)
	assert.ErrorContains(t, err, "not accessible")
	assert.Equal(t, ExitFailure, status)
}

func TestExecute_RetryIncreaseMem(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	nf := newTestRunner(t, "exit 0",
		WithRetryIncreaseMem(true),
		WithMemory(16, MemoryGB),
	)

	// --- Act ---
	status, err := nf.Execute(context.Background(), []string{"echo ok"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)

	script, readErr := os.ReadFile(filepath.Join(nf.ProjectDir(), ScriptFileName))
	require.NoError(t, readErr)
	assert.Contains(t, string(script), "memory { 16.GB * task.attempt }")
}

func TestExecute_Canceled(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	nf := newTestRunner(t, "sleep 30")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	status, err := nf.Execute(ctx, []string{"echo ok"})

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitFailure, status)
}
