package nextflow

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRunner builds a runner with a stub engine executable and a temp
// working directory, so no real nextflow installation is needed.
func newTestRunner(t *testing.T, stubBody string, opts ...Option) *Nextflow {
	t.Helper()

	wd := t.TempDir()
	stub := writeStub(t, t.TempDir(), "nextflow", stubBody)

	base := []Option{
		WithExecutable(stub),
		WithWorkDir(wd),
		WithProjectName("test_project"),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithStdout(&bytes.Buffer{}),
		WithStderr(&bytes.Buffer{}),
	}
	nf, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return nf
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	wd := t.TempDir()
	stub := writeStub(t, t.TempDir(), "nextflow", "exit 0")

	// --- Act ---
	nf, err := New(WithExecutable(stub), WithWorkDir(wd))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ExecutorLocal, nf.ExecutorKind())
	assert.Equal(t, wd, filepath.Dir(nf.ProjectDir()))

	// The default project name carries a unix timestamp.
	name := filepath.Base(nf.ProjectDir())
	assert.Contains(t, name, "nextflow_project_at_")
	ts, convErr := strconv.ParseInt(name[len("nextflow_project_at_"):], 10, 64)
	require.NoError(t, convErr)
	assert.InDelta(t, time.Now().Unix(), ts, 60)
}

func TestNew_ValidationErrors(t *testing.T) {
	t.Parallel()

	wd := t.TempDir()
	cases := []struct {
		name    string
		opt     Option
		wantMsg string
	}{
		{"unknown error strategy", WithErrorStrategy("explode"), "unknown error strategy"},
		{"unknown memory unit", WithMemory(1, MemoryUnit("XB")), "unknown memory unit"},
		{"unknown time unit", WithTime(1, TimeUnit("y")), "unknown time unit"},
		{"negative retries", WithMaxRetries(-1), "max retries"},
		{"zero memory", WithMemory(0, MemoryGB), "memory limit"},
		{"zero time", WithTime(0, TimeHours), "time limit"},
		{"zero cpus", WithCPUs(0), "cpu count"},
		{"zero queue size", WithQueueSize(0), "queue size"},
		{"empty project name", WithProjectName(""), "project name"},
		{"missing working directory", WithWorkDir(filepath.Join(wd, "does_not_exist")), "not accessible"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(WithoutEngineCheck(), WithWorkDir(wd), tc.opt)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestNew_UnknownExecutor(t *testing.T) {
	t.Parallel()

	_, err := New(WithoutEngineCheck(), WithWorkDir(t.TempDir()), WithExecutor("non_existent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownExecutor)
}

func TestNew_MissingEngineExecutable(t *testing.T) {
	// --- Arrange ---
	// Nothing on $PATH, no explicit executable override.
	t.Setenv("PATH", t.TempDir())

	// --- Act ---
	_, err := New(WithWorkDir(t.TempDir()))

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found on $PATH")
}

func TestNew_ExplicitExecutablePath(t *testing.T) {
	t.Parallel()

	t.Run("existing file is accepted", func(t *testing.T) {
		t.Parallel()

		stub := writeStub(t, t.TempDir(), "nextflow", "exit 0")
		_, err := New(WithExecutable(stub), WithWorkDir(t.TempDir()))
		require.NoError(t, err)
	})

	t.Run("missing file fails fast", func(t *testing.T) {
		t.Parallel()

		_, err := New(
			WithExecutable(filepath.Join(t.TempDir(), "nextflow")),
			WithWorkDir(t.TempDir()),
		)
		require.Error(t, err)
		assert.ErrorContains(t, err, "not accessible")
	})
}

func TestNew_InaccessibleExecutorFailsFast(t *testing.T) {
	// --- Arrange ---
	t.Setenv("PATH", t.TempDir())

	// --- Act ---
	_, err := New(
		WithoutEngineCheck(),
		WithWorkDir(t.TempDir()),
		WithExecutor(ExecutorSlurm),
	)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutorUnavailable)
}

func TestNew_SwitchToLocal(t *testing.T) {
	// --- Arrange ---
	// Slurm is requested but sbatch is not visible anywhere.
	t.Setenv("PATH", t.TempDir())
	logBuf := &bytes.Buffer{}

	// --- Act ---
	nf, err := New(
		WithoutEngineCheck(),
		WithWorkDir(t.TempDir()),
		WithExecutor(ExecutorSlurm),
		WithSwitchToLocal(true),
		WithLogger(slog.New(slog.NewTextHandler(logBuf, nil))),
	)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ExecutorLocal, nf.ExecutorKind())
	assert.Contains(t, logBuf.String(), "switching to local")
}
