package nextflow

import (
	"errors"
	"fmt"
	"os/exec"
)

// Executor identifies a Nextflow process executor.
type Executor string

// Executors recognized by the engine. Cluster executors are probed for
// accessibility through their batch submission command.
const (
	ExecutorLocal  Executor = "local"
	ExecutorSlurm  Executor = "slurm"
	ExecutorLSF    Executor = "lsf"
	ExecutorSGE    Executor = "sge"
	ExecutorPBS    Executor = "pbs"
	ExecutorPBSPro Executor = "pbspro"
	ExecutorCondor Executor = "condor"
	ExecutorNQSII  Executor = "nqsii"
	ExecutorMoab   Executor = "moab"
)

// ErrUnknownExecutor is returned when a requested executor is not a
// recognized Nextflow executor at all.
var ErrUnknownExecutor = errors.New("unknown executor")

// ErrExecutorUnavailable is returned when a recognized cluster executor's
// submission command cannot be found on $PATH.
var ErrExecutorUnavailable = errors.New("executor unavailable")

// submitCommands maps each cluster executor to the submission command whose
// presence on $PATH marks the executor as accessible from this host.
var submitCommands = map[Executor]string{
	ExecutorSlurm:  "sbatch",
	ExecutorLSF:    "bsub",
	ExecutorSGE:    "qsub",
	ExecutorPBS:    "qsub",
	ExecutorPBSPro: "qsub",
	ExecutorCondor: "condor_submit",
	ExecutorNQSII:  "qsub",
	ExecutorMoab:   "msub",
}

// pickOrder is the preference order used by PickExecutor.
var pickOrder = []Executor{
	ExecutorSlurm,
	ExecutorLSF,
	ExecutorSGE,
	ExecutorPBS,
	ExecutorPBSPro,
	ExecutorCondor,
	ExecutorNQSII,
	ExecutorMoab,
}

// Known reports whether e is a recognized Nextflow executor.
func Known(e Executor) bool {
	if e == ExecutorLocal {
		return true
	}
	_, ok := submitCommands[e]
	return ok
}

// Available reports whether the executor can actually be used from this
// host. The local executor is always available; cluster executors are
// available when their submission command is on $PATH.
func Available(e Executor) bool {
	if e == ExecutorLocal {
		return true
	}
	cmd, ok := submitCommands[e]
	if !ok {
		return false
	}
	_, err := exec.LookPath(cmd)
	return err == nil
}

// CheckExecutor validates that e is a recognized, accessible executor. It
// wraps ErrUnknownExecutor or ErrExecutorUnavailable so callers can
// distinguish the two failure modes.
func CheckExecutor(e Executor) error {
	if !Known(e) {
		return fmt.Errorf("%w: %q", ErrUnknownExecutor, e)
	}
	if !Available(e) {
		return fmt.Errorf("%w: %q (submission command %q not found on $PATH)",
			ErrExecutorUnavailable, e, submitCommands[e])
	}
	return nil
}

// PickExecutor returns the first accessible cluster executor, falling back
// to the local executor when no batch system is reachable.
func PickExecutor() Executor {
	for _, e := range pickOrder {
		if Available(e) {
			return e
		}
	}
	return ExecutorLocal
}
