package profile

import (
	"github.com/vk/nfbatch/nextflow"
)

// Options translates the profile into runner options. Only attributes that
// are present in the HCL produce an option, so profile values layer cleanly
// under command-line overrides.
func (p *Profile) Options() []nextflow.Option {
	var opts []nextflow.Option

	if p.Executor != nil {
		opts = append(opts, nextflow.WithExecutor(nextflow.Executor(*p.Executor)))
	}
	if p.ErrorStrategy != nil {
		opts = append(opts, nextflow.WithErrorStrategy(*p.ErrorStrategy))
	}
	if p.MaxRetries != nil {
		opts = append(opts, nextflow.WithMaxRetries(*p.MaxRetries))
	}
	if p.Queue != nil {
		opts = append(opts, nextflow.WithQueue(*p.Queue))
	}
	if p.Memory != nil {
		unit := nextflow.MemoryGB
		if p.MemoryUnits != nil {
			unit = nextflow.MemoryUnit(*p.MemoryUnits)
		}
		opts = append(opts, nextflow.WithMemory(*p.Memory, unit))
	}
	if p.Time != nil {
		unit := nextflow.TimeHours
		if p.TimeUnits != nil {
			unit = nextflow.TimeUnit(*p.TimeUnits)
		}
		opts = append(opts, nextflow.WithTime(*p.Time, unit))
	}
	if p.CPUs != nil {
		opts = append(opts, nextflow.WithCPUs(*p.CPUs))
	}
	if p.QueueSize != nil {
		opts = append(opts, nextflow.WithQueueSize(*p.QueueSize))
	}
	if p.RemoveLogs != nil {
		opts = append(opts, nextflow.WithRemoveLogs(*p.RemoveLogs))
	}
	if p.ForceRemoveLogs != nil {
		opts = append(opts, nextflow.WithForceRemoveLogs(*p.ForceRemoveLogs))
	}
	if p.WorkDir != nil {
		opts = append(opts, nextflow.WithWorkDir(*p.WorkDir))
	}
	if p.ProjectName != nil {
		opts = append(opts, nextflow.WithProjectName(*p.ProjectName))
	}
	if p.Executable != nil {
		opts = append(opts, nextflow.WithExecutable(*p.Executable))
	}
	if p.SwitchToLocal != nil {
		opts = append(opts, nextflow.WithSwitchToLocal(*p.SwitchToLocal))
	}
	if p.RetryIncreaseMem != nil {
		opts = append(opts, nextflow.WithRetryIncreaseMem(*p.RetryIncreaseMem))
	}

	return opts
}
