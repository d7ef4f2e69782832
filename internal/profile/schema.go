// Package profile loads named run-configuration profiles from HCL files and
// translates them into runner options. A profile carries the same named
// parameters as the runner constructor, so teams can keep cluster presets
// next to their pipelines instead of repeating flags.
package profile

import (
	"github.com/hashicorp/hcl/v2"
)

// Profile is a `profile "name" { ... }` block. Every attribute is optional;
// absent attributes leave the runner default untouched.
type Profile struct {
	Name string `hcl:"name,label"`

	Executor         *string `hcl:"executor,optional"`
	ErrorStrategy    *string `hcl:"error_strategy,optional"`
	MaxRetries       *int    `hcl:"max_retries,optional"`
	Queue            *string `hcl:"queue,optional"`
	Memory           *int    `hcl:"memory,optional"`
	MemoryUnits      *string `hcl:"memory_units,optional"`
	Time             *int    `hcl:"time,optional"`
	TimeUnits        *string `hcl:"time_units,optional"`
	CPUs             *int    `hcl:"cpus,optional"`
	QueueSize        *int    `hcl:"queue_size,optional"`
	RemoveLogs       *bool   `hcl:"remove_logs,optional"`
	ForceRemoveLogs  *bool   `hcl:"force_remove_logs,optional"`
	WorkDir          *string `hcl:"wd,optional"`
	ProjectName      *string `hcl:"project_name,optional"`
	Executable       *string `hcl:"nextflow_executable,optional"`
	SwitchToLocal    *bool   `hcl:"switch_to_local,optional"`
	RetryIncreaseMem *bool   `hcl:"retry_increase_mem,optional"`
}

// File is the top-level structure of one profile file.
type File struct {
	Profiles []*Profile `hcl:"profile,block"`
	Body     hcl.Body   `hcl:",remain"`
}
