package nextflow

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// hostResources reports the logical cpu count and total physical memory of
// this host.
func hostResources() (int, uint64, error) {
	cpus, err := cpu.Counts(true)
	if err != nil {
		return 0, 0, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return cpus, vm.Total, nil
}

// warnIfOversubscribed logs when a local run asks for more cpus or memory
// than the host provides. The engine would queue such processes forever, so
// surfacing it early saves a confusing hang.
func (nf *Nextflow) warnIfOversubscribed() {
	hostCPUs, hostMem, err := hostResources()
	if err != nil {
		nf.logger.Debug("Host resource probe failed.", "error", err)
		return
	}
	if nf.cpus > hostCPUs {
		nf.logger.Warn("Requested cpus exceed the host cpu count for a local run.",
			"requested", nf.cpus, "host", hostCPUs)
	}
	if nf.memoryBytes() > hostMem {
		nf.logger.Warn("Requested memory exceeds total host memory for a local run.",
			"requested", nf.memoryString(), "host_bytes", hostMem)
	}
}

// memoryBytes converts the configured memory limit into bytes.
func (nf *Nextflow) memoryBytes() uint64 {
	return uint64(nf.memory) * memoryUnits[nf.memoryUnit]
}
