package coach

import (
	"fmt"
	"io"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

// ResourceMonitorCallback samples process CPU and memory usage at every
// epoch end and writes a summary when the run completes. Sampling
// failures are counted, not surfaced; observing must never interrupt
// training.
type ResourceMonitorCallback struct {
	Sink io.Writer

	proc     *process.Process
	cpuPcts  []float64
	rssMB    []float64
	failures int
}

type ResourceMonitorConfig struct {
	Sink io.Writer // defaults to os.Stdout
}

func ResourceMonitor(config ResourceMonitorConfig) *ResourceMonitorCallback {
	sink := config.Sink
	if sink == nil {
		sink = os.Stdout
	}
	return &ResourceMonitorCallback{Sink: sink}
}

func (r *ResourceMonitorCallback) OnInitialize() {
	r.cpuPcts = nil
	r.rssMB = nil
	r.failures = 0
}

func (r *ResourceMonitorCallback) OnTrainBegin(h *History) {
	if r.proc != nil {
		return
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		r.failures++
		return
	}
	r.proc = proc
}

func (r *ResourceMonitorCallback) OnEpochBegin(h *History) {}

func (r *ResourceMonitorCallback) OnEpochEnd(h *History) bool {
	pcts, err := cpu.Percent(0, false)
	if err == nil && len(pcts) > 0 {
		r.cpuPcts = append(r.cpuPcts, pcts[0])
	} else {
		r.failures++
	}

	if r.proc != nil {
		if mem, err := r.proc.MemoryInfo(); err == nil {
			r.rssMB = append(r.rssMB, float64(mem.RSS)/(1024*1024))
		} else {
			r.failures++
		}
	}
	return false
}

func (r *ResourceMonitorCallback) OnTrainEnd(h *History) {
	if len(r.cpuPcts) == 0 && len(r.rssMB) == 0 {
		fmt.Fprintf(r.Sink, "resource monitor: no samples (%d failures)\n", r.failures)
		return
	}

	avgCPU := 0.0
	for _, v := range r.cpuPcts {
		avgCPU += v
	}
	if len(r.cpuPcts) > 0 {
		avgCPU /= float64(len(r.cpuPcts))
	}

	peakRSS := 0.0
	for _, v := range r.rssMB {
		if v > peakRSS {
			peakRSS = v
		}
	}

	fmt.Fprintf(r.Sink, "resource monitor: avg cpu %.1f%%, peak rss %.1f MB over %d epochs\n",
		avgCPU, peakRSS, h.Len())
}

func (r *ResourceMonitorCallback) Name() string { return "resource_monitor" }
