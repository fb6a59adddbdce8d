// Package metrics wires the kernel's process-lifecycle counters onto a
// prometheus.Registry, the same way the teacher wires GCS operation
// metrics onto client_golang — retargeted from object-store latency to
// fork/exit/signal/context-switch counts.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Kernel holds every metric the scheduler and lifecycle syscalls touch.
type Kernel struct {
	Forks             prometheus.Counter
	Exits             prometheus.Counter
	Signals           prometheus.Counter
	ContextSwitches   prometheus.Counter
	ReadyQueueDepth   prometheus.Gauge
}

// New registers the kernel metric family on reg and returns the handle
// call sites hold onto. A fresh, unregistered prometheus.Registry is
// expected per Kernel instance (tests construct their own).
func New(reg *prometheus.Registry) *Kernel {
	k := &Kernel{
		Forks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frostbite_forks_total",
			Help: "Number of fork() calls that produced a child process.",
		}),
		Exits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frostbite_exits_total",
			Help: "Number of processes that have reached the KILLED state.",
		}),
		Signals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frostbite_signals_total",
			Help: "Number of signals successfully delivered to a pending bitmask.",
		}),
		ContextSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frostbite_context_switches_total",
			Help: "Number of times schedule() selected and switched to a process.",
		}),
		ReadyQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frostbite_ready_queue_depth",
			Help: "Current length of the scheduler ready queue.",
		}),
	}
	reg.MustRegister(k.Forks, k.Exits, k.Signals, k.ContextSwitches, k.ReadyQueueDepth)
	return k
}
