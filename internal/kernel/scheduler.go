package kernel

import "github.com/amoldhamale1105/frostbite/internal/logger"

// schedule implements §4.F: pick the next runnable process and switch
// to it. Called with kernel preemption disabled (the kernel is
// single-writer per §5; there is no lock to take here, only a
// documented expectation that callers don't reenter).
func (k *Kernel) schedule() {
	var next *Process

	for !k.ReadyQ.Empty() {
		head := k.ReadyQ.Front()
		if head.Signals != 0 {
			k.checkPendingSignals(head)
		}
		if k.ReadyQ.Front() == head {
			next = k.ReadyQ.PopFront()
			break
		}
		// the signal check consumed, re-enqueued or exited the head;
		// loop and re-peek.
	}

	if next == nil {
		idle := k.Processes.Idle()
		if k.ReadyQ.Empty() && k.WaitQ.Empty() && idle.Signals&(1<<SIGTERM) != 0 {
			idle.Signals &^= 1 << SIGTERM
			k.Shutdown = true
			logger.Infof("scheduler: all queues empty and idle has SIGTERM pending, shutting down")
		}
		next = idle
	}

	old := k.Current
	next.State = StateRunning
	k.Current = next
	if next.Pid == 0 && k.Shutdown {
		next.RegContext.X5 = 1
	}
	if !next.Daemon && k.FgProcess == nil {
		k.FgProcess = next
	}

	k.metrics.ContextSwitches.Inc()
	k.metrics.ReadyQueueDepth.Set(float64(k.ReadyQ.Len()))
	next.AddrSpace.Activate() // switch_vm(new.page_map)
	if old != nil {
		var oldSP, newSP uint64 = old.SP, next.SP
		k.ctxSwitch.Switch(&oldSP, &newSP)
		old.SP, next.SP = oldSP, newSP
	}
}

// triggerScheduler implements the timer-tick entry point: continue the
// current process if nothing else is ready, otherwise preempt it and
// reschedule, per §4.F.
func (k *Kernel) triggerScheduler() {
	if k.ReadyQ.Empty() {
		return
	}
	k.Current.State = StateReady
	if k.Current.Pid != 0 {
		k.ReadyQ.PushBack(k.Current)
	}
	k.schedule()
}

// Tick is the external timer-interrupt entry point: callers (main's
// run loop, tests driving the scheduler without a real hardware timer)
// call it once per tick to give the scheduler a chance to preempt
// Current.
func (k *Kernel) Tick() {
	k.triggerScheduler()
}

// Yield forces a reschedule even when the ready queue is currently
// empty, unlike Tick's fast path: Current is requeued (unless it is
// idle) and schedule() always runs. Exit and Sleep already reach
// schedule() unconditionally for the same reason; Yield gives a
// process that wants to give up the CPU without blocking on an event
// the same path.
func (k *Kernel) Yield() {
	if k.Current.Pid != 0 {
		k.Current.State = StateReady
		k.ReadyQ.PushBack(k.Current)
	}
	k.schedule()
}
