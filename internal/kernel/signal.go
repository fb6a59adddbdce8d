package kernel

import "github.com/amoldhamale1105/frostbite/internal/logger"

// Signal numbers the default-action table in spec.md §4.H names.
// NumSignals bounds the pending bitmask and handler table size.
const (
	SIGHUP  = 1
	SIGINT  = 2
	SIGKILL = 9
	SIGTERM = 15
	SIGCHLD = 17
	SIGCONT = 18
	SIGSTOP = 19

	NumSignals = 32
)

// Sleep event constants used to multicast wake-ups. Negative so they
// can never collide with a pid-keyed wait event (pids are >= 0).
const (
	EventNone         = 0
	EventFGPaused     = -1
	EventZombieCleanup = -2
)

// sendSignal sets the pending bit for sig on p; out-of-range signals
// are rejected per §4.I kill's "sig out of range -> -1". If p is
// SLEEPing it is forcibly moved to the ready queue without clearing
// Event, so the signal check at the next dispatch can act on it, per
// §4.I and the §5 cancellation model. This is the per-process primitive
// the Kill syscall's pid>0/0/-1 cases all bottom out in.
func (k *Kernel) sendSignal(p *Process, sig int) error {
	if sig < 0 || sig >= NumSignals {
		return ErrBadSignal
	}
	p.Signals |= 1 << uint(sig)
	if p.State == StateSleep {
		k.WaitQ.Remove(p)
		p.State = StateReady
		k.ReadyQ.PushBack(p)
	}
	return nil
}

// checkPendingSignals runs at the single delivery point spec.md §4.H
// and §9 name: while p is the head of ready_queue, just before
// schedule() pops it for dispatch. For each pending signal, lowest
// numbered first, it clears the bit and dispatches the handler. A
// default action may exit p or park it on the wait list, which the
// caller (schedule) notices by re-checking whether p is still the head.
func (k *Kernel) checkPendingSignals(p *Process) {
	for sig := 0; sig < NumSignals; sig++ {
		bit := uint32(1) << uint(sig)
		if p.Signals&bit == 0 {
			continue
		}
		p.Signals &^= bit
		k.dispatchSignal(p, sig)
		if p.State == StateKilled {
			return
		}
	}
}

func (k *Kernel) dispatchSignal(p *Process, sig int) {
	h := p.Handlers[sig]

	if sig == SIGKILL {
		k.Exit(p, 128|int32(sig), true)
		return
	}

	switch h.Kind {
	case HandlerIgnore:
		return
	case HandlerUser:
		k.deliverUserHandler(p, sig, h.Addr)
		p.Handlers[sig] = SigHandler{} // one-shot: reset to DEFAULT
		return
	default: // HandlerDefault
		k.defaultAction(p, sig)
	}
}

// deliverUserHandler patches p's saved trap frame so that on
// trap-return, execution enters the handler in userspace with a
// return address the userspace signal trampoline uses to resume,
// per §4.H. The simulated TrapFrame only models the register
// fields spec.md names; X1 carries the signal number, ELR the
// handler address, matching an EL0 calling convention of
// handler(sig).
func (k *Kernel) deliverUserHandler(p *Process, sig int, addr uint64) {
	p.RegContext.X1 = uint64(sig)
	p.RegContext.ELR = addr
	logger.Debugf("signal: pid=%d delivering user handler for sig=%d", p.Pid, sig)
}

func (k *Kernel) defaultAction(p *Process, sig int) {
	switch sig {
	case SIGHUP, SIGINT, SIGTERM:
		k.Exit(p, 128|int32(sig), true)
	case SIGCHLD:
		// ignored by default
	case SIGCONT:
		// "resume if paused": Kill already force-moved a SLEEPing
		// target to ready_queue regardless of signal number, so by
		// the time checkPendingSignals reaches SIGCONT on a live
		// process there is nothing left to resume.
	case SIGSTOP:
		// p is still the head of ready_queue at this point (the
		// scheduler has not popped it yet); pull it off and park it
		// on FG_PAUSED instead.
		k.ReadyQ.Remove(p)
		p.State = StateSleep
		p.Event = EventFGPaused
		k.WaitQ.PushBack(p)
	default:
		k.Exit(p, 128|int32(sig), true)
	}
}
