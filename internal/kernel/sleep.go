package kernel

// Sleep blocks the currently running process on event, per §4.G.
// event must not be EventNone. On return, if the kernel woke this
// process spuriously to handle higher-priority work (its Event field
// was not cleared by a matching WakeUp), it recurses back into sleep
// on the same event.
func (k *Kernel) Sleep(event int) {
	if event == EventNone {
		panic("kernel: sleep called with EventNone")
	}

	p := k.Current
	p.State = StateSleep
	p.Event = event
	k.WaitQ.PushBack(p)
	k.schedule()

	if p.Event != EventNone {
		k.Sleep(event)
	}
}

// WakeUp promotes every waiter on event to the ready queue, and also
// clears Event on any already-ready members matching event so they are
// not put back to sleep once they get around to servicing the request,
// per §4.G.
func (k *Kernel) WakeUp(event int) {
	for n := k.ReadyQ.Front(); n != nil; n = n.qNextSafe() {
		if n.Event == event {
			n.Event = EventNone
		}
	}

	for {
		p := k.WaitQ.FindByEvent(event)
		if p == nil {
			return
		}
		k.WaitQ.Remove(p)
		p.Event = EventNone
		p.State = StateReady
		k.ReadyQ.PushBack(p)
	}
}

// qNextSafe lets WakeUp walk the ready queue without exposing qNext as
// part of the Queue API surface.
func (p *Process) qNextSafe() *Process {
	if p == nil {
		return nil
	}
	return p.qNext
}
