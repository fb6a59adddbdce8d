package kernel

import "fmt"

// State is a PCB's position in the spec.md §4.F state machine.
type State int

const (
	StateUnused State = iota
	StateInit
	StateReady
	StateRunning
	StateSleep
	StateKilled
)

func (s State) String() string {
	switch s {
	case StateUnused:
		return "UNUSED"
	case StateInit:
		return "INIT"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateSleep:
		return "SLEEP"
	case StateKilled:
		return "KILLED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// HandlerKind is the disposition of one signal number for one process.
type HandlerKind int

const (
	HandlerDefault HandlerKind = iota
	HandlerIgnore
	HandlerUser
)

// SigHandler is a per-signal disposition entry; Addr is the userspace
// function address when Kind == HandlerUser.
type SigHandler struct {
	Kind HandlerKind
	Addr uint64
}

// Process is the PCB: every field spec.md §3 lists, plus the intrusive
// queue links from queue.go.
type Process struct {
	Pid      int
	Ppid     int
	Name     string
	State    State
	Status   int32
	Signals  uint32
	Wpid     int
	Daemon   bool
	Event    int
	Handlers [NumSignals]SigHandler

	KStack     *Page
	SP         uint64
	RegContext *TrapFrame
	AddrSpace  AddressSpace

	Fds []*OpenFile

	qNext, qPrev *Process
}

// resetHandlers restores every signal to DEFAULT, per fork's "initialise
// default handlers" and exec's "reset handlers to defaults".
func (p *Process) resetHandlers() {
	for i := range p.Handlers {
		p.Handlers[i] = SigHandler{}
	}
}

// ProcessTable is the fixed-size process table & monotonic-pid
// allocator (component E), grounded on fs/fs.go's nextInodeID/inodes
// map and the original kernel's find_unused_slot/alloc_new_process.
type ProcessTable struct {
	slots   []*Process
	nextPid int

	pageAlloc     PageAllocator
	asFactory     AddressSpaceFactory
	fdsPerProcess int
}

// NewProcessTable allocates a table of the given size. Slot 0 is
// reserved for the idle process per §3 invariant 4.
func NewProcessTable(size int, pageAlloc PageAllocator, asFactory AddressSpaceFactory, fdsPerProcess int) *ProcessTable {
	t := &ProcessTable{
		slots:         make([]*Process, size),
		nextPid:       1,
		pageAlloc:     pageAlloc,
		asFactory:     asFactory,
		fdsPerProcess: fdsPerProcess,
	}
	for i := range t.slots {
		t.slots[i] = &Process{State: StateUnused}
	}
	return t
}

// Idle returns slot 0, the idle PCB (§3 invariant 4, §9 "idle is special").
func (t *ProcessTable) Idle() *Process { return t.slots[0] }

// Slots exposes the live table for iteration (scheduler, ps, checks).
func (t *ProcessTable) Slots() []*Process { return t.slots }

// ByPid finds a non-UNUSED process by pid, or nil.
func (t *ProcessTable) ByPid(pid int) *Process {
	for _, p := range t.slots {
		if p.State != StateUnused && p.Pid == pid {
			return p
		}
	}
	return nil
}

// resetPidCounter rewinds the monotonic pid allocator, part of kill(-1,
// SIGHUP)'s "act like a fresh boot" cleanup per §4.I.
func (t *ProcessTable) resetPidCounter(n int) {
	t.nextPid = n
}

// findUnusedSlot searches from index 1 onward; slot 0 is reserved for
// idle, per the original kernel's find_unused_slot.
func (t *ProcessTable) findUnusedSlot() *Process {
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i].State == StateUnused {
			return t.slots[i]
		}
	}
	return nil
}

// Alloc implements alloc_new_process: finds a free slot, assigns a
// monotonically increasing pid, and sets up the trap frame so the
// first dispatch falls through trap_return into EL0. Page/stack
// allocation failure is fatal to the kernel per spec.md §7 — this is
// early/critical resource exhaustion, not a user-visible -1.
func (t *ProcessTable) Alloc(userspaceBase, pageSize uint64) (*Process, error) {
	p := t.findUnusedSlot()
	if p == nil {
		return nil, ErrProcessTableFull
	}

	stack, err := t.pageAlloc.AllocPage()
	if err != nil {
		panic(fmt.Sprintf("kernel: kernel-stack allocation failed: %v", err))
	}
	addrSpace := t.asFactory.New()

	*p = Process{
		Pid:        t.nextPid,
		State:      StateInit,
		KStack:     stack,
		AddrSpace:  addrSpace,
		RegContext: &TrapFrame{ELR: userspaceBase, SP0: userspaceBase + pageSize},
		Fds:        make([]*OpenFile, t.fdsPerProcess),
	}
	t.nextPid++
	return p, nil
}

// Free returns a reaped process's resources to the external
// allocator and marks the slot UNUSED, per wait's reap step and §8
// testable property 6.
func (t *ProcessTable) Free(p *Process) {
	if p.KStack != nil {
		t.pageAlloc.FreePage(p.KStack)
	}
	if p.AddrSpace != nil {
		p.AddrSpace.Free()
	}
	*p = Process{State: StateUnused}
}

// checkInvariants enforces §3 invariants 1 (pid uniqueness) and 5
// (parent invariant), grounded on fs/fs.go's checkInvariants panic
// style.
func (t *ProcessTable) checkInvariants() {
	seen := make(map[int]bool)
	for _, p := range t.slots {
		if p.State == StateUnused {
			continue
		}
		if seen[p.Pid] {
			panic(fmt.Sprintf("kernel: duplicate pid %d", p.Pid))
		}
		seen[p.Pid] = true

		if p.Pid == 0 {
			continue
		}
		if p.Ppid != 1 && t.ByPid(p.Ppid) == nil {
			panic(fmt.Sprintf("kernel: pid %d has dangling ppid %d", p.Pid, p.Ppid))
		}
	}
}
