// Package kernel implements the process-lifecycle and open-file core
// described by the specification this module expands on (see
// SPEC_FULL.md): a fixed-size process table with an in-kernel
// run/wait/zombie scheduler, fork/exec/exit/wait/kill/sleep/wakeup, a
// signal-delivery state machine, and a three-tier open-file layer
// rooted on a read-only FAT16 root directory.
package kernel

import (
	"fmt"

	"github.com/amoldhamale1105/frostbite/internal/metrics"
)

const (
	// UserspaceBase is the fixed EL0 load address every process's text,
	// data and stack share (the original kernel's USERSPACE_BASE).
	UserspaceBase = 0x400000
	// PageSize is the size of the single page every process's
	// userspace image is expected to fit in.
	PageSize = 1 << 21

	initName = "INIT.BIN"
)

// Options bundles the collaborators NewKernel needs to wire a Kernel:
// the FAT16-backed file source and the HAL backend (real or
// simulated), plus the table sizes SPEC_FULL.md's cfg package exposes.
type Options struct {
	FileSource    FileSource
	PageAllocator PageAllocator
	AddrSpaces    AddressSpaceFactory
	CtxSwitch     ContextSwitcher
	Metrics       *metrics.Kernel

	MaxProcs         int
	MaxOpenFiles     int
	MaxFdsPerProcess int
}

// Kernel owns every shared, single-writer structure spec.md §5 names:
// process_table, ready_queue, wait_list, zombie_list,
// global_file_table, inode_table, fg_process, pid_num (inside
// ProcessTable). There is no internal locking; mutual exclusion is by
// the caller never re-entering these methods concurrently, matching
// the cooperative, interrupt-masked-during-scheduling model of §5.
type Kernel struct {
	Processes *ProcessTable
	ReadyQ    Queue
	WaitQ     Queue
	ZombieQ   Queue

	OpenFiles *OpenFileTable
	Inodes    *InodeCache

	Current   *Process
	FgProcess *Process
	Shutdown  bool

	ctxSwitch ContextSwitcher
	metrics   *metrics.Kernel
}

// NewKernel boots a Kernel: slot 0 becomes the idle process (state
// RUNNING, pid 0, daemon), then pid 1 is created, has INIT.BIN loaded
// into it, and is placed on the ready queue — mirroring the original
// kernel's init_idle_process/init_user_process boot sequence.
func NewKernel(opts Options) (*Kernel, error) {
	inodes := NewInodeCache(opts.FileSource)
	openFiles := NewOpenFileTable(inodes, opts.MaxOpenFiles)
	processes := NewProcessTable(opts.MaxProcs, opts.PageAllocator, opts.AddrSpaces, opts.MaxFdsPerProcess)

	k := &Kernel{
		Processes: processes,
		OpenFiles: openFiles,
		Inodes:    inodes,
		ctxSwitch: opts.CtxSwitch,
		metrics:   opts.Metrics,
	}

	idle := processes.Idle()
	idle.Pid = 0
	idle.State = StateRunning
	idle.Daemon = true
	idle.AddrSpace = opts.AddrSpaces.New()
	idle.RegContext = &TrapFrame{}
	k.Current = idle

	init, err := processes.Alloc(UserspaceBase, PageSize)
	if err != nil {
		return nil, fmt.Errorf("kernel: allocating init process: %w", err)
	}
	init.Ppid = 0
	init.Daemon = true
	init.resetHandlers()
	if err := k.loadImage(init, initName, []string{initName}); err != nil {
		return nil, fmt.Errorf("kernel: loading %s into init: %w", initName, err)
	}
	init.State = StateReady
	k.ReadyQ.PushBack(init)

	return k, nil
}

// CheckInvariants panics if any of spec.md §3/§8 invariants is
// violated. Tests call it directly, and cmd/run.go calls it once at the
// end of a run when Debug.ExitOnInvariantViolation is set; grounded on
// fs/fs.go's checkInvariants panic-on-violation idiom.
func (k *Kernel) CheckInvariants() {
	k.Processes.checkInvariants()
	k.OpenFiles.checkInvariants()
	k.Inodes.checkInvariants(k.OpenFiles)

	running := 0
	for _, p := range k.Processes.Slots() {
		if p.State == StateRunning {
			running++
		}
	}
	if running != 1 {
		panic(fmt.Sprintf("kernel: expected exactly one RUNNING process, found %d", running))
	}
	if k.Current.State != StateRunning {
		panic("kernel: Current is not RUNNING")
	}

	var ready, sleep, killed int
	for _, p := range k.Processes.Slots() {
		switch p.State {
		case StateReady:
			if p.Pid != 0 {
				ready++
			}
		case StateSleep:
			sleep++
		case StateKilled:
			killed++
		}
	}
	if ready != k.ReadyQ.Len() {
		panic(fmt.Sprintf("kernel: %d READY processes but ready_queue has %d", ready, k.ReadyQ.Len()))
	}
	if sleep != k.WaitQ.Len() {
		panic(fmt.Sprintf("kernel: %d SLEEP processes but wait_list has %d", sleep, k.WaitQ.Len()))
	}
	if killed != k.ZombieQ.Len() {
		panic(fmt.Sprintf("kernel: %d KILLED processes but zombie_list has %d", killed, k.ZombieQ.Len()))
	}
}

// ActiveProcs implements the get_active_procs syscall: a snapshot of
// every non-UNUSED pid, for the ps CLI.
func (k *Kernel) ActiveProcs() []int {
	var pids []int
	for _, p := range k.Processes.Slots() {
		if p.State != StateUnused {
			pids = append(pids, p.Pid)
		}
	}
	return pids
}

// ProcData implements the get_proc_data syscall: ppid, state, name and
// argv for one live pid.
type ProcData struct {
	Pid   int
	Ppid  int
	State State
	Name  string
	Argv  []string
}

func (k *Kernel) ProcData(pid int) (ProcData, bool) {
	p := k.Processes.ByPid(pid)
	if p == nil {
		return ProcData{}, false
	}
	var argv []string
	if p.AddrSpace != nil {
		argv = p.AddrSpace.Argv()
	}
	return ProcData{Pid: p.Pid, Ppid: p.Ppid, State: p.State, Name: p.Name, Argv: argv}, true
}
