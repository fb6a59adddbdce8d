package kernel

import (
	"fmt"

	"github.com/amoldhamale1105/frostbite/internal/logger"
)

// WNOHANG makes Wait return 0 immediately instead of blocking when no
// child has exited yet, per §4.I wait's options argument.
const WNOHANG = 1

// loadImage resolves path through the open-file/inode layers, reads its
// full contents into p's address space, and stages argv the way the
// original kernel's exec() does: copy the image, then write argv into
// the fresh address space and patch the trap frame's SP0/X1/X2 so the
// entry trampoline finds argc/argv on the user stack. p.Name becomes
// path. argv is written verbatim; callers own any daemon-marker
// detection and stripping.
func (k *Kernel) loadImage(p *Process, path string, argv []string) error {
	entry, err := k.OpenFiles.Open(path)
	if err != nil {
		return err
	}
	defer k.OpenFiles.Close(entry)

	buf := make([]byte, entry.Inode.FileSize)
	if _, err := k.Inodes.LoadFile(entry.Inode, buf); err != nil {
		return err
	}
	if err := p.AddrSpace.Load(buf); err != nil {
		return err
	}

	p.Name = path
	sp := p.AddrSpace.WriteArgv(argv)
	p.RegContext.SP0 = sp
	p.RegContext.X1 = sp
	p.RegContext.X2 = uint64(len(argv))
	return nil
}

// Fork implements §4.I fork: duplicate the caller's PCB, address space
// and fd table (bumping every shared open-file entry's ref_count), and
// place the child on the ready queue with a copied trap frame whose X0
// reads 0, so the userspace calling convention's "child sees 0" holds.
func (k *Kernel) Fork() (int, error) {
	parent := k.Current
	child, err := k.Processes.Alloc(UserspaceBase, PageSize)
	if err != nil {
		return -1, err
	}

	child.Ppid = parent.Pid
	child.Name = parent.Name
	child.Daemon = parent.Daemon
	child.Handlers = parent.Handlers
	child.Wpid = 0

	if err := child.AddrSpace.CopyFrom(parent.AddrSpace); err != nil {
		return -1, fmt.Errorf("kernel: fork: copying address space: %w", err)
	}

	for i, of := range parent.Fds {
		if of == nil {
			continue
		}
		of.RefCount++
		child.Fds[i] = of
	}

	*child.RegContext = *parent.RegContext
	child.RegContext.X0 = 0

	child.State = StateReady
	k.ReadyQ.PushBack(child)

	k.metrics.Forks.Inc()
	return child.Pid, nil
}

// Exec implements §4.I exec: load a fresh image over the caller's
// existing address space, reset its signal handlers, and hand it a
// brand new trap frame. A trailing "&" argv entry marks the process a
// daemon and is consumed, per the original kernel's background-job
// convention: it never reaches the loaded image's argc/argv.
func (k *Kernel) Exec(path string, argv []string) error {
	p := k.Current
	p.resetHandlers()
	p.RegContext.Reset()
	p.RegContext.ELR = UserspaceBase
	p.RegContext.SP0 = UserspaceBase + PageSize

	daemon := len(argv) > 0 && argv[len(argv)-1] == "&"
	if daemon {
		argv = argv[:len(argv)-1]
	}
	if err := k.loadImage(p, path, argv); err != nil {
		return err
	}
	p.Daemon = daemon
	return nil
}

// Exit implements §4.I exit: pack the status, hand SIGCHLD (and the
// packed status) to the parent captured before any reparenting, give
// every child to init, hand the foreground slot back to a non-daemon
// parent (or clear it), move p onto the zombie list, wake FG_PAUSED
// waiters when p is not a daemon, and wake ZOMBIE_CLEANUP waiters.
// fromHandler marks exit() called
// from a signal's default action (status packed into bits 0-6, no
// reschedule — the caller, checkPendingSignals, is already inside
// schedule()).
func (k *Kernel) Exit(p *Process, status int32, fromHandler bool) {
	if p.State == StateUnused || p.State == StateKilled {
		return
	}

	if fromHandler {
		p.Status |= status & 0x7f
	} else {
		p.Status |= (status & 0xff) << 8
	}

	k.ReadyQ.Remove(p)
	k.WaitQ.Remove(p)
	p.State = StateKilled
	p.Event = p.Pid

	parent := k.Processes.ByPid(p.Ppid)
	if parent != nil && parent.State != StateKilled {
		parent.Signals |= 1 << SIGCHLD
		parent.Status = p.Status
		if parent.Wpid >= 0 && parent.Wpid != p.Pid {
			p.Ppid = 1
		}
	} else {
		p.Ppid = 1
	}

	for _, c := range k.Processes.Slots() {
		if c.State != StateUnused && c.Pid != 0 && c.Pid != p.Pid && c.Ppid == p.Pid {
			c.Ppid = 1
		}
	}

	if k.FgProcess == p {
		if parent != nil && !parent.Daemon {
			k.FgProcess = parent
		} else {
			k.FgProcess = nil
		}
	}

	if !p.Daemon {
		k.WakeUp(EventFGPaused)
	}

	k.ZombieQ.PushBack(p)
	k.WakeUp(EventZombieCleanup)

	k.metrics.Exits.Inc()
	logger.Infof("exit: pid=%d ppid=%d status=%#x", p.Pid, p.Ppid, p.Status)

	if !fromHandler {
		k.schedule()
	}
}

// Wait implements §4.I wait: pid > 0 waits for one specific child,
// pid == -1 waits for any child. Mirrors the original kernel's
// scan-and-break-on-first-zombie-found ordering: the table is walked
// in slot order and the first already-exited match wins, rather than
// picking a distinguished child some other way.
func (k *Kernel) Wait(pid int, wstatus *int32, options int) int {
	if pid == 0 || pid < -1 {
		return -1
	}
	p := k.Current
	p.Wpid = pid

	for {
		hasChild := false
		var zombie *Process
		for _, c := range k.Processes.Slots() {
			if c.State == StateUnused || c.Pid == 0 || c.Ppid != p.Pid {
				continue
			}
			if pid != -1 && c.Pid != pid {
				continue
			}
			hasChild = true
			if c.State == StateKilled {
				zombie = c
				break
			}
		}
		if !hasChild {
			return -1
		}
		if zombie != nil {
			reaped := zombie.Pid
			if wstatus != nil {
				*wstatus = zombie.Status
			}
			k.reap(zombie)
			if pid == -1 {
				k.WakeUp(EventZombieCleanup)
			}
			return reaped
		}
		if options&WNOHANG != 0 {
			return 0
		}
		k.Sleep(EventZombieCleanup)
	}
}

// reap releases every resource a KILLED process held: its open fds,
// kernel stack and address space, then returns the slot to UNUSED.
func (k *Kernel) reap(p *Process) {
	k.ZombieQ.Remove(p)
	for i, of := range p.Fds {
		if of == nil {
			continue
		}
		k.OpenFiles.Close(of)
		p.Fds[i] = nil
	}
	k.Processes.Free(p)
}

// Kill implements §4.I kill's three pid forms: pid > 0 targets one
// process, pid == 0 broadcasts to the caller's own children, pid == -1
// broadcasts system-wide (skipping init and the caller). A SIGHUP
// broadcast additionally releases zombies not parented by init and
// resets the pid counter; a SIGTERM broadcast also reaches init and
// idle, which is how system shutdown is initiated (§4.F/§9).
func (k *Kernel) Kill(pid, sig int) int {
	if sig < 0 || sig >= NumSignals {
		return -1
	}

	switch {
	case pid > 0:
		target := k.Processes.ByPid(pid)
		if target == nil {
			return -1
		}
		if err := k.sendSignal(target, sig); err != nil {
			return -1
		}
		k.metrics.Signals.Inc()
		return 0

	case pid == 0:
		caller := k.Current
		for _, c := range k.Processes.Slots() {
			if c.State != StateUnused && c.Pid != 0 && c.Ppid == caller.Pid {
				k.sendSignal(c, sig)
				k.metrics.Signals.Inc()
			}
		}
		return 0

	default: // pid == -1
		return k.broadcastKill(sig)
	}
}

func (k *Kernel) broadcastKill(sig int) int {
	caller := k.Current
	for _, p := range k.Processes.Slots() {
		if p.State == StateUnused || p.Pid == 0 || p.Pid == 1 || p.Pid == caller.Pid {
			continue
		}
		k.sendSignal(p, sig)
		k.metrics.Signals.Inc()
	}

	switch sig {
	case SIGHUP:
		k.releaseUnattendedZombies()
		k.Processes.resetPidCounter(2)
	case SIGTERM:
		if init := k.Processes.ByPid(1); init != nil {
			k.sendSignal(init, sig)
		}
		k.sendSignal(k.Processes.Idle(), sig)
	}
	return 0
}

// releaseUnattendedZombies force-reaps every KILLED process not parented
// by init, part of kill(-1, SIGHUP)'s cleanup semantics. A zombie whose
// ppid is 1 is left alone: init's own wait() loop is trusted to reap its
// children, the same split the original kernel draws. Each zombie's fd
// table is walked with its own fresh index — the original kernel's
// kill(-1, SIGHUP) reused one outer scan index across processes here,
// corrupting the broadcast loop; that bug is not reproduced.
func (k *Kernel) releaseUnattendedZombies() {
	var zombies []*Process
	for n := k.ZombieQ.Front(); n != nil; n = n.qNextSafe() {
		zombies = append(zombies, n)
	}
	for _, z := range zombies {
		if z.Ppid == 1 {
			continue
		}
		for j := range z.Fds {
			if z.Fds[j] == nil {
				continue
			}
			k.OpenFiles.Close(z.Fds[j])
			z.Fds[j] = nil
		}
		k.reap(z)
	}
}

// Open implements §4.C's process-facing half: find a free fd in the
// caller's table, install a freshly opened entry, and return the fd.
func (k *Kernel) Open(path string) (int, error) {
	p := k.Current
	fd := -1
	for i, of := range p.Fds {
		if of == nil {
			fd = i
			break
		}
	}
	if fd == -1 {
		return -1, ErrFdTableFull
	}
	entry, err := k.OpenFiles.Open(path)
	if err != nil {
		return -1, err
	}
	p.Fds[fd] = entry
	return fd, nil
}

// Close implements §4.C's process-facing half: drop the caller's
// reference to the open-file entry at fd and clear the slot.
func (k *Kernel) Close(fd int) error {
	p := k.Current
	if fd < 0 || fd >= len(p.Fds) || p.Fds[fd] == nil {
		return ErrBadFd
	}
	k.OpenFiles.Close(p.Fds[fd])
	p.Fds[fd] = nil
	return nil
}
