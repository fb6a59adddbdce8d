package kernel

import "errors"

// Sentinel errors surfaced to syscalls. spec.md §7 classes user-visible
// failures as bare -1 returns with no errno detail; these exist for
// internal callers and tests that want to distinguish failure modes
// without the kernel handing errno-style detail across the syscall
// boundary.
var (
	ErrProcessTableFull = errors.New("kernel: process table full")
	ErrFdTableFull      = errors.New("kernel: descriptor table full")
	ErrOpenFileTableFull = errors.New("kernel: open file table full")
	ErrFileNotFound     = errors.New("kernel: file not found")
	ErrBadFd            = errors.New("kernel: bad file descriptor")
	ErrNoSuchChild      = errors.New("kernel: no matching child")
	ErrBadSignal        = errors.New("kernel: signal number out of range")
	ErrBadPid           = errors.New("kernel: invalid pid argument")
)
