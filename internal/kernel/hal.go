package kernel

// The types in this file stand in for the collaborators spec.md §1 puts
// out of scope: the physical page allocator, userspace page-map
// setup/copy/free, and the trap-frame/context-switch primitives. The
// scheduler and lifecycle syscalls call through these interfaces
// exactly at the points the original kernel calls alloc_page/copy_uvm/
// swap, so the simulated backend (internal/simhal) and a future real
// aarch64 backend are interchangeable.

// Page is an opaque unit of memory handed out by the external physical
// page allocator. The kernel core only ever holds a *Page, never
// inspects its contents.
type Page struct {
	Bytes []byte
}

// PageAllocator stands in for alloc_page()/free_page(addr). Both calls
// are documented as early/critical in spec.md §7: allocation failure
// during process creation is fatal to the kernel, never reported to
// the caller as -1.
type PageAllocator interface {
	AllocPage() (*Page, error)
	FreePage(p *Page)
}

// AddressSpace stands in for a process's page-map (the GDT root table
// in the original kernel). CopyFrom backs fork's copy_uvm; Load backs
// exec's "zero the page, read the new image in".
type AddressSpace interface {
	CopyFrom(src AddressSpace) error
	Load(buf []byte) error
	Activate()
	// WriteArgv serializes argv into the top of the simulated user
	// stack (exec step 7: "copy argv from kernel-stack scratch to user
	// stack (top-down)") and returns the address of the argv pointer
	// array for RegContext.X1.
	WriteArgv(argv []string) uint64
	// Argv returns the most recently written argv, for the
	// get_proc_data introspection syscall.
	Argv() []string
	Free()
}

// AddressSpaceFactory stands in for userspace page-map setup: the
// allocation half of what copy_uvm/setup_uvm do in the original kernel.
type AddressSpaceFactory interface {
	New() AddressSpace
}

// TrapFrame mirrors the subset of the saved EL0 register context
// spec.md names by field: elr, sp0, spsr, and the argument/return
// registers syscalls, fork and signal delivery touch directly.
type TrapFrame struct {
	ELR  uint64
	SP0  uint64
	SPSR uint64
	X0   uint64
	X1   uint64
	X2   uint64
	X5   uint64
}

// Reset zeroes the frame, matching exec's "zero trap frame" step.
func (f *TrapFrame) Reset() {
	*f = TrapFrame{}
}

// ContextSwitcher stands in for swap(&old_sp, new_sp).
type ContextSwitcher interface {
	Switch(old, new *uint64)
}
