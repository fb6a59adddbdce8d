// Package simhal is the in-process stand-in for the hardware-adjacent
// collaborators spec.md §1 declares out of scope: the physical page
// allocator, userspace page-map setup/copy/free, and the context-switch
// primitive. It backs internal/kernel's HAL interfaces (hal.go) so the
// scheduler and lifecycle syscalls run against real call sites without
// needing an aarch64 target.
package simhal

import (
	"fmt"

	"github.com/amoldhamale1105/frostbite/internal/kernel"
)

// PageSize matches spec.md's "all regions are expected to lie in the
// same 2M page" constraint, simplified to a single simulated page per
// address space.
const PageSize = 1 << 21

// Allocator is an in-process stand-in for alloc_page()/free_page(addr).
type Allocator struct {
	outstanding int
}

func NewAllocator() *Allocator { return &Allocator{} }

func (a *Allocator) AllocPage() (*kernel.Page, error) {
	a.outstanding++
	return &kernel.Page{Bytes: make([]byte, PageSize)}, nil
}

func (a *Allocator) FreePage(p *kernel.Page) {
	if a.outstanding == 0 {
		panic("simhal: FreePage called with no outstanding pages")
	}
	a.outstanding--
}

// Outstanding reports the number of pages currently allocated, for
// tests asserting that exit/wait releases every page it took.
func (a *Allocator) Outstanding() int { return a.outstanding }

// AddressSpace is an in-process stand-in for a process's page-map: one
// simulated page of "userspace" bytes plus a recorded argv, since there
// is no real second-level page table to walk.
type AddressSpace struct {
	mem    []byte
	argv   []string
	active bool
}

// Factory implements kernel.AddressSpaceFactory.
type Factory struct{}

func NewFactory() Factory { return Factory{} }

func (Factory) New() kernel.AddressSpace {
	return &AddressSpace{mem: make([]byte, PageSize)}
}

func (a *AddressSpace) CopyFrom(src kernel.AddressSpace) error {
	s, ok := src.(*AddressSpace)
	if !ok {
		return fmt.Errorf("simhal: CopyFrom: incompatible address space type %T", src)
	}
	copy(a.mem, s.mem)
	a.argv = append([]string(nil), s.argv...)
	return nil
}

func (a *AddressSpace) Load(buf []byte) error {
	if len(buf) > len(a.mem) {
		return fmt.Errorf("simhal: image of %d bytes does not fit in one %d byte page", len(buf), len(a.mem))
	}
	for i := range a.mem {
		a.mem[i] = 0
	}
	copy(a.mem, buf)
	a.argv = nil
	return nil
}

func (a *AddressSpace) Activate() { a.active = true }

func (a *AddressSpace) WriteArgv(argv []string) uint64 {
	a.argv = append([]string(nil), argv...)
	// There is no real user-stack pointer to compute in the
	// simulation; the top of the page stands in for it, matching
	// "copy argv ... to user stack (top-down)".
	return uint64(len(a.mem))
}

func (a *AddressSpace) Argv() []string {
	return append([]string(nil), a.argv...)
}

func (a *AddressSpace) Free() {
	a.mem = nil
	a.argv = nil
}

// Switcher is an in-process stand-in for swap(&old_sp, new_sp): there
// is no real kernel stack to resume, so it just records switches.
type Switcher struct {
	Switches int
}

func NewSwitcher() *Switcher { return &Switcher{} }

func (s *Switcher) Switch(old, new *uint64) {
	s.Switches++
	*old, *new = *new, *old
}
