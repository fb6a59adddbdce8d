package kernel

import "fmt"

// OpenFile is a shared, reference-counted handle representing one
// "opening" of a file — what gets duplicated across fork. Offset is
// reserved per spec.md §3 but unused beyond full-file reads.
type OpenFile struct {
	Inode    *Inode
	RefCount int
	Offset   uint32
}

// OpenFileTable is the fixed-size global open-file pool (component C),
// grounded on fs/fs.go's handles map + nextHandleID allocator, adapted
// to a fixed array since spec.md requires a bounded pool rather than a
// growable map.
type OpenFileTable struct {
	inodes  *InodeCache
	entries []OpenFile
}

// NewOpenFileTable sizes the pool to size entries (the configured
// process.max-open-files).
func NewOpenFileTable(inodes *InodeCache, size int) *OpenFileTable {
	return &OpenFileTable{inodes: inodes, entries: make([]OpenFile, size)}
}

// acquire scans linearly for a free (inode==nil) entry.
func (t *OpenFileTable) acquire() *OpenFile {
	for i := range t.entries {
		if t.entries[i].Inode == nil {
			return &t.entries[i]
		}
	}
	return nil
}

// Open resolves path through the inode cache and installs a fresh
// open-file entry with ref_count=1, per §4.C step 2-4. It does not
// touch any process's fd table; syscalls.go's Open does that (step 1
// and 5) so OpenFileTable stays free of per-process state.
func (t *OpenFileTable) Open(path string) (*OpenFile, error) {
	dirIndex, ok := t.inodes.SearchFile(path)
	if !ok {
		return nil, ErrFileNotFound
	}
	entry := t.acquire()
	if entry == nil {
		return nil, ErrOpenFileTableFull
	}
	in, err := t.inodes.Get(dirIndex)
	if err != nil {
		return nil, err
	}
	*entry = OpenFile{Inode: in, RefCount: 1}
	return entry, nil
}

// Close drops one reference to entry; when the last reference is
// dropped the inode is released and the entry returned to the free
// pool, per §4.C "On close_file".
func (t *OpenFileTable) Close(entry *OpenFile) {
	if entry == nil || entry.Inode == nil {
		return
	}
	entry.RefCount--
	if entry.RefCount <= 0 {
		t.inodes.Put(entry.Inode)
		entry.Inode = nil
		entry.RefCount = 0
		entry.Offset = 0
	}
}

// checkInvariants enforces §3 invariant 6 / §8 testable property 5: a
// nonzero-inode entry always has ref_count >= 1.
func (t *OpenFileTable) checkInvariants() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Inode != nil && e.RefCount < 1 {
			panic(fmt.Sprintf("kernel: open-file entry %d has inode but ref_count=%d", i, e.RefCount))
		}
		if e.Inode == nil && e.RefCount != 0 {
			panic(fmt.Sprintf("kernel: open-file entry %d has no inode but ref_count=%d", i, e.RefCount))
		}
	}
}
