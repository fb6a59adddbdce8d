package kernel

import "fmt"

// FileSource is the narrow surface internal/fat16 exposes to the
// kernel core — spec.md §1 puts the raw FAT16 reader (BPB parsing,
// cluster walk, path splitting) out of scope, reused as a pure
// load_file(path, buf) -> status primitive plus a directory search.
type FileSource interface {
	SearchFile(name string) (dirIndex int, ok bool)
	Stat(dirIndex int) (size uint32, cluster uint16, name, ext string, ok bool)
	LoadFile(dirIndex int, buf []byte) (n int, err error)
	RootEntryCount() int
}

// Inode is a cached FAT16 root-directory entry. DirIndex doubles as its
// identity and its index into InodeCache.entries (§3 invariant 9: the
// inode cache is positional, keyed by FAT16 directory slot).
type Inode struct {
	DirIndex     int
	FileSize     uint32
	ClusterIndex uint16
	Name         string
	Ext          string
	RefCount     int
}

// InodeCache maps FAT16 root-directory slot index to cached metadata,
// grounded on fs/inode/lookup_count.go's Inc/Dec-to-zero shape: external
// synchronization is required (the kernel is single-writer per spec.md
// §5) so no mutex is taken here, matching the teacher's own comment on
// lookupCount.
type InodeCache struct {
	fs      FileSource
	entries []Inode // index == dirIndex; RefCount==0 means unpopulated/free
}

// NewInodeCache sizes the cache to the FAT16 root directory's entry
// count, per §3 invariant 9.
func NewInodeCache(fs FileSource) *InodeCache {
	return &InodeCache{fs: fs, entries: make([]Inode, fs.RootEntryCount())}
}

// Get returns the cached inode for dirIndex, populating it from the
// FAT16 directory on first reference, and increments its ref count.
func (c *InodeCache) Get(dirIndex int) (*Inode, error) {
	if dirIndex < 0 || dirIndex >= len(c.entries) {
		return nil, fmt.Errorf("kernel: dir index %d out of range", dirIndex)
	}
	in := &c.entries[dirIndex]
	if in.RefCount == 0 {
		size, cluster, name, ext, ok := c.fs.Stat(dirIndex)
		if !ok {
			return nil, ErrFileNotFound
		}
		in.DirIndex = dirIndex
		in.FileSize = size
		in.ClusterIndex = cluster
		in.Name = name
		in.Ext = ext
	}
	in.RefCount++
	return in, nil
}

// Put releases one reference to in, per §4.B.
func (c *InodeCache) Put(in *Inode) {
	if in.RefCount <= 0 {
		panic(fmt.Sprintf("kernel: iput on unreferenced inode dir_index=%d", in.DirIndex))
	}
	in.RefCount--
}

// SearchFile resolves an 8.3 path to a directory index via the
// underlying FAT16 reader; does not touch the cache.
func (c *InodeCache) SearchFile(name string) (int, bool) {
	return c.fs.SearchFile(name)
}

// LoadFile reads the full contents of the file backing in into buf.
func (c *InodeCache) LoadFile(in *Inode, buf []byte) (int, error) {
	return c.fs.LoadFile(in.DirIndex, buf)
}

// checkInvariants re-derives inode.RefCount from the set of open-file
// entries referencing it (spec.md §3 invariant 7 / §8 testable property
// 4), grounded on fs/fs.go's checkInvariants panic-on-violation style.
func (c *InodeCache) checkInvariants(files *OpenFileTable) {
	counts := make(map[int]int)
	for i := range files.entries {
		e := &files.entries[i]
		if e.Inode != nil {
			counts[e.Inode.DirIndex]++
		}
	}
	for i := range c.entries {
		in := &c.entries[i]
		if in.RefCount != counts[i] {
			panic(fmt.Sprintf(
				"kernel: inode dir_index=%d ref_count=%d but %d open-file entries reference it",
				i, in.RefCount, counts[i]))
		}
	}
}
