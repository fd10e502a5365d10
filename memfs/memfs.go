package memfs

import (
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-mountfs/mountfs/gofs"
)

type memObject interface {
	size() int64
}

type memFile struct {
	dataMtx sync.Mutex
	// Must acquire data.dataMtx to modify.
	data []byte
}

func (m *memFile) size() int64 {
	return int64(len(m.data))
}

var _ memObject = (*memFile)(nil)

type memDir struct {
	// Must acquire memfs.mtx to modify.
	dentries map[string]*memItem
}

func (m *memDir) size() int64 {
	return int64(0)
}

var _ memObject = (*memDir)(nil)

// memLink is a symbolic link. The target is kept exactly
// as it was given to Symlink.
type memLink struct {
	target string
}

func (m *memLink) size() int64 {
	return int64(len(m.target))
}

var _ memObject = (*memLink)(nil)

type memItem struct {
	metaMtx    sync.Mutex
	name       string
	mode       os.FileMode
	createTime time.Time
	accessTime time.Time
	modifyTime time.Time
	obj        memObject
}

func newMemItem(mode os.FileMode, name string, obj memObject) *memItem {
	now := time.Now()
	return &memItem{
		name:       name,
		mode:       mode,
		createTime: now,
		accessTime: now,
		modifyTime: now,
		obj:        obj,
	}
}

func (m *memItem) touch() {
	m.metaMtx.Lock()
	defer m.metaMtx.Unlock()
	now := time.Now()
	m.accessTime = now
	m.modifyTime = now
}

type memStat struct {
	name       string
	mode       os.FileMode
	modifyTime time.Time
	size       int64
}

func (s memStat) IsDir() bool        { return s.mode.IsDir() }
func (s memStat) ModTime() time.Time { return s.modifyTime }
func (s memStat) Mode() fs.FileMode  { return s.mode }
func (s memStat) Name() string       { return s.name }
func (s memStat) Size() int64        { return s.size }
func (memStat) Sys() any             { return nil }

var _ os.FileInfo = memStat{}

func (item *memItem) stat() os.FileInfo {
	item.metaMtx.Lock()
	defer item.metaMtx.Unlock()
	return memStat{
		name:       item.name,
		mode:       item.mode,
		modifyTime: item.modifyTime,
		size:       item.obj.size(),
	}
}

// MemFS is a file system held entirely in memory.
//
// Besides files and directories it supports hard links and
// symbolic links. A symbolic link whose target climbs above
// the root makes the operation fail with an
// *gofs.OutsideTreeError.
type MemFS struct {
	mtx      sync.Mutex
	rootItem *memItem
	rootDir  *memDir
}

func New() *MemFS {
	rootDir := &memDir{
		dentries: make(map[string]*memItem),
	}
	rootItem := newMemItem(
		os.FileMode(0777)|os.ModeDir,
		"/", rootDir,
	)
	result := &MemFS{
		rootItem: rootItem,
		rootDir:  rootDir,
	}
	return result
}

type memOpenFile struct {
	item   *memItem
	flag   int
	file   *memFile
	offset int64
}

func (m *memOpenFile) Close() error               { return nil }
func (m *memOpenFile) Stat() (os.FileInfo, error) { return m.item.stat(), nil }

func (m *memOpenFile) Sync() error {
	m.item.touch()
	return nil
}

const (
	allModeFlags = os.O_RDONLY | os.O_WRONLY | os.O_RDWR
)

func (m *memOpenFile) Read(p []byte) (n int, err error) {
	numRead, err := m.ReadAt(p, m.offset)
	m.offset += int64(numRead)
	return numRead, err
}

func (m *memOpenFile) ReadAt(p []byte, off int64) (n int, err error) {
	if m.flag&allModeFlags == os.O_WRONLY {
		return 0, errAccess
	}

	defer m.item.touch()
	m.file.dataMtx.Lock()
	defer m.file.dataMtx.Unlock()
	sliceOff := min(off, int64(len(m.file.data)))
	numRead := copy(p, m.file.data[sliceOff:])
	if numRead < len(p) {
		return numRead, io.EOF
	}
	return numRead, nil
}

func (m *memOpenFile) Readdir(count int) ([]os.FileInfo, error) {
	return nil, errNotDir
}

func (m *memOpenFile) Seek(offset int64, whence int) (int64, error) {
	m.file.dataMtx.Lock()
	defer m.file.dataMtx.Unlock()
	switch whence {
	case io.SeekStart:
		m.offset = 0
	case io.SeekEnd:
		m.offset = int64(len(m.file.data))
	}
	m.offset += offset
	return m.offset, nil
}

func (file *memFile) reserveLocked(size int64) {
	lesser := size - int64(len(file.data))
	if lesser > 0 {
		filling := make([]byte, int(lesser))
		file.data = append(file.data, filling...)
	}
}

func (m *memOpenFile) Truncate(size int64) error {
	if m.flag&allModeFlags == os.O_RDONLY {
		return errAccess
	}
	defer m.item.touch()
	m.file.dataMtx.Lock()
	defer m.file.dataMtx.Unlock()
	m.file.reserveLocked(size)
	m.file.data = m.file.data[:size]
	return nil
}

func (m *memOpenFile) writeWithDataLock(f func() (int, error)) (int, error) {
	if m.flag&allModeFlags == os.O_RDONLY {
		return 0, errAccess
	}
	defer m.item.touch()
	m.file.dataMtx.Lock()
	defer m.file.dataMtx.Unlock()
	return f()
}

func (m *memOpenFile) Write(p []byte) (n int, err error) {
	return m.writeWithDataLock(func() (int, error) {
		if m.flag&os.O_APPEND != 0 {
			m.offset = int64(len(m.file.data))
		}
		m.file.reserveLocked(m.offset + int64(len(p)))
		numWritten := copy(m.file.data[m.offset:], p)
		m.offset += int64(numWritten)
		return numWritten, nil
	})
}

func (m *memOpenFile) WriteAt(p []byte, off int64) (n int, err error) {
	return m.writeWithDataLock(func() (int, error) {
		if m.flag&os.O_APPEND != 0 {
			return 0, errAccess
		}
		m.file.reserveLocked(off + int64(len(p)))
		return copy(m.file.data[off:], p), nil
	})
}

var _ gofs.File = (*memOpenFile)(nil)

type memOpenDir struct {
	fs       *MemFS
	item     *memItem
	dir      *memDir
	snapOnce sync.Once
	snapshot []os.FileInfo
	off      int64
}

func (m *memOpenDir) Close() error                                   { return nil }
func (m *memOpenDir) Read(p []byte) (n int, err error)               { return 0, errIsDir }
func (m *memOpenDir) ReadAt(p []byte, off int64) (n int, err error)  { return 0, errIsDir }
func (m *memOpenDir) Seek(offset int64, whence int) (int64, error)   { return 0, errIsDir }
func (m *memOpenDir) Truncate(size int64) error                      { return errIsDir }
func (m *memOpenDir) Write(p []byte) (n int, err error)              { return 0, errIsDir }
func (m *memOpenDir) WriteAt(p []byte, off int64) (n int, err error) { return 0, errIsDir }

func (m *memOpenDir) Readdir(count int) ([]os.FileInfo, error) {
	m.snapOnce.Do(func() {
		m.fs.mtx.Lock()
		defer m.fs.mtx.Unlock()
		var snapshot []os.FileInfo
		for _, name := range m.dir.sortedNames() {
			snapshot = append(snapshot, m.dir.dentries[name].stat())
		}
		m.snapshot = snapshot
		m.off = 0
	})
	sliceOff := min(m.off, int64(len(m.snapshot)))
	if count <= 0 {
		result := append([]os.FileInfo(nil), m.snapshot[sliceOff:]...)
		m.off = int64(len(m.snapshot))
		return result, nil
	}
	result := make([]os.FileInfo, count)
	copied := copy(result, m.snapshot[sliceOff:])
	if copied == 0 {
		return nil, io.EOF
	}
	m.off += int64(copied)
	return result[:copied], nil
}

func (m *memOpenDir) Stat() (os.FileInfo, error) {
	return m.item.stat(), nil
}

func (m *memOpenDir) Sync() error {
	m.item.touch()
	return nil
}

var _ gofs.File = (*memOpenDir)(nil)

func (d *memDir) sortedNames() []string {
	names := make([]string, 0, len(d.dentries))
	for name := range d.dentries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// maxLinkHops bounds the symbolic links followed while
// resolving a single name.
const maxLinkHops = 40

// lookup is the result of resolving a name. The item is nil
// when the parent directory exists but has no such entry.
// For the root, dirItem and dir are nil.
type lookup struct {
	dirItem *memItem
	dir     *memDir
	base    string
	item    *memItem
}

func cleanRel(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (m *MemFS) lookupLocked(name string, follow bool) (lookup, error) {
	rel := cleanRel(name)
	for hops := 0; ; hops++ {
		if rel == "" {
			return lookup{item: m.rootItem}, nil
		}
		comps := strings.Split(rel, "/")
		dirItem, dir := m.rootItem, m.rootDir
		for i, comp := range comps {
			last := i == len(comps)-1
			item, ok := dir.dentries[comp]
			if !ok {
				if last {
					return lookup{dirItem: dirItem, dir: dir, base: comp}, nil
				}
				return lookup{}, os.ErrNotExist
			}
			if link, isLink := item.obj.(*memLink); isLink && (follow || !last) {
				if hops >= maxLinkHops {
					return lookup{}, errLoop
				}
				next, err := gofs.ResolveLink(
					path.Join(comps[:i]...), link.target, comps[i+1:]...,
				)
				if err != nil {
					return lookup{}, err
				}
				rel = next
				break
			}
			if last {
				return lookup{dirItem: dirItem, dir: dir, base: comp, item: item}, nil
			}
			sub, isDir := item.obj.(*memDir)
			if !isDir {
				return lookup{}, errNotDir
			}
			dirItem, dir = item, sub
		}
	}
}

func (l lookup) isRoot() bool {
	return l.dir == nil
}

func (m *MemFS) openItem(item *memItem, flag int) (gofs.File, error) {
	switch t := item.obj.(type) {
	case *memFile:
		return &memOpenFile{
			item: item,
			flag: flag,
			file: t,
		}, nil
	case *memDir:
		if flag&allModeFlags != os.O_RDONLY {
			return nil, errIsDir
		}
		return &memOpenDir{
			fs:   m,
			item: item,
			dir:  t,
		}, nil
	default:
		return nil, errAccess
	}
}

func (m *MemFS) OpenFile(name string, flag int, perm os.FileMode) (gofs.File, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	l, err := m.lookupLocked(name, true)
	if err != nil {
		return nil, err
	}

	const createExclFlags = os.O_CREATE | os.O_EXCL
	if l.item != nil {
		if flag&createExclFlags == createExclFlags {
			return nil, os.ErrExist
		}
		result, err := m.openItem(l.item, flag)
		if err != nil {
			return nil, err
		}
		if _, isFile := l.item.obj.(*memFile); isFile && flag&os.O_TRUNC != 0 {
			if err := result.Truncate(0); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	if flag&os.O_CREATE == 0 {
		return nil, os.ErrNotExist
	}
	file := &memFile{}
	item := newMemItem(perm.Perm(), l.base, file)
	l.dir.dentries[l.base] = item
	l.dirItem.touch()
	return &memOpenFile{
		item: item,
		flag: flag,
		file: file,
	}, nil
}

func (m *MemFS) Mkdir(name string, perm os.FileMode) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	l, err := m.lookupLocked(name, false)
	if err != nil {
		return err
	}
	if l.item != nil {
		return os.ErrExist
	}

	l.dir.dentries[l.base] = newMemItem(
		perm.Perm()|fs.ModeDir,
		l.base,
		&memDir{
			dentries: make(map[string]*memItem),
		},
	)
	l.dirItem.touch()
	return nil
}

func (m *MemFS) Remove(name string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	l, err := m.lookupLocked(name, false)
	if err != nil {
		return err
	}
	if l.isRoot() {
		// Cannot delete root directory.
		return errAccess
	}
	if l.item == nil {
		return os.ErrNotExist
	}
	if dir, ok := l.item.obj.(*memDir); ok && len(dir.dentries) > 0 {
		return errNotEmpty
	}

	delete(l.dir.dentries, l.base)
	l.dirItem.touch()
	return nil
}

func (m *MemFS) Rename(src string, tgt string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	srcRel, tgtRel := cleanRel(src), cleanRel(tgt)
	if srcRel == tgtRel {
		return nil
	}
	if strings.HasPrefix(tgtRel, srcRel+"/") {
		// Cannot move a directory into itself.
		return errInvalid
	}

	s, err := m.lookupLocked(src, false)
	if err != nil {
		return err
	}
	if s.isRoot() {
		return errBusy
	}
	if s.item == nil {
		return os.ErrNotExist
	}
	if (s.dirItem.mode.Perm() & 0200) == 0 {
		return errAccess
	}

	t, err := m.lookupLocked(tgt, false)
	if err != nil {
		return err
	}
	if t.isRoot() {
		return errBusy
	}
	if (t.dirItem.mode.Perm() & 0200) == 0 {
		return errAccess
	}
	if t.item != nil {
		_, srcIsDir := s.item.obj.(*memDir)
		tgtDir, tgtIsDir := t.item.obj.(*memDir)
		switch {
		case srcIsDir && !tgtIsDir:
			return errNotDir
		case !srcIsDir && tgtIsDir:
			return errIsDir
		case tgtIsDir && len(tgtDir.dentries) > 0:
			return errNotEmpty
		}
	}

	// Now it's safe to modify the file.
	item := s.item
	delete(s.dir.dentries, s.base)
	s.dirItem.touch()
	t.dir.dentries[t.base] = item
	t.dirItem.touch()
	func() {
		item.metaMtx.Lock()
		defer item.metaMtx.Unlock()
		item.name = t.base
	}()
	item.touch()
	return nil
}

func (m *MemFS) Stat(name string) (os.FileInfo, error) {
	return m.stat(name, true)
}

func (m *MemFS) Lstat(name string) (os.FileInfo, error) {
	return m.stat(name, false)
}

func (m *MemFS) stat(name string, follow bool) (os.FileInfo, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	l, err := m.lookupLocked(name, follow)
	if err != nil {
		return nil, err
	}
	if l.item == nil {
		return nil, os.ErrNotExist
	}
	return l.item.stat(), nil
}

func (m *MemFS) ReadDir(name string) ([]string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	l, err := m.lookupLocked(name, true)
	if err != nil {
		return nil, err
	}
	if l.item == nil {
		return nil, os.ErrNotExist
	}
	dir, ok := l.item.obj.(*memDir)
	if !ok {
		return nil, errNotDir
	}
	return dir.sortedNames(), nil
}

// Link creates newname as a hard link to oldname. The two
// names share the content but keep their own metadata.
func (m *MemFS) Link(oldname, newname string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	o, err := m.lookupLocked(oldname, false)
	if err != nil {
		return err
	}
	if o.item == nil {
		return os.ErrNotExist
	}
	if _, isDir := o.item.obj.(*memDir); isDir {
		return errAccess
	}

	n, err := m.lookupLocked(newname, false)
	if err != nil {
		return err
	}
	if n.item != nil {
		return os.ErrExist
	}
	n.dir.dentries[n.base] = newMemItem(o.item.stat().Mode(), n.base, o.item.obj)
	n.dirItem.touch()
	return nil
}

func (m *MemFS) Symlink(oldname, newname string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	n, err := m.lookupLocked(newname, false)
	if err != nil {
		return err
	}
	if n.item != nil {
		return os.ErrExist
	}
	n.dir.dentries[n.base] = newMemItem(
		os.FileMode(0777)|os.ModeSymlink,
		n.base, &memLink{target: oldname},
	)
	n.dirItem.touch()
	return nil
}

func (m *MemFS) Readlink(name string) (string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	l, err := m.lookupLocked(name, false)
	if err != nil {
		return "", err
	}
	if l.item == nil {
		return "", os.ErrNotExist
	}
	link, ok := l.item.obj.(*memLink)
	if !ok {
		return "", errInvalid
	}
	return link.target, nil
}

var (
	_ gofs.FileSystem = (*MemFS)(nil)
	_ gofs.LstatFS    = (*MemFS)(nil)
	_ gofs.ReadDirFS  = (*MemFS)(nil)
	_ gofs.LinkFS     = (*MemFS)(nil)
	_ gofs.SymlinkFS  = (*MemFS)(nil)
)
