package mountfs

import (
	"io"
	"os"
	"sync"

	"github.com/go-mountfs/mountfs/gofs"
)

// descriptor is what a virtual descriptor stands for.
type descriptor struct {
	file gofs.File

	// name is the canonical path the file was opened at,
	// after redirections.
	name string

	// mount is nil for the default file system.
	mount *mountEntry

	// Paged directory reads, guarded by mtx.
	mtx     sync.Mutex
	listed  map[string]struct{}
	pending []string
	drained bool
}

func (d *descriptor) mountPath() string {
	if d.mount == nil {
		return "/"
	}
	return d.mount.path
}

func (d *descriptor) Fields() map[string]any {
	if d == nil {
		return nil
	}
	return map[string]any{
		"name":  d.name,
		"mount": d.mountPath(),
	}
}

// page completes a paged Readdir of at most count entries.
// The names listed by the file system are recorded, and once
// it reports io.EOF the mount points it did not list are
// handed out in the following pages.
func (d *descriptor) page(
	synthetic func() []string, infos []os.FileInfo, err error, count int,
) ([]os.FileInfo, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if d.listed == nil {
		d.listed = make(map[string]struct{})
	}
	for _, info := range infos {
		d.listed[info.Name()] = struct{}{}
	}
	if err != io.EOF {
		return infos, err
	}
	if !d.drained {
		d.drained = true
		for _, name := range synthetic() {
			if _, ok := d.listed[name]; !ok {
				d.pending = append(d.pending, name)
			}
		}
	}
	for len(d.pending) > 0 && len(infos) < count {
		infos = append(infos, virtualDirInfo(d.pending[0]))
		d.pending = d.pending[1:]
	}
	if len(infos) == 0 {
		return nil, io.EOF
	}
	return infos, nil
}

// descriptorTable issues virtual descriptors in increasing
// order, never reusing one.
type descriptorTable struct {
	mtx  sync.Mutex
	next int
	open map[int]*descriptor
}

func newDescriptorTable(base int) descriptorTable {
	return descriptorTable{
		next: base,
		open: make(map[int]*descriptor),
	}
}

func (dt *descriptorTable) alloc(d *descriptor) int {
	dt.mtx.Lock()
	defer dt.mtx.Unlock()
	fd := dt.next
	dt.next++
	dt.open[fd] = d
	return fd
}

func (dt *descriptorTable) get(fd int) (*descriptor, bool) {
	dt.mtx.Lock()
	defer dt.mtx.Unlock()
	d, ok := dt.open[fd]
	return d, ok
}

func (dt *descriptorTable) release(fd int) (*descriptor, bool) {
	dt.mtx.Lock()
	defer dt.mtx.Unlock()
	d, ok := dt.open[fd]
	if ok {
		delete(dt.open, fd)
	}
	return d, ok
}

// drain releases all descriptors at once.
func (dt *descriptorTable) drain() map[int]*descriptor {
	dt.mtx.Lock()
	defer dt.mtx.Unlock()
	result := dt.open
	dt.open = make(map[int]*descriptor)
	return result
}

func (dt *descriptorTable) len() int {
	dt.mtx.Lock()
	defer dt.mtx.Unlock()
	return len(dt.open)
}
