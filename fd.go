package mountfs

import (
	"os"

	"go.uber.org/multierr"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/log"
)

// opened is a file along with where it has been opened.
type opened struct {
	file gofs.File
	at   target
}

func openTarget(t target, flag int, perm os.FileMode) (opened, error) {
	file, err := t.fs.OpenFile(t.rel, flag, perm)
	return opened{file: file, at: t}, err
}

func (r *Router) register(o opened) (int, *descriptor) {
	d := &descriptor{
		file:  o.file,
		name:  o.at.name,
		mount: o.at.mount,
	}
	fd := r.fds.alloc(d)
	if r.log.Enabled(log.TopicVerdict) {
		r.log.Logf(log.TopicVerdict, "open fd %d: %s",
			fd, log.JoinDebugStructFields(d))
	}
	return fd, d
}

// Open opens a file like OpenFile, and returns a virtual
// descriptor for it. The descriptor must be released with
// Close.
func (r *Router) Open(name string, flag int, perm os.FileMode) (fd int, err error) {
	ret := r.call("Open", log.M{"name": name, "flag": flag, "perm": perm})
	var d *descriptor
	defer func() { ret(log.M{"fd": fd, "file": d, "err": err}) }()
	result, err := route(r, "open", name, func(t target) (opened, error) {
		return openTarget(t, flag, perm)
	})
	if err != nil {
		return -1, err
	}
	fd, d = r.register(result)
	return fd, nil
}

// Close releases the descriptor and closes the file behind
// it. The descriptor is released even if closing fails.
func (r *Router) Close(fd int) (err error) {
	ret := r.call("Close", log.M{"fd": fd})
	d, ok := r.fds.release(fd)
	defer func() { ret(log.M{"file": d, "err": err}) }()
	if !ok {
		return descriptorError("close", fd)
	}
	if err := d.file.Close(); err != nil {
		r.log.Logf(log.TopicError, "close fd %d (%s): %v",
			fd, log.JoinDebugStructFields(d), err)
		return err
	}
	return nil
}

// CloseAll closes every descriptor still open, returning
// the combined errors of the files.
func (r *Router) CloseAll() error {
	var err error
	for fd, d := range r.fds.drain() {
		if cerr := d.file.Close(); cerr != nil {
			r.log.Logf(log.TopicError, "close fd %d (%s): %v",
				fd, log.JoinDebugStructFields(d), cerr)
			err = multierr.Append(err, cerr)
		}
	}
	return err
}

func (r *Router) descriptor(op string, fd int) (*descriptor, error) {
	d, ok := r.fds.get(fd)
	if !ok {
		return nil, descriptorError(op, fd)
	}
	return d, nil
}

func (r *Router) Read(fd int, p []byte) (int, error) {
	d, err := r.descriptor("read", fd)
	if err != nil {
		return 0, err
	}
	return d.file.Read(p)
}

func (r *Router) ReadAt(fd int, p []byte, off int64) (int, error) {
	d, err := r.descriptor("pread", fd)
	if err != nil {
		return 0, err
	}
	return d.file.ReadAt(p, off)
}

func (r *Router) Write(fd int, p []byte) (int, error) {
	d, err := r.descriptor("write", fd)
	if err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (r *Router) WriteAt(fd int, p []byte, off int64) (int, error) {
	d, err := r.descriptor("pwrite", fd)
	if err != nil {
		return 0, err
	}
	return d.file.WriteAt(p, off)
}

func (r *Router) Seek(fd int, offset int64, whence int) (int64, error) {
	d, err := r.descriptor("seek", fd)
	if err != nil {
		return 0, err
	}
	return d.file.Seek(offset, whence)
}

func (r *Router) Fstat(fd int) (os.FileInfo, error) {
	d, err := r.descriptor("fstat", fd)
	if err != nil {
		return nil, err
	}
	return d.file.Stat()
}

func (r *Router) Fsync(fd int) error {
	d, err := r.descriptor("fsync", fd)
	if err != nil {
		return err
	}
	return d.file.Sync()
}

func (r *Router) Ftruncate(fd int, size int64) error {
	d, err := r.descriptor("ftruncate", fd)
	if err != nil {
		return err
	}
	return d.file.Truncate(size)
}

// Freaddir reads the directory behind the descriptor, with
// the mount points directly below it listed too. Reading
// the whole directory with count <= 0 appends them at the
// end. Paged reads with count > 0 return them in the pages
// following the last entry of the file system.
func (r *Router) Freaddir(fd int, count int) ([]os.FileInfo, error) {
	d, err := r.descriptor("readdir", fd)
	if err != nil {
		return nil, err
	}
	infos, err := d.file.Readdir(count)
	if count > 0 {
		return d.page(func() []string {
			return r.syntheticEntries(d.name)
		}, infos, err, count)
	}
	if err != nil {
		return infos, err
	}
	return r.mergeInfo(d.name, infos), nil
}
