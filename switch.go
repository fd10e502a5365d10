package mountfs

import (
	"os"
	"sync"

	"github.com/go-mountfs/mountfs/gofs"
)

// Switch is a file system forwarding to another one which
// can be replaced while in use. It is meant to be the one
// file system a process hands around, so that a Router can
// be installed into it over the file system it had before.
//
//	sw := mountfs.NewSwitch(passthrough.New("/"))
//	restore := sw.Install(mountfs.New(sw.Current()))
//	defer restore()
type Switch struct {
	mtx sync.RWMutex
	fs  gofs.FileSystem
}

func NewSwitch(fsys gofs.FileSystem) *Switch {
	return &Switch{fs: fsys}
}

// Current returns the file system in use.
func (s *Switch) Current() gofs.FileSystem {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.fs
}

// Install replaces the file system in use with fsys. The
// returned function puts back the replaced one. Calling it
// more than once has no further effect.
func (s *Switch) Install(fsys gofs.FileSystem) (restore func()) {
	s.mtx.Lock()
	previous := s.fs
	s.fs = fsys
	s.mtx.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mtx.Lock()
			defer s.mtx.Unlock()
			s.fs = previous
		})
	}
}

func (s *Switch) OpenFile(name string, flag int, perm os.FileMode) (gofs.File, error) {
	return s.Current().OpenFile(name, flag, perm)
}

func (s *Switch) Mkdir(name string, perm os.FileMode) error {
	return s.Current().Mkdir(name, perm)
}

func (s *Switch) Stat(name string) (os.FileInfo, error) {
	return s.Current().Stat(name)
}

func (s *Switch) Rename(source, target string) error {
	return s.Current().Rename(source, target)
}

func (s *Switch) Remove(name string) error {
	return s.Current().Remove(name)
}

func (s *Switch) Lstat(name string) (os.FileInfo, error) {
	return gofs.Lstat(s.Current(), name)
}

func (s *Switch) ReadDir(name string) ([]string, error) {
	return gofs.ReadDir(s.Current(), name)
}

func (s *Switch) ReadFile(name string) ([]byte, error) {
	return gofs.ReadFile(s.Current(), name)
}

func (s *Switch) WriteFile(name string, data []byte, perm os.FileMode) error {
	return gofs.WriteFile(s.Current(), name, data, perm)
}

func (s *Switch) Link(oldname, newname string) error {
	fsys, ok := s.Current().(gofs.LinkFS)
	if !ok {
		return unsupported("link", oldname)
	}
	return fsys.Link(oldname, newname)
}

func (s *Switch) Symlink(oldname, newname string) error {
	fsys, ok := s.Current().(gofs.SymlinkFS)
	if !ok {
		return unsupported("symlink", newname)
	}
	return fsys.Symlink(oldname, newname)
}

func (s *Switch) Readlink(name string) (string, error) {
	fsys, ok := s.Current().(gofs.SymlinkFS)
	if !ok {
		return "", unsupported("readlink", name)
	}
	return fsys.Readlink(name)
}

var (
	_ gofs.LstatFS     = (*Switch)(nil)
	_ gofs.ReadDirFS   = (*Switch)(nil)
	_ gofs.ReadFileFS  = (*Switch)(nil)
	_ gofs.WriteFileFS = (*Switch)(nil)
	_ gofs.LinkFS      = (*Switch)(nil)
	_ gofs.SymlinkFS   = (*Switch)(nil)
)
