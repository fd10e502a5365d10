package mountfs

import (
	"os"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/log"
)

func (r *Router) Stat(name string) (info os.FileInfo, err error) {
	ret := r.call("Stat", log.M{"name": name})
	defer func() { ret(log.M{"info": info, "err": err}) }()
	return route(r, "stat", name, func(t target) (os.FileInfo, error) {
		info, err := t.fs.Stat(t.rel)
		return r.statResult(t, info, err)
	})
}

// Lstat falls back to Stat on file systems which cannot
// stat a symbolic link itself.
func (r *Router) Lstat(name string) (info os.FileInfo, err error) {
	ret := r.call("Lstat", log.M{"name": name})
	defer func() { ret(log.M{"info": info, "err": err}) }()
	return route(r, "lstat", name, func(t target) (os.FileInfo, error) {
		info, err := gofs.Lstat(t.fs, t.rel)
		return r.statResult(t, info, err)
	})
}

// OpenFile opens a file on the file system serving name.
// The file is returned as it is, see Open for a descriptor
// based alternative.
func (r *Router) OpenFile(
	name string, flag int, perm os.FileMode,
) (file gofs.File, err error) {
	ret := r.call("OpenFile", log.M{
		"name": name, "flag": flag, "perm": perm,
	})
	defer func() { ret(log.M{"err": err}) }()
	return route(r, "open", name, func(t target) (gofs.File, error) {
		return t.fs.OpenFile(t.rel, flag, perm)
	})
}

func (r *Router) Mkdir(name string, perm os.FileMode) (err error) {
	ret := r.call("Mkdir", log.M{"name": name, "perm": perm})
	defer func() { ret(log.M{"err": err}) }()
	return routeError(r, "mkdir", name, func(t target) error {
		return t.fs.Mkdir(t.rel, perm)
	})
}

func (r *Router) Remove(name string) (err error) {
	ret := r.call("Remove", log.M{"name": name})
	defer func() { ret(log.M{"err": err}) }()
	return routeError(r, "remove", name, func(t target) error {
		return t.fs.Remove(t.rel)
	})
}

// ReadDir lists the directory, including the mount points
// directly below it. The names of the file system come
// first, in the order it returned them.
func (r *Router) ReadDir(name string) (names []string, err error) {
	ret := r.call("ReadDir", log.M{"name": name})
	defer func() { ret(log.M{"names": names, "err": err}) }()
	return route(r, "readdir", name, func(t target) ([]string, error) {
		names, err := gofs.ReadDir(t.fs, t.rel)
		return r.mergeDir(t.name, names, err)
	})
}

func (r *Router) ReadFile(name string) (data []byte, err error) {
	ret := r.call("ReadFile", log.M{"name": name})
	defer func() { ret(log.M{"size": len(data), "err": err}) }()
	return route(r, "readfile", name, func(t target) ([]byte, error) {
		return gofs.ReadFile(t.fs, t.rel)
	})
}

func (r *Router) WriteFile(
	name string, data []byte, perm os.FileMode,
) (err error) {
	ret := r.call("WriteFile", log.M{
		"name": name, "size": len(data), "perm": perm,
	})
	defer func() { ret(log.M{"err": err}) }()
	return routeError(r, "writefile", name, func(t target) error {
		return gofs.WriteFile(t.fs, t.rel, data, perm)
	})
}

// Readlink returns the content of the symbolic link as
// stored by the file system serving it.
func (r *Router) Readlink(name string) (content string, err error) {
	ret := r.call("Readlink", log.M{"name": name})
	defer func() { ret(log.M{"content": content, "err": err}) }()
	return route(r, "readlink", name, func(t target) (string, error) {
		fsys, ok := t.fs.(gofs.SymlinkFS)
		if !ok {
			return "", unsupported("readlink", t.name)
		}
		return fsys.Readlink(t.rel)
	})
}
