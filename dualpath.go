package mountfs

import (
	"os"
	"path"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/log"
)

// crossMount is the error of a two path operation whose
// paths are served by different file systems.
func crossMount(op string, oldname, newname target) error {
	return &os.LinkError{
		Op:  op,
		Old: oldname.name,
		New: newname.name,
		Err: ErrCrossMount,
	}
}

// routePair routes a two path operation by its first path.
// The second path is resolved on every attempt and must be
// served by the same mount, otherwise the operation fails
// with ErrCrossMount and no file system is called.
func routePair(
	r *Router, op, primary, secondary string,
	call func(primary, secondary target) error,
) error {
	return routeError(r, op, primary, func(p target) error {
		s := r.resolve(secondary)
		if p.mount != s.mount {
			r.log.Logf(log.TopicVerdict, "%s %s: refused, %s is served by %s",
				op, p.name, s.name, s)
			return crossMount(op, p, s)
		}
		return call(p, s)
	})
}

// Link creates newname as a hard link to oldname. Both
// must be served by the same file system.
func (r *Router) Link(oldname, newname string) (err error) {
	ret := r.call("Link", log.M{"oldname": oldname, "newname": newname})
	defer func() { ret(log.M{"err": err}) }()
	return routePair(r, "link", oldname, newname,
		func(o, n target) error {
			fsys, ok := o.fs.(gofs.LinkFS)
			if !ok {
				return unsupported("link", o.name)
			}
			return fsys.Link(o.rel, n.rel)
		})
}

// Rename moves oldname to newname. Both must be served by
// the same file system.
func (r *Router) Rename(oldname, newname string) (err error) {
	ret := r.call("Rename", log.M{"oldname": oldname, "newname": newname})
	defer func() { ret(log.M{"err": err}) }()
	return routePair(r, "rename", oldname, newname,
		func(o, n target) error {
			return o.fs.Rename(o.rel, n.rel)
		})
}

// Symlink creates newname as a symbolic link to oldname.
//
// A relative oldname is stored as it is. An absolute one
// must be served by the same file system as newname and is
// stored relative to the root of that file system.
func (r *Router) Symlink(oldname, newname string) (err error) {
	ret := r.call("Symlink", log.M{"oldname": oldname, "newname": newname})
	defer func() { ret(log.M{"err": err}) }()
	if !path.IsAbs(oldname) {
		return routeError(r, "symlink", newname, func(n target) error {
			return symlink(n, oldname)
		})
	}
	return routeError(r, "symlink", newname, func(n target) error {
		o := r.resolve(oldname)
		if o.mount != n.mount {
			r.log.Logf(log.TopicVerdict, "symlink %s: refused, %s is served by %s",
				n.name, o.name, o)
			return crossMount("symlink", o, n)
		}
		return symlink(n, o.rel)
	})
}

func symlink(n target, content string) error {
	fsys, ok := n.fs.(gofs.SymlinkFS)
	if !ok {
		return unsupported("symlink", n.name)
	}
	return fsys.Symlink(content, n.rel)
}
