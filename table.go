package mountfs

import (
	"path"
	"strings"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/log"
)

// mountEntry binds a file system to a mount path. The path
// is canonical and ends with a slash.
type mountEntry struct {
	path string
	fs   gofs.FileSystem
}

// prefix is the mount path without the trailing slash, ""
// for a file system mounted at the root.
func (e *mountEntry) prefix() string {
	return strings.TrimSuffix(e.path, "/")
}

// contains matches whole path elements, so that "/foo"
// does not contain "/foobar".
func (e *mountEntry) contains(name string) bool {
	prefix := e.prefix()
	return name == prefix || strings.HasPrefix(name, prefix+"/")
}

// target is a path resolved against the mount table.
type target struct {
	// name is the canonical absolute path.
	name string

	// rel is the path handed to the file system.
	rel string

	fs gofs.FileSystem

	// mount is nil for the default file system.
	mount *mountEntry
}

func (t target) mountPath() string {
	if t.mount == nil {
		return "/"
	}
	return t.mount.path
}

func (t target) String() string {
	if t.mount == nil {
		return "default"
	}
	return t.mount.path
}

// canonical makes name absolute and clean.
func (r *Router) canonical(name string) string {
	if !path.IsAbs(name) {
		name = path.Join(r.workingDir, name)
	}
	return path.Clean(name)
}

func (r *Router) canonicalMountPath(mountPath string) string {
	p := r.canonical(mountPath)
	if p == "/" {
		return p
	}
	return p + "/"
}

// Mount binds fsys at mountPath. It fails with
// ErrDuplicateMount if a file system is already mounted
// at the same path.
func (r *Router) Mount(mountPath string, fsys gofs.FileSystem) error {
	p := r.canonicalMountPath(mountPath)

	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, entry := range r.mounts {
		if entry.path == p {
			return mountError("mount", p, ErrDuplicateMount)
		}
	}
	r.mounts = append(r.mounts, &mountEntry{path: p, fs: fsys})
	r.log.Logf(log.TopicVerdict, "mount %s", p)
	return nil
}

// Unmount removes the file system mounted at mountPath. It
// fails with ErrUnknownMount if there is none.
//
// Descriptors opened from the file system stay usable until
// they are closed.
func (r *Router) Unmount(mountPath string) error {
	p := r.canonicalMountPath(mountPath)

	r.mtx.Lock()
	defer r.mtx.Unlock()
	for i, entry := range r.mounts {
		if entry.path != p {
			continue
		}
		mounts := make([]*mountEntry, 0, len(r.mounts)-1)
		mounts = append(mounts, r.mounts[:i]...)
		r.mounts = append(mounts, r.mounts[i+1:]...)
		r.log.Logf(log.TopicVerdict, "unmount %s", p)
		return nil
	}
	return mountError("unmount", p, ErrUnknownMount)
}

// Mounts returns the mount paths in the order they were
// mounted. Each ends with a slash.
func (r *Router) Mounts() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	result := make([]string, 0, len(r.mounts))
	for _, entry := range r.mounts {
		result = append(result, entry.path)
	}
	return result
}

// resolve picks the file system serving name and rewrites
// name to be relative to its root.
func (r *Router) resolve(name string) target {
	name = r.canonical(name)

	r.mtx.RLock()
	defer r.mtx.RUnlock()
	var best *mountEntry
	for _, entry := range r.mounts {
		if !entry.contains(name) {
			continue
		}
		if best == nil || len(entry.path) > len(best.path) {
			best = entry
		}
	}
	if best == nil {
		return target{name: name, rel: name, fs: r.fs}
	}
	rel := name[len(best.prefix()):]
	if rel == "" {
		rel = "/"
	}
	return target{name: name, rel: rel, fs: best.fs, mount: best}
}
