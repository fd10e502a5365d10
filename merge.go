package mountfs

import (
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/go-mountfs/mountfs/log"
)

// syntheticEntries returns the names that mount points add
// to the directory dir, in mount order. A mount at "/a/b/c"
// adds "a" to "/" and "b" to "/a".
func (r *Router) syntheticEntries(dir string) []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	var names []string
	for _, entry := range r.mounts {
		for cur := entry.prefix(); cur != "" && cur != "/"; cur = path.Dir(cur) {
			if path.Dir(cur) == dir {
				names = append(names, path.Base(cur))
				break
			}
		}
	}
	return names
}

// isVirtualDir reports whether dir has mount points below.
func (r *Router) isVirtualDir(dir string) bool {
	if dir == "/" {
		return false
	}
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	for _, entry := range r.mounts {
		if prefix := entry.prefix(); len(prefix) > len(dir) &&
			prefix[:len(dir)] == dir && prefix[len(dir)] == '/' {
			return true
		}
	}
	return false
}

// appendMissing appends the names of extra that are not in
// names yet.
func appendMissing(names, extra []string) []string {
	if len(extra) == 0 {
		return names
	}
	seen := make(map[string]struct{}, len(names)+len(extra))
	for _, name := range names {
		seen[name] = struct{}{}
	}
	for _, name := range extra {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// mergeDir completes the listing of dir with the mount
// points below it. A directory missing from the file system
// lists the mount points alone.
func (r *Router) mergeDir(dir string, names []string, err error) ([]string, error) {
	synthetic := r.syntheticEntries(dir)
	if err != nil {
		if len(synthetic) == 0 || !errors.Is(err, fs.ErrNotExist) {
			return names, err
		}
		r.log.Logf(log.TopicError,
			"readdir %s: %v, listing mount points only", dir, err)
		names = nil
	}
	return appendMissing(names, synthetic), nil
}

// mergeInfo is mergeDir for Readdir on a descriptor.
func (r *Router) mergeInfo(dir string, infos []os.FileInfo) []os.FileInfo {
	synthetic := r.syntheticEntries(dir)
	if len(synthetic) == 0 {
		return infos
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	for _, name := range appendMissing(names, synthetic)[len(infos):] {
		infos = append(infos, virtualDirInfo(name))
	}
	return infos
}

// statResult answers for a directory missing from the file
// system which has mount points below it.
func (r *Router) statResult(t target, info os.FileInfo, err error) (os.FileInfo, error) {
	if err == nil || !errors.Is(err, fs.ErrNotExist) || !r.isVirtualDir(t.name) {
		return info, err
	}
	r.log.Logf(log.TopicError,
		"stat %s: %v, answering for the mount points below", t.name, err)
	return virtualDirInfo(path.Base(t.name)), nil
}

// virtualDirInfo describes a directory that exists only
// because something is mounted below it.
type virtualDirInfo string

func (v virtualDirInfo) Name() string       { return string(v) }
func (v virtualDirInfo) Size() int64        { return 0 }
func (v virtualDirInfo) Mode() os.FileMode  { return os.ModeDir | 0555 }
func (v virtualDirInfo) ModTime() time.Time { return time.Time{} }
func (v virtualDirInfo) IsDir() bool        { return true }
func (v virtualDirInfo) Sys() any           { return nil }
