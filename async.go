package mountfs

import (
	"os"
	"sync/atomic"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/log"
)

// completeOnce lets cb through only once. A file system
// completing the same call twice is logged and ignored.
func completeOnce[R any](r *Router, op, name string, cb func(R, error)) func(R, error) {
	var done atomic.Bool
	return func(result R, err error) {
		if !done.CompareAndSwap(false, true) {
			r.log.Logf(log.TopicError,
				"%s %s: completed more than once, dropped %v", op, name, err)
			return
		}
		cb(result, err)
	}
}

// dispatch runs the callback style operation when the file
// system has one, and the synchronous one on a goroutine
// otherwise.
func dispatch[R any](
	async func(func(R, error)), sync func() (R, error), done func(R, error),
) {
	if async != nil {
		async(done)
		return
	}
	go func() {
		done(sync())
	}()
}

// routeAsync is the callback style counterpart of route.
// The escape signal is inspected in the completion of each
// attempt, and cb is called once with the final outcome.
func routeAsync[R any](
	r *Router, op, name string,
	call func(target, func(R, error)), cb func(R, error),
) {
	origin := name
	var attempt func(name string, redirects int)
	attempt = func(name string, redirects int) {
		t := r.resolve(name)
		r.verdict(op, t)
		call(t, completeOnce(r, op, t.name, func(result R, err error) {
			next, ok, err := r.redirect(op, t, err)
			if !ok {
				cb(result, err)
				return
			}
			if redirects >= r.maxRedirects {
				var zero R
				cb(zero, tooManyRedirects(op, origin))
				return
			}
			attempt(next, redirects+1)
		}))
	}
	attempt(name, 0)
}

// StatAsync is the callback style Stat.
func (r *Router) StatAsync(name string, cb func(os.FileInfo, error)) {
	ret := r.call("StatAsync", log.M{"name": name})
	routeAsync(r, "stat", name, func(t target, done func(os.FileInfo, error)) {
		var async func(func(os.FileInfo, error))
		if fsys, ok := t.fs.(gofs.StatAsyncFS); ok {
			async = func(cb func(os.FileInfo, error)) {
				fsys.StatAsync(t.rel, cb)
			}
		}
		dispatch(async, func() (os.FileInfo, error) {
			return t.fs.Stat(t.rel)
		}, func(info os.FileInfo, err error) {
			done(r.statResult(t, info, err))
		})
	}, func(info os.FileInfo, err error) {
		ret(log.M{"info": info, "err": err})
		cb(info, err)
	})
}

// ReadDirAsync is the callback style ReadDir.
func (r *Router) ReadDirAsync(name string, cb func([]string, error)) {
	ret := r.call("ReadDirAsync", log.M{"name": name})
	routeAsync(r, "readdir", name, func(t target, done func([]string, error)) {
		var async func(func([]string, error))
		if fsys, ok := t.fs.(gofs.ReadDirAsyncFS); ok {
			async = func(cb func([]string, error)) {
				fsys.ReadDirAsync(t.rel, cb)
			}
		}
		dispatch(async, func() ([]string, error) {
			return gofs.ReadDir(t.fs, t.rel)
		}, func(names []string, err error) {
			done(r.mergeDir(t.name, names, err))
		})
	}, func(names []string, err error) {
		ret(log.M{"names": names, "err": err})
		cb(names, err)
	})
}

// ReadFileAsync is the callback style ReadFile.
func (r *Router) ReadFileAsync(name string, cb func([]byte, error)) {
	ret := r.call("ReadFileAsync", log.M{"name": name})
	routeAsync(r, "readfile", name, func(t target, done func([]byte, error)) {
		var async func(func([]byte, error))
		if fsys, ok := t.fs.(gofs.ReadFileAsyncFS); ok {
			async = func(cb func([]byte, error)) {
				fsys.ReadFileAsync(t.rel, cb)
			}
		}
		dispatch(async, func() ([]byte, error) {
			return gofs.ReadFile(t.fs, t.rel)
		}, done)
	}, func(data []byte, err error) {
		ret(log.M{"size": len(data), "err": err})
		cb(data, err)
	})
}

func (r *Router) openAsync(
	name string, flag int, perm os.FileMode, cb func(opened, error),
) {
	routeAsync(r, "open", name, func(t target, done func(opened, error)) {
		var async func(func(opened, error))
		if fsys, ok := t.fs.(gofs.OpenFileAsyncFS); ok {
			async = func(cb func(opened, error)) {
				fsys.OpenFileAsync(t.rel, flag, perm, func(file gofs.File, err error) {
					cb(opened{file: file, at: t}, err)
				})
			}
		}
		dispatch(async, func() (opened, error) {
			return openTarget(t, flag, perm)
		}, done)
	}, cb)
}

// OpenFileAsync is the callback style OpenFile.
func (r *Router) OpenFileAsync(
	name string, flag int, perm os.FileMode, cb func(gofs.File, error),
) {
	ret := r.call("OpenFileAsync", log.M{
		"name": name, "flag": flag, "perm": perm,
	})
	r.openAsync(name, flag, perm, func(o opened, err error) {
		ret(log.M{"err": err})
		cb(o.file, err)
	})
}

// OpenAsync is the callback style Open.
func (r *Router) OpenAsync(
	name string, flag int, perm os.FileMode, cb func(int, error),
) {
	ret := r.call("OpenAsync", log.M{
		"name": name, "flag": flag, "perm": perm,
	})
	r.openAsync(name, flag, perm, func(o opened, err error) {
		fd := -1
		var d *descriptor
		if err == nil {
			fd, d = r.register(o)
		}
		ret(log.M{"fd": fd, "file": d, "err": err})
		cb(fd, err)
	})
}
