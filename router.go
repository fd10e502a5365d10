package mountfs

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/log"
)

// Router dispatches file system operations to the file
// system mounted at the longest matching path, or to the
// default file system when nothing matches.
//
// A Router is safe for concurrent use. No lock is held
// while a mounted file system is being called.
type Router struct {
	fs           gofs.FileSystem
	log          log.Log
	workingDir   string
	maxRedirects int

	mtx    sync.RWMutex
	mounts []*mountEntry

	fds descriptorTable
}

// New creates a router whose default file system is fsys.
func New(fsys gofs.FileSystem, opts ...Option) *Router {
	option := newOption()
	Options(opts...)(option)
	workingDir := strings.ReplaceAll(option.workingDir, "\\", "/")
	if !path.IsAbs(workingDir) {
		workingDir = "/" + workingDir
	}
	return &Router{
		fs:           fsys,
		log:          option.log,
		workingDir:   path.Clean(workingDir),
		maxRedirects: option.maxRedirects,
		fds:          newDescriptorTable(option.descriptorBase),
	}
}

// call records the arguments of an operation and returns
// the function recording its result.
func (r *Router) call(op string, args log.M) func(rets log.M) {
	if !r.log.Enabled(log.TopicCall) {
		return func(log.M) {}
	}
	cookie := r.log.Call(op, args)
	return func(rets log.M) {
		r.log.Return(op, cookie, rets)
	}
}

func (r *Router) verdict(op string, t target) {
	if !r.log.Enabled(log.TopicVerdict) {
		return
	}
	r.log.Logf(log.TopicVerdict, "%s %s: served by %s as %s",
		op, t.name, t, t.rel)
}

// redirect inspects the error returned for t. If it is an
// escape signal, the path to replay the operation with is
// returned along with true. Otherwise the error to return
// to the caller is passed back.
//
// An escape whose target lies above the root of the router
// is not redirected. It is returned rebased onto the root
// of the router, so that the router can be mounted into
// another one which knows where that root is.
func (r *Router) redirect(op string, t target, err error) (string, bool, error) {
	rel, ok := gofs.IsOutsideTree(err)
	if !ok {
		return "", false, err
	}
	joined := path.Join(strings.TrimPrefix(t.mountPath(), "/"), rel)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		r.log.Logf(log.TopicTrace, "%s %s: %s escapes to %q above the root",
			op, t.name, t, joined)
		return "", false, &gofs.OutsideTreeError{RelativeTargetPath: joined}
	}
	next := path.Join("/", joined)
	r.log.Logf(log.TopicTrace, "%s %s: redirected out of %s to %s",
		op, t.name, t, next)
	return next, true, nil
}

func tooManyRedirects(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: ErrTooManyRedirects}
}

// route resolves name, performs call on the file system
// serving it, and replays the call wherever an escape
// signal points to. The result of the last attempt is
// returned.
func route[R any](
	r *Router, op, name string, call func(target) (R, error),
) (R, error) {
	origin := name
	for redirects := 0; ; redirects++ {
		t := r.resolve(name)
		r.verdict(op, t)
		result, err := call(t)
		next, ok, err := r.redirect(op, t, err)
		if !ok {
			return result, err
		}
		if redirects >= r.maxRedirects {
			var zero R
			return zero, tooManyRedirects(op, origin)
		}
		name = next
	}
}

// routeError is route for operations without result.
func routeError(r *Router, op, name string, call func(target) error) error {
	_, err := route(r, op, name, func(t target) (struct{}, error) {
		return struct{}{}, call(t)
	})
	return err
}

func unsupported(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: gofs.ErrNotSupported}
}

var (
	_ gofs.FileSystem      = (*Router)(nil)
	_ gofs.LstatFS         = (*Router)(nil)
	_ gofs.ReadDirFS       = (*Router)(nil)
	_ gofs.ReadFileFS      = (*Router)(nil)
	_ gofs.WriteFileFS     = (*Router)(nil)
	_ gofs.LinkFS          = (*Router)(nil)
	_ gofs.SymlinkFS       = (*Router)(nil)
	_ gofs.StatAsyncFS     = (*Router)(nil)
	_ gofs.ReadDirAsyncFS  = (*Router)(nil)
	_ gofs.ReadFileAsyncFS = (*Router)(nil)
	_ gofs.OpenFileAsyncFS = (*Router)(nil)
)
