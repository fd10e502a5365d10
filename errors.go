package mountfs

import (
	"github.com/pkg/errors"
)

// Structural errors are detected by the router itself,
// before any mounted file system is touched. Errors coming
// from a file system are returned as they are.
var (
	// ErrDuplicateMount is returned by Mount when another
	// file system is mounted at the same path.
	ErrDuplicateMount = errors.New("another file system is already mounted")

	// ErrUnknownMount is returned by Unmount when nothing
	// is mounted at the path.
	ErrUnknownMount = errors.New("no file system is mounted")

	// ErrUnknownDescriptor is returned by descriptor
	// operations when the descriptor was not issued by
	// Open, or has been closed.
	ErrUnknownDescriptor = errors.New("unknown file descriptor")

	// ErrCrossMount is returned by Link, Rename and Symlink
	// when the two paths belong to different mounted file
	// systems.
	ErrCrossMount = errors.New("cannot operate between mounted file systems")

	// ErrTooManyRedirects is returned when an operation has
	// been redirected out of a file system's tree more than
	// the configured number of times.
	ErrTooManyRedirects = errors.New("too many redirects out of mounted file systems")
)

func mountError(op, path string, err error) error {
	return errors.Wrapf(err, "%s %s", op, path)
}

func descriptorError(op string, fd int) error {
	return errors.Wrapf(ErrUnknownDescriptor, "%s fd %d", op, fd)
}
