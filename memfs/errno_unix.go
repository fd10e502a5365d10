//go:build unix

package memfs

import "golang.org/x/sys/unix"

var (
	errNotDir   error = unix.ENOTDIR
	errIsDir    error = unix.EISDIR
	errNotEmpty error = unix.ENOTEMPTY
	errAccess   error = unix.EACCES
	errLoop     error = unix.ELOOP
	errInvalid  error = unix.EINVAL
	errBusy     error = unix.EBUSY
)
