package gofs

import (
	"io"
	"os"
)

type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.WriterAt
	io.Seeker

	Readdir(count int) ([]os.FileInfo, error)
	Stat() (os.FileInfo, error)
	Sync() error
	Truncate(size int64) error
}

var _ File = (*os.File)(nil)

type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Mkdir(name string, perm os.FileMode) error
	Stat(name string) (os.FileInfo, error)
	Rename(source, target string) error
	Remove(name string) error
}

// LstatFS is implemented by file systems that can stat a
// symbolic link without following it.
type LstatFS interface {
	FileSystem
	Lstat(name string) (os.FileInfo, error)
}

// ReadDirFS lists the names in a directory, in any order.
type ReadDirFS interface {
	FileSystem
	ReadDir(name string) ([]string, error)
}

type ReadFileFS interface {
	FileSystem
	ReadFile(name string) ([]byte, error)
}

type WriteFileFS interface {
	FileSystem
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// LinkFS creates hard links. Both names belong to the
// same file system.
type LinkFS interface {
	FileSystem
	Link(oldname, newname string) error
}

// SymlinkFS creates and reads symbolic links.
//
// The oldname of Symlink is the content of the link and is
// stored as it is, relative or not.
type SymlinkFS interface {
	FileSystem
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
}

// StatAsyncFS, ReadDirAsyncFS, ReadFileAsyncFS and
// OpenFileAsyncFS are the callback style counterparts of
// the synchronous operations.
//
// The call returns immediately and the callback is invoked
// once the operation completes, on whatever goroutine the
// file system chooses.
type StatAsyncFS interface {
	FileSystem
	StatAsync(name string, cb func(os.FileInfo, error))
}

type ReadDirAsyncFS interface {
	FileSystem
	ReadDirAsync(name string, cb func([]string, error))
}

type ReadFileAsyncFS interface {
	FileSystem
	ReadFileAsync(name string, cb func([]byte, error))
}

type OpenFileAsyncFS interface {
	FileSystem
	OpenFileAsync(name string, flag int, perm os.FileMode, cb func(File, error))
}
