package gofs

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ErrNotSupported is returned when a file system lacks the
// optional capability an operation needs.
var ErrNotSupported = errors.New("operation not supported")

// ReadDir lists the names in a directory, using ReadDirFS if
// the file system provides it and Readdir on an opened
// directory otherwise.
func ReadDir(fsys FileSystem, name string) ([]string, error) {
	if rd, ok := fsys.(ReadDirFS); ok {
		return rd.ReadDir(name)
	}
	dir, err := fsys.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer dir.Close()
	infos, err := dir.Readdir(-1)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	if rf, ok := fsys.(ReadFileFS); ok {
		return rf.ReadFile(name)
	}
	f, err := fsys.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func WriteFile(fsys FileSystem, name string, data []byte, perm os.FileMode) error {
	if wf, ok := fsys.(WriteFileFS); ok {
		return wf.WriteFile(name, data, perm)
	}
	f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Lstat falls back to Stat when the file system has no
// notion of symbolic links.
func Lstat(fsys FileSystem, name string) (os.FileInfo, error) {
	if ls, ok := fsys.(LstatFS); ok {
		return ls.Lstat(name)
	}
	return fsys.Stat(name)
}
