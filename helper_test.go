package mountfs

import (
	"os"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/memfs"
)

// mockFS records the calls it receives.
type mockFS struct {
	mock.Mock
}

func newMockFS(t *testing.T) *mockFS {
	m := &mockFS{}
	m.Test(t)
	return m
}

func (m *mockFS) OpenFile(name string, flag int, perm os.FileMode) (gofs.File, error) {
	args := m.Called(name, flag, perm)
	file, _ := args.Get(0).(gofs.File)
	return file, args.Error(1)
}

func (m *mockFS) Mkdir(name string, perm os.FileMode) error {
	return m.Called(name, perm).Error(0)
}

func (m *mockFS) Stat(name string) (os.FileInfo, error) {
	args := m.Called(name)
	info, _ := args.Get(0).(os.FileInfo)
	return info, args.Error(1)
}

func (m *mockFS) Rename(source, target string) error {
	return m.Called(source, target).Error(0)
}

func (m *mockFS) Remove(name string) error {
	return m.Called(name).Error(0)
}

func (m *mockFS) Link(oldname, newname string) error {
	return m.Called(oldname, newname).Error(0)
}

var errClose = errors.New("close failed")

// closeFailFS opens files which cannot be closed cleanly.
type closeFailFS struct {
	*memfs.MemFS
}

type closeFailFile struct {
	gofs.File
}

func (closeFailFile) Close() error { return errClose }

func (f closeFailFS) OpenFile(name string, flag int, perm os.FileMode) (gofs.File, error) {
	file, err := f.MemFS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return closeFailFile{File: file}, nil
}

// twiceFS completes every StatAsync twice.
type twiceFS struct {
	*memfs.MemFS
}

func (f twiceFS) StatAsync(name string, cb func(os.FileInfo, error)) {
	info, err := f.MemFS.Stat(name)
	cb(info, err)
	cb(info, err)
}

// callbackFS completes StatAsync and ReadFileAsync from
// another goroutine, counting the calls it receives.
type callbackFS struct {
	*memfs.MemFS
	calls atomic.Int32
}

func (f *callbackFS) StatAsync(name string, cb func(os.FileInfo, error)) {
	f.calls.Add(1)
	go func() {
		cb(f.MemFS.Stat(name))
	}()
}

func (f *callbackFS) ReadFileAsync(name string, cb func([]byte, error)) {
	f.calls.Add(1)
	go func() {
		cb(gofs.ReadFile(f.MemFS, name))
	}()
}

func newRouter(t *testing.T, opts ...Option) (*Router, *memfs.MemFS) {
	t.Helper()
	root := memfs.New()
	return New(root, append([]Option{WorkingDir("/")}, opts...)...), root
}

func mustWrite(t *testing.T, fsys gofs.FileSystem, name, content string) {
	t.Helper()
	require.NoError(t, gofs.WriteFile(fsys, name, []byte(content), 0644))
}

func mustRead(t *testing.T, fsys gofs.FileSystem, name string) string {
	t.Helper()
	data, err := gofs.ReadFile(fsys, name)
	require.NoError(t, err)
	return string(data)
}
