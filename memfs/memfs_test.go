package memfs

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mountfs/mountfs/gofs"
)

func writeFile(t *testing.T, m *MemFS, name, content string) {
	t.Helper()
	require.NoError(t, gofs.WriteFile(m, name, []byte(content), 0644))
}

func TestFileReadWrite(t *testing.T) {
	assert := assert.New(t)
	m := New()

	f, err := m.OpenFile("/a.txt", os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)
	n, err := f.Write([]byte("hello"))
	assert.NoError(err)
	assert.Equal(5, n)

	buf := make([]byte, 3)
	n, err = f.ReadAt(buf, 1)
	assert.NoError(err)
	assert.Equal("ell", string(buf[:n]))

	n, err = f.ReadAt(buf, 4)
	assert.Equal(io.EOF, err)
	assert.Equal("o", string(buf[:n]))

	_, err = f.WriteAt([]byte("!"), 7)
	assert.NoError(err)
	info, err := f.Stat()
	assert.NoError(err)
	assert.Equal(int64(8), info.Size())
	assert.NoError(f.Close())

	data, err := gofs.ReadFile(m, "/a.txt")
	assert.NoError(err)
	assert.Equal("hello\x00\x00!", string(data))
}

func TestOpenFlags(t *testing.T) {
	assert := assert.New(t)
	m := New()

	_, err := m.OpenFile("/missing", os.O_RDONLY, 0)
	assert.ErrorIs(err, os.ErrNotExist)

	writeFile(t, m, "/a.txt", "content")
	_, err = m.OpenFile("/a.txt", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	assert.ErrorIs(err, os.ErrExist)

	f, err := m.OpenFile("/a.txt", os.O_WRONLY|os.O_TRUNC, 0)
	require.NoError(t, err)
	_, err = f.Read(make([]byte, 1))
	assert.Equal(errAccess, err)
	assert.NoError(f.Close())

	info, err := m.Stat("/a.txt")
	assert.NoError(err)
	assert.Equal(int64(0), info.Size())

	_, err = m.OpenFile("/", os.O_RDWR, 0)
	assert.Equal(errIsDir, err)
}

func TestDirectories(t *testing.T) {
	assert := assert.New(t)
	m := New()

	assert.NoError(m.Mkdir("/d", 0755))
	assert.ErrorIs(m.Mkdir("/d", 0755), os.ErrExist)
	assert.ErrorIs(m.Mkdir("/", 0755), os.ErrExist)
	assert.ErrorIs(m.Mkdir("/x/y", 0755), os.ErrNotExist)
	writeFile(t, m, "/d/b.txt", "b")
	writeFile(t, m, "/d/a.txt", "a")

	names, err := m.ReadDir("/d")
	assert.NoError(err)
	assert.Equal([]string{"a.txt", "b.txt"}, names)

	_, err = m.ReadDir("/d/a.txt")
	assert.Equal(errNotDir, err)

	dir, err := m.OpenFile("/d", os.O_RDONLY, 0)
	require.NoError(t, err)
	first, err := dir.Readdir(1)
	assert.NoError(err)
	require.Len(t, first, 1)
	assert.Equal("a.txt", first[0].Name())
	rest, err := dir.Readdir(1)
	assert.NoError(err)
	require.Len(t, rest, 1)
	assert.Equal("b.txt", rest[0].Name())
	_, err = dir.Readdir(1)
	assert.Equal(io.EOF, err)

	assert.Equal(errNotEmpty, m.Remove("/d"))
	assert.NoError(m.Remove("/d/a.txt"))
	assert.NoError(m.Remove("/d/b.txt"))
	assert.NoError(m.Remove("/d"))
	assert.Equal(errAccess, m.Remove("/"))
}

func TestRename(t *testing.T) {
	assert := assert.New(t)
	m := New()

	require.NoError(t, m.Mkdir("/src", 0755))
	require.NoError(t, m.Mkdir("/dst", 0755))
	writeFile(t, m, "/src/f", "data")

	assert.NoError(m.Rename("/src/f", "/dst/g"))
	_, err := m.Stat("/src/f")
	assert.ErrorIs(err, os.ErrNotExist)
	info, err := m.Stat("/dst/g")
	assert.NoError(err)
	assert.Equal("g", info.Name())

	assert.Equal(errInvalid, m.Rename("/src", "/src/inner"))
	assert.ErrorIs(m.Rename("/nothing", "/dst/x"), os.ErrNotExist)
	assert.Equal(errIsDir, m.Rename("/dst/g", "/src"))
}

func TestHardLink(t *testing.T) {
	assert := assert.New(t)
	m := New()

	writeFile(t, m, "/a", "shared")
	assert.NoError(m.Link("/a", "/b"))
	assert.ErrorIs(m.Link("/a", "/b"), os.ErrExist)

	writeFile(t, m, "/b", "changed")
	data, err := gofs.ReadFile(m, "/a")
	assert.NoError(err)
	assert.Equal("changed", string(data))
}

func TestSymlinkInsideTree(t *testing.T) {
	assert := assert.New(t)
	m := New()

	require.NoError(t, m.Mkdir("/dir", 0755))
	writeFile(t, m, "/dir/target.txt", "target")
	require.NoError(t, m.Symlink("target.txt", "/dir/rel"))
	require.NoError(t, m.Symlink("/dir", "/abs"))

	data, err := gofs.ReadFile(m, "/dir/rel")
	assert.NoError(err)
	assert.Equal("target", string(data))

	data, err = gofs.ReadFile(m, "/abs/target.txt")
	assert.NoError(err)
	assert.Equal("target", string(data))

	info, err := m.Lstat("/dir/rel")
	assert.NoError(err)
	assert.Equal(os.ModeSymlink, info.Mode()&os.ModeSymlink)

	target, err := m.Readlink("/dir/rel")
	assert.NoError(err)
	assert.Equal("target.txt", target)

	_, err = m.Readlink("/dir/target.txt")
	assert.Equal(errInvalid, err)
}

func TestSymlinkOutsideTree(t *testing.T) {
	assert := assert.New(t)
	m := New()

	require.NoError(t, m.Symlink("../other.txt", "/child"))
	require.NoError(t, m.Mkdir("/deep", 0755))
	require.NoError(t, m.Symlink("../../up", "/deep/link"))

	_, err := m.Stat("/child")
	rel, ok := gofs.IsOutsideTree(err)
	assert.True(ok)
	assert.Equal("../other.txt", rel)

	_, err = m.OpenFile("/deep/link/file", os.O_RDONLY, 0)
	rel, ok = gofs.IsOutsideTree(err)
	assert.True(ok)
	assert.Equal("../up/file", rel)

	// Lstat does not follow the final link.
	_, err = m.Lstat("/child")
	assert.NoError(err)
}

func TestSymlinkLoop(t *testing.T) {
	m := New()
	require.NoError(t, m.Symlink("/b", "/a"))
	require.NoError(t, m.Symlink("/a", "/b"))
	_, err := m.Stat("/a")
	assert.Equal(t, errLoop, err)
}
