package gofs_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/memfs"
)

// coreFS hides every optional capability of the wrapped
// file system.
type coreFS struct {
	gofs.FileSystem
}

func TestFallbacks(t *testing.T) {
	assert := assert.New(t)
	m := memfs.New()
	fsys := coreFS{FileSystem: m}

	require.NoError(t, fsys.Mkdir("/d", 0755))
	require.NoError(t, gofs.WriteFile(fsys, "/d/b", []byte("b"), 0644))
	require.NoError(t, gofs.WriteFile(fsys, "/d/a", []byte("first"), 0644))
	require.NoError(t, gofs.WriteFile(fsys, "/d/a", []byte("a"), 0644))

	data, err := gofs.ReadFile(fsys, "/d/a")
	assert.NoError(err)
	assert.Equal("a", string(data))

	names, err := gofs.ReadDir(fsys, "/d")
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, names)

	_, err = gofs.ReadDir(fsys, "/missing")
	assert.ErrorIs(err, os.ErrNotExist)

	require.NoError(t, m.Symlink("a", "/d/l"))
	info, err := gofs.Lstat(fsys, "/d/l")
	assert.NoError(err)
	assert.Zero(info.Mode() & os.ModeSymlink)
	info, err = gofs.Lstat(m, "/d/l")
	assert.NoError(err)
	assert.NotZero(info.Mode() & os.ModeSymlink)
}

func TestIsOutsideTree(t *testing.T) {
	assert := assert.New(t)

	_, ok := gofs.IsOutsideTree(nil)
	assert.False(ok)
	_, ok = gofs.IsOutsideTree(os.ErrNotExist)
	assert.False(ok)

	escape := &gofs.OutsideTreeError{RelativeTargetPath: "../x"}
	assert.Equal(gofs.OutsideTreeName, escape.Name())
	assert.Contains(escape.Error(), "../x")

	rel, ok := gofs.IsOutsideTree(errors.Wrap(escape, "stat"))
	assert.True(ok)
	assert.Equal("../x", rel)

	rel, ok = gofs.IsOutsideTree(fmt.Errorf("open: %w", escape))
	assert.True(ok)
	assert.Equal("../x", rel)
}

func TestResolveLink(t *testing.T) {
	for _, tc := range []struct {
		linkDir, target string
		rest            []string
		want, escape    string
	}{
		{linkDir: "a", target: "b", want: "a/b"},
		{linkDir: "a", target: "b", rest: []string{"c", "d"}, want: "a/b/c/d"},
		{linkDir: "a/b", target: "../c", want: "a/c"},
		{linkDir: "a", target: "/x/y", want: "x/y"},
		{linkDir: "a", target: "..", want: ""},
		{linkDir: "", target: "/", want: ""},
		{linkDir: "", target: "../x", escape: "../x"},
		{linkDir: "a", target: "../../x", rest: []string{"f"}, escape: "../x/f"},
		{linkDir: "a", target: "../..", escape: ".."},
		{linkDir: "a", target: "/../x", want: "x"},
	} {
		got, err := gofs.ResolveLink(tc.linkDir, tc.target, tc.rest...)
		if tc.escape != "" {
			rel, ok := gofs.IsOutsideTree(err)
			assert.True(t, ok, "%+v", tc)
			assert.Equal(t, tc.escape, rel, "%+v", tc)
			continue
		}
		assert.NoError(t, err, "%+v", tc)
		assert.Equal(t, tc.want, got, "%+v", tc)
	}
}
