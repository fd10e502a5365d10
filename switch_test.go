package mountfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/memfs"
)

func TestSwitch(t *testing.T) {
	assert := assert.New(t)
	original := memfs.New()
	mustWrite(t, original, "/f", "original")
	sw := NewSwitch(original)

	router := New(sw.Current(), WorkingDir("/"))
	mounted := memfs.New()
	mustWrite(t, mounted, "/f", "mounted")
	require.NoError(t, router.Mount("/m", mounted))

	restore := sw.Install(router)
	assert.Equal("mounted", mustRead(t, sw, "/m/f"))
	assert.Equal("original", mustRead(t, sw, "/f"))
	names, err := sw.ReadDir("/")
	assert.NoError(err)
	assert.Equal([]string{"f", "m"}, names)

	restore()
	assert.Same(original, sw.Current())
	_, err = sw.Stat("/m/f")
	assert.Error(err)

	// Restoring twice does not undo a later install.
	other := memfs.New()
	sw.Install(other)
	restore()
	assert.Same(other, sw.Current())
}

func TestSwitchUnsupported(t *testing.T) {
	sw := NewSwitch(newMockFS(t))
	_, err := sw.Readlink("/l")
	assert.ErrorIs(t, err, gofs.ErrNotSupported)
	assert.ErrorIs(t, sw.Symlink("t", "/l"), gofs.ErrNotSupported)
}
