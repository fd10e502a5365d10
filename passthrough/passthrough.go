// Package passthrough exposes a directory of the host file
// system as a gofs.FileSystem.
//
// Symbolic links are resolved inside the directory. A link
// that leads out of it is reported with an
// *gofs.OutsideTreeError rather than followed on the host.
package passthrough

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-mountfs/mountfs/gofs"
)

const maxLinkHops = 40

type Passthrough struct {
	Dir string
}

// New roots a Passthrough at dir, made absolute so that
// absolute link targets can be related to it.
func New(dir string) *Passthrough {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Passthrough{Dir: dir}
}

func cleanRel(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (ptfs *Passthrough) hostPath(rel string) string {
	return filepath.Join(ptfs.Dir, filepath.FromSlash(rel))
}

// linkTarget reads a host link and converts it into the
// slash separated form that gofs.ResolveLink expects.
func (ptfs *Passthrough) linkTarget(hostPath string) (string, error) {
	target, err := os.Readlink(hostPath)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		return filepath.ToSlash(target), nil
	}
	rel, err := filepath.Rel(ptfs.Dir, target)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", &gofs.OutsideTreeError{RelativeTargetPath: rel}
	}
	return "/" + rel, nil
}

// resolve follows the links along name and returns the
// host path to operate on. The final element is followed
// only if follow is set.
func (ptfs *Passthrough) resolve(name string, follow bool) (string, error) {
	rel := cleanRel(name)
	for hops := 0; hops <= maxLinkHops; hops++ {
		if rel == "" {
			return ptfs.Dir, nil
		}
		comps := strings.Split(rel, "/")
		redirected := false
		for i := range comps {
			last := i == len(comps)-1
			if last && !follow {
				break
			}
			hostPath := ptfs.hostPath(path.Join(comps[:i+1]...))
			info, err := os.Lstat(hostPath)
			if err != nil {
				// The real operation reports it.
				break
			}
			if info.Mode()&os.ModeSymlink == 0 {
				continue
			}
			target, err := ptfs.linkTarget(hostPath)
			if err != nil {
				return "", err
			}
			next, err := gofs.ResolveLink(
				path.Join(comps[:i]...), target, comps[i+1:]...,
			)
			if err != nil {
				return "", err
			}
			rel, redirected = next, true
			break
		}
		if !redirected {
			return ptfs.hostPath(rel), nil
		}
	}
	return "", &os.PathError{Op: "resolve", Path: name, Err: syscall.ELOOP}
}

func (ptfs *Passthrough) OpenFile(name string, flag int, perm os.FileMode) (gofs.File, error) {
	p, err := ptfs.resolve(name, true)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(p, flag, perm)
}

func (ptfs *Passthrough) Mkdir(name string, perm os.FileMode) error {
	p, err := ptfs.resolve(name, false)
	if err != nil {
		return err
	}
	return os.Mkdir(p, perm)
}

func (ptfs *Passthrough) Remove(name string) error {
	p, err := ptfs.resolve(name, false)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (ptfs *Passthrough) Rename(source string, target string) error {
	src, err := ptfs.resolve(source, false)
	if err != nil {
		return err
	}
	tgt, err := ptfs.resolve(target, false)
	if err != nil {
		return err
	}
	return os.Rename(src, tgt)
}

func (ptfs *Passthrough) Stat(name string) (os.FileInfo, error) {
	p, err := ptfs.resolve(name, true)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func (ptfs *Passthrough) Lstat(name string) (os.FileInfo, error) {
	p, err := ptfs.resolve(name, false)
	if err != nil {
		return nil, err
	}
	return os.Lstat(p)
}

func (ptfs *Passthrough) ReadDir(name string) ([]string, error) {
	p, err := ptfs.resolve(name, true)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (ptfs *Passthrough) ReadFile(name string) ([]byte, error) {
	p, err := ptfs.resolve(name, true)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (ptfs *Passthrough) WriteFile(name string, data []byte, perm os.FileMode) error {
	p, err := ptfs.resolve(name, true)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, perm)
}

func (ptfs *Passthrough) Link(oldname, newname string) error {
	oldPath, err := ptfs.resolve(oldname, false)
	if err != nil {
		return err
	}
	newPath, err := ptfs.resolve(newname, false)
	if err != nil {
		return err
	}
	return os.Link(oldPath, newPath)
}

// Symlink stores oldname as it is. An absolute oldname is
// rooted at Dir, so that the link stays meaningful inside
// the tree.
func (ptfs *Passthrough) Symlink(oldname, newname string) error {
	newPath, err := ptfs.resolve(newname, false)
	if err != nil {
		return err
	}
	target := filepath.FromSlash(oldname)
	if path.IsAbs(oldname) {
		target = ptfs.hostPath(cleanRel(oldname))
	}
	return os.Symlink(target, newPath)
}

func (ptfs *Passthrough) Readlink(name string) (string, error) {
	p, err := ptfs.resolve(name, false)
	if err != nil {
		return "", err
	}
	target, err := os.Readlink(p)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		return filepath.ToSlash(target), nil
	}
	if rel, err := filepath.Rel(ptfs.Dir, target); err == nil {
		if rel = filepath.ToSlash(rel); rel != ".." && !strings.HasPrefix(rel, "../") {
			return path.Clean("/" + rel), nil
		}
	}
	return filepath.ToSlash(target), nil
}

var (
	_ gofs.FileSystem  = (*Passthrough)(nil)
	_ gofs.LstatFS     = (*Passthrough)(nil)
	_ gofs.ReadDirFS   = (*Passthrough)(nil)
	_ gofs.ReadFileFS  = (*Passthrough)(nil)
	_ gofs.WriteFileFS = (*Passthrough)(nil)
	_ gofs.LinkFS      = (*Passthrough)(nil)
	_ gofs.SymlinkFS   = (*Passthrough)(nil)
)
