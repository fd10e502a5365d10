package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/go-mountfs/mountfs"
	"github.com/go-mountfs/mountfs/gofs"
	"github.com/go-mountfs/mountfs/memfs"
	"github.com/go-mountfs/mountfs/passthrough"
)

// Backend types accepted in a mount entry.
const (
	typeMemFS       = "memfs"
	typePassthrough = "passthrough"
)

type mountConfig struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
	Dir  string `yaml:"dir,omitempty"`
}

type config struct {
	// Root is the host directory serving everything that
	// is not mounted. An in-memory file system is used
	// when it is empty.
	Root   string        `yaml:"root,omitempty"`
	Mounts []mountConfig `yaml:"mounts"`

	// MaxRedirects is left to the router default when 0.
	MaxRedirects int `yaml:"maxRedirects,omitempty"`
}

func parseConfig(r io.Reader) (*config, error) {
	var result config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&result); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config")
	}
	return &result, nil
}

func loadConfig(name string) (*config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()
	return parseConfig(f)
}

// parseMountFlag parses "path=dir" for a passthrough mount
// and "path=memfs:" for an in-memory one.
func parseMountFlag(value string) (mountConfig, error) {
	mountPath, dir, ok := strings.Cut(value, "=")
	if !ok || mountPath == "" || dir == "" {
		return mountConfig{}, errors.Errorf(
			"invalid mount %q, expected path=dir", value)
	}
	if dir == typeMemFS+":" {
		return mountConfig{Path: mountPath, Type: typeMemFS}, nil
	}
	return mountConfig{Path: mountPath, Type: typePassthrough, Dir: dir}, nil
}

func (m mountConfig) fileSystem() (gofs.FileSystem, error) {
	switch m.Type {
	case typeMemFS:
		return memfs.New(), nil
	case typePassthrough, "":
		if m.Dir == "" {
			return nil, errors.Errorf("mount %s: dir is required", m.Path)
		}
		info, err := os.Stat(m.Dir)
		if err != nil {
			return nil, errors.Wrapf(err, "mount %s", m.Path)
		}
		if !info.IsDir() {
			return nil, errors.Errorf("mount %s: %s is not a directory", m.Path, m.Dir)
		}
		return passthrough.New(m.Dir), nil
	default:
		return nil, errors.Errorf("mount %s: unknown type %q", m.Path, m.Type)
	}
}

// build creates the router described by c. Every invalid
// entry is reported, not only the first one.
func (c *config) build(opts ...mountfs.Option) (*mountfs.Router, error) {
	var root gofs.FileSystem = memfs.New()
	if c.Root != "" {
		root = passthrough.New(c.Root)
	}
	if c.MaxRedirects > 0 {
		opts = append(opts, mountfs.MaxRedirects(c.MaxRedirects))
	}
	router := mountfs.New(root, opts...)

	var err error
	for _, m := range c.Mounts {
		fsys, ferr := m.fileSystem()
		if ferr != nil {
			err = multierr.Append(err, ferr)
			continue
		}
		err = multierr.Append(err, router.Mount(m.Path, fsys))
	}
	if err != nil {
		return nil, err
	}
	return router, nil
}
