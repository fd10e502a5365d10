package mountfs

import (
	"os"

	"github.com/go-mountfs/mountfs/log"
)

// DefaultDescriptorBase is the first descriptor issued by
// Open. It is kept clear of the descriptors a process is
// likely to see from the operating system.
const DefaultDescriptorBase = 1 << 20

// DefaultMaxRedirects bounds the redirections of a single
// operation, mirroring the symbolic link limit of Linux.
const DefaultMaxRedirects = 40

type option struct {
	log            log.Log
	workingDir     string
	maxRedirects   int
	descriptorBase int
}

func newOption() *option {
	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "/"
	}
	return &option{
		log:            log.NoLog{},
		workingDir:     workingDir,
		maxRedirects:   DefaultMaxRedirects,
		descriptorBase: DefaultDescriptorBase,
	}
}

// Option is the options that could be passed to New.
type Option func(*option)

// Logger sets the logger of the router. Nothing is logged
// by default.
func Logger(value log.Log) Option {
	return func(o *option) {
		if value == nil {
			value = log.NoLog{}
		}
		o.log = value
	}
}

// WorkingDir sets the directory that relative paths are
// resolved against, instead of the working directory of
// the process at the time New is called.
func WorkingDir(value string) Option {
	return func(o *option) {
		o.workingDir = value
	}
}

// MaxRedirects sets how many times a single operation may
// be redirected out of a file system's tree before failing
// with ErrTooManyRedirects.
func MaxRedirects(value int) Option {
	return func(o *option) {
		if value < 0 {
			value = 0
		}
		o.maxRedirects = value
	}
}

// DescriptorBase sets the first descriptor issued by Open.
func DescriptorBase(value int) Option {
	return func(o *option) {
		o.descriptorBase = value
	}
}

// Options is used to aggregate a bundle of options.
func Options(opts ...Option) Option {
	return func(o *option) {
		for _, opt := range opts {
			opt(o)
		}
	}
}
