// Command mountfs runs file operations through a router
// assembled from host directories and in-memory file
// systems.
package main

import (
	"os"

	"github.com/pkg/errors"
	sirupsen "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-mountfs/mountfs"
	"github.com/go-mountfs/mountfs/log"
	"github.com/go-mountfs/mountfs/log/logrus"
	"github.com/go-mountfs/mountfs/log/zaplog"
)

var (
	configFile string
	rootDir    string
	mountFlags []string
	logTopics  string
	logFormat  = "logrus"
	workDir    = "/"
)

var router *mountfs.Router

func newLogger(topics log.Topics) (log.Log, error) {
	if topics == 0 {
		return log.NoLog{}, nil
	}
	switch logFormat {
	case "logrus":
		logger := sirupsen.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(sirupsen.TraceLevel)
		return &logrus.Logrus{Logger: logger, Enable: topics}, nil
	case "zap":
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, errors.Wrap(err, "create zap logger")
		}
		return zaplog.New(logger, topics), nil
	default:
		return nil, errors.Errorf("unknown log format %q", logFormat)
	}
}

// setup assembles the router once, so that the commands of
// a script share it.
func setup(cmd *cobra.Command, args []string) error {
	if router != nil {
		return nil
	}
	cfg := &config{}
	if configFile != "" {
		var err error
		if cfg, err = loadConfig(configFile); err != nil {
			return err
		}
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}
	for _, value := range mountFlags {
		m, err := parseMountFlag(value)
		if err != nil {
			return err
		}
		cfg.Mounts = append(cfg.Mounts, m)
	}
	topics, err := log.ParseTopics(logTopics)
	if err != nil {
		return err
	}
	logger, err := newLogger(topics)
	if err != nil {
		return err
	}
	router, err = cfg.build(
		mountfs.Logger(logger),
		mountfs.WorkingDir(workDir),
	)
	return err
}

var rootCmd = &cobra.Command{
	Use:   "mountfs",
	Short: "Run file operations through a mount table",
	Long: "Run file operations through a mount table of host " +
		"directories and in-memory file systems.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(
		&configFile, "config", "c", configFile,
		"YAML file listing the root and the mounts",
	)
	flags.StringVarP(
		&rootDir, "root", "r", rootDir,
		"Host directory serving unmounted paths, in-memory if empty",
	)
	flags.StringArrayVarP(
		&mountFlags, "mount", "m", mountFlags,
		"Mount path=dir, or path=memfs: for an in-memory file system",
	)
	flags.StringVar(
		&logTopics, "log", logTopics,
		"Comma separated topics to log: call, verdict, trace, error or all",
	)
	flags.StringVar(
		&logFormat, "log-format", logFormat,
		"Logger to use: logrus or zap",
	)
	flags.StringVarP(
		&workDir, "cwd", "C", workDir,
		"Directory relative paths are resolved against",
	)
}

func main() {
	err := rootCmd.Execute()
	if router != nil {
		_ = router.CloseAll()
	}
	if err != nil {
		os.Exit(1)
	}
}
