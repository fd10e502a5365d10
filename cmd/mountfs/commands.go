package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// statParallelism bounds the concurrent stats of ls -l and
// stat.
const statParallelism = 8

// statAll stats the names concurrently, keeping their order.
func statAll(names []string) ([]os.FileInfo, error) {
	infos := make([]os.FileInfo, len(names))
	var group errgroup.Group
	group.SetLimit(statParallelism)
	for i, name := range names {
		group.Go(func() error {
			info, err := router.Lstat(name)
			if err != nil {
				return err
			}
			infos[i] = info
			return nil
		})
	}
	return infos, group.Wait()
}

func formatInfo(w io.Writer, name string, info os.FileInfo) {
	fmt.Fprintf(w, "%s %8s %s %s\n",
		info.Mode(), humanize.IBytes(uint64(info.Size())),
		humanize.Time(info.ModTime()), name)
}

var lsLong bool

var lsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "List a directory, mount points included",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		names, err := router.ReadDir(dir)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !lsLong {
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return nil
		}
		paths := make([]string, len(names))
		for i, name := range names {
			paths[i] = strings.TrimSuffix(dir, "/") + "/" + name
		}
		infos, err := statAll(paths)
		if err != nil {
			return err
		}
		for i, info := range infos {
			formatInfo(w, names[i], info)
		}
		return nil
	},
}

var statCmd = &cobra.Command{
	Use:   "stat path...",
	Short: "Describe files without following the last link",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := statAll(args)
		if err != nil {
			return err
		}
		for i, info := range infos {
			formatInfo(cmd.OutOrStdout(), args[i], info)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat path...",
	Short: "Print the content of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			data, err := router.ReadFile(name)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
		}
		return nil
	},
}

var writeData string

var writeCmd = &cobra.Command{
	Use:   "write path",
	Short: "Write standard input, or --data, into a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := []byte(writeData)
		if !cmd.Flags().Changed("data") {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return errors.Wrap(err, "read input")
			}
		}
		return router.WriteFile(args[0], data, 0644)
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir dir...",
	Short: "Create directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			if err := router.Mkdir(name, 0755); err != nil {
				return err
			}
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm path...",
	Short: "Remove files and empty directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			if err := router.Remove(name); err != nil {
				return err
			}
		}
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv source target",
	Short: "Rename a file inside one file system",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return router.Rename(args[0], args[1])
	},
}

var lnSymbolic bool

var lnCmd = &cobra.Command{
	Use:   "ln target name",
	Short: "Create a hard link, or a symbolic one with -s",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lnSymbolic {
			return router.Symlink(args[0], args[1])
		}
		return router.Link(args[0], args[1])
	},
}

var readlinkCmd = &cobra.Command{
	Use:   "readlink path",
	Short: "Print the content of a symbolic link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := router.Readlink(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	},
}

var mountsCmd = &cobra.Command{
	Use:   "mounts",
	Short: "List the mount points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, mountPath := range router.Mounts() {
			fmt.Fprintln(cmd.OutOrStdout(), mountPath)
		}
		return nil
	},
}

var scriptCmd = &cobra.Command{
	Use:   "script [file]",
	Short: "Run one command per line, sharing the mount table",
	Long: "Run one command per line from a file or standard input. " +
		"In-memory file systems keep their content between lines. " +
		"Empty lines and lines starting with # are skipped.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := cmd.InOrStdin()
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open script")
			}
			defer f.Close()
			input = f
		}
		scanner := bufio.NewScanner(input)
		for lineno := 1; scanner.Scan(); lineno++ {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			if fields[0] == cmd.Name() {
				return errors.Errorf("line %d: scripts cannot nest", lineno)
			}
			if err := runLine(cmd, fields); err != nil {
				return errors.Wrapf(err, "line %d", lineno)
			}
		}
		return scanner.Err()
	},
}

// runLine runs a script line as a subcommand of the root.
func runLine(script *cobra.Command, fields []string) error {
	sub, rest, err := rootCmd.Find(fields)
	if err != nil {
		return err
	}
	if sub == rootCmd {
		return errors.Errorf("unknown command %q", fields[0])
	}
	sub.SetOut(script.OutOrStdout())
	sub.SetErr(script.ErrOrStderr())
	if err := sub.ParseFlags(rest); err != nil {
		return err
	}
	defer resetFlags(sub)
	args := sub.Flags().Args()
	if err := sub.ValidateArgs(args); err != nil {
		return err
	}
	return sub.RunE(sub, args)
}

// resetFlags puts the flags of cmd back to their defaults
// for the next line.
func resetFlags(cmd *cobra.Command) {
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false,
		"Print mode, size and modification time")
	writeCmd.Flags().StringVarP(&writeData, "data", "d", "",
		"Content to write instead of standard input")
	lnCmd.Flags().BoolVarP(&lnSymbolic, "symbolic", "s", false,
		"Create a symbolic link")
	rootCmd.AddCommand(
		lsCmd, statCmd, catCmd, writeCmd, mkdirCmd, rmCmd,
		mvCmd, lnCmd, readlinkCmd, mountsCmd, scriptCmd,
	)
}
