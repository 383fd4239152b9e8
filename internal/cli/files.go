package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/droidxfer/droidxfer/internal/config"
	"github.com/droidxfer/droidxfer/internal/models"
	"github.com/droidxfer/droidxfer/internal/pathutil"
	"github.com/droidxfer/droidxfer/internal/services"
)

// newLsCmd creates the 'ls' command.
func newLsCmd() *cobra.Command {
	var local, all bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a device or local directory",
		Long: `List one directory, directories first.

Device paths are relative to the configured device root (default /sdcard)
unless they start with "/". With --local, the path is on this computer and
defaults to the working directory.

Hidden entries are omitted unless --all is given or include_hidden is set
in the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			showHidden := func(cfg *config.Config) {
				if all {
					cfg.Transfer.IncludeHidden = true
				}
			}

			if local {
				svc, _, err := newService(showHidden)
				if err != nil {
					return err
				}
				dir, err := svc.Session().NavigateLocal(arg)
				if err != nil {
					return err
				}
				entries, err := svc.ListLocal(dir)
				if err != nil {
					return err
				}
				printEntries(cmd.OutOrStdout(), dir, entries)
				return nil
			}

			svc, _, err := newDeviceService(GetContext(), showHidden)
			if err != nil {
				return err
			}
			dir := svc.Session().RemotePath()
			if arg != "" {
				dir = svc.Session().NavigateRemote(arg)
			}
			entries, err := svc.ListRemote(GetContext(), dir)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), dir, entries)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "List a directory on this computer")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include hidden entries")

	return cmd
}

func printEntries(out io.Writer, dir string, entries []models.FileEntry) {
	fmt.Fprintf(out, "%s:\n", dir)
	if len(entries) == 0 {
		fmt.Fprintln(out, "  (empty)")
		return
	}

	dirColor := color.New(color.FgBlue, color.Bold)
	for _, e := range entries {
		name := e.Name
		if e.IsDirectory {
			name = dirColor.Sprint(name + "/")
		}
		fmt.Fprintf(out, "%10s  %s\n", e.DisplaySize(), name)
	}
}

// newMkdirCmd creates the 'mkdir' command.
func newMkdirCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory on the device or locally",
		Long: `Create a directory and any missing parents. An existing directory is not
an error. The new directory's name must not contain a path separator.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				svc, _, err := newService()
				if err != nil {
					return err
				}
				target, err := resolveLocal(args[0])
				if err != nil {
					return err
				}
				created, err := svc.Mkdir(GetContext(), filepath.Dir(target), filepath.Base(target), true)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created)
				return nil
			}

			svc, _, err := newDeviceService(GetContext())
			if err != nil {
				return err
			}
			target := resolveRemote(svc.Session(), args[0])
			parent := pathutil.ParentOf(target, true, "/")
			created, err := svc.Mkdir(GetContext(), parent, pathutil.BaseName(target, true), false)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", created)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "Create the directory on this computer")

	return cmd
}

// newRmCmd creates the 'rm' command.
func newRmCmd() *cobra.Command {
	var local, recursive, force bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file or directory on the device or locally",
		Long: `Delete a file, or with --recursive a directory and everything in it.

You are asked to confirm unless --force is given. The device root itself
can never be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				svc    *services.TransferService
				target string
				where  string
				err    error
			)

			if local {
				svc, _, err = newService()
				if err != nil {
					return err
				}
				target, err = resolveLocal(args[0])
				if err != nil {
					return err
				}
				where = "this computer"
			} else {
				svc, _, err = newDeviceService(GetContext())
				if err != nil {
					return err
				}
				target = resolveRemote(svc.Session(), args[0])
				deviceID, _ := svc.Session().DeviceID()
				where = "device " + deviceID
			}

			if !force {
				ok, err := confirmRemoval(cmd, target, where)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := svc.Delete(GetContext(), target, local, recursive); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "Delete on this computer")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Delete directories and their contents")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")

	return cmd
}

// newPreviewCmd creates the 'preview' command.
func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <remote-file>",
		Short: "Pull one device file into a temporary directory",
		Long: `Pull one device file into droidxfer's preview directory (under the system
temporary directory) and print the local path, so it can be opened with any
local application. An earlier preview of the same name is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newDeviceService(GetContext())
			if err != nil {
				return err
			}

			localPath, err := svc.Preview(GetContext(), resolveRemote(svc.Session(), args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), localPath)
			return nil
		},
	}
}

func confirmRemoval(cmd *cobra.Command, target, where string) (bool, error) {
	in := bufio.NewReader(cmd.InOrStdin())
	return promptConfirm(in, cmd.OutOrStdout(), fmt.Sprintf("Delete %s on %s?", target, where))
}
