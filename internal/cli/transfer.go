package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/droidxfer/droidxfer/internal/services"
)

// newPushCmd creates the 'push' command.
func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <local> [local...] <remote-dir>",
		Short: "Copy files or directories from this computer to the device",
		Long: `Copy local files or directories into a device directory.

A directory is copied recursively and lands at <remote-dir>/<name>. The whole
source is scanned before anything is written; if the scan fails nothing is
created on the device. Individual file failures are reported and skipped.

Examples:
  droidxfer push photos /sdcard/DCIM
  droidxfer push notes.txt todo.txt Documents`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newDeviceService(GetContext())
			if err != nil {
				return err
			}

			sources := make([]string, 0, len(args)-1)
			for _, arg := range args[:len(args)-1] {
				src, err := resolveLocal(arg)
				if err != nil {
					return err
				}
				sources = append(sources, src)
			}
			dest := resolveRemote(svc.Session(), args[len(args)-1])

			summary, err := svc.Push(GetContext(), sources, dest)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
}

// newPullCmd creates the 'pull' command.
func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <remote> [remote...] <local-dir>",
		Short: "Copy files or directories from the device to this computer",
		Long: `Copy device files or directories into a local directory.

A directory is copied recursively and lands at <local-dir>/<name>. The whole
source is scanned, and free disk space checked, before anything is written.
Individual file failures are reported and skipped; a failed file never
leaves a partial copy behind.

Examples:
  droidxfer pull DCIM/Camera ~/Pictures
  droidxfer pull /sdcard/Download/manual.pdf .`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newDeviceService(GetContext())
			if err != nil {
				return err
			}

			sources := make([]string, 0, len(args)-1)
			for _, arg := range args[:len(args)-1] {
				sources = append(sources, resolveRemote(svc.Session(), arg))
			}
			dest, err := resolveLocal(args[len(args)-1])
			if err != nil {
				return err
			}

			summary, err := svc.Pull(GetContext(), sources, dest)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}
}

// printSummary prints the summary line and turns a partial failure into a
// non-zero exit.
func printSummary(out io.Writer, summary *services.TransferSummary) error {
	if summary.Result.ErrorCount == 0 {
		color.New(color.FgGreen).Fprintln(out, summary.String())
		return nil
	}

	color.New(color.FgYellow).Fprintln(out, summary.String())
	for _, failure := range summary.Result.Failures {
		fmt.Fprintf(out, "  %s\n", failure)
	}
	return errors.New(failureReport(summary))
}

// failureReport words the non-zero exit. File failures are reported against
// the file total; directory failures are not files and are listed apart.
func failureReport(summary *services.TransferSummary) string {
	var parts []string
	if n := summary.FailedFiles(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d of %d %s failed", n, summary.TotalFiles, pluralize("file", summary.TotalFiles)))
	}
	if n := summary.FailedDirectories(); n > 0 {
		parts = append(parts, fmt.Sprintf("could not create %d %s", n, pluralize("folder", n)))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d %s", summary.Result.ErrorCount, pluralize("error", summary.Result.ErrorCount))
	}
	return strings.Join(parts, "; ")
}

// pluralize returns word, or word+"s" unless count is 1.
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
