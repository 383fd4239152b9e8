// Package cli provides the command-line interface for droidxfer.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/droidxfer/droidxfer/internal/logging"
	"github.com/droidxfer/droidxfer/internal/services"
	"github.com/droidxfer/droidxfer/internal/transfer"
	"github.com/droidxfer/droidxfer/internal/version"
)

var (
	// Global flags
	cfgFile      string
	deviceSerial string
	adbPath      string
	verbose      bool
	debug        bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "droidxfer",
		Short: "Transfer files between this computer and an Android device",
		Long: `droidxfer ` + version.Version + ` - Built: ` + version.BuildTime + `
Browse, push, pull and preview files on an Android device over adb.

Directories are transferred recursively: the whole source tree is scanned
first, then directories are created parent-first and files are copied one
at a time. A failed file is reported and skipped; the summary always shows
both the success and the error count.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&deviceSerial, "device", "s", "", "Device serial (overrides ANDROID_SERIAL and config)")
	rootCmd.PersistentFlags().StringVar(&adbPath, "adb", "", "Path to the adb executable (overrides ADB and config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\n\nReceived signal %v, cancelling operations...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newMkdirCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// printError writes err for the user. A scan failure is printed with its
// fixed "Error counting files" wording and no extra prefix.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	if transfer.IsScanError(err) {
		red.Fprintln(w, services.FailureMessage(err))
		return
	}
	red.Fprintln(w, "Error: "+services.FailureMessage(err))
}
