// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidxfer/droidxfer/internal/bridge"
	"github.com/droidxfer/droidxfer/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage droidxfer configuration",
		Long: `Configuration management commands for droidxfer.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Check adb and list usable devices
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// configPath returns --config, or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for droidxfer.

The configuration will be saved to ~/.config/droidxfer/droidxfer.conf
(%APPDATA%\droidxfer\droidxfer.conf on Windows), or to --config.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := configPath()
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "droidxfer Configuration Setup")
			fmt.Fprintln(out, "=============================")
			fmt.Fprintln(out)

			cfg := config.NewConfig()
			in := bufio.NewReader(cmd.InOrStdin())

			if cfg.Device.Serial, err = promptValue(in, out, "Device serial (empty = only attached device)", ""); err != nil {
				return err
			}
			if cfg.Device.Root, err = promptValue(in, out, "Device root", cfg.Device.Root); err != nil {
				return err
			}
			if cfg.ADB.Path, err = promptValue(in, out, "adb path (empty = search PATH)", ""); err != nil {
				return err
			}
			if cfg.Transfer.IncludeHidden, err = promptBool(in, out, "Show hidden files when browsing", cfg.Transfer.IncludeHidden); err != nil {
				return err
			}
			if cfg.Transfer.SdcardFallback, err = promptBool(in, out, "Retry missing device paths under the device root", cfg.Transfer.SdcardFallback); err != nil {
				return err
			}
			if cfg.Transfer.CheckDiskSpace, err = promptBool(in, out, "Check free disk space before pulling", cfg.Transfer.CheckDiskSpace); err != nil {
				return err
			}
			if cfg.Logging.Level, err = promptValue(in, out, "Log level (debug, info, warn, error)", cfg.Logging.Level); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration: the config file with the
ANDROID_SERIAL and ADB environment variables and the global flags applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			show := func(v string) string {
				if v == "" {
					return "(not set)"
				}
				return v
			}

			fmt.Fprintln(out, "Current Configuration:")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintf(out, "Device serial:     %s\n", show(cfg.Device.Serial))
			fmt.Fprintf(out, "Device root:       %s\n", cfg.Device.Root)
			fmt.Fprintf(out, "adb path:          %s\n", show(cfg.ADB.Path))
			fmt.Fprintf(out, "Include hidden:    %t\n", cfg.Transfer.IncludeHidden)
			fmt.Fprintf(out, "Sdcard fallback:   %t\n", cfg.Transfer.SdcardFallback)
			fmt.Fprintf(out, "Check disk space:  %t\n", cfg.Transfer.CheckDiskSpace)
			fmt.Fprintf(out, "Log level:         %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check adb and list usable devices",
		Long:  `Verify that adb can be run and report which devices are ready for transfers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := newService()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking adb...")
			devices, err := svc.Devices(GetContext())
			if err != nil {
				return fmt.Errorf("adb check failed: %w", err)
			}

			ready := 0
			for _, d := range devices {
				if d.Online() {
					ready++
				}
			}
			fmt.Fprintf(out, "adb OK: %d device(s) attached, %d ready\n", len(devices), ready)

			if ready == 0 {
				return fmt.Errorf("no usable device: %w", bridge.ErrDeviceUnavailable)
			}

			device, err := svc.SelectDevice(GetContext(), cfg.Device.Serial)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Using device %s (%s)\n", device.Serial, device.Model)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
