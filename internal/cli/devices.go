package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newDevicesCmd creates the 'devices' command.
func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached Android devices",
		Long: `List every device adb reports, including offline and unauthorized ones.

Only devices in the "device" state can be used. Choose one with --device
when more than one is attached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService()
			if err != nil {
				return err
			}

			devices, err := svc.Devices(GetContext())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(devices) == 0 {
				fmt.Fprintln(out, "No devices attached.")
				return nil
			}

			fmt.Fprintf(out, "%-24s %-14s %s\n", "SERIAL", "STATE", "MODEL")
			for _, d := range devices {
				state := fmt.Sprintf("%-14s", d.State)
				if !d.Online() {
					state = color.New(color.FgYellow).Sprint(state)
				}
				fmt.Fprintf(out, "%-24s %s %s\n", d.Serial, state, d.Model)
			}
			return nil
		},
	}
}
