/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:       "send <on|off|land|offboard> [port]",
	Short:     "Send a single flight command",
	ValidArgs: []string{"on", "off", "land", "offboard"},
	Long: `Open the link, send one command to the vehicle and close the link.

Commands:
  on        start (raw ON line)
  off       stop (raw OFF line)
  land      {"cmd":"land"}
  offboard  {"cmd":"offboard"}

Example usage:
  groundlink send on /dev/ttyUSB0
  groundlink send land              # auto-detect the radio`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		command := strings.ToLower(args[0])
		s, log := loadSettings(args[1:])

		ctl := newController(s, log)
		send, ok := map[string]func() error{
			"on":       ctl.Transmitter().SendStart,
			"off":      ctl.Transmitter().SendStop,
			"land":     ctl.Transmitter().SendLand,
			"offboard": ctl.Transmitter().SendOffboard,
		}[command]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown command %q (want on, off, land or offboard)\n", args[0])
			os.Exit(1)
		}

		if err := ctl.Connect(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer ctl.Link().Disconnect()

		if err := send(); err != nil {
			ctl.Link().Disconnect()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
		fmt.Printf("%s %s → %s\n", okStyle.Render("✓"), strings.ToUpper(command), ctl.Link().PortName())
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
