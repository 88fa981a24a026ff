/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/mission"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// missionCmd groups the waypoint mission commands
var missionCmd = &cobra.Command{
	Use:   "mission",
	Short: "Validate and upload waypoint missions",
	Long: `Work with waypoint mission files (.yaml, .yml or .json).

A mission is a list of {x, y, z} waypoints, either at the top level or under
a "waypoints" key. z defaults to 3.5 when omitted.`,
}

var missionCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a mission file without sending it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw := loadMission(args[0])

		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		valid := 0
		for i, item := range raw {
			wp, err := groundlink.ParseWaypoint(item)
			if err != nil {
				fmt.Println(errStyle.Render(fmt.Sprintf("%3d  invalid: %v", i+1, err)))
				continue
			}
			valid++
			fmt.Printf("%3d  x=%-9.2f y=%-9.2f z=%.2f\n", i+1, wp.X, wp.Y, wp.Z)
		}
		fmt.Printf("\n%d of %d waypoints valid\n", valid, len(raw))
		if valid == 0 {
			os.Exit(1)
		}
	},
}

var missionPushCmd = &cobra.Command{
	Use:   "push <file> [port]",
	Short: "Upload a mission to the vehicle",
	Long: `Load a mission file, drop invalid waypoints, and send the rest to the
vehicle as a single {"waypoints":[...]} line.

Example usage:
  groundlink mission push survey.yaml /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		raw := loadMission(args[0])
		s, log := loadSettings(args[1:])

		ctl := newController(s, log)
		if err := ctl.Connect(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer ctl.Link().Disconnect()

		n, err := ctl.Transmitter().UploadMission(raw)
		if err != nil {
			ctl.Link().Disconnect()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
		fmt.Printf("%s sent %d waypoint(s) to %s", okStyle.Render("✓"), n, ctl.Link().PortName())
		if skipped := len(raw) - n; skipped > 0 {
			fmt.Printf(" (%d invalid skipped)", skipped)
		}
		fmt.Println()
	},
}

func loadMission(path string) []map[string]any {
	raw, err := mission.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(raw) == 0 {
		fmt.Fprintf(os.Stderr, "Error: %s contains no waypoints\n", path)
		os.Exit(1)
	}
	return raw
}

func init() {
	rootCmd.AddCommand(missionCmd)
	missionCmd.AddCommand(missionCheckCmd)
	missionCmd.AddCommand(missionPushCmd)
}
