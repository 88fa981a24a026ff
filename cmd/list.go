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

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial ports present on the system.

The port auto-detection would pick is marked with *. Use --table for
descriptions and USB identifiers, and --filter to narrow the list:
- usb:      USB serial adapters and CDC/ACM radios (ttyUSB*, ttyACM*)
- standard: on-board UARTs (ttyS*)
- arm:      ARM/Raspberry Pi UARTs (ttyAMA*)`,
	Run: func(cmd *cobra.Command, args []string) {
		infos, err := groundlink.ListPortDetails()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterPorts(infos, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		picked := groundlink.PickPort()

		if tableFormat {
			renderTable(filtered, picked)
		} else {
			renderSimple(filtered, picked)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(infos []groundlink.PortInfo, filterType string) []groundlink.PortInfo {
	if filterType == "" || filterType == "all" {
		return infos
	}

	var filtered []groundlink.PortInfo
	for _, info := range infos {
		name := strings.ToLower(info.Name)
		switch strings.ToLower(filterType) {
		case "usb":
			if info.IsUSB || strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, info)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, info)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, info)
			}
		}
	}
	return filtered
}

func marker(path, picked string) string {
	if path == picked {
		return "*"
	}
	return " "
}

// renderTable renders the port list in a styled static table format
func renderTable(infos []groundlink.PortInfo, picked string) {
	fmt.Printf("Found %d serial port(s):\n\n", len(infos))

	portWidth := 18
	usbWidth := 10
	descWidth := 30

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240")).
		PaddingBottom(1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)

	header := fmt.Sprintf("  %-*s %-*s %-*s",
		portWidth, "Port",
		usbWidth, "VID:PID",
		descWidth, "Description")
	fmt.Println(headerStyle.Render(header))

	for _, info := range infos {
		usb := "-"
		if info.IsUSB {
			usb = info.VendorID + ":" + info.ProductID
		}
		row := fmt.Sprintf("%s %-*s %-*s %-*s",
			marker(info.Path, picked),
			portWidth, info.Path,
			usbWidth, usb,
			descWidth, info.Description)
		fmt.Println(cellStyle.Render(row))
	}
}

// renderSimple renders the port list in simple text format
func renderSimple(infos []groundlink.PortInfo, picked string) {
	for _, info := range infos {
		fmt.Printf("%s %s\n", marker(info.Path, picked), info.Path)
	}
}
