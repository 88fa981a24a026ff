/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  groundlink info /dev/ttyUSB0
  groundlink info COM5

For USB radios this shows the vendor/product IDs and serial number reported
by the operating system.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		info, err := groundlink.GetPortInfo(portPath)
		if err != nil {
			if errors.Is(err, groundlink.ErrDeviceNotFound) {
				fmt.Fprintf(os.Stderr, "Error: %s is not connected (see 'groundlink list')\n", portPath)
			} else {
				fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Path)
		fmt.Printf("  Name:        %s\n", info.Name)
		fmt.Printf("  Description: %s\n", info.Description)
		if info.Path == groundlink.PickPort() {
			fmt.Println("  Auto-detect: selected")
		}

		if info.IsUSB {
			fmt.Println("\nUSB Device Information:")
			if info.VendorID != "" {
				fmt.Printf("  Vendor ID:    %s\n", info.VendorID)
			}
			if info.ProductID != "" {
				fmt.Printf("  Product ID:   %s\n", info.ProductID)
			}
			if info.SerialNumber != "" {
				fmt.Printf("  Serial:       %s\n", info.SerialNumber)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
