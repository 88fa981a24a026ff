/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/allbin/go-groundlink/internal/flightlog"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// logCmd groups the flight log browsing commands
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Browse recorded flight logs",
	Long: `Browse sessions recorded with --record (or flightlog.enable: true).

Example usage:
  groundlink log sessions
  groundlink log show 3`,
}

var logSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, _ := loadSettings(nil)
		store := openFlightLog(s.FlightLog.Path)
		defer store.Close()

		sessions, err := store.Sessions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded")
			return
		}

		headerStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("240"))
		fmt.Println(headerStyle.Render(fmt.Sprintf("%-5s %-16s %-16s %-10s %-10s %s",
			"ID", "Started", "Port", "Baud", "Duration", "Events")))

		for _, sess := range sessions {
			duration := "open"
			if !sess.EndTime.IsZero() {
				duration = sess.Duration().Round(time.Second).String()
			}
			fmt.Printf("%-5d %-16s %-16s %-10s %-10s %s\n",
				sess.ID,
				humanize.Time(sess.StartTime),
				sess.Port,
				humanize.Comma(int64(sess.Baud)),
				duration,
				humanize.Comma(int64(sess.Events)))
		}
	},
}

var logShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the events of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid session id %q\n", args[0])
			os.Exit(1)
		}

		s, _ := loadSettings(nil)
		store := openFlightLog(s.FlightLog.Path)
		defer store.Close()

		sess, err := store.Session(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		events, err := store.Events(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Session %d: %s @ %s baud (%s), started %s\n\n",
			sess.ID, sess.Port, humanize.Comma(int64(sess.Baud)), sess.Driver, humanize.Time(sess.StartTime))

		timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		for _, ev := range events {
			fmt.Printf("%s %-12s %s\n",
				timeStyle.Render(ev.Timestamp.Local().Format("15:04:05.000")), ev.Kind, ev.Payload)
		}
	},
}

func openFlightLog(path string) *flightlog.Store {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: no flight log at %s\n", path)
		os.Exit(1)
	}
	return flightlog.New(path)
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logSessionsCmd)
	logCmd.AddCommand(logShowCmd)
}
