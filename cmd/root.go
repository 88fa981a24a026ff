/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/flightlog"
	"github.com/allbin/go-groundlink/internal/settings"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "groundlink",
	Short: "Ground station link to a vehicle over a serial radio",
	Long: `groundlink talks to a vehicle through a serial telemetry radio.

It decodes newline-delimited JSON telemetry (position, GPS, battery, speed),
tracks link liveness from heartbeats, and sends flight commands and waypoint
missions back to the vehicle.

Settings come from flags, GROUNDLINK_* environment variables, a .env file
and groundlink.yaml (./ or ~/.config/groundlink/), in that order.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ./groundlink.yaml)")
	pf.IntP("baud", "b", 0, "Baud rate (default 9600)")
	pf.String("driver", "", "Serial driver: bugst, tarm, native")
	pf.Duration("read-timeout", 0, "Serial read timeout (default 200ms)")
	pf.Duration("write-timeout", 0, "Serial write timeout (default 500ms)")
	pf.Duration("heartbeat-timeout", 0, "Link is considered lost after this much silence (default 6s)")
	pf.String("flightlog", "", "Flight log database path")
	pf.Bool("record", false, "Record the session to the flight log")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	if err := settings.BindFlags(v, pf); err != nil {
		panic(err)
	}
}

// loadSettings resolves the configuration; the first positional argument,
// when present, overrides the port
func loadSettings(args []string) (settings.Settings, zerolog.Logger) {
	if err := settings.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s, err := settings.Load(v, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(args) > 0 {
		s = s.WithPort(args[0])
	}
	return s, s.NewLogger(os.Stderr)
}

func newController(s settings.Settings, log zerolog.Logger) *groundlink.Controller {
	cfg, err := s.ConnectionConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return groundlink.NewController(cfg, s.WatchdogConfig(),
		groundlink.WithControllerLogger(log),
		groundlink.WithLinkOptions(groundlink.WithLogger(log)),
	)
}

// startRecording registers a flight log recorder when recording is enabled.
// Call it after Connect so the session carries the resolved port. The
// returned func closes the session and the database.
func startRecording(s settings.Settings, ctl *groundlink.Controller, log zerolog.Logger) func() {
	if !s.FlightLog.Enable {
		return func() {}
	}

	if err := os.MkdirAll(filepath.Dir(s.FlightLog.Path), 0o755); err != nil {
		log.Warn().Err(err).Msg("Flight log disabled")
		return func() {}
	}

	store := flightlog.New(s.FlightLog.Path)
	rec, err := flightlog.StartSession(store, ctl.Link().Config(), ctl.Link().PortName(), log)
	if err != nil {
		log.Warn().Err(err).Str("path", s.FlightLog.Path).Msg("Flight log disabled")
		store.Close()
		return func() {}
	}
	ctl.Register(rec)

	return func() {
		if err := rec.Finish(); err != nil {
			log.Warn().Err(err).Msg("Closing flight log session")
		}
		store.Close()
	}
}
