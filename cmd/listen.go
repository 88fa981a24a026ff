/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/allbin/go-groundlink/internal/settings"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen [port]",
	Short: "Log vehicle telemetry without a user interface",
	Long: `Open the link, send ON, and log every telemetry event and link transition
until interrupted. On Ctrl+C the link is marked down, OFF is sent and the
port is closed.

Example usage:
  groundlink listen /dev/ttyUSB0
  groundlink listen --record             # auto-detect, record to the flight log
  groundlink listen --no-start COM4      # do not send ON`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noStart, _ := cmd.Flags().GetBool("no-start")
		stats, _ := cmd.Flags().GetDuration("stats")

		s, log := loadSettings(args)
		if err := runListen(s, log, !noStart, stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().Bool("no-start", false, "Connect without sending ON")
	listenCmd.Flags().Duration("stats", 0, "Log link statistics at this interval (0 disables)")
}

// logObserver writes each delivered event to log
func logObserver(log zerolog.Logger) groundlink.ObserverFuncs {
	return groundlink.ObserverFuncs{
		LocalPosition: func(x, y, z float64) error {
			log.Info().Str("event", groundlink.KindLocalPose).Float64("x", x).Float64("y", y).Float64("z", z).Msg("Local position")
			return nil
		},
		GlobalPosition: func(lat, lon, alt float64) error {
			log.Info().Str("event", groundlink.KindGlobalPose).Float64("lat", lat).Float64("lon", lon).Float64("alt", alt).Msg("GPS position")
			return nil
		},
		Battery: func(percent, voltage float64) error {
			b := groundlink.Battery{Percent: percent, Voltage: voltage}
			ev := log.Info().Str("event", groundlink.KindBattery)
			if b.HasPercent() {
				ev = ev.Float64("percent", percent)
			}
			if b.HasVoltage() {
				ev = ev.Float64("voltage", voltage)
			}
			ev.Msg("Battery")
			return nil
		},
		Speed: func(value float64) error {
			log.Info().Str("event", groundlink.KindSpeed).Float64("speed", value).Msg("Speed")
			return nil
		},
		LinkState: func(up bool) error {
			if up {
				log.Info().Str("event", groundlink.KindLinkChanged).Msg("Link up")
			} else {
				log.Warn().Str("event", groundlink.KindLinkChanged).Msg("Link down")
			}
			return nil
		},
	}
}

func runListen(s settings.Settings, log zerolog.Logger, start bool, stats time.Duration) error {
	ctl := newController(s, log)
	if err := ctl.Connect(); err != nil {
		return err
	}

	finish := startRecording(s, ctl, log)
	defer finish()

	ctl.Register(logObserver(log))
	if start {
		// failures are logged by the transmitter; keep listening
		_ = ctl.Transmitter().SendStart()
	}
	if err := ctl.StartReceiving(); err != nil {
		ctl.Stop()
		return err
	}
	defer ctl.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("port", ctl.Link().PortName()).Msg("Listening, press Ctrl+C to stop")

	var tick <-chan time.Time
	if stats > 0 {
		ticker := time.NewTicker(stats)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			return nil
		case <-tick:
			st := ctl.LinkState()
			log.Info().
				Bool("up", st.IsUp).
				Uint("missed", st.MissedCount).
				Time("last_heartbeat", st.LastHeartbeatAt).
				Msg("Link status")
		}
	}
}
