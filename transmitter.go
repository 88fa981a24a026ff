package groundlink

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Outbound tokens
const (
	CmdOn       = "ON"
	CmdOff      = "OFF"
	CmdLand     = "land"
	CmdOffboard = "offboard"
)

// LineWriter is the part of a Link the transmitter needs
type LineWriter interface {
	WriteLine(text string) error
	IsOpen() bool
}

// Transmitter encodes commands and the mission onto a LineWriter
type Transmitter struct {
	w     LineWriter
	store *WaypointStore
	log   zerolog.Logger
}

type commandFrame struct {
	Cmd string `json:"cmd"`
}

type waypointsFrame struct {
	Waypoints []Waypoint `json:"waypoints"`
}

// NewTransmitter returns a transmitter writing to w with store as its mission source
func NewTransmitter(w LineWriter, store *WaypointStore, log zerolog.Logger) *Transmitter {
	return &Transmitter{w: w, store: store, log: log}
}

// SendStart writes ON
func (t *Transmitter) SendStart() error {
	return t.send(CmdOn)
}

// SendStop writes OFF
func (t *Transmitter) SendStop() error {
	return t.send(CmdOff)
}

// SendLand writes {"cmd":"land"}
func (t *Transmitter) SendLand() error {
	return t.sendCommand(CmdLand)
}

// SendOffboard writes {"cmd":"offboard"}
func (t *Transmitter) SendOffboard() error {
	return t.sendCommand(CmdOffboard)
}

// SendWaypoints writes the whole mission as one frame. Nothing is written
// when the mission is empty or the link is closed.
func (t *Transmitter) SendWaypoints() error {
	waypoints := t.store.List()
	if len(waypoints) == 0 {
		t.log.Info().Msg("no waypoints to send")
		return ErrNoWaypoints
	}
	if !t.w.IsOpen() {
		t.log.Info().Int("count", len(waypoints)).Msg("link closed, waypoints not sent")
		return ErrLinkClosed
	}

	payload, err := json.Marshal(waypointsFrame{Waypoints: waypoints})
	if err != nil {
		return fmt.Errorf("failed to encode waypoints: %w", err)
	}
	if err := t.send(string(payload)); err != nil {
		return err
	}

	t.log.Info().Int("count", len(waypoints)).Msg("waypoints sent")
	return nil
}

// UploadMission replaces the mission with raw and sends it
func (t *Transmitter) UploadMission(raw []map[string]any) (int, error) {
	n := t.store.ReplaceAll(raw)
	return n, t.SendWaypoints()
}

func (t *Transmitter) sendCommand(cmd string) error {
	payload, err := json.Marshal(commandFrame{Cmd: cmd})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", cmd, err)
	}
	return t.send(string(payload))
}

func (t *Transmitter) send(line string) error {
	if err := t.w.WriteLine(line); err != nil {
		t.log.Warn().Err(err).Str("line", line).Msg("send failed")
		return err
	}
	t.log.Debug().Str("line", line).Msg("sent")
	return nil
}
