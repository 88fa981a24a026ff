package flightlog

import (
	"sync/atomic"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	"github.com/rs/zerolog"
)

// Recorder is an observer that writes every telemetry event and link
// transition of one session to the store. Register it with
// Controller.Register.
type Recorder struct {
	store     *Store
	sessionID int64
	log       zerolog.Logger
	now       func() time.Time
	recorded  atomic.Uint64
}

// StartSession creates the session row and returns its recorder
func StartSession(store *Store, cfg groundlink.ConnectionConfig, port string, log zerolog.Logger) (*Recorder, error) {
	now := time.Now()
	id, err := store.CreateSession(cfg, port, now)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("session", id).Str("port", port).Msg("Recording flight log")
	return &Recorder{store: store, sessionID: id, log: log, now: time.Now}, nil
}

func (r *Recorder) SessionID() int64 { return r.sessionID }

// Recorded is the number of events stored so far
func (r *Recorder) Recorded() uint64 { return r.recorded.Load() }

// Finish stamps the session end time
func (r *Recorder) Finish() error {
	if err := r.store.EndSession(r.sessionID, r.now()); err != nil {
		return err
	}
	r.log.Info().Int64("session", r.sessionID).Uint64("events", r.Recorded()).Msg("Flight log closed")
	return nil
}

func (r *Recorder) record(ev groundlink.Event) error {
	if err := r.store.RecordEvent(r.sessionID, r.now(), ev); err != nil {
		return err
	}
	r.recorded.Add(1)
	return nil
}

func (r *Recorder) OnLocalPosition(x, y, z float64) error {
	return r.record(groundlink.LocalPose{X: x, Y: y, Z: z})
}

func (r *Recorder) OnGlobalPosition(lat, lon, alt float64) error {
	return r.record(groundlink.GlobalPose{Lat: lat, Lon: lon, Alt: alt})
}

func (r *Recorder) OnBattery(percent, voltage float64) error {
	return r.record(groundlink.Battery{Percent: percent, Voltage: voltage})
}

func (r *Recorder) OnSpeed(value float64) error {
	return r.record(groundlink.Speed{Value: value})
}

func (r *Recorder) OnLinkStateChanged(up bool) error {
	return r.record(groundlink.LinkChanged{Up: up})
}
