// Package flightlog records link sessions and their telemetry in SQLite.
package flightlog

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	groundlink "github.com/allbin/go-groundlink"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

var ErrSessionNotFound = errors.New("flight log session not found")

// Session is one connect..disconnect span
type Session struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time // zero while the session is open
	Port      string
	Baud      int
	Driver    string
	Events    int
}

// Duration is zero for sessions that never ended
func (s Session) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// EventRecord is one stored event; Payload is the JSON body
type EventRecord struct {
	ID        int64
	SessionID int64
	Timestamp time.Time
	Kind      string
	Payload   string
}

// Store handles database operations. The database is opened and migrated
// on first use.
type Store struct {
	dbPath string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
		if err != nil {
			s.dbErr = err
			return
		}
		// one writer; recorder callbacks and CLI reads share it
		db.SetMaxOpenConns(1)

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = fmt.Errorf("initializing schema: %w", err)
			return
		}
		s.db = db
	})

	return s.db, s.dbErr
}

const insertSessionSQL = `
INSERT INTO sessions (start_time, port, baud, driver)
VALUES (?, ?, ?, ?)`

// CreateSession opens a session row and returns its ID
func (s *Store) CreateSession(cfg groundlink.ConnectionConfig, port string, start time.Time) (sessionID int64, err error) {
	db, err := s.getDB()
	if err != nil {
		err = fmt.Errorf("getting connection: %w", err)
		return
	}

	stmt, err := db.Prepare(insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer func() {
		if cErr := stmt.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cErr)
		}
	}()

	result, err := stmt.Exec(start.UTC(), port, cfg.BaudRate, cfg.Driver)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	return result.LastInsertId()
}

const endSessionSQL = `UPDATE sessions SET end_time = ? WHERE id = ?`

func (s *Store) EndSession(sessionID int64, end time.Time) error {
	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}

	result, err := db.Exec(endSessionSQL, end.UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
	}
	return nil
}

const insertEventSQL = `
INSERT INTO events (session_id, timestamp, kind, payload)
VALUES (?, ?, ?, ?)`

// RecordEvent stores ev under sessionID
func (s *Store) RecordEvent(sessionID int64, at time.Time, ev groundlink.Event) (err error) {
	payload, err := json.Marshal(eventPayload(ev))
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", ev.Kind(), err)
	}

	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}

	stmt, err := db.Prepare(insertEventSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() {
		if cErr := stmt.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cErr)
		}
	}()

	if _, err = stmt.Exec(sessionID, at.UTC(), ev.Kind(), string(payload)); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// finite maps NaN and infinities to null, which JSON cannot carry
func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func eventPayload(ev groundlink.Event) map[string]any {
	switch e := ev.(type) {
	case groundlink.LocalPose:
		return map[string]any{"x": finite(e.X), "y": finite(e.Y), "z": finite(e.Z)}
	case groundlink.GlobalPose:
		return map[string]any{"lat": finite(e.Lat), "lon": finite(e.Lon), "alt": finite(e.Alt)}
	case groundlink.Battery:
		p := map[string]any{"percent": nil, "voltage": nil}
		if e.HasPercent() {
			p["percent"] = finite(e.Percent)
		}
		if e.HasVoltage() {
			p["voltage"] = finite(e.Voltage)
		}
		return p
	case groundlink.Speed:
		return map[string]any{"value": finite(e.Value)}
	case groundlink.LinkChanged:
		return map[string]any{"up": e.Up}
	default:
		return map[string]any{}
	}
}

const selectSessionsSQL = `
SELECT s.id,
       s.start_time,
       s.end_time,
       s.port,
       s.baud,
       s.driver,
       (SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)
FROM sessions s
ORDER BY s.id`

// Sessions lists every recorded session, oldest first
func (s *Store) Sessions() (sessions []Session, err error) {
	db, err := s.getDB()
	if err != nil {
		err = fmt.Errorf("getting connection: %w", err)
		return
	}

	rows, err := db.Query(selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cErr)
		}
	}()

	for rows.Next() {
		var (
			sess Session
			end  sql.NullTime
		)
		if err = rows.Scan(&sess.ID, &sess.StartTime, &end, &sess.Port, &sess.Baud, &sess.Driver, &sess.Events); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		if end.Valid {
			sess.EndTime = end.Time
		}
		sessions = append(sessions, sess)
	}
	err = rows.Err()
	return
}

const selectSessionSQL = `
SELECT s.id,
       s.start_time,
       s.end_time,
       s.port,
       s.baud,
       s.driver,
       (SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)
FROM sessions s
WHERE s.id = ?`

// Session returns a single session by ID
func (s *Store) Session(id int64) (Session, error) {
	db, err := s.getDB()
	if err != nil {
		return Session{}, fmt.Errorf("getting connection: %w", err)
	}

	var (
		sess Session
		end  sql.NullTime
	)
	err = db.QueryRow(selectSessionSQL, id).
		Scan(&sess.ID, &sess.StartTime, &end, &sess.Port, &sess.Baud, &sess.Driver, &sess.Events)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("scanning session: %w", err)
	}
	if end.Valid {
		sess.EndTime = end.Time
	}
	return sess, nil
}

const selectEventsSQL = `
SELECT id, session_id, timestamp, kind, payload
FROM events
WHERE session_id = ?
ORDER BY id`

// Events returns the events of a session in arrival order
func (s *Store) Events(sessionID int64) (events []EventRecord, err error) {
	db, err := s.getDB()
	if err != nil {
		err = fmt.Errorf("getting connection: %w", err)
		return
	}

	rows, err := db.Query(selectEventsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying events: %w", err)
		return
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cErr)
		}
	}()

	for rows.Next() {
		var rec EventRecord
		if err = rows.Scan(&rec.ID, &rec.SessionID, &rec.Timestamp, &rec.Kind, &rec.Payload); err != nil {
			err = fmt.Errorf("scanning event: %w", err)
			return
		}
		events = append(events, rec)
	}
	err = rows.Err()
	return
}

// Close closes the database connection
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
			s.db = nil
		}
	})
	return s.closeErr
}
