package groundlink

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultReadBackoff = 200 * time.Millisecond
	defaultJoinTimeout = 800 * time.Millisecond
	readBufferSize     = 1024
)

// Controller runs a receiving session over one Link: the receive loop, the
// heartbeat watchdog and event dispatch, plus the command side.
type Controller struct {
	log         zerolog.Logger
	link        *Link
	watchdog    *Watchdog
	dispatcher  *Dispatcher
	store       *WaypointStore
	tx          *Transmitter
	readBackoff time.Duration
	joinTimeout time.Duration
	linkOpts    []LinkOption

	receiving atomic.Bool

	mu           sync.Mutex
	stop         chan struct{}
	readerDone   chan struct{}
	watchdogDone chan struct{}
	dispatchDone chan struct{}
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger shared by every component
func WithControllerLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = log
	}
}

// WithReadBackoff sets the pause after a failed read
func WithReadBackoff(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.readBackoff = d
		}
	}
}

// WithJoinTimeout bounds how long Stop waits for each background task
func WithJoinTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.joinTimeout = d
		}
	}
}

// WithLinkOptions passes options through to the Link
func WithLinkOptions(opts ...LinkOption) ControllerOption {
	return func(c *Controller) {
		c.linkOpts = append(c.linkOpts, opts...)
	}
}

// NewController wires a link, watchdog, dispatcher, waypoint store and
// transmitter together. Nothing is opened until Start or Connect.
func NewController(cfg ConnectionConfig, wcfg WatchdogConfig, opts ...ControllerOption) *Controller {
	c := &Controller{
		log:         zerolog.Nop(),
		readBackoff: defaultReadBackoff,
		joinTimeout: defaultJoinTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.link = NewLink(cfg, append([]LinkOption{WithLogger(c.log)}, c.linkOpts...)...)
	c.dispatcher = NewDispatcher(c.log)
	c.watchdog = NewWatchdog(wcfg, c.linkChanged)
	c.store = NewWaypointStore(c.log)
	c.tx = NewTransmitter(c.link, c.store, c.log)
	return c
}

func (c *Controller) linkChanged(up bool) {
	if up {
		c.log.Info().Str("port", c.link.PortName()).Msg("link up")
	} else {
		c.log.Warn().Str("port", c.link.PortName()).Msg("link down")
	}
	c.dispatcher.Publish(LinkChanged{Up: up})
}

// Link returns the underlying link
func (c *Controller) Link() *Link { return c.link }

// Waypoints returns the mission store
func (c *Controller) Waypoints() *WaypointStore { return c.store }

// Transmitter returns the command side
func (c *Controller) Transmitter() *Transmitter { return c.tx }

// LinkState returns the watchdog's current view
func (c *Controller) LinkState() LinkState { return c.watchdog.State() }

// Register adds an observer; see Dispatcher.Register
func (c *Controller) Register(obs any) { c.dispatcher.Register(obs) }

// Receiving reports whether a session is running
func (c *Controller) Receiving() bool { return c.receiving.Load() }

// Connect opens the link without sending anything
func (c *Controller) Connect() error {
	return c.link.Connect()
}

// Start connects and tells the vehicle to start streaming (ON)
func (c *Controller) Start() error {
	if err := c.link.Connect(); err != nil {
		return err
	}
	if err := c.tx.SendStart(); err != nil {
		c.log.Warn().Err(err).Msg("start command not delivered")
	}
	return nil
}

// StartReceiving launches the receive loop, watchdog and dispatcher. Calling
// it while a session runs is a no-op.
func (c *Controller) StartReceiving() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.link.IsOpen() {
		return &LinkError{Kind: KindConnection, Op: "receive", Port: c.link.PortName(), Err: ErrLinkClosed}
	}
	if c.receiving.Load() {
		return nil
	}

	c.watchdog.Reset()
	c.stop = make(chan struct{})
	c.readerDone = make(chan struct{})
	c.watchdogDone = make(chan struct{})
	c.dispatchDone = make(chan struct{})
	c.receiving.Store(true)

	stop := c.stop
	go func(done chan struct{}) {
		defer close(done)
		c.dispatcher.Run(stop)
	}(c.dispatchDone)
	go c.receiveLoop(stop, c.readerDone)
	go func(done chan struct{}) {
		defer close(done)
		c.watchdog.Run(stop)
	}(c.watchdogDone)

	c.log.Info().Str("port", c.link.PortName()).Msg("receiving")
	return nil
}

func (c *Controller) receiveLoop(stop <-chan struct{}, done chan struct{}) {
	defer close(done)

	frames := NewFrameReader()
	buf := make([]byte, readBufferSize)

	for c.receiving.Load() {
		n, err := c.link.Read(buf)
		if err != nil {
			if !c.receiving.Load() {
				return
			}
			c.log.Warn().Err(err).Msg("read failed")
			select {
			case <-stop:
				return
			case <-time.After(c.readBackoff):
			}
			continue
		}
		if n == 0 {
			continue
		}

		for _, ev := range frames.Feed(buf[:n]) {
			if _, ok := ev.(Heartbeat); ok {
				c.watchdog.Observe(time.Now())
				continue
			}
			c.dispatcher.Publish(ev)
		}
	}
}

// Stop ends the session: link-down is published first if the link was up,
// background tasks are joined with a bounded wait, OFF is sent best effort
// and the port is closed. Safe to call repeatedly.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.receiving.Store(false)
	c.watchdog.ForceDown()

	if c.stop != nil {
		close(c.stop)
		c.join("reader", c.readerDone)
		c.join("watchdog", c.watchdogDone)
		c.join("dispatcher", c.dispatchDone)
		c.stop = nil
	}

	if c.link.IsOpen() {
		if err := c.tx.SendStop(); err != nil && !errors.Is(err, ErrLinkClosed) {
			c.log.Warn().Err(err).Msg("stop command not delivered")
		}
	}
	c.link.Disconnect()
}

func (c *Controller) join(task string, done <-chan struct{}) {
	timer := time.NewTimer(c.joinTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		c.log.Warn().Str("task", task).Dur("timeout", c.joinTimeout).Msg("task did not stop in time")
	}
}
