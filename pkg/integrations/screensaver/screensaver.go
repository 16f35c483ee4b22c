// Package screensaver reports the session lock state over D-Bus.
package screensaver

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// service is one bus name exposing the ScreenSaver GetActive method
type service struct {
	dest  string
	path  dbus.ObjectPath
	iface string
}

var services = []service{
	{dest: "org.freedesktop.ScreenSaver", path: "/org/freedesktop/ScreenSaver", iface: "org.freedesktop.ScreenSaver"},
	{dest: "org.gnome.ScreenSaver", path: "/org/gnome/ScreenSaver", iface: "org.gnome.ScreenSaver"},
}

// ErrUnsupported is returned when no screensaver service answers on the bus
var ErrUnsupported = errors.New("no screensaver service on the session bus")

// caller is the part of a bus object the locker uses
type caller interface {
	GetActive(svc service) (bool, error)
}

type busCaller struct {
	conn *dbus.Conn
}

func (b busCaller) GetActive(svc service) (bool, error) {
	var active bool
	call := b.conn.Object(svc.dest, svc.path).Call(svc.iface+".GetActive", 0)
	if call.Err != nil {
		return false, call.Err
	}
	if err := call.Store(&active); err != nil {
		return false, err
	}
	return active, nil
}

// Locker implements window.LockDetector
type Locker struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	bus    caller
	logger zerolog.Logger

	// index into services of the last service that answered
	preferred int
}

// Option configures a Locker
type Option func(*Locker)

// WithLogger sets the locker logger
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Locker) {
		l.logger = logger
	}
}

// New connects to the session bus
func New(opts ...Option) (*Locker, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to session bus")
	}

	l := newLocker(busCaller{conn: conn}, opts...)
	l.conn = conn
	return l, nil
}

func newLocker(bus caller, opts ...Option) *Locker {
	l := &Locker{bus: bus, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsLocked reports whether the screensaver is active. The service that
// answered last is asked first.
func (l *Locker) IsLocked() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for i := range services {
		idx := (l.preferred + i) % len(services)
		svc := services[idx]

		active, err := l.bus.GetActive(svc)
		if err != nil {
			l.logger.Debug().Err(err).Str("service", svc.dest).Msg("Screensaver query failed")
			lastErr = err
			continue
		}
		l.preferred = idx
		return active, nil
	}

	return false, errors.Wrap(ErrUnsupported, lastErr.Error())
}

// Close closes the bus connection
func (l *Locker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}
