// Package x11 reads window state from the X server: the focused window for
// the recorder and the window stacking order for the running-tasks strategy.
package x11

import (
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const displayServer = "x11"

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Client is a connection to one X display with its atoms interned
type Client struct {
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	atoms  map[string]xproto.Atom
	logger zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Dial connects to display, or to $DISPLAY when display is empty
func Dial(display string, opts ...Option) (*Client, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	c := &Client{
		conn:   conn,
		root:   xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:  make(map[string]xproto.Atom, len(atomNames)),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	c.logger.Debug().Str("display", display).Msg("Connected to X server")
	return c, nil
}

// Close closes the X connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

func (c *Client) connection() (*xgb.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, errors.New("x11 client is closed")
	}
	return c.conn, nil
}

func (c *Client) getProperty(window xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	reply, err := xproto.GetProperty(conn, false, window, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// windows decodes a list of 32-bit window ids
func windows(data []byte) []xproto.Window {
	out := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		out = append(out, xproto.Window(xgb.Get32(data[i:])))
	}
	return out
}

// parseWMClass splits a WM_CLASS value into its instance and class parts
func parseWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = strings.TrimSpace(parts[0])
	}
	if len(parts) >= 2 {
		class = strings.TrimSpace(parts[1])
	}
	return instance, class
}

func (c *Client) windowClass(window xproto.Window) (instance, class string, err error) {
	data, err := c.getProperty(window, c.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil {
		return "", "", err
	}
	instance, class = parseWMClass(data)
	return instance, class, nil
}

func (c *Client) windowName(window xproto.Window) string {
	data, err := c.getProperty(window, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = c.getProperty(window, c.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

func (c *Client) windowPID(window xproto.Window) uint32 {
	data, err := c.getProperty(window, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xgb.Get32(data)
}

// appName picks the identifier recorded for a window: the lowercase class,
// falling back to the instance name
func appName(instance, class string) string {
	if class != "" {
		return strings.ToLower(class)
	}
	return strings.ToLower(instance)
}
