package x11

import (
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/integrations/process"
	"github.com/actionsum/recentapps/pkg/window"
)

const (
	activeWindowAttempts = 5
	activeWindowBackoff  = 20 * time.Millisecond
)

// Detector implements window.Detector on top of a lazily dialled Client
type Detector struct {
	display string
	opts    []Option

	mu     sync.Mutex
	client *Client
}

// NewDetector creates a detector for display ("" means $DISPLAY)
func NewDetector(display string, opts ...Option) *Detector {
	return &Detector{display: display, opts: opts}
}

func (d *Detector) conn() (*Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}
	c, err := Dial(d.display, d.opts...)
	if err != nil {
		return nil, err
	}
	d.client = c
	return c, nil
}

// IsAvailable checks whether the X server accepts a connection
func (d *Detector) IsAvailable() bool {
	_, err := d.conn()
	return err == nil
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return displayServer
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	c, err := d.conn()
	if err != nil {
		return nil, err
	}

	w, err := c.activeWindow()
	if err != nil {
		// the server may have gone away; redial on the next poll
		d.reset()
		return nil, err
	}

	instance, class, err := c.windowClass(w)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read WM_CLASS of window 0x%x", uint32(w))
	}

	pid := c.windowPID(w)
	name := appName(instance, class)
	if name == "" {
		// some toolkits never set WM_CLASS
		if exe, err := process.Executable(pid); err == nil {
			name = strings.ToLower(exe)
		} else {
			name = "unknown"
		}
	}

	return &window.WindowInfo{
		AppName:       name,
		WindowTitle:   c.windowName(w),
		Instance:      instance,
		PID:           pid,
		WindowID:      uint32(w),
		DisplayServer: displayServer,
	}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	d.reset()
	return nil
}

func (d *Detector) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		_ = d.client.Close()
		d.client = nil
	}
}

func (c *Client) activeWindow() (xproto.Window, error) {
	for i := 0; i < activeWindowAttempts; i++ {
		if w := c.activeFromProperty(); w != 0 && c.hasName(w) {
			return w, nil
		}

		if w := c.activeFromInputFocus(); w != 0 && w != c.root {
			if top := c.topLevel(w); top != 0 && c.hasName(top) {
				return top, nil
			}
		}

		time.Sleep(activeWindowBackoff)
	}
	return 0, errors.New("no active window found")
}

func (c *Client) activeFromProperty() xproto.Window {
	data, err := c.getProperty(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return 0
	}
	ws := windows(data)
	if len(ws) == 0 {
		return 0
	}
	return ws[0]
}

func (c *Client) activeFromInputFocus() xproto.Window {
	conn, err := c.connection()
	if err != nil {
		return 0
	}
	reply, err := xproto.GetInputFocus(conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (c *Client) topLevel(w xproto.Window) xproto.Window {
	conn, err := c.connection()
	if err != nil {
		return 0
	}
	for {
		reply, err := xproto.QueryTree(conn, w).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return w
		}
		w = reply.Parent
	}
}

func (c *Client) hasName(w xproto.Window) bool {
	return c.windowName(w) != ""
}

var _ window.Detector = (*Detector)(nil)
