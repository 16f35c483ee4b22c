// Package window describes the focused-window probe the recorder polls.
package window

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string
	WindowTitle   string
	Instance      string
	PID           uint32
	WindowID      uint32
	DisplayServer string // "x11"
}

// Detector is the interface that focused-window probes must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}

// LockDetector reports whether the session is locked
type LockDetector interface {
	IsLocked() (bool, error)
}
