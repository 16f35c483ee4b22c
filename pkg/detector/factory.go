// Package detector picks the focused-window detector for the running session.
package detector

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/pkg/integrations/x11"
	"github.com/actionsum/recentapps/pkg/window"
)

// ErrUnsupportedSession is returned for sessions without an X server,
// such as native Wayland without XWayland
var ErrUnsupportedSession = errors.New("no supported display server in this session")

// getenv is replaced in tests
var getenv = os.Getenv

// New returns a detector for the session. display overrides $DISPLAY.
// Wayland sessions are served through XWayland when it is running.
func New(display string, logger zerolog.Logger) (window.Detector, error) {
	server := DetectDisplayServer()
	if display == "" {
		display = getenv("DISPLAY")
	}

	if display == "" {
		return nil, errors.Wrapf(ErrUnsupportedSession, "session type %s", server)
	}
	if server == "wayland" {
		logger.Warn().Str("display", display).Msg("Wayland session, only XWayland windows are visible")
	}

	return x11.NewDetector(display, x11.WithLogger(logger)), nil
}

// DetectDisplayServer guesses the session type from the environment
func DetectDisplayServer() string {
	sessionType := getenv("XDG_SESSION_TYPE")
	waylandDisplay := getenv("WAYLAND_DISPLAY")
	x11Display := getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
