package apps

import "time"

// AppID names an installed application. Only equality is meaningful.
type AppID string

// AppList is an ordered list of applications, most recently used first.
type AppList []AppID

// Equal reports whether both lists hold the same applications in the same order
func (l AppList) Equal(other AppList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether app appears in the list
func (l AppList) Contains(app AppID) bool {
	for _, a := range l {
		if a == app {
			return true
		}
	}
	return false
}

// Strings returns the list as plain strings (for JSON and CLI output)
func (l AppList) Strings() []string {
	out := make([]string, len(l))
	for i, a := range l {
		out[i] = string(a)
	}
	return out
}

// EventKind classifies an entry of the foreground-event log
type EventKind int

const (
	// Other covers every event that is not a foreground transition
	Other EventKind = iota
	// MovedToForeground marks the moment an application became the focused one
	MovedToForeground
)

func (k EventKind) String() string {
	switch k {
	case MovedToForeground:
		return "moved_to_foreground"
	default:
		return "other"
	}
}

// ForegroundEvent is a single entry of the foreground-event log
type ForegroundEvent struct {
	App       AppID
	Timestamp time.Time
	Kind      EventKind
}

// UsageRecord carries the last time an application was used
type UsageRecord struct {
	App      AppID
	LastUsed time.Time
}

// TaskRef is an opaque handle to a running task (an X11 window id on Linux)
type TaskRef uint32

// Capability describes which recency source a host supports.
// Higher values are preferred.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityRunningTasks
	CapabilityUsageWindow
	CapabilityEventLog
)

func (c Capability) String() string {
	switch c {
	case CapabilityRunningTasks:
		return "running-tasks"
	case CapabilityUsageWindow:
		return "usage-window"
	case CapabilityEventLog:
		return "event-log"
	default:
		return "none"
	}
}

// ParseCapability maps a strategy name back to its capability.
// "auto" and "" map to CapabilityNone, meaning "probe the host".
func ParseCapability(name string) (Capability, bool) {
	switch name {
	case "", "auto":
		return CapabilityNone, true
	case "running-tasks":
		return CapabilityRunningTasks, true
	case "usage-window":
		return CapabilityUsageWindow, true
	case "event-log":
		return CapabilityEventLog, true
	}
	return CapabilityNone, false
}
