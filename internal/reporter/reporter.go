// Package reporter assembles the status snapshot shown by the status command
// and the /api/status endpoint.
package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/internal/config"
	"github.com/actionsum/recentapps/internal/daemon"
	"github.com/actionsum/recentapps/internal/database"
	"github.com/actionsum/recentapps/pkg/utils"
)

// EventSummary describes the newest entry of the focus-event log
type EventSummary struct {
	App         string    `json:"app"`
	Kind        string    `json:"kind"`
	WindowTitle string    `json:"window_title,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Age         string    `json:"age"`
}

// ErrorSummary describes the newest recorder failure
type ErrorSummary struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Age       string    `json:"age"`
}

// Status is a point-in-time view of the recorder and the bound strategy
type Status struct {
	Strategy        string        `json:"strategy"`
	RecorderRunning bool          `json:"recorder_running"`
	RecorderPID     int           `json:"recorder_pid,omitempty"`
	PollInterval    string        `json:"poll_interval"`
	DatabasePath    string        `json:"database_path,omitempty"`
	EventCount      int64         `json:"event_count"`
	LatestEvent     *EventSummary `json:"latest_event,omitempty"`
	LatestError     *ErrorSummary `json:"latest_error,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// Reporter handles status generation
type Reporter struct {
	config   *config.Config
	repo     *database.Repository
	strategy string
	now      func() time.Time
}

// New creates a reporter. repo may be nil when no database exists; strategy
// is the name of the bound provider, or empty when none could be bound.
func New(cfg *config.Config, repo *database.Repository, strategy string) *Reporter {
	return &Reporter{
		config:   cfg,
		repo:     repo,
		strategy: strategy,
		now:      time.Now,
	}
}

// Status gathers the current status
func (r *Reporter) Status(ctx context.Context) (*Status, error) {
	now := r.now()

	status := &Status{
		Strategy:     r.strategy,
		PollInterval: r.config.Tracker.PollInterval.String(),
		DatabasePath: r.config.Database.Path,
		GeneratedAt:  now,
	}
	if status.Strategy == "" {
		status.Strategy = "none"
	}

	running, pid, err := daemon.New(r.config.Daemon.PIDFile).IsRunning()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check recorder status")
	}
	status.RecorderRunning, status.RecorderPID = running, pid

	if r.repo == nil {
		return status, nil
	}

	if status.EventCount, err = r.repo.Count(ctx); err != nil {
		return nil, err
	}

	latest, err := r.repo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		status.LatestEvent = &EventSummary{
			App:         latest.AppName,
			Kind:        latest.Kind,
			WindowTitle: latest.WindowTitle,
			Timestamp:   latest.Timestamp,
			Age:         utils.Ago(latest.Timestamp, now),
		}
	}

	lastErr, err := r.repo.GetLatestError(ctx)
	if err != nil {
		return nil, err
	}
	if lastErr != nil {
		status.LatestError = &ErrorSummary{
			Source:    lastErr.Source,
			Message:   lastErr.ErrorMsg,
			Timestamp: lastErr.Timestamp,
			Age:       utils.Ago(lastErr.Timestamp, now),
		}
	}

	return status, nil
}

// FormatStatusText formats the status as human-readable text
func (r *Reporter) FormatStatusText(s *Status) string {
	var b strings.Builder

	if s.RecorderRunning {
		fmt.Fprintf(&b, "Recorder: running (PID: %d)\n", s.RecorderPID)
	} else {
		b.WriteString("Recorder: not running\n")
	}
	fmt.Fprintf(&b, "Strategy: %s\n", s.Strategy)
	fmt.Fprintf(&b, "Poll Interval: %s\n", s.PollInterval)
	if s.DatabasePath != "" {
		fmt.Fprintf(&b, "Database: %s\n", s.DatabasePath)
	}
	fmt.Fprintf(&b, "Events: %d\n", s.EventCount)

	if e := s.LatestEvent; e != nil {
		fmt.Fprintf(&b, "\nLatest Event:\n")
		fmt.Fprintf(&b, "  App: %s\n", truncate(e.App, 40))
		fmt.Fprintf(&b, "  Kind: %s\n", e.Kind)
		if e.WindowTitle != "" {
			fmt.Fprintf(&b, "  Title: %s\n", truncate(e.WindowTitle, 60))
		}
		fmt.Fprintf(&b, "  When: %s\n", e.Age)
	}

	if e := s.LatestError; e != nil {
		fmt.Fprintf(&b, "\nLatest Error (%s, %s):\n  %s\n", e.Source, e.Age, e.Message)
	}

	return b.String()
}

// FormatStatusJSON formats the status as JSON
func (r *Reporter) FormatStatusJSON(s *Status) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
