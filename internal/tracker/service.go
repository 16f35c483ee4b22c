// Package tracker records which application holds the focus, building the
// foreground-event log the event-log strategy ranks.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/internal/config"
	"github.com/actionsum/recentapps/internal/models"
	"github.com/actionsum/recentapps/pkg/provider"
	"github.com/actionsum/recentapps/pkg/window"
)

const (
	pruneEvery = time.Hour

	// sessionApp is the app name written with lock transitions
	sessionApp = "session"

	// refreshEvery re-records a focus held this long so the app stays
	// inside the window the ranked strategies read
	refreshEvery = provider.Window / 2
)

// ErrAlreadyRunning is returned by Start on a running service
var ErrAlreadyRunning = errors.New("tracker is already running")

// EventStore is the part of the repository the recorder writes to
type EventStore interface {
	Create(ctx context.Context, event *models.FocusEvent) error
	CreateErrorLog(ctx context.Context, entry *models.ErrorLog) error
	DeleteOldEvents(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	config   config.TrackerConfig
	store    EventStore
	detector window.Detector
	locker   window.LockDetector
	logger   zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	lastApp   string
	lastAt    time.Time
	locked    bool
	lastPrune time.Time
}

// NewService creates a recorder. locker may be nil when lock state is not
// observable.
func NewService(cfg config.TrackerConfig, store EventStore, detector window.Detector, locker window.LockDetector, logger zerolog.Logger) *Service {
	return &Service{
		config:   cfg,
		store:    store,
		detector: detector,
		locker:   locker,
		logger:   logger.With().Str("component", "tracker").Logger(),
		now:      time.Now,
	}
}

// Start polls until ctx is done or Stop is called. The first poll happens
// immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	s.logger.Info().
		Dur("poll_interval", s.config.PollInterval).
		Dur("retention", s.config.Retention).
		Str("display_server", s.detector.GetDisplayServer()).
		Msg("Starting tracker")

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Tracker stopped")
			return nil
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// Stop ends a running Start
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// poll runs one recording step and stores any failure
func (s *Service) poll(ctx context.Context) {
	if source, err := s.trackOnce(ctx); err != nil {
		s.storeError(ctx, source, err)
	}
	if err := s.prune(ctx); err != nil {
		s.storeError(ctx, "prune", err)
	}
}

// trackOnce records lock transitions and focus changes. It returns the
// failing source alongside any error.
func (s *Service) trackOnce(ctx context.Context) (string, error) {
	locked, err := s.isLocked()
	if err != nil {
		s.logger.Debug().Err(err).Msg("Lock state unavailable")
	}

	s.mu.Lock()
	wasLocked := s.locked
	s.locked = locked
	s.mu.Unlock()

	switch {
	case locked && !wasLocked:
		return "lock", s.record(ctx, sessionApp, "", models.KindScreenLocked)
	case locked:
		return "", nil
	case wasLocked:
		// the app focused after unlocking counts as brought to the front again
		s.setLastApp("")
		if err := s.record(ctx, sessionApp, "", models.KindScreenUnlocked); err != nil {
			return "lock", err
		}
	}

	info, err := s.detector.GetFocusedWindow()
	if err != nil {
		return "focus", errors.Wrap(err, "failed to get focused window")
	}
	if info == nil || info.AppName == "" {
		return "focus", errors.New("no valid window information available")
	}

	now := s.now()
	s.mu.Lock()
	same := info.AppName == s.lastApp
	fresh := now.Sub(s.lastAt) < refreshEvery
	s.mu.Unlock()
	if same && fresh {
		return "", nil
	}

	if err := s.recordAt(ctx, now, info.AppName, info.WindowTitle, models.KindMovedToForeground); err != nil {
		return "focus", err
	}
	s.mu.Lock()
	s.lastApp, s.lastAt = info.AppName, now
	s.mu.Unlock()

	if same {
		s.logger.Debug().Str("app", info.AppName).Msg("Refreshed long-held focus")
	} else {
		s.logger.Debug().Str("app", info.AppName).Str("title", info.WindowTitle).Msg("Foreground app changed")
	}
	return "", nil
}

func (s *Service) isLocked() (bool, error) {
	if s.locker == nil {
		return false, nil
	}
	return s.locker.IsLocked()
}

func (s *Service) setLastApp(app string) {
	s.mu.Lock()
	s.lastApp = app
	s.mu.Unlock()
}

func (s *Service) record(ctx context.Context, app, title, kind string) error {
	return s.recordAt(ctx, s.now(), app, title, kind)
}

func (s *Service) recordAt(ctx context.Context, at time.Time, app, title, kind string) error {
	event := &models.FocusEvent{
		Timestamp:     at,
		AppName:       app,
		WindowTitle:   title,
		Kind:          kind,
		DisplayServer: s.detector.GetDisplayServer(),
	}
	if err := s.store.Create(ctx, event); err != nil {
		return errors.Wrap(err, "failed to save event")
	}
	return nil
}

// prune deletes events past the retention period, at most once per hour
func (s *Service) prune(ctx context.Context) error {
	now := s.now()

	s.mu.Lock()
	due := s.lastPrune.IsZero() || now.Sub(s.lastPrune) >= pruneEvery
	if due {
		s.lastPrune = now
	}
	s.mu.Unlock()

	if !due {
		return nil
	}

	deleted, err := s.store.DeleteOldEvents(ctx, now.Add(-s.config.Retention))
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("Pruned old focus events")
	}
	return nil
}

func (s *Service) storeError(ctx context.Context, source string, err error) {
	if ctx.Err() != nil {
		return
	}

	entry := &models.ErrorLog{
		Timestamp: s.now(),
		Source:    source,
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.store.CreateErrorLog(ctx, entry); dbErr != nil {
		s.logger.Error().Err(dbErr).AnErr("original", err).Msg("Failed to store error in database")
		return
	}
	s.logger.Warn().Err(err).Str("source", source).Msg("Error logged to database")
}

// GetCurrentWindow returns the focused window and the lock state
func (s *Service) GetCurrentWindow() (*window.WindowInfo, bool, error) {
	locked, err := s.isLocked()
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get lock state")
	}

	info, err := s.detector.GetFocusedWindow()
	if err != nil {
		return nil, locked, errors.Wrap(err, "failed to get focused window")
	}
	return info, locked, nil
}
