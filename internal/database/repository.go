package database

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/actionsum/recentapps/internal/models"
)

// Repository handles all database operations for focus events
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new focus event. App names are stored lowercase and
// timestamps in UTC so that range queries compare consistently.
func (r *Repository) Create(ctx context.Context, event *models.FocusEvent) error {
	event.AppName = strings.ToLower(event.AppName)
	event.Timestamp = event.Timestamp.UTC()
	if event.Kind == "" {
		event.Kind = models.KindMovedToForeground
	}

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return errors.Wrap(err, "failed to insert focus event")
	}
	return nil
}

// GetEventsBetween returns raw events in [start, end], oldest first.
// The caller does any further processing.
func (r *Repository) GetEventsBetween(ctx context.Context, start, end time.Time) ([]*models.FocusEvent, error) {
	var events []*models.FocusEvent
	result := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start.UTC(), end.UTC()).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query focus events")
	}
	return events, nil
}

// GetLatest retrieves the most recent focus event, or nil when the log is empty
func (r *Repository) GetLatest(ctx context.Context) (*models.FocusEvent, error) {
	var event models.FocusEvent
	result := r.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// Count returns the number of stored focus events
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.FocusEvent{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count focus events")
	}
	return n, nil
}

// DeleteOldEvents deletes events older than before
func (r *Repository) DeleteOldEvents(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().Where("timestamp < ?", before.UTC()).Delete(&models.FocusEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(ctx context.Context, errorLog *models.ErrorLog) error {
	if err := r.db.WithContext(ctx).Create(errorLog).Error; err != nil {
		return errors.Wrap(err, "failed to insert error log")
	}
	return nil
}

// Clear removes all focus events and error logs from the database
func (r *Repository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM focus_events").Error; err != nil {
			return errors.Wrap(err, "failed to clear focus events")
		}
		if err := tx.Exec("DELETE FROM error_logs").Error; err != nil {
			return errors.Wrap(err, "failed to clear error logs")
		}
		return nil
	})
}

// GetLatestError returns the most recent recorder failure, or nil
func (r *Repository) GetLatestError(ctx context.Context) (*models.ErrorLog, error) {
	var entry models.ErrorLog
	result := r.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest error log")
	}
	return &entry, nil
}
