package models

import (
	"time"

	"gorm.io/gorm"
)

// Event kinds stored in focus_events.kind
const (
	KindMovedToForeground = "moved_to_foreground"
	KindScreenLocked      = "screen_locked"
	KindScreenUnlocked    = "screen_unlocked"
)

// FocusEvent is one entry of the foreground-event log written by the recorder
type FocusEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time      `gorm:"not null;index" json:"timestamp"`
	AppName       string         `gorm:"not null;index" json:"app_name"`
	WindowTitle   string         `gorm:"not null" json:"window_title"`
	Kind          string         `gorm:"not null;index;default:moved_to_foreground" json:"kind"`
	DisplayServer string         `gorm:"not null" json:"display_server"` // "x11" or "wayland"
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsForeground reports whether the event marks an application coming to the front
func (e *FocusEvent) IsForeground() bool {
	return e.Kind == KindMovedToForeground
}
