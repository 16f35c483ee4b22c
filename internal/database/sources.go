package database

import (
	"context"
	"time"

	"github.com/actionsum/recentapps/pkg/apps"
)

// ForegroundEvents exposes the focus-event log as a platform event source
func (r *Repository) ForegroundEvents(ctx context.Context, start, end time.Time) ([]apps.ForegroundEvent, error) {
	rows, err := r.GetEventsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	events := make([]apps.ForegroundEvent, 0, len(rows))
	for _, row := range rows {
		kind := apps.Other
		if row.IsForeground() {
			kind = apps.MovedToForeground
		}
		events = append(events, apps.ForegroundEvent{
			App:       apps.AppID(row.AppName),
			Timestamp: row.Timestamp,
			Kind:      kind,
		})
	}
	return events, nil
}

// UsageStats reduces the foreground events in [start, end] to one last-used
// record per application, in order of first appearance
func (r *Repository) UsageStats(ctx context.Context, start, end time.Time) ([]apps.UsageRecord, error) {
	rows, err := r.GetEventsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	index := make(map[apps.AppID]int)
	var records []apps.UsageRecord
	for _, row := range rows {
		if !row.IsForeground() {
			continue
		}
		app := apps.AppID(row.AppName)
		if i, ok := index[app]; ok {
			if row.Timestamp.After(records[i].LastUsed) {
				records[i].LastUsed = row.Timestamp
			}
			continue
		}
		index[app] = len(records)
		records = append(records, apps.UsageRecord{App: app, LastUsed: row.Timestamp})
	}
	return records, nil
}

var (
	_ apps.EventLogSource = (*Repository)(nil)
	_ apps.UsageSource    = (*Repository)(nil)
)
