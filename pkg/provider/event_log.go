package provider

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/apps"
)

// EventLog replays the foreground-event log of the trailing Window. An
// application's position reflects its latest foreground transition, which
// makes this the most accurate strategy when the host keeps such a log.
type EventLog struct {
	events  apps.EventLogSource
	catalog apps.Catalog
	opts    options
}

// NewEventLog creates the event-log strategy. Events for applications the
// catalog does not list are ignored.
func NewEventLog(events apps.EventLogSource, catalog apps.Catalog, opts ...Option) *EventLog {
	return &EventLog{events: events, catalog: catalog, opts: buildOptions(opts)}
}

func (p *EventLog) Name() string {
	return apps.CapabilityEventLog.String()
}

func (p *EventLog) RecentApps(ctx context.Context, limit int) (apps.AppList, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	now := p.opts.now()
	events, err := p.events.ForegroundEvents(ctx, now.Add(-Window), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query foreground events")
	}
	if len(events) == 0 {
		return apps.AppList{}, nil
	}

	installed, err := p.catalog.InstalledApps(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list installed applications")
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	mru := newMRUList(len(events))
	skipped := 0
	for _, ev := range events {
		if ev.Kind != apps.MovedToForeground {
			continue
		}
		if _, ok := installed[ev.App]; !ok {
			skipped++
			continue
		}
		mru.touch(ev.App)
	}

	if skipped > 0 {
		p.opts.logger.Debug().Int("skipped", skipped).Msg("ignored events for applications that are not installed")
	}

	return mru.recent(limit), nil
}
