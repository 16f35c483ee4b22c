package provider

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/apps"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func fixedClock() time.Time {
	return at(60)
}

type fakeTasks struct {
	refs       []apps.TaskRef
	owners     map[apps.TaskRef]apps.AppID
	queryErr   error
	resolveErr map[apps.TaskRef]error
	gotLimit   int
	resolved   int
}

func (f *fakeTasks) RunningTasks(_ context.Context, limit int) ([]apps.TaskRef, error) {
	f.gotLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.refs) > limit {
		return f.refs[:limit], nil
	}
	return f.refs, nil
}

func (f *fakeTasks) ResolveTask(_ context.Context, ref apps.TaskRef) (apps.AppID, error) {
	f.resolved++
	if err, ok := f.resolveErr[ref]; ok {
		return "", err
	}
	app, ok := f.owners[ref]
	if !ok {
		return "", errors.Wrapf(apps.ErrNotFound, "window %d", ref)
	}
	return app, nil
}

type fakeUsage struct {
	records  []apps.UsageRecord
	err      error
	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeUsage) UsageStats(_ context.Context, start, end time.Time) ([]apps.UsageRecord, error) {
	f.gotStart, f.gotEnd = start, end
	if f.err != nil {
		return nil, f.err
	}
	out := make([]apps.UsageRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

type fakeEvents struct {
	events   []apps.ForegroundEvent
	err      error
	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeEvents) ForegroundEvents(_ context.Context, start, end time.Time) ([]apps.ForegroundEvent, error) {
	f.gotStart, f.gotEnd = start, end
	if f.err != nil {
		return nil, f.err
	}
	out := make([]apps.ForegroundEvent, len(f.events))
	copy(out, f.events)
	return out, nil
}

type fakeCatalog struct {
	installed []apps.AppID
	err       error
	calls     int
}

func (f *fakeCatalog) InstalledApps(context.Context) (map[apps.AppID]struct{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	set := make(map[apps.AppID]struct{}, len(f.installed))
	for _, a := range f.installed {
		set[a] = struct{}{}
	}
	return set, nil
}

func foreground(app apps.AppID, minute int) apps.ForegroundEvent {
	return apps.ForegroundEvent{App: app, Timestamp: at(minute), Kind: apps.MovedToForeground}
}

func assertUnique(list apps.AppList) bool {
	seen := map[apps.AppID]bool{}
	for _, a := range list {
		if seen[a] {
			return false
		}
		seen[a] = true
	}
	return true
}
