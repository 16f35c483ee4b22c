package provider

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/apps"
)

// UsageWindow orders applications by their last-used timestamp within the
// trailing Window. Bucket boundaries of the source are ignored; only the
// sort key matters.
type UsageWindow struct {
	usage apps.UsageSource
	opts  options
}

// NewUsageWindow creates the usage-window strategy
func NewUsageWindow(usage apps.UsageSource, opts ...Option) *UsageWindow {
	return &UsageWindow{usage: usage, opts: buildOptions(opts)}
}

func (p *UsageWindow) Name() string {
	return apps.CapabilityUsageWindow.String()
}

func (p *UsageWindow) RecentApps(ctx context.Context, limit int) (apps.AppList, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	now := p.opts.now()
	records, err := p.usage.UsageStats(ctx, now.Add(-Window), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query usage stats")
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUsed.After(records[j].LastUsed)
	})

	ids := make([]apps.AppID, len(records))
	for i, r := range records {
		ids[i] = r.App
	}

	return dedupe(ids, limit), nil
}
