package provider

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/recentapps/pkg/apps"
)

func TestUsageWindow(t *testing.T) {
	tests := []struct {
		name    string
		records []apps.UsageRecord
		limit   int
		want    apps.AppList
	}{
		{
			name: "latest last-used wins",
			records: []apps.UsageRecord{
				{App: "pkg1", LastUsed: time.Unix(100, 0)},
				{App: "pkg2", LastUsed: time.Unix(50, 0)},
			},
			limit: 1,
			want:  apps.AppList{"pkg1"},
		},
		{
			name: "sorted descending",
			records: []apps.UsageRecord{
				{App: "a", LastUsed: at(10)},
				{App: "b", LastUsed: at(30)},
				{App: "c", LastUsed: at(20)},
			},
			limit: 10,
			want:  apps.AppList{"b", "c", "a"},
		},
		{
			name: "ties keep source order",
			records: []apps.UsageRecord{
				{App: "x", LastUsed: at(5)},
				{App: "y", LastUsed: at(5)},
				{App: "z", LastUsed: at(5)},
			},
			limit: 10,
			want:  apps.AppList{"x", "y", "z"},
		},
		{
			name: "repeated buckets collapse to the most recent",
			records: []apps.UsageRecord{
				{App: "a", LastUsed: at(10)},
				{App: "b", LastUsed: at(20)},
				{App: "a", LastUsed: at(30)},
			},
			limit: 10,
			want:  apps.AppList{"a", "b"},
		},
		{
			name:  "empty source",
			limit: 10,
			want:  apps.AppList{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUsageWindow(&fakeUsage{records: tt.records}, WithClock(fixedClock))

			got, err := p.RecentApps(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, assertUnique(got))
		})
	}
}

func TestUsageWindowQueriesOneHour(t *testing.T) {
	usage := &fakeUsage{}
	p := NewUsageWindow(usage, WithClock(fixedClock))

	_, err := p.RecentApps(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, usage.gotEnd.Sub(usage.gotStart))
	assert.Equal(t, fixedClock(), usage.gotEnd)
}

func TestUsageWindowErrors(t *testing.T) {
	_, err := NewUsageWindow(&fakeUsage{}).RecentApps(context.Background(), -1)
	assert.True(t, apps.IsInvalidArgument(err))

	boom := errors.New("permission denied")
	_, err = NewUsageWindow(&fakeUsage{err: boom}).RecentApps(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, apps.IsInvalidArgument(err))
}
