package apps

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAppListEqual(t *testing.T) {
	tests := []struct {
		name string
		a    AppList
		b    AppList
		want bool
	}{
		{name: "both empty", a: nil, b: AppList{}, want: true},
		{name: "same order", a: AppList{"firefox", "code"}, b: AppList{"firefox", "code"}, want: true},
		{name: "different order", a: AppList{"firefox", "code"}, b: AppList{"code", "firefox"}, want: false},
		{name: "prefix", a: AppList{"firefox"}, b: AppList{"firefox", "code"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestAppListContainsAndStrings(t *testing.T) {
	list := AppList{"kitty", "slack"}

	assert.True(t, list.Contains("slack"))
	assert.False(t, list.Contains("discord"))
	assert.Equal(t, []string{"kitty", "slack"}, list.Strings())
}

func TestParseCapability(t *testing.T) {
	for _, c := range []Capability{CapabilityRunningTasks, CapabilityUsageWindow, CapabilityEventLog} {
		got, ok := ParseCapability(c.String())
		assert.True(t, ok, c.String())
		assert.Equal(t, c, got)
	}

	got, ok := ParseCapability("auto")
	assert.True(t, ok)
	assert.Equal(t, CapabilityNone, got)

	_, ok = ParseCapability("bogus")
	assert.False(t, ok)
}

func TestCapabilityPreferenceOrder(t *testing.T) {
	assert.Greater(t, CapabilityEventLog, CapabilityUsageWindow)
	assert.Greater(t, CapabilityUsageWindow, CapabilityRunningTasks)
	assert.Greater(t, CapabilityRunningTasks, CapabilityNone)
}

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("limit must not be negative, got %d", -1)

	assert.True(t, IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "got -1")
	assert.False(t, IsInvalidArgument(errors.Wrap(ErrNotFound, "lookup")))
}
