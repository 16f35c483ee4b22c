package provider

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/recentapps/pkg/apps"
)

func TestRunningTasksKeepsPlatformOrder(t *testing.T) {
	tasks := &fakeTasks{
		refs:   []apps.TaskRef{30, 20, 10},
		owners: map[apps.TaskRef]apps.AppID{30: "kitty", 20: "firefox", 10: "code"},
	}
	p := NewRunningTasks(tasks)

	got, err := p.RecentApps(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, apps.AppList{"kitty", "firefox", "code"}, got)
	assert.Equal(t, 3, tasks.gotLimit)
}

func TestRunningTasksDropsUnresolvableTasks(t *testing.T) {
	tasks := &fakeTasks{
		refs:   []apps.TaskRef{4, 3, 2, 1},
		owners: map[apps.TaskRef]apps.AppID{4: "kitty", 2: "firefox", 1: "code"},
	}
	p := NewRunningTasks(tasks)

	got, err := p.RecentApps(context.Background(), 4)
	require.NoError(t, err)

	// task 3 has no owner; resolution continues past it
	assert.Equal(t, apps.AppList{"kitty", "firefox", "code"}, got)
	assert.Equal(t, 4, tasks.resolved)
}

func TestRunningTasksCollapsesWindowsOfTheSameApp(t *testing.T) {
	tasks := &fakeTasks{
		refs:   []apps.TaskRef{3, 2, 1},
		owners: map[apps.TaskRef]apps.AppID{3: "firefox", 2: "kitty", 1: "firefox"},
	}
	p := NewRunningTasks(tasks)

	got, err := p.RecentApps(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, apps.AppList{"firefox", "kitty"}, got)
}

func TestRunningTasksLimit(t *testing.T) {
	tasks := &fakeTasks{
		refs:   []apps.TaskRef{3, 2, 1},
		owners: map[apps.TaskRef]apps.AppID{3: "a", 2: "b", 1: "c"},
	}
	p := NewRunningTasks(tasks)

	got, err := p.RecentApps(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, apps.AppList{"a", "b"}, got)

	got, err = p.RecentApps(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, tasks.gotLimit, "zero limit must not query the platform")
}

func TestRunningTasksErrors(t *testing.T) {
	boom := errors.New("x11 connection lost")

	t.Run("negative limit", func(t *testing.T) {
		tasks := &fakeTasks{}
		_, err := NewRunningTasks(tasks).RecentApps(context.Background(), -3)
		assert.True(t, apps.IsInvalidArgument(err))
		assert.Equal(t, 0, tasks.gotLimit)
	})

	t.Run("query failure", func(t *testing.T) {
		_, err := NewRunningTasks(&fakeTasks{queryErr: boom}).RecentApps(context.Background(), 3)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("resolve failure other than not found", func(t *testing.T) {
		tasks := &fakeTasks{
			refs:       []apps.TaskRef{1},
			resolveErr: map[apps.TaskRef]error{1: boom},
		}
		_, err := NewRunningTasks(tasks).RecentApps(context.Background(), 3)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty task list", func(t *testing.T) {
		got, err := NewRunningTasks(&fakeTasks{}).RecentApps(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, apps.AppList{}, got)
	})
}
