package x11

import (
	"context"
	"slices"

	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/apps"
)

// maxClients bounds the _NET_CLIENT_LIST_STACKING read, in 32-bit units
const maxClients = 4096

// RunningTasks returns up to limit managed windows, topmost first
func (c *Client) RunningTasks(ctx context.Context, limit int) ([]apps.TaskRef, error) {
	if limit < 0 {
		return nil, apps.InvalidArgument("limit must not be negative, got %d", limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST_STACKING"], xproto.AtomWindow, maxClients)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read window stacking order")
	}

	// the property lists windows bottom to top
	stack := windows(data)
	slices.Reverse(stack)

	if len(stack) > limit {
		stack = stack[:limit]
	}

	tasks := make([]apps.TaskRef, len(stack))
	for i, w := range stack {
		tasks[i] = apps.TaskRef(w)
	}
	return tasks, nil
}

// ResolveTask returns the application owning a window. Windows that have
// disappeared or carry no WM_CLASS resolve to apps.ErrNotFound.
func (c *Client) ResolveTask(ctx context.Context, task apps.TaskRef) (apps.AppID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	instance, class, err := c.windowClass(xproto.Window(task))
	if err != nil {
		if _, gone := err.(xproto.WindowError); gone {
			return "", errors.Wrapf(apps.ErrNotFound, "window 0x%x", uint32(task))
		}
		return "", errors.Wrapf(err, "failed to read WM_CLASS of window 0x%x", uint32(task))
	}

	name := appName(instance, class)
	if name == "" {
		return "", errors.Wrapf(apps.ErrNotFound, "window 0x%x has no WM_CLASS", uint32(task))
	}
	return apps.AppID(name), nil
}

var _ apps.TaskSource = (*Client)(nil)
