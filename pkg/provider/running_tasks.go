package provider

import (
	"context"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/apps"
)

// RunningTasks orders applications by the platform's live running-task list.
// Accuracy is bounded by how much recency the host exposes.
type RunningTasks struct {
	tasks apps.TaskSource
	opts  options
}

// NewRunningTasks creates the running-task strategy
func NewRunningTasks(tasks apps.TaskSource, opts ...Option) *RunningTasks {
	return &RunningTasks{tasks: tasks, opts: buildOptions(opts)}
}

func (p *RunningTasks) Name() string {
	return apps.CapabilityRunningTasks.String()
}

func (p *RunningTasks) RecentApps(ctx context.Context, limit int) (apps.AppList, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return apps.AppList{}, nil
	}

	refs, err := p.tasks.RunningTasks(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query running tasks")
	}

	resolved := make([]apps.AppID, 0, len(refs))
	for _, ref := range refs {
		app, err := p.tasks.ResolveTask(ctx, ref)
		if errors.Is(err, apps.ErrNotFound) {
			p.opts.logger.Debug().Uint32("task", uint32(ref)).Msg("dropping unresolvable task")
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve task %d", ref)
		}
		resolved = append(resolved, app)
	}

	return dedupe(resolved, limit), nil
}
