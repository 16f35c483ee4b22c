package provider

import (
	"github.com/actionsum/recentapps/pkg/apps"
)

// Host describes what the current machine can report. Sources the host
// cannot provide are left nil.
type Host struct {
	Capability apps.Capability
	Tasks      apps.TaskSource
	Usage      apps.UsageSource
	Events     apps.EventLogSource
	Catalog    apps.Catalog
}

// Select binds exactly one strategy to the host's capability. The result is
// meant to be held for the lifetime of a client and never re-evaluated.
func Select(host Host, opts ...Option) (Provider, error) {
	switch host.Capability {
	case apps.CapabilityEventLog:
		if host.Events == nil || host.Catalog == nil {
			return nil, apps.InvalidArgument("event-log capability requires an event source and a catalog")
		}
		return NewEventLog(host.Events, host.Catalog, opts...), nil

	case apps.CapabilityUsageWindow:
		if host.Usage == nil {
			return nil, apps.InvalidArgument("usage-window capability requires a usage source")
		}
		return NewUsageWindow(host.Usage, opts...), nil

	case apps.CapabilityRunningTasks:
		if host.Tasks == nil {
			return nil, apps.InvalidArgument("running-tasks capability requires a task source")
		}
		return NewRunningTasks(host.Tasks, opts...), nil
	}

	return nil, apps.InvalidArgument("host reports no usable recency source (capability %s)", host.Capability)
}
