package provider

import "github.com/actionsum/recentapps/pkg/apps"

// mruList keeps applications in order of their latest touch. Moving an
// application to the end is an append plus a position update; the slot it
// left behind goes stale and is skipped when the list is read back.
type mruList struct {
	slots []apps.AppID
	pos   map[apps.AppID]int
}

func newMRUList(capacity int) *mruList {
	return &mruList{
		slots: make([]apps.AppID, 0, capacity),
		pos:   make(map[apps.AppID]int),
	}
}

// touch moves app to the most recent position
func (m *mruList) touch(app apps.AppID) {
	m.pos[app] = len(m.slots)
	m.slots = append(m.slots, app)
}

// size returns the number of distinct applications
func (m *mruList) size() int {
	return len(m.pos)
}

// recent walks the slots from the tail and returns up to limit live
// entries, most recent first
func (m *mruList) recent(limit int) apps.AppList {
	out := make(apps.AppList, 0, min(limit, m.size()))
	for i := len(m.slots) - 1; i >= 0 && len(out) < limit; i-- {
		app := m.slots[i]
		if m.pos[app] != i {
			continue
		}
		out = append(out, app)
	}
	return out
}
