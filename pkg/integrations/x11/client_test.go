package x11

import (
	"context"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWMClass(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		wantInstance string
		wantClass    string
	}{
		{"instance and class", "Navigator\x00firefox\x00", "Navigator", "firefox"},
		{"no trailing nul", "kitty\x00kitty", "kitty", "kitty"},
		{"instance only", "xterm\x00", "xterm", ""},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, class := parseWMClass([]byte(tt.data))
			assert.Equal(t, tt.wantInstance, instance)
			assert.Equal(t, tt.wantClass, class)
		})
	}
}

func TestAppName(t *testing.T) {
	assert.Equal(t, "firefox", appName("Navigator", "Firefox"))
	assert.Equal(t, "xterm", appName("XTerm", ""))
	assert.Equal(t, "", appName("", ""))
}

func TestWindows(t *testing.T) {
	data := make([]byte, 0, 12)
	for _, w := range []uint32{0x1, 0x3a00003, 0xffffffff} {
		b := make([]byte, 4)
		xgb.Put32(b, w)
		data = append(data, b...)
	}
	// a truncated trailing id is ignored
	data = append(data, 0x7)

	assert.Equal(t, []xproto.Window{0x1, 0x3a00003, 0xffffffff}, windows(data))
	assert.Empty(t, windows(nil))
}

func TestDetectorDisplayServer(t *testing.T) {
	d := NewDetector("")
	assert.Equal(t, "x11", d.GetDisplayServer())
	assert.NoError(t, d.Close())
}

// TestLiveServer exercises the real X server when one is reachable
func TestLiveServer(t *testing.T) {
	c, err := Dial("")
	if err != nil {
		t.Skipf("X server not available: %v", err)
	}
	defer c.Close()

	tasks, err := c.RunningTasks(context.Background(), 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(tasks), 5)

	for _, task := range tasks {
		app, err := c.ResolveTask(context.Background(), task)
		t.Logf("window 0x%x: %q (%v)", uint32(task), app, err)
	}

	_, err = c.RunningTasks(context.Background(), -1)
	assert.Error(t, err)
}
