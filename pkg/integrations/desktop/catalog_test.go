package desktop

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/recentapps/pkg/apps"
)

func writeEntry(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestInstalledApps(t *testing.T) {
	dir := t.TempDir()

	writeEntry(t, dir, "org.mozilla.firefox.desktop", `[Desktop Entry]
Type=Application
Name=Firefox
Name[de]=Firefox Webbrowser
Exec=/usr/lib/firefox/firefox %u
StartupWMClass=Firefox
`)
	writeEntry(t, dir, "kde/konsole.desktop", `# comment
[Desktop Entry]
Type=Application
Exec=env QT_SCALE=1 konsole
`)
	writeEntry(t, dir, "hidden.desktop", `[Desktop Entry]
Type=Application
Hidden=true
Exec=secret
`)
	writeEntry(t, dir, "link.desktop", `[Desktop Entry]
Type=Link
URL=https://example.com
`)
	writeEntry(t, dir, "README.txt", "not an entry")

	c := NewCatalog([]string{dir, filepath.Join(dir, "missing")})
	installed, err := c.InstalledApps(context.Background())
	require.NoError(t, err)

	for _, want := range []apps.AppID{"firefox", "org.mozilla.firefox", "kde-konsole", "konsole"} {
		assert.Contains(t, installed, want)
	}
	for _, unwanted := range []apps.AppID{"hidden", "secret", "link"} {
		assert.NotContains(t, installed, unwanted)
	}
}

func TestInstalledAppsCachesScan(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "kitty.desktop", "[Desktop Entry]\nType=Application\nExec=kitty\n")

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCatalog([]string{dir}, WithTTL(time.Minute))
	c.now = func() time.Time { return now }

	first, err := c.InstalledApps(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 1)

	writeEntry(t, dir, "code.desktop", "[Desktop Entry]\nType=Application\nExec=code\n")

	cached, err := c.InstalledApps(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	now = now.Add(2 * time.Minute)
	fresh, err := c.InstalledApps(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestInstalledAppsReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "kitty.desktop", "[Desktop Entry]\nType=Application\nExec=kitty\n")

	c := NewCatalog([]string{dir}, WithTTL(time.Hour))

	first, err := c.InstalledApps(context.Background())
	require.NoError(t, err)
	first["intruder"] = struct{}{}
	delete(first, "kitty")

	second, err := c.InstalledApps(context.Background())
	require.NoError(t, err)
	assert.Contains(t, second, apps.AppID("kitty"))
	assert.NotContains(t, second, apps.AppID("intruder"))
}

func TestExecName(t *testing.T) {
	tests := []struct {
		exec string
		want string
	}{
		{"kitty", "kitty"},
		{"/usr/bin/code --unity-launch %F", "code"},
		{"env BAMF_DESKTOP_FILE_HINT=/x.desktop /snap/bin/spotify %U", "spotify"},
		{`"/opt/app/bin/app" %u`, "app"},
		{"/usr/bin/flatpak run --branch=stable org.gimp.GIMP", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.exec, func(t *testing.T) {
			assert.Equal(t, tt.want, execName(tt.exec))
		})
	}
}

func TestDesktopFileID(t *testing.T) {
	assert.Equal(t, "kde-konsole", desktopFileID("kde/konsole.desktop"))
	assert.Equal(t, "org.gnome.Nautilus", desktopFileID("org.gnome.Nautilus.desktop"))
}

func TestDefaultDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/home/u/.local/share")
	t.Setenv("XDG_DATA_DIRS", "/usr/share:/usr/share")

	dirs := DefaultDirs()
	assert.Equal(t, "/home/u/.local/share/applications", dirs[0])
	assert.Contains(t, dirs, "/usr/share/applications")
	assert.Contains(t, dirs, "/var/lib/flatpak/exports/share/applications")

	seen := map[string]bool{}
	for _, d := range dirs {
		assert.False(t, seen[d], "duplicate dir %s", d)
		seen[d] = true
	}
}
