// Package desktop lists installed applications from XDG desktop entries.
package desktop

import (
	"context"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/pkg/apps"
)

const (
	entrySection = "Desktop Entry"
	defaultTTL   = 30 * time.Second
)

// Catalog implements apps.Catalog over one or more applications directories
type Catalog struct {
	dirs   []string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu       sync.Mutex
	cached   map[apps.AppID]struct{}
	loadedAt time.Time
}

// Option configures a Catalog
type Option func(*Catalog)

// WithLogger sets the catalog logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithTTL sets how long a scan result is reused. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		c.ttl = ttl
	}
}

// NewCatalog creates a catalog scanning the given applications directories
func NewCatalog(dirs []string, opts ...Option) *Catalog {
	c := &Catalog{
		dirs:   dirs,
		ttl:    defaultTTL,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultDirs returns the XDG applications directories, user data first,
// followed by the system and flatpak export locations
func DefaultDirs() []string {
	var roots []string

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		roots = append(roots, dataHome, filepath.Join(dataHome, "flatpak", "exports", "share"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	roots = append(roots, filepath.SplitList(dataDirs)...)
	roots = append(roots, "/var/lib/flatpak/exports/share")

	seen := make(map[string]bool, len(roots))
	dirs := make([]string, 0, len(roots))
	for _, root := range roots {
		dir := filepath.Join(root, "applications")
		if root == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// InstalledApps returns the identifiers of every visible desktop entry.
// Each call returns its own copy of the set.
func (c *Catalog) InstalledApps(ctx context.Context) (map[apps.AppID]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return maps.Clone(c.cached), nil
	}

	installed := make(map[apps.AppID]struct{})
	for _, dir := range c.dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.scan(dir, installed); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().Int("apps", len(installed)).Int("dirs", len(c.dirs)).Msg("Scanned desktop entries")

	c.cached = installed
	c.loadedAt = c.now()
	return maps.Clone(installed), nil
}

func (c *Catalog) scan(dir string, installed map[apps.AppID]struct{}) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		ids, err := entryIDs(path, desktopFileID(rel))
		if err != nil {
			c.logger.Debug().Err(err).Str("file", path).Msg("Skipping unreadable desktop entry")
			return nil
		}
		for _, id := range ids {
			installed[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to scan %s", dir)
	}
	return nil
}

// desktopFileID turns a path relative to an applications directory into
// its desktop-file id, e.g. "kde/konsole.desktop" becomes "kde-konsole"
func desktopFileID(rel string) string {
	id := strings.TrimSuffix(filepath.ToSlash(rel), ".desktop")
	return strings.ReplaceAll(id, "/", "-")
}

// entryIDs returns the application identifiers one desktop entry stands for.
// Hidden entries and non-application entries yield none.
func entryIDs(path, fileID string) ([]apps.AppID, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse desktop entry")
	}

	section, err := cfg.GetSection(entrySection)
	if err != nil {
		return nil, nil
	}
	if section.Key("Hidden").MustBool(false) {
		return nil, nil
	}
	if t := section.Key("Type").String(); t != "" && t != "Application" {
		return nil, nil
	}

	var ids []apps.AppID
	add := func(name string) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		for _, id := range ids {
			if string(id) == name {
				return
			}
		}
		ids = append(ids, apps.AppID(name))
	}

	add(section.Key("StartupWMClass").String())
	add(fileID)
	// reverse-DNS ids such as org.mozilla.firefox
	if i := strings.LastIndex(fileID, "."); i >= 0 {
		add(fileID[i+1:])
	}
	add(execName(section.Key("Exec").String()))

	return ids, nil
}

// execName returns the program basename of an Exec line, skipping env
// prefixes and flatpak launchers
func execName(exec string) string {
	fields := strings.Fields(exec)
	for i := 0; i < len(fields); i++ {
		f := strings.Trim(fields[i], `"'`)
		base := filepath.Base(f)
		switch {
		case base == "env":
			continue
		case strings.Contains(f, "=") && !strings.HasPrefix(f, "-"):
			continue
		case base == "flatpak":
			return ""
		default:
			return base
		}
	}
	return ""
}

var _ apps.Catalog = (*Catalog)(nil)
