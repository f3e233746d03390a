// Package curriculum embeds the seed curriculum and the interactive
// game assets, and builds the initial application state from them.
package curriculum

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml games/*.html
var seedFS embed.FS

// Loader holds the parsed seed catalog and the embedded game assets.
// Contents are immutable after Load.
type Loader struct {
	catalog Catalog
	games   map[string]string
}

// Load parses the embedded seed curriculum and game assets.
func Load() (*Loader, error) {
	l := &Loader{games: make(map[string]string)}

	entries, err := fs.Glob(seedFS, "seed/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing seed files: %w", err)
	}
	for _, name := range entries {
		data, err := seedFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var cat Catalog
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		l.catalog.Years = append(l.catalog.Years, cat.Years...)
	}

	gameFiles, err := fs.Glob(seedFS, "games/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing game assets: %w", err)
	}
	for _, name := range gameFiles {
		data, err := seedFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		key := strings.TrimSuffix(path.Base(name), ".html")
		l.games[key] = string(data)
	}

	if err := l.validate(); err != nil {
		return nil, err
	}

	slog.Info("curriculum loaded",
		"years", len(l.catalog.Years),
		"games", len(l.games))
	return l, nil
}

// Catalog returns the parsed seed catalog.
func (l *Loader) Catalog() Catalog {
	return l.catalog
}

// GameHTML returns the embedded HTML document for a game asset.
func (l *Loader) GameHTML(name string) (string, bool) {
	html, ok := l.games[name]
	return html, ok
}

func (l *Loader) validate() error {
	if len(l.catalog.Years) == 0 {
		return fmt.Errorf("seed curriculum has no years")
	}
	for _, year := range l.catalog.Years {
		for _, unit := range year.Units {
			for _, lesson := range unit.Lessons {
				if lesson.Game == "" {
					continue
				}
				if _, ok := l.games[lesson.Game]; !ok {
					return fmt.Errorf("year %q unit %q references unknown game %q",
						year.Title, unit.Title, lesson.Game)
				}
			}
		}
	}
	return nil
}
