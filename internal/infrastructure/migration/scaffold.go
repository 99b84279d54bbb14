package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Scaffold is the up/down SQL file pair produced for a new migration.
type Scaffold struct {
	Version  string
	Slug     string
	UpPath   string
	DownPath string
}

// ScaffoldMigration writes an empty up/down migration pair into dir.
// Versions are second-resolution timestamps, so files sort in creation
// order for golang-migrate's file source.
func ScaffoldMigration(dir, name, description string) (*Scaffold, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q produces an empty file name", name)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := version + "_" + slug

	s := &Scaffold{
		Version:  version,
		Slug:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	header := func(direction string) string {
		var b strings.Builder
		fmt.Fprintf(&b, "-- %s (%s)\n", base, direction)
		fmt.Fprintf(&b, "-- Created: %s\n", now.Format(time.RFC3339))
		if description != "" {
			fmt.Fprintf(&b, "-- %s\n", description)
		}
		b.WriteString("\n")
		return b.String()
	}

	if err := os.WriteFile(s.UpPath, []byte(header("up")), 0644); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}
	if err := os.WriteFile(s.DownPath, []byte(header("down")), 0644); err != nil {
		// Don't leave a half-created pair behind
		_ = os.Remove(s.UpPath)
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return s, nil
}

// slugify lowercases a migration name and collapses separators into
// single underscores. Characters outside [a-z0-9_] are dropped.
func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := true // suppress leading separators
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the migration pairs in dir,
// sorted by version. A missing directory is treated as empty.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)

	return names, nil
}
