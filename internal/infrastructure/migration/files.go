package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const upHeader = `-- Migration: %s
-- Created: %s

`

const downHeader = `-- Migration: %s (rollback)
-- Created: %s

`

// FilePair is a newly created up/down migration file pair
type FilePair struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// Create writes an empty up/down migration pair to the migrations
// directory. Versions are timestamps (YYYYMMDDHHMMSS) so files sort in
// creation order.
func Create(migrationsDir, name string) (*FilePair, error) {
	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, sanitizeName(name))

	fp := &FilePair{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}

	created := now.Format(time.RFC3339)
	if err := os.WriteFile(fp.UpPath, []byte(fmt.Sprintf(upHeader, name, created)), 0644); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := os.WriteFile(fp.DownPath, []byte(fmt.Sprintf(downHeader, name, created)), 0644); err != nil {
		_ = os.Remove(fp.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}

	return fp, nil
}

// List returns the base names of all migrations in a directory
func List(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
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
	return names, nil
}

// sanitizeName lowercases a migration name and squashes anything that
// is not [a-z0-9] into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		default:
			s := b.String()
			if len(s) > 0 && s[len(s)-1] != '_' {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
