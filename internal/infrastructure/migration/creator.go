package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
)

const migrationTemplate = `-- {{.Name}} ({{.Direction}})
`

// File is an up/down migration pair
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

var (
	upFilePattern  = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)
	nonWordPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// CreateMigration writes the next sequential migration pair into dir
func CreateMigration(dir, name string) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if len(existing) > 0 {
		version = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", version, slug)
	mf := &File{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(mf.UpPath, mf.Name, "up"); err != nil {
		return nil, err
	}
	if err := writeTemplate(mf.DownPath, mf.Name, "down"); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

// ListMigrations returns the migration pairs in fsys ordered by version
func ListMigrations(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	files := make([]File, 0)
	for _, entry := range entries {
		match := upFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad migration version in %s: %w", entry.Name(), err)
		}
		base := strings.TrimSuffix(entry.Name(), ".up.sql")
		files = append(files, File{
			Version:  uint(version),
			Name:     match[2],
			UpPath:   entry.Name(),
			DownPath: base + ".down.sql",
		})
	}

	slices.SortFunc(files, func(a, b File) int { return int(a.Version) - int(b.Version) })
	return files, nil
}

func writeTemplate(path, name, direction string) error {
	tmpl := template.Must(template.New("migration").Parse(migrationTemplate))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, map[string]string{"Name": name, "Direction": direction})
}

// sanitizeName lowercases name and joins its words with underscores
func sanitizeName(name string) string {
	return strings.Trim(nonWordPattern.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
