package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// migrationTemplate is the skeleton written by `migrate create`. Both
// sections keep StatementBegin/End so plpgsql bodies need no extra edits.
const migrationTemplate = `-- TrustFlow migration %[1]s: %[2]s
-- created %[3]s

-- +goose Up
-- +goose StatementBegin
SELECT 'up %[2]s';
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
SELECT 'down %[2]s';
-- +goose StatementEnd
`

// CreateSQLMigration writes <dir>/<version>_<slug>.sql stamped with the
// current UTC time and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("migration dir is required")
	}
	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migration dir %q: %w", dir, err)
	}

	version := now.Format(versionLayout)
	path := filepath.Join(dir, version+"_"+slug+".sql")
	body := fmt.Sprintf(migrationTemplate, version, slug, now.Format(time.RFC3339))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("migration %s already exists", path)
		}
		return "", fmt.Errorf("open migration %q: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// migrationSlug lowercases name and collapses every run of other
// characters into a single underscore.
func migrationSlug(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}
