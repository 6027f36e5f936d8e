package migrate

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)

// ValidateDir checks that every SQL file in dir looks like a goose
// migration (numeric version prefix, snake_case name) and that no two
// files share a version. Non-SQL files are ignored; an empty dir is an
// error because it usually means a bad -dir flag.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		match := sqlFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("invalid migration filename %q (expected <version>_name.sql)", name)
		}
		version := match[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name
	}

	if len(seen) == 0 {
		return fmt.Errorf("no SQL migrations found in %q", dir)
	}
	return nil
}
