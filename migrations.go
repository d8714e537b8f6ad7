package dbevolve

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// namePattern is the bit-exact naming contract: V<version>__<description>.<ext>
var namePattern = regexp.MustCompile(`^V(\d+)__(.+)\.([^.]+)$`)

// Migration represents a single migration script.
type Migration struct {
	// Name is the script's base name, e.g. "V2__add_email.sql". It is the
	// ledger key.
	Name string

	// Version parsed from Name.
	Version int

	// Description is the part between "__" and the extension.
	Description string

	// Content holds the raw script bytes.
	Content []byte

	// Hash is the SHA-256 of Content.
	Hash string
}

// ParseVersion extracts the version and description from a script name.
func ParseVersion(name string) (int, string, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, "", &NamingConventionError{Name: name}
	}
	version, err := strconv.Atoi(m[1])
	if err != nil || version <= 0 {
		return 0, "", &NamingConventionError{Name: name}
	}
	return version, m[2], nil
}

// NewMigration builds a Migration from a script name and its raw bytes.
func NewMigration(name string, content []byte) (Migration, error) {
	version, desc, err := ParseVersion(name)
	if err != nil {
		return Migration{}, err
	}
	return Migration{
		Name:        name,
		Version:     version,
		Description: desc,
		Content:     content,
		Hash:        Hash(content),
	}, nil
}

// sortMigrationsAsc sorts migrations in ascending order based on version.
func sortMigrationsAsc(migs []Migration) {
	sort.Slice(migs, func(i, j int) bool {
		return migs[i].Version < migs[j].Version
	})
}

// loadMigrations reads every script from src and returns them sorted by
// version. Any badly named script or duplicate version fails the whole load.
func loadMigrations(src Source) ([]Migration, error) {
	scripts, err := src.Scripts()
	if err != nil {
		return nil, err
	}
	migrations := make([]Migration, 0, len(scripts))
	seen := make(map[int]string, len(scripts))
	for _, s := range scripts {
		mig, err := NewMigration(s.Name, s.Content)
		if err != nil {
			return nil, err
		}
		if other, exists := seen[mig.Version]; exists {
			return nil, &DiscoveryError{
				Location: src.Location(),
				Err:      fmt.Errorf("duplicate migration for version %d (%s and %s)", mig.Version, other, mig.Name),
			}
		}
		seen[mig.Version] = mig.Name
		migrations = append(migrations, mig)
	}
	sortMigrationsAsc(migrations)
	return migrations, nil
}
