package dbevolve

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonWord = regexp.MustCompile("[^a-z0-9]+")

// CreateMigration writes an empty script named after the next version in dir
// and returns its path.
// description: a human-readable description that will be snake_cased for the filename.
// mode: "int" for integer increment (default) or "timestamp" to use the Unix timestamp.
func CreateMigration(dir, description, mode string) (string, error) {
	desc := snakeCase(description)
	if desc == "" {
		return "", fmt.Errorf("description %q has no usable characters", description)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan migration directory: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, _, err := ParseVersion(entry.Name())
		if err != nil {
			continue
		}
		if version > highest {
			highest = version
		}
	}

	var next int
	if strings.ToLower(mode) == "timestamp" {
		next = int(time.Now().Unix())
		if next <= highest {
			next = highest + 1
		}
	} else {
		next = highest + 1
	}

	name := "V" + strconv.Itoa(next) + "__" + desc + ".sql"
	path := filepath.Join(dir, name)
	content := []byte("-- " + description + "\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to create migration file %s: %w", path, err)
	}
	return path, nil
}

// snakeCase converts a string to snake_case.
func snakeCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
