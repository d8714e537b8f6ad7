package dbevolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Script is a named migration script as read from a Source.
type Script struct {
	Name    string
	Content []byte
}

// Source enumerates the candidate migration scripts.
type Source interface {
	// Scripts returns every candidate script. A missing or unreadable
	// location is reported as a *DiscoveryError.
	Scripts() ([]Script, error)

	// Location describes where the scripts come from, for error messages.
	Location() string
}

// GlobSource loads scripts from files matching a glob pattern such as
// "migrations/*.sql".
type GlobSource struct {
	Pattern string
}

// NewGlobSource returns a Source over the files matching pattern.
func NewGlobSource(pattern string) *GlobSource {
	return &GlobSource{Pattern: pattern}
}

func (g *GlobSource) Location() string { return g.Pattern }

// Scripts implements Source.
func (g *GlobSource) Scripts() ([]Script, error) {
	dir := filepath.Dir(g.Pattern)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &DiscoveryError{Location: g.Pattern, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Location: g.Pattern, Err: fmt.Errorf("%s is not a directory", dir)}
	}
	files, err := filepath.Glob(g.Pattern)
	if err != nil {
		return nil, &DiscoveryError{Location: g.Pattern, Err: err}
	}
	sort.Strings(files)

	var scripts []Script
	for _, file := range files {
		fi, err := os.Stat(file)
		if err != nil {
			return nil, &DiscoveryError{Location: g.Pattern, Err: err}
		}
		if fi.IsDir() || hidden(fi.Name()) {
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, &DiscoveryError{Location: g.Pattern, Err: err}
		}
		scripts = append(scripts, Script{Name: filepath.Base(file), Content: data})
	}
	return scripts, nil
}

// FSSource loads every regular file of one directory inside an fs.FS. It
// serves embed.FS as well as os.DirFS.
type FSSource struct {
	FS  fs.FS
	Dir string
}

// NewFSSource returns a Source over dir inside fsys.
func NewFSSource(fsys fs.FS, dir string) *FSSource {
	return &FSSource{FS: fsys, Dir: dir}
}

func (s *FSSource) Location() string { return s.Dir }

// Scripts implements Source.
func (s *FSSource) Scripts() ([]Script, error) {
	if s.FS == nil {
		return nil, &DiscoveryError{Location: s.Dir, Err: errors.New("no filesystem configured")}
	}
	entries, err := fs.ReadDir(s.FS, s.Dir)
	if err != nil {
		return nil, &DiscoveryError{Location: s.Dir, Err: err}
	}
	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() || hidden(entry.Name()) {
			continue
		}
		data, err := fs.ReadFile(s.FS, path.Join(s.Dir, entry.Name()))
		if err != nil {
			return nil, &DiscoveryError{Location: s.Dir, Err: err}
		}
		scripts = append(scripts, Script{Name: entry.Name(), Content: data})
	}
	return scripts, nil
}

// MemorySource serves scripts from a map of name to content.
type MemorySource map[string][]byte

func (m MemorySource) Location() string { return "memory" }

// Scripts implements Source.
func (m MemorySource) Scripts() ([]Script, error) {
	if m == nil {
		return nil, &DiscoveryError{Location: "memory", Err: errors.New("no scripts configured")}
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		scripts = append(scripts, Script{Name: name, Content: m[name]})
	}
	return scripts, nil
}

// hidden reports dot files such as .gitkeep, which are never migrations.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
