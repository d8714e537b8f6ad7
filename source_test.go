package dbevolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptNames(scripts []Script) []string {
	names := make([]string, 0, len(scripts))
	for _, s := range scripts {
		names = append(names, s.Name)
	}
	return names
}

func TestGlobSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V2__b.sql"), []byte("SELECT 2;"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V1__a.sql"), []byte("SELECT 1;"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".V3__hidden.sql"), []byte("SELECT 3;"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "V4__dir.sql"), 0755))

	src := NewGlobSource(filepath.Join(dir, "*.sql"))
	scripts, err := src.Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"V1__a.sql", "V2__b.sql"}, scriptNames(scripts))
	assert.Equal(t, []byte("SELECT 1;"), scripts[0].Content)
	assert.Equal(t, filepath.Join(dir, "*.sql"), src.Location())
}

func TestGlobSourceErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewGlobSource(filepath.Join(t.TempDir(), "nope", "*.sql")).Scripts()
		var discovery *DiscoveryError
		require.True(t, errors.As(err, &discovery))
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.ErrorIs(t, err, ErrMigration)
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		_, err := NewGlobSource(filepath.Join(file, "*.sql")).Scripts()
		var discovery *DiscoveryError
		require.True(t, errors.As(err, &discovery))
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := NewGlobSource(filepath.Join(t.TempDir(), "[")).Scripts()
		var discovery *DiscoveryError
		require.True(t, errors.As(err, &discovery))
	})
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/V1__create.sql":   {Data: []byte("CREATE TABLE t (id INT);")},
		"sql/V2__alter.sql":    {Data: []byte("ALTER TABLE t ADD COLUMN c INT;")},
		"sql/.keep":            {Data: nil},
		"sql/nested/V3__x.sql": {Data: []byte("SELECT 1;")},
	}

	scripts, err := NewFSSource(fsys, "sql").Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"V1__create.sql", "V2__alter.sql"}, scriptNames(scripts))

	_, err = NewFSSource(fsys, "missing").Scripts()
	var discovery *DiscoveryError
	require.True(t, errors.As(err, &discovery))
	assert.Equal(t, "missing", discovery.Location)

	_, err = (&FSSource{Dir: "sql"}).Scripts()
	require.True(t, errors.As(err, &discovery))
}

func TestFSSourceOverDirFS(t *testing.T) {
	scripts, err := NewFSSource(os.DirFS("testdata"), "migrations").Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"V1__create_tables.sql", "V2__alter_tables.sql"}, scriptNames(scripts))
}

func TestMemorySource(t *testing.T) {
	scripts, err := MemorySource{
		"V2__b.sql": []byte("b"),
		"V1__a.sql": []byte("a"),
	}.Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"V1__a.sql", "V2__b.sql"}, scriptNames(scripts))

	var nilSource MemorySource
	_, err = nilSource.Scripts()
	var discovery *DiscoveryError
	require.True(t, errors.As(err, &discovery))
}
