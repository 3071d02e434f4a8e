package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveActor(t *testing.T) {
	t.Run("priority 1: flag value takes precedence", func(t *testing.T) {
		t.Setenv(EnvActor, "env-actor")
		t.Setenv("USER", "env-user")
		assert.Equal(t, "flag-actor", ResolveActor("flag-actor"))
	})

	t.Run("priority 2: PODBOARD_ACTOR when no flag", func(t *testing.T) {
		t.Setenv(EnvActor, "env-actor")
		t.Setenv("USER", "env-user")
		assert.Equal(t, "env-actor", ResolveActor(""))
	})

	t.Run("priority 3: USER when no flag or PODBOARD_ACTOR", func(t *testing.T) {
		t.Setenv(EnvActor, "")
		t.Setenv("USER", "env-user")
		assert.Equal(t, "env-user", ResolveActor(""))
	})

	t.Run("priority 4: unknown as fallback", func(t *testing.T) {
		t.Setenv(EnvActor, "")
		t.Setenv("USER", "")
		assert.Equal(t, "unknown", ResolveActor(""))
	})
}

func makeCollection(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name, "config.json"), []byte("{}"), 0644))
}

func TestFindDirFrom(t *testing.T) {
	t.Run("finds .podboard in a parent", func(t *testing.T) {
		tmpDir := t.TempDir()
		wsDir := filepath.Join(tmpDir, DirName)
		require.NoError(t, os.Mkdir(wsDir, 0755))
		deep := filepath.Join(tmpDir, "a", "b", "c")
		require.NoError(t, os.MkdirAll(deep, 0755))

		assert.Equal(t, wsDir, findDirFrom(deep))
	})

	t.Run("ignores a file with the same name", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, DirName), []byte("x"), 0644))
		assert.NotEqual(t, filepath.Join(tmpDir, DirName), findDirFrom(tmpDir))
	})
}

func TestDefaultCollection(t *testing.T) {
	t.Run("env wins", func(t *testing.T) {
		t.Setenv(EnvCollection, "stores")
		assert.Equal(t, "stores", DefaultCollection(""))
	})

	t.Run("single collection is picked", func(t *testing.T) {
		t.Setenv(EnvCollection, "")
		dir := t.TempDir()
		makeCollection(t, dir, "orders")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-collection"), 0755))
		assert.Equal(t, "orders", DefaultCollection(dir))
	})

	t.Run("ambiguous is empty", func(t *testing.T) {
		t.Setenv(EnvCollection, "")
		dir := t.TempDir()
		makeCollection(t, dir, "orders")
		makeCollection(t, dir, "stores")
		assert.Equal(t, "", DefaultCollection(dir))
	})
}

func TestResolve(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, DirName)
	makeCollection(t, wsDir, "orders")

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	require.NoError(t, os.Chdir(tmpDir))

	t.Setenv(EnvActor, "ops")
	t.Setenv(EnvToken, "secret")
	t.Setenv(EnvAPI, "https://api.example.com/")
	t.Setenv(EnvCollection, "")

	s, err := ResolveRequired("", "")
	require.NoError(t, err)
	// t.TempDir may sit behind a symlink; compare resolved paths.
	gotDir, _ := filepath.EvalSymlinks(s.Dir)
	wantDir, _ := filepath.EvalSymlinks(wsDir)
	assert.Equal(t, wantDir, gotDir)
	assert.Equal(t, "ops", s.Actor)
	assert.Equal(t, "secret", s.Token)
	assert.Equal(t, "https://api.example.com", s.APIBase)
	assert.Equal(t, "orders", s.Collection)

	name, err := s.RequireCollection("")
	require.NoError(t, err)
	assert.Equal(t, "orders", name)

	name, err = s.RequireCollection("stores")
	require.NoError(t, err)
	assert.Equal(t, "stores", name)

	s.Collection = ""
	_, err = s.RequireCollection("")
	assert.ErrorIs(t, err, ErrNoCollection)
}

func TestResolveRequired_NoWorkspace(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	require.NoError(t, os.Chdir(tmpDir))

	_, err := ResolveRequired("", "")
	// A .podboard above the temp dir would make this pass; none is expected.
	if err == nil {
		t.Skip("a .podboard directory exists above the temp dir")
	}
	assert.ErrorIs(t, err, ErrNoWorkspace)
}
