package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeyring_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".api-keys")

	ring, err := LoadKeyring(path)
	require.NoError(t, err)
	assert.Equal(t, path, ring.Path)
	assert.Empty(t, ring.Entries)
}

func TestLoadKeyring_ParsesEntries(t *testing.T) {
	hashA := HashKey("cca_0123456789abcdef0123456789abcdef")
	hashB := HashKey("cca_ffffffffffffffffffffffffffffffff")

	path := filepath.Join(t.TempDir(), ".api-keys")
	content := "# header comment\n" +
		"\n" +
		hashA + "|ci|2026-01-02T03:04:05Z\n" +
		"  # indented comment\n" +
		hashB + "||2026-02-03T04:05:06Z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ring, err := LoadKeyring(path)
	require.NoError(t, err)
	require.Len(t, ring.Entries, 2)

	assert.Equal(t, hashA, ring.Entries[0].Hash)
	assert.Equal(t, "ci", ring.Entries[0].Name)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), ring.Entries[0].Created)

	assert.Equal(t, hashB, ring.Entries[1].Hash)
	assert.Empty(t, ring.Entries[1].Name)
}

func TestLoadKeyring_BadLines(t *testing.T) {
	hash := HashKey("cca_0123456789abcdef0123456789abcdef")

	tests := []struct {
		name string
		line string
	}{
		{name: "missing fields", line: hash + "|ci"},
		{name: "short digest", line: "abc123|ci|2026-01-02T03:04:05Z"},
		{name: "non-hex digest", line: strings.Repeat("zz", 32) + "|ci|2026-01-02T03:04:05Z"},
		{name: "bad timestamp", line: hash + "|ci|yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".api-keys")
			require.NoError(t, os.WriteFile(path, []byte(tt.line+"\n"), 0o600))

			_, err := LoadKeyring(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestKeyring_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".api-keys")

	ring := &Keyring{Path: path}
	ring.Add("cca_0123456789abcdef0123456789abcdef", "laptop")
	ring.Add("cca_ffffffffffffffffffffffffffffffff", "ci")
	require.NoError(t, ring.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadKeyring(path)
	require.NoError(t, err)
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, ring.Entries[0].Hash, loaded.Entries[0].Hash)
	assert.Equal(t, "laptop", loaded.Entries[0].Name)
	assert.Equal(t, "ci", loaded.Entries[1].Name)
}

func TestKeyring_Find(t *testing.T) {
	ring := &Keyring{}
	a := ring.Add("cca_0123456789abcdef0123456789abcdef", "a")
	b := ring.Add("cca_ffffffffffffffffffffffffffffffff", "b")

	found, err := ring.Find(a.Hash[:8])
	require.NoError(t, err)
	assert.Equal(t, a.Hash, found.Hash)

	found, err = ring.Find(strings.ToUpper(b.Hash[:8]))
	require.NoError(t, err)
	assert.Equal(t, b.Hash, found.Hash)

	_, err = ring.Find("0000000000")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = ring.Find("")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeyring_Find_AmbiguousPrefix(t *testing.T) {
	ring := &Keyring{Entries: []Entry{
		{Hash: strings.Repeat("a", 64), Name: "one"},
		{Hash: "a" + strings.Repeat("b", 63), Name: "two"},
	}}

	_, err := ring.Find("a")
	assert.ErrorIs(t, err, ErrAmbiguousPrefix)

	found, err := ring.Find("ab")
	require.NoError(t, err)
	assert.Equal(t, "two", found.Name)
}

func TestKeyring_Remove(t *testing.T) {
	ring := &Keyring{}
	a := ring.Add("cca_0123456789abcdef0123456789abcdef", "a")
	ring.Add("cca_ffffffffffffffffffffffffffffffff", "b")

	removed, err := ring.Remove(a.Hash[:8])
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Name)
	require.Len(t, ring.Entries, 1)
	assert.Equal(t, "b", ring.Entries[0].Name)

	_, err = ring.Remove(a.Hash[:8])
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDefaultKeyringPath(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("API_KEYS_FILE", "/tmp/custom-keys")
		assert.Equal(t, "/tmp/custom-keys", DefaultKeyringPath())
	})

	t.Run("local file found", func(t *testing.T) {
		t.Setenv("API_KEYS_FILE", "")
		t.Chdir(t.TempDir())

		require.NoError(t, os.WriteFile(".api-keys", []byte("# empty\n"), 0o600))
		assert.Equal(t, "./.api-keys", DefaultKeyringPath())
	})
}
