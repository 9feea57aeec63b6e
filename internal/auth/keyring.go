package auth

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	// ErrKeyNotFound indicates no keyring entry matches a digest prefix.
	ErrKeyNotFound = errors.New("no key matches that prefix")

	// ErrAmbiguousPrefix indicates a digest prefix matches more than one
	// entry and a longer prefix is needed.
	ErrAmbiguousPrefix = errors.New("prefix matches more than one key")
)

// Entry is one issued key, stored by digest only.
type Entry struct {
	Hash    string
	Name    string
	Created time.Time
}

// Keyring is the on-disk key store. Each line is "hash|name|created";
// "#" comments and blank lines are ignored.
type Keyring struct {
	Path    string
	Entries []Entry
}

// LoadKeyring reads the keyring at path. A missing file yields an
// empty ring bound to that path, so a first "keys create" can write it.
func LoadKeyring(path string) (*Keyring, error) {
	ring := &Keyring{Path: path}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return ring, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0

	for sc.Scan() {
		line++

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		entry, err := parseEntry(text)
		if err != nil {
			return nil, fmt.Errorf("keyring %s line %d: %w", path, line, err)
		}

		ring.Entries = append(ring.Entries, entry)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}

	return ring, nil
}

func parseEntry(line string) (Entry, error) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return Entry{}, errors.New("want hash|name|created")
	}

	hash := strings.ToLower(strings.TrimSpace(parts[0]))
	if _, err := hex.DecodeString(hash); err != nil || len(hash) != 64 {
		return Entry{}, fmt.Errorf("bad digest %q", parts[0])
	}

	created, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[2]))
	if err != nil {
		return Entry{}, fmt.Errorf("bad created timestamp: %w", err)
	}

	return Entry{Hash: hash, Name: strings.TrimSpace(parts[1]), Created: created}, nil
}

// Save writes the ring back to its path with owner-only permissions.
func (k *Keyring) Save() error {
	var b strings.Builder

	b.WriteString("# claudebridge API keys. One entry per line: hash|name|created.\n")
	b.WriteString("# Raw keys are never stored here, only SHA-256 digests.\n")

	for _, e := range k.Entries {
		fmt.Fprintf(&b, "%s|%s|%s\n", e.Hash, e.Name, e.Created.UTC().Format(time.RFC3339))
	}

	if err := os.WriteFile(k.Path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}

	return nil
}

// Add records a freshly minted key under its digest and returns the
// new entry.
func (k *Keyring) Add(key, name string) Entry {
	entry := Entry{Hash: HashKey(key), Name: name, Created: time.Now().UTC()}
	k.Entries = append(k.Entries, entry)

	return entry
}

// Find resolves a digest prefix to exactly one entry.
func (k *Keyring) Find(prefix string) (Entry, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return Entry{}, ErrKeyNotFound
	}

	var found []Entry

	for _, e := range k.Entries {
		if strings.HasPrefix(e.Hash, prefix) {
			found = append(found, e)
		}
	}

	switch len(found) {
	case 0:
		return Entry{}, ErrKeyNotFound
	case 1:
		return found[0], nil
	default:
		return Entry{}, ErrAmbiguousPrefix
	}
}

// Remove deletes the entry matching a digest prefix and returns it.
func (k *Keyring) Remove(prefix string) (Entry, error) {
	entry, err := k.Find(prefix)
	if err != nil {
		return Entry{}, err
	}

	kept := k.Entries[:0]

	for _, e := range k.Entries {
		if e.Hash != entry.Hash {
			kept = append(kept, e)
		}
	}

	k.Entries = kept

	return entry, nil
}

// Hashes returns the digests of every entry in the ring.
func (k *Keyring) Hashes() []string {
	out := make([]string, 0, len(k.Entries))
	for _, e := range k.Entries {
		out = append(out, e.Hash)
	}

	return out
}

// DefaultKeyringPath returns the keyring location: $API_KEYS_FILE when
// set, otherwise the first of ./.api-keys and /app/.api-keys that
// exists, otherwise ./.api-keys as the place a new ring is written.
func DefaultKeyringPath() string {
	if path := os.Getenv("API_KEYS_FILE"); path != "" {
		return path
	}

	for _, path := range []string{"./.api-keys", "/app/.api-keys"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./.api-keys"
}
