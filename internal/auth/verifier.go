package auth

import (
	"crypto/subtle"
	"log/slog"
	"os"
	"strings"
)

// Verifier answers whether a presented bearer key is authorized.
// Digest comparison is constant time and never exits early, so timing
// does not reveal which stored key came close.
type Verifier struct {
	log      *slog.Logger
	hashes   []string
	disabled bool
}

// NewVerifier builds a verifier over a fixed digest set.
func NewVerifier(log *slog.Logger, hashes []string) *Verifier {
	return &Verifier{log: log.With("component", "auth"), hashes: hashes}
}

// FromEnv assembles the verifier the server uses: digests from
// API_KEY_HASHES plus the keyring file, with API_AUTH_DISABLED
// switching auth off entirely.
func FromEnv(log *slog.Logger) (*Verifier, error) {
	v := &Verifier{log: log.With("component", "auth")}

	if Disabled() {
		v.disabled = true
		v.log.Warn("API auth disabled via API_AUTH_DISABLED")

		return v, nil
	}

	if env := os.Getenv("API_KEY_HASHES"); env != "" {
		for _, h := range strings.Split(env, ",") {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				v.hashes = append(v.hashes, h)
			}
		}
	}

	ring, err := LoadKeyring(DefaultKeyringPath())
	if err != nil {
		return nil, err
	}

	v.hashes = append(v.hashes, ring.Hashes()...)

	if len(v.hashes) == 0 {
		v.log.Warn("no API keys configured, requests are unauthenticated")
	} else {
		v.log.Info("API auth enabled", "keys", len(v.hashes))
	}

	return v, nil
}

// Enabled reports whether requests must present a key. With no key
// source configured the surface stays open, matching a fresh install.
func (v *Verifier) Enabled() bool {
	return !v.disabled && len(v.hashes) > 0
}

// Verify reports whether key matches one of the configured keys. It
// always returns true when auth is not enabled.
func (v *Verifier) Verify(key string) bool {
	if !v.Enabled() {
		return true
	}

	digest := []byte(HashKey(strings.TrimSpace(key)))
	ok := false

	for _, h := range v.hashes {
		if subtle.ConstantTimeCompare(digest, []byte(h)) == 1 {
			ok = true
		}
	}

	return ok
}

// Disabled reports whether API_AUTH_DISABLED switches auth off.
func Disabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("API_AUTH_DISABLED"))) {
	case "1", "true", "yes":
		return true
	}

	return false
}
