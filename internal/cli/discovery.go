package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/streamweld/claude-bridge/internal/errors"
)

const (
	// MinimumVersion is the oldest Claude CLI version the bridge has been
	// exercised against. Older versions trigger a warning, not a failure.
	MinimumVersion = "2.0.0"

	// ProbeTimeout bounds the version probe subprocess.
	ProbeTimeout = 5 * time.Second

	// versionCheckTimeout bounds the discovery-time version check.
	versionCheckTimeout = 2 * time.Second
)

// Config holds discovery settings.
type Config struct {
	// CliPath is an explicit binary path that skips the search entirely.
	CliPath string

	// SkipVersionCheck disables the discovery-time version warning.
	// Can also be set via the CLAUDE_BRIDGE_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger receives discovery debug output. If nil, output is discarded.
	Logger *slog.Logger
}

// Discover locates the claude binary.
//
// Search order: the explicit Config.CliPath if given, then PATH, then the
// common install directories (/usr/local/bin, /usr/bin, ~/.local/bin).
// Returns CLINotFoundError listing every searched location on failure.
func Discover(ctx context.Context, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	path, err := findBinary(log, cfg.CliPath)
	if err != nil {
		log.Warn("Claude CLI not found", "error", err)

		return "", err
	}

	log.Debug("Found Claude CLI binary", "cli_path", path)

	if !cfg.SkipVersionCheck && os.Getenv("CLAUDE_BRIDGE_SKIP_VERSION_CHECK") == "" {
		checkVersion(ctx, log, path)
	}

	return path, nil
}

// Probe reports the CLI's version string.
//
// It runs the binary with --version under a bounded timeout and returns
// the trimmed first line of output. Used by the status endpoint to tell
// "binary present" apart from "binary present and responsive".
func Probe(ctx context.Context, cliPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, cliPath, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("version probe: %w", err)
	}

	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")

	return strings.TrimSpace(version), nil
}

func findBinary(log *slog.Logger, explicit string) (string, error) {
	if explicit != "" {
		log.Debug("Using explicit CLI path", "cli_path", explicit)

		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}

		return "", &errors.CLINotFoundError{SearchedPaths: []string{explicit}}
	}

	searched := make([]string, 0, 4)

	if path, err := exec.LookPath("claude"); err == nil {
		log.Debug("Found claude in PATH", "path", path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	common := []string{
		"/usr/local/bin/claude",
		"/usr/bin/claude",
	}

	if home, err := os.UserHomeDir(); err == nil {
		common = append(common, filepath.Join(home, ".local/bin/claude"))
	}

	for _, path := range common {
		searched = append(searched, path)

		if _, err := os.Stat(path); err == nil {
			log.Debug("Found claude at common path", "path", path)

			return path, nil
		}
	}

	return "", &errors.CLINotFoundError{SearchedPaths: searched}
}

// checkVersion warns when the CLI predates MinimumVersion. Probe failures
// are ignored; an unresponsive binary surfaces later at spawn.
func checkVersion(ctx context.Context, log *slog.Logger, cliPath string) {
	ctx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, cliPath, "-v").Output()
	if err != nil {
		log.Debug("CLI version check failed", "error", err)

		return
	}

	re := regexp.MustCompile(`^([0-9]+\.[0-9]+\.[0-9]+)`)

	match := re.FindStringSubmatch(strings.TrimSpace(string(out)))
	if match == nil {
		log.Debug("Could not parse CLI version", "output", strings.TrimSpace(string(out)))

		return
	}

	if compareVersions(match[1], MinimumVersion) < 0 {
		log.Warn("Claude CLI version is older than the bridge supports",
			"version", match[1],
			"minimum", MinimumVersion,
		)
	}
}

// compareVersions compares two dotted semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
