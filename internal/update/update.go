// Package update looks up the latest chameleon release for `chameleon version --check`.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// ReleasesURL is the GitHub endpoint for the latest release.
	ReleasesURL = "https://api.github.com/repos/dperalta86/chameleondb/releases/latest"

	cacheTTL  = 24 * time.Hour
	cacheFile = "update-check.json"
)

// Info contains update check results
type Info struct {
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker fetches the latest release and caches the answer for a day.
type Checker struct {
	// URL defaults to ReleasesURL.
	URL string
	// CacheDir defaults to $XDG_CACHE_HOME/chameleon or ~/.cache/chameleon.
	CacheDir string
	Client   *http.Client
	// Now defaults to time.Now.
	Now func() time.Time
}

// Check compares current with the latest release, using the cached answer
// when it is younger than a day.
func (c *Checker) Check(ctx context.Context, current string) (*Info, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	dir, dirErr := c.cacheDir()
	if dirErr == nil {
		if info, err := loadCache(dir); err == nil && now().Sub(info.CheckedAt) < cacheTTL {
			info.CurrentVersion = current
			info.UpdateAvailable = compareVersions(current, info.LatestVersion) < 0
			return info, nil
		}
	}

	info, err := c.fetch(ctx, current)
	if err != nil {
		return nil, err
	}
	info.CheckedAt = now()
	if dirErr == nil {
		_ = saveCache(dir, info)
	}
	return info, nil
}

func (c *Checker) fetch(ctx context.Context, current string) (*Info, error) {
	url := c.URL
	if url == "" {
		url = ReleasesURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "chameleon/"+current)

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release lookup returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return &Info{
		LatestVersion:   latest,
		CurrentVersion:  current,
		ReleaseURL:      release.HTMLURL,
		UpdateAvailable: compareVersions(current, latest) < 0,
	}, nil
}

func (c *Checker) cacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "chameleon"), nil
}

func loadCache(dir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func saveCache(dir string, info *Info) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644) //nolint:gosec // cache is not secret
}

// compareVersions compares two dotted versions, ignoring a "v" prefix and
// pre-release suffixes. "dev" sorts after every release.
// Returns -1 if a < b, 0 if a == b, 1 if a > b
func compareVersions(a, b string) int {
	a = strings.TrimPrefix(a, "v")
	b = strings.TrimPrefix(b, "v")

	switch {
	case a == b:
		return 0
	case a == "dev":
		return 1
	case b == "dev":
		return -1
	}

	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")
	for i := 0; i < max(len(partsA), len(partsB)); i++ {
		numA, numB := versionPart(partsA, i), versionPart(partsB, i)
		if numA != numB {
			if numA < numB {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	base, _, _ := strings.Cut(parts[i], "-")
	n, _ := strconv.Atoi(base)
	return n
}
