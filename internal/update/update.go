// Package update checks GitHub releases for a newer version of
// the binary. Check-only: installation is left to the package
// manager or a manual download.
package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	githubAPIURL  = "https://api.github.com/repos/usagedeck/usagedeck/releases/latest"
	cacheFileName = "update_check.json"
	cacheDuration = 1 * time.Hour
)

// Release is the subset of a GitHub release we read.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Info describes an available update.
type Info struct {
	CurrentVersion string
	LatestVersion  string
	URL            string
}

type cachedCheck struct {
	CheckedAt time.Time `json:"checked_at"`
	Version   string    `json:"version"`
}

// Check returns release info when a newer version exists, nil
// when the binary is current. A recent cached check short-
// circuits the GitHub API call unless force is set. Dev builds
// (non-semver versions) always report the latest release.
func Check(currentVersion string, force bool, cacheDir string) (*Info, error) {
	current := "v" + strings.TrimPrefix(currentVersion, "v")

	if !force {
		if cached, ok := loadCache(cacheDir); ok {
			if !isNewer(cached.Version, current) {
				return nil, nil
			}
			// Stale result is good enough for a notice; the URL
			// is derivable from the tag.
			return &Info{
				CurrentVersion: currentVersion,
				LatestVersion:  cached.Version,
				URL:            releaseURL(cached.Version),
			}, nil
		}
	}

	release, err := fetchLatestRelease()
	if err != nil {
		return nil, fmt.Errorf("check for updates: %w", err)
	}
	saveCache(release.TagName, cacheDir)

	if !isNewer(release.TagName, current) {
		return nil, nil
	}
	url := release.HTMLURL
	if url == "" {
		url = releaseURL(release.TagName)
	}
	return &Info{
		CurrentVersion: currentVersion,
		LatestVersion:  release.TagName,
		URL:            url,
	}, nil
}

func releaseURL(tag string) string {
	return "https://github.com/usagedeck/usagedeck/releases/tag/" + tag
}

func fetchLatestRelease() (*Release, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(githubAPIURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &release, nil
}

// isNewer reports whether v1 is a strictly newer semver than
// v2. Non-semver inputs (dev builds) compare as older than any
// valid release.
func isNewer(v1, v2 string) bool {
	v1 = "v" + strings.TrimPrefix(v1, "v")
	if !semver.IsValid(v1) {
		return false
	}
	v2 = "v" + strings.TrimPrefix(v2, "v")
	if !semver.IsValid(v2) {
		return true
	}
	return semver.Compare(v1, v2) > 0
}

func loadCache(cacheDir string) (*cachedCheck, bool) {
	data, err := os.ReadFile(filepath.Join(cacheDir, cacheFileName))
	if err != nil {
		return nil, false
	}
	var cached cachedCheck
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	if time.Since(cached.CheckedAt) >= cacheDuration {
		return nil, false
	}
	return &cached, true
}

func saveCache(version, cacheDir string) {
	data, err := json.Marshal(cachedCheck{
		CheckedAt: time.Now(),
		Version:   version,
	})
	if err != nil {
		return
	}
	_ = os.MkdirAll(cacheDir, 0o755)
	_ = os.WriteFile(filepath.Join(cacheDir, cacheFileName), data, 0o600)
}
