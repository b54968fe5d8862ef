package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Current is the build version, set with -ldflags "-X .../version.Current=v1.2.3"
var Current = "dev"

const (
	// DefaultReleasesURL returns the latest published release
	DefaultReleasesURL = "https://api.github.com/repos/studiowebux/kycfill/releases/latest"
	checkTimeout       = 5 * time.Second
)

// Release is the subset of the releases API response we read
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// UpdateInfo is the outcome of a check
type UpdateInfo struct {
	Available bool
	Current   string
	Latest    string
	URL       string
}

// Checker queries a releases endpoint
type Checker struct {
	URL  string
	HTTP *http.Client
}

// NewChecker creates a Checker for url, or the default endpoint when empty
func NewChecker(url string) *Checker {
	if url == "" {
		url = DefaultReleasesURL
	}
	return &Checker{
		URL:  url,
		HTTP: &http.Client{Timeout: checkTimeout},
	}
}

// Check compares current with the latest release
func (c *Checker) Check(ctx context.Context, current string) (UpdateInfo, error) {
	info := UpdateInfo{Current: strings.TrimPrefix(current, "v")}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return info, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "kycfill/"+current)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return info, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return info, fmt.Errorf("failed to decode response: %w", err)
	}

	info.Latest = strings.TrimPrefix(release.TagName, "v")
	info.URL = release.HTMLURL
	// Development builds never report updates
	info.Available = info.Latest != "" && info.Current != "dev" && IsNewer(info.Latest, info.Current)
	return info, nil
}

// IsNewer reports whether latest is a higher version than current.
// Pre-release and build suffixes are ignored: "0.2.0-rc1" equals "0.2.0".
func IsNewer(latest, current string) bool {
	a := parseVersion(latest)
	b := parseVersion(current)

	for len(a) < len(b) {
		a = append(a, 0)
	}
	for len(b) < len(a) {
		b = append(b, 0)
	}

	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	var parts []int
	for _, part := range strings.Split(version, ".") {
		if num, err := strconv.Atoi(part); err == nil {
			parts = append(parts, num)
		}
	}
	return parts
}
