package knowledge

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Discovery enumerates the document file names of a category folder.
type Discovery interface {
	Discover(ctx context.Context, cat ManifestCategory) ([]string, error)
}

// hrefPattern extracts anchor targets from a directory listing page.
var hrefPattern = regexp.MustCompile(`href="([^"]+)"`)

// ListingDiscovery fetches the category folder and parses its directory
// listing for links ending in the document extension. Works only when the
// portal server has auto-indexing enabled.
type ListingDiscovery struct {
	fetcher   Fetcher
	extension string
}

// NewListingDiscovery creates a listing-based discovery for files with ext.
func NewListingDiscovery(fetcher Fetcher, ext string) *ListingDiscovery {
	return &ListingDiscovery{fetcher: fetcher, extension: ext}
}

// Discover GETs the folder and returns the linked file names, listing order
// preserved, duplicates removed.
func (d *ListingDiscovery) Discover(ctx context.Context, cat ManifestCategory) ([]string, error) {
	body, status, _, err := d.fetcher.Fetch(ctx, cat.Folder+"/")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("listing %s: unexpected status %d", cat.Folder, status)
	}

	var names []string
	seen := make(map[string]bool)
	for _, m := range hrefPattern.FindAllStringSubmatch(body, -1) {
		href := m[1]
		if !strings.HasSuffix(href, d.extension) {
			continue
		}
		// Keep the bare file name whether the listing links relative or
		// absolute paths.
		name := href
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("listing %s: no %s links found", cat.Folder, d.extension)
	}
	return names, nil
}

// ManifestDiscovery returns the static file list declared in the manifest.
// Used as the fallback when directory listing is unavailable.
type ManifestDiscovery struct{}

// Discover returns the category's declared files, duplicates removed.
func (ManifestDiscovery) Discover(_ context.Context, cat ManifestCategory) ([]string, error) {
	if len(cat.Files) == 0 {
		return nil, fmt.Errorf("category %s declares no files", cat.Name)
	}
	var names []string
	seen := make(map[string]bool)
	for _, name := range cat.Files {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}
