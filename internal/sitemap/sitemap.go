// Package sitemap builds sitemap.xml for a generated site.
//
// The builder works from the files present in the tools directory, not from
// the catalog, so a sitemap can be regenerated without re-rendering pages.
// That also means stale pages from earlier runs are listed.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Namespace is the sitemaps.org protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ToolsSegment is the URL path segment that holds tool pages.
const ToolsSegment = "/tools/"

const (
	rootPriority   = "1.0"
	rootChangeFreq = "weekly"
	pagePriority   = "0.8"
	pageChangeFreq = "monthly"
)

// URLSet is the sitemap document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	URLs    []URL    `xml:"url"`
}

// URL is one sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	Priority   string `xml:"priority"`
	ChangeFreq string `xml:"changefreq"`
}

// Scan returns the names of the .html files directly inside dir, sorted by
// name. Subdirectories are skipped.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".html") {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// New returns the URL set for baseURL and the given tool page file names:
// the site root first, then one entry per file in the order given. URLs are
// formed by concatenation; baseURL must not end in "/".
func New(baseURL string, files []string) *URLSet {
	set := &URLSet{Xmlns: Namespace}
	set.URLs = append(set.URLs, URL{
		Loc:        baseURL + "/",
		Priority:   rootPriority,
		ChangeFreq: rootChangeFreq,
	})
	for _, f := range files {
		set.URLs = append(set.URLs, URL{
			Loc:        baseURL + ToolsSegment + f,
			Priority:   pagePriority,
			ChangeFreq: pageChangeFreq,
		})
	}
	return set
}

// Build renders the sitemap document for baseURL and files.
func Build(baseURL string, files []string) ([]byte, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("sitemap: base URL is empty")
	}
	body, err := xml.MarshalIndent(New(baseURL, files), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Parse decodes a sitemap document.
func Parse(data []byte) (*URLSet, error) {
	var set URLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("unmarshal sitemap: %w", err)
	}
	return &set, nil
}

// Write builds the sitemap for files and writes it to path. It returns the
// number of URLs written, len(files)+1.
func Write(path, baseURL string, files []string) (int, error) {
	data, err := Build(baseURL, files)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(files) + 1, nil
}

// Generate scans toolsDir and writes the sitemap to path.
func Generate(toolsDir, path, baseURL string) (int, error) {
	files, err := Scan(toolsDir)
	if err != nil {
		return 0, err
	}
	return Write(path, baseURL, files)
}
