// Package feed writes an RSS 2.0 feed with one item per tool page.
package feed

import (
	"encoding/xml"
	"fmt"
	"os"

	"gdprcheck/internal/catalog"
	"gdprcheck/internal/render"
	"gdprcheck/internal/sitemap"
)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        guid   `xml:"guid"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
}

type guid struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

// Build renders the feed. Items follow catalog order and carry no dates, so
// the output only changes when the catalog does.
func Build(baseURL, title string, c catalog.Catalog) ([]byte, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("feed: base URL is empty")
	}
	if title == "" {
		title = render.DefaultTitle
	}
	doc := rss{
		Version: "2.0",
		Channel: channel{
			Title:       title,
			Link:        baseURL + "/",
			Description: "GDPR compliance verdicts for popular tools and services.",
		},
	}
	for _, t := range c.Tools() {
		link := baseURL + sitemap.ToolsSegment + t.Slug() + ".html"
		doc.Channel.Items = append(doc.Channel.Items, item{
			Title:       fmt.Sprintf("Is %s GDPR Compliant?", t.Name),
			Link:        link,
			GUID:        guid{Value: link, IsPermaLink: "true"},
			Description: render.StatusFor(t.Compliant).Label + ": " + t.Reason,
			Category:    t.Category,
		})
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// Write builds the feed and writes it to path.
func Write(path, baseURL, title string, c catalog.Catalog) error {
	data, err := Build(baseURL, title, c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
