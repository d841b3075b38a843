// Package render turns catalog records into self-contained HTML documents.
//
// Rendering is pure: no files are read or written after package init, and
// the same input always yields byte-identical output. Every dynamic string
// passes through html/template's contextual escaping, so catalog content is
// treated as untrusted.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gdprcheck/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// DefaultTitle is the site title used on the index page.
const DefaultTitle = "GDPR Compliance Checker"

// action is one entry in the "What Should You Do?" list.
type action struct {
	Lead string
	Text string
}

type pageData struct {
	Tool   catalog.Tool
	Status Status
	// Anchor is the index-page fragment for the tool's category.
	Anchor string
	// Alternative is set only when the alternative card is shown.
	Alternative  string
	ActionsIntro string
	Actions      []action
}

// Page renders the HTML document for one tool.
//
// The alternative card appears only for tools that are not fully compliant
// and name an alternative. The returned error is non-nil only if template
// execution fails, which does not happen for records that pass
// catalog validation.
func Page(t catalog.Tool) (string, error) {
	status := StatusFor(t.Compliant)
	data := pageData{
		Tool:         t,
		Status:       status,
		Anchor:       catalog.Slug(t.Category),
		ActionsIntro: strings.ReplaceAll(status.ActionsIntro, "{name}", t.Name),
		Actions:      actions(t, status),
	}
	if status.Recommend && t.HasAlternative() {
		data.Alternative = t.Alternative
	}
	return execute("page", data)
}

// actions returns the recommended steps for t.
func actions(t catalog.Tool, s Status) []action {
	if !s.Recommend {
		return []action{
			{Text: "Review their Data Processing Agreement (DPA)"},
			{Text: "Ensure you have a valid legal basis for using the service"},
			{Text: "Document your compliance measures"},
		}
	}
	replacement := "Find a GDPR-compliant replacement"
	if t.HasAlternative() {
		replacement = t.Alternative
	}
	return []action{
		{Lead: "Switch to an alternative:", Text: replacement},
		{Lead: "Implement consent:", Text: fmt.Sprintf("If you must use %s, ensure explicit user consent", t.Name)},
		{Lead: "Data Processing Agreement:", Text: "Sign a DPA if available"},
		{Lead: "Conduct a DPIA:", Text: "Data Protection Impact Assessment for high-risk processing"},
	}
}

type indexEntry struct {
	Name   string
	Slug   string
	Status Status
}

type indexGroup struct {
	Category string
	Anchor   string
	Entries  []indexEntry
}

type indexData struct {
	Title  string
	Count  int
	Groups []indexGroup
}

// Index renders the landing page: every tool grouped by category, each group
// carrying the anchor that page breadcrumbs link to. An empty title uses
// DefaultTitle.
func Index(c catalog.Catalog, title string) (string, error) {
	if title == "" {
		title = DefaultTitle
	}
	data := indexData{Title: title, Count: c.Len()}
	for _, category := range c.Categories() {
		g := indexGroup{Category: category, Anchor: catalog.Slug(category)}
		for _, t := range c.ByCategory(category) {
			g.Entries = append(g.Entries, indexEntry{
				Name:   t.Name,
				Slug:   t.Slug(),
				Status: StatusFor(t.Compliant),
			})
		}
		data.Groups = append(data.Groups, g)
	}
	return execute("index", data)
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
