package site

// site.go — Page Writer: renders every catalog record to <tools>/<slug>.html.
//
// Site layout (relative to the site directory):
//   tools/<slug>.html   — one per catalog record
//   index.html          — optional landing page, grouped by category
//   sitemap.xml, feed.xml are written by their own packages.
//
// Files are overwritten unconditionally. Nothing is ever deleted, so pages
// for tools removed from the catalog stay on disk. The first failed write
// aborts the run; pages written before it are left in place.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gdprcheck/internal/catalog"
	"gdprcheck/internal/render"
)

// ToolsDir is the directory, relative to the site root, that holds tool
// pages. The sitemap's /tools/ URL segment depends on it.
const ToolsDir = "tools"

// IndexFile is the landing page name at the site root.
const IndexFile = "index.html"

// Writer writes generated pages under SiteDir.
type Writer struct {
	// SiteDir is the site root; tool pages go to SiteDir/tools.
	SiteDir string
	// Title is the landing page title; empty uses render.DefaultTitle.
	Title string
	// Out receives the human-readable progress lines. Nil discards them.
	Out io.Writer
	// Logger receives diagnostics. Nil uses a no-op logger.
	Logger *zap.Logger
}

// Result describes one GenerateAll run.
type Result struct {
	// Dir is the directory the pages were written to.
	Dir string
	// Files holds the written file names (no directory) in catalog order.
	// A slug shared by two records appears twice.
	Files []string
}

// Pages returns the distinct file names in Files, in first-written order.
func (r *Result) Pages() []string {
	seen := make(map[string]bool, len(r.Files))
	var pages []string
	for _, f := range r.Files {
		if seen[f] {
			continue
		}
		seen[f] = true
		pages = append(pages, f)
	}
	return pages
}

// ToolsPath returns SiteDir/tools.
func (w *Writer) ToolsPath() string {
	return filepath.Join(w.SiteDir, ToolsDir)
}

// Page is one rendered tool page.
type Page struct {
	Tool catalog.Tool
	// File is the page's name inside the tools directory.
	File string
	HTML string
}

// Bundle is a rendered site: one page per catalog record, in catalog order.
type Bundle struct {
	Pages []Page
}

// BuildBundle renders every record of c. It touches no files.
func BuildBundle(c catalog.Catalog) (*Bundle, error) {
	b := &Bundle{}
	for _, t := range c.Tools() {
		html, err := render.Page(t)
		if err != nil {
			return nil, fmt.Errorf("render %q: %w", t.Name, err)
		}
		b.Pages = append(b.Pages, Page{Tool: t, File: t.Slug() + ".html", HTML: html})
	}
	return b, nil
}

// WriteBundle writes the pages of b into dir in order, calling written (if
// non-nil) after each one. It stops at the first failed write and returns the
// names written so far.
func WriteBundle(b *Bundle, dir string, written func(Page)) ([]string, error) {
	var files []string
	for _, p := range b.Pages {
		if err := writePage(filepath.Join(dir, p.File), p.HTML); err != nil {
			return files, err
		}
		files = append(files, p.File)
		if written != nil {
			written(p)
		}
	}
	return files, nil
}

// GenerateAll renders and writes one page per record in catalog order.
func (w *Writer) GenerateAll(c catalog.Catalog) (*Result, error) {
	log := w.logger()
	out := w.out()
	dir := w.ToolsPath()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	for _, col := range c.SlugCollisions() {
		log.Warn("slug collision, later pages overwrite earlier ones",
			zap.String("slug", col.Slug), zap.Strings("names", col.Names))
	}

	bundle, err := BuildBundle(c)
	if err != nil {
		return &Result{Dir: dir}, err
	}

	fmt.Fprintf(out, "Generating %d SEO pages...\n\n", c.Len())

	files, err := WriteBundle(bundle, dir, func(p Page) {
		log.Debug("page written", zap.String("tool", p.Tool.Name), zap.String("file", p.File))
		fmt.Fprintln(out, progressLine(p.Tool, ToolsDir+"/"+p.File))
	})
	res := &Result{Dir: dir, Files: files}
	if err != nil {
		return res, err
	}

	fmt.Fprintf(out, "\n%s Generated %d pages in %s/\n", render.StatusFor(catalog.Compliant).Glyph, len(res.Files), dir)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Deploy to GitHub Pages or Netlify")
	fmt.Fprintln(out, "2. Submit sitemap to Google Search Console")
	fmt.Fprintln(out, "3. Build backlinks from privacy/GDPR forums")
	log.Info("pages generated", zap.Int("count", len(res.Files)), zap.String("dir", dir))
	return res, nil
}

// WriteIndex writes the landing page to SiteDir/index.html and returns its path.
func (w *Writer) WriteIndex(c catalog.Catalog) (string, error) {
	html, err := render.Index(c, w.Title)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.SiteDir, IndexFile)
	if err := writePage(path, html); err != nil {
		return "", err
	}
	w.logger().Info("index written", zap.String("path", path), zap.Int("tools", c.Len()))
	return path, nil
}

func (w *Writer) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

func (w *Writer) out() io.Writer {
	if w.Out == nil {
		return io.Discard
	}
	return w.Out
}

// writePage writes content to path, creating parent directories as needed.
func writePage(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
