// Package check verifies a generated site on disk.
//
// Pages are crawled with colly over file:// URLs served from the site
// directory, so no network access is involved. The checker looks for:
//
//   - tool pages without a <title> or status badge
//   - internal links whose target file does not exist
//   - "#fragment" links whose target page has no element with that id
//   - sitemap <loc> entries outside the base URL or without a file
//   - feed items whose link has no file
//
// A missing index.html is reported once as a warning rather than as a broken
// link on every page, because the landing page is optional.
package check

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"gdprcheck/internal/site"
	"gdprcheck/internal/sitemap"
)

// Kind classifies a problem.
type Kind string

const (
	KindPage    Kind = "page"
	KindLink    Kind = "link"
	KindAnchor  Kind = "anchor"
	KindSitemap Kind = "sitemap"
	KindFeed    Kind = "feed"
	KindFetch   Kind = "fetch"
)

// Problem is one failed check.
type Problem struct {
	Kind Kind
	// Page is the site-relative file the problem was found in.
	Page   string
	Target string
	Detail string
}

func (p Problem) String() string {
	if p.Target == "" {
		return fmt.Sprintf("[%s] %s: %s", p.Kind, p.Page, p.Detail)
	}
	return fmt.Sprintf("[%s] %s → %s: %s", p.Kind, p.Page, p.Target, p.Detail)
}

// Report summarizes one run.
type Report struct {
	Pages       int
	Links       int
	SitemapURLs int
	FeedItems   int
	Problems    []Problem
	Warnings    []string
}

// OK reports whether no problems were found. Warnings do not count.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// Options configures a check run.
type Options struct {
	// SiteDir is the site root containing tools/, index.html, sitemap.xml.
	SiteDir string
	// BaseURL is the deployed site URL without a trailing slash. Sitemap and
	// feed URLs are mapped back to files by stripping it.
	BaseURL string
	// Sitemap and Feed are site-relative paths; empty skips that check.
	Sitemap string
	Feed    string
	Logger  *zap.Logger
}

type link struct {
	from string
	href string
	url  *url.URL
}

// checker holds the state of one run.
type checker struct {
	opts   Options
	log    *zap.Logger
	report *Report
	links  []link
	// ids maps a crawled site-relative page to the element ids it defines.
	ids  map[string]map[string]bool
	locs []string
}

// Run crawls the site in opts.SiteDir and returns the findings. The error is
// non-nil only when the site itself cannot be read.
func Run(opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ck := &checker{
		opts:   opts,
		log:    log,
		report: &Report{},
		ids:    make(map[string]map[string]bool),
	}

	pages, err := sitemap.Scan(filepath.Join(opts.SiteDir, site.ToolsDir))
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(pages)+1)
	for _, p := range pages {
		targets = append(targets, site.ToolsDir+"/"+p)
	}
	hasIndex := ck.exists(site.IndexFile)
	if hasIndex {
		targets = append(targets, site.IndexFile)
	} else {
		ck.warn("index.html is missing; links to / are not checked")
	}

	c := ck.collector()
	for _, rel := range targets {
		ck.visit(c, rel)
	}
	if opts.Sitemap != "" {
		if ck.exists(opts.Sitemap) {
			ck.visit(c, opts.Sitemap)
		} else {
			ck.problem(KindSitemap, opts.Sitemap, "", "sitemap is missing")
		}
	}
	c.Wait()

	ck.checkLinks(hasIndex)
	ck.checkSitemap(hasIndex)
	if opts.Feed != "" && ck.exists(opts.Feed) {
		ck.checkFeed()
	}

	log.Info("site checked",
		zap.Int("pages", ck.report.Pages),
		zap.Int("links", ck.report.Links),
		zap.Int("problems", len(ck.report.Problems)))
	return ck.report, nil
}

// collector returns a synchronous colly collector that reads file:// URLs
// from the site directory.
func (ck *checker) collector() *colly.Collector {
	t := &http.Transport{}
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir(ck.opts.SiteDir)))

	c := colly.NewCollector()
	c.WithTransport(t)

	c.OnHTML("html", func(e *colly.HTMLElement) {
		page := relPath(e.Request.URL)
		ck.report.Pages++
		if strings.TrimSpace(e.DOM.Find("title").Text()) == "" {
			ck.problem(KindPage, page, "", "missing <title>")
		}
		if strings.HasPrefix(page, site.ToolsDir+"/") && e.DOM.Find(".status-badge").Length() == 0 {
			ck.problem(KindPage, page, "", "missing status badge")
		}
		ids := make(map[string]bool)
		e.DOM.Find("[id]").Each(func(_ int, s *goquery.Selection) {
			ids[s.AttrOr("id", "")] = true
		})
		ck.ids[page] = ids
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		u, err := e.Request.URL.Parse(href)
		if err != nil {
			ck.problem(KindLink, relPath(e.Request.URL), href, "unparseable href")
			return
		}
		if u.Scheme != "file" {
			return
		}
		ck.links = append(ck.links, link{from: relPath(e.Request.URL), href: href, url: u})
	})

	c.OnXML("//urlset/url/loc", func(e *colly.XMLElement) {
		ck.locs = append(ck.locs, strings.TrimSpace(e.Text))
	})

	c.OnError(func(r *colly.Response, err error) {
		ck.problem(KindFetch, relPath(r.Request.URL), "", fmt.Sprintf("status %d: %v", r.StatusCode, err))
	})
	return c
}

// visit fetches one site file. Fetch failures are recorded by the OnError
// callback; anything colly refuses before fetching is only logged.
func (ck *checker) visit(c *colly.Collector, rel string) {
	if err := c.Visit(fileURL(rel)); err != nil {
		ck.log.Debug("visit", zap.String("page", rel), zap.Error(err))
	}
}

func (ck *checker) checkLinks(hasIndex bool) {
	for _, l := range ck.links {
		ck.report.Links++
		target := strings.TrimPrefix(l.url.Path, "/")
		if target == "" || strings.HasSuffix(target, "/") {
			target += site.IndexFile
		}
		if target == site.IndexFile && !hasIndex {
			continue
		}
		if !ck.exists(target) {
			ck.problem(KindLink, l.from, l.href, "target does not exist")
			continue
		}
		if l.url.Fragment == "" {
			continue
		}
		ids, crawled := ck.ids[target]
		if !crawled {
			continue
		}
		if !ids[l.url.Fragment] {
			ck.problem(KindAnchor, l.from, l.href, fmt.Sprintf("no element with id %q in %s", l.url.Fragment, target))
		}
	}
}

func (ck *checker) checkSitemap(hasIndex bool) {
	prefix := ck.opts.BaseURL + "/"
	for _, loc := range ck.locs {
		ck.report.SitemapURLs++
		if ck.opts.BaseURL == "" || !strings.HasPrefix(loc, prefix) {
			ck.problem(KindSitemap, ck.opts.Sitemap, loc, "URL is outside the base URL")
			continue
		}
		rel := strings.TrimPrefix(loc, prefix)
		if rel == "" {
			if !hasIndex {
				ck.warn("sitemap lists the site root but index.html is missing")
			}
			continue
		}
		if !ck.exists(rel) {
			ck.problem(KindSitemap, ck.opts.Sitemap, loc, "no file for URL")
		}
	}
}

func (ck *checker) checkFeed() {
	fh, err := os.Open(filepath.Join(ck.opts.SiteDir, filepath.FromSlash(ck.opts.Feed)))
	if err != nil {
		ck.problem(KindFeed, ck.opts.Feed, "", err.Error())
		return
	}
	defer fh.Close()

	f, err := gofeed.NewParser().Parse(fh)
	if err != nil {
		ck.problem(KindFeed, ck.opts.Feed, "", fmt.Sprintf("unparseable feed: %v", err))
		return
	}
	prefix := ck.opts.BaseURL + "/"
	for _, it := range f.Items {
		ck.report.FeedItems++
		rel := strings.TrimPrefix(it.Link, prefix)
		if ck.opts.BaseURL == "" || rel == it.Link || !ck.exists(rel) {
			ck.problem(KindFeed, ck.opts.Feed, it.Link, "no file for item link")
		}
	}
}

// exists reports whether the site-relative path names a regular file.
func (ck *checker) exists(rel string) bool {
	info, err := os.Stat(filepath.Join(ck.opts.SiteDir, filepath.FromSlash(rel)))
	return err == nil && !info.IsDir()
}

func (ck *checker) problem(kind Kind, page, target, detail string) {
	p := Problem{Kind: kind, Page: page, Target: target, Detail: detail}
	ck.log.Debug("problem", zap.String("kind", string(kind)), zap.String("page", page),
		zap.String("target", target), zap.String("detail", detail))
	ck.report.Problems = append(ck.report.Problems, p)
}

func (ck *checker) warn(msg string) {
	for _, w := range ck.report.Warnings {
		if w == msg {
			return
		}
	}
	ck.report.Warnings = append(ck.report.Warnings, msg)
}

// fileURL maps a site-relative path to the URL the file transport serves.
// index.html is requested as its directory, since the file server redirects
// explicit index.html requests there anyway.
func fileURL(rel string) string {
	rel = path.Clean(rel)
	if rel == site.IndexFile {
		rel = ""
	}
	u := url.URL{Scheme: "file", Path: "/" + rel}
	return u.String()
}

func relPath(u *url.URL) string {
	rel := strings.TrimPrefix(u.Path, "/")
	if rel == "" {
		return site.IndexFile
	}
	return rel
}
