package site

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdprcheck/internal/catalog"
)

// testCatalog returns a small catalog covering all three verdicts.
func testCatalog() catalog.Catalog {
	return catalog.New([]catalog.Tool{
		{Name: "Google Analytics", Category: "analytics", Compliant: catalog.NonCompliant, Reason: "Sends data to US servers", Alternative: "Fathom Analytics"},
		{Name: "Cloudflare", Category: "cdn", Compliant: catalog.Partial, Reason: "US company, but EU data centers available", Alternative: "BunnyCDN"},
		{Name: "Bunny Fonts", Category: "fonts", Compliant: catalog.Compliant, Reason: "EU-based, GDPR-compliant"},
	})
}

// readFile is a test helper that reads a file and fails the test on error.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "readFile %s", path)
	return string(data)
}

func htmlFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".html") {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestGenerateAllOneFilePerRecord(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	w := &Writer{SiteDir: dir, Out: &out}

	res, err := w.GenerateAll(testCatalog())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tools"), res.Dir)
	assert.Equal(t, []string{"google-analytics.html", "cloudflare.html", "bunny-fonts.html"}, res.Files)
	assert.Len(t, htmlFiles(t, res.Dir), testCatalog().Len())
}

func TestBuildBundleIsOrderedAndPure(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	b, err := BuildBundle(testCatalog())
	require.NoError(t, err)

	var files []string
	for _, p := range b.Pages {
		files = append(files, p.File)
		assert.Equal(t, p.Tool.Slug()+".html", p.File)
		assert.Contains(t, p.HTML, "<title>Is "+p.Tool.Name+" GDPR Compliant? (2025 Check)</title>")
	}
	assert.Equal(t, []string{"google-analytics.html", "cloudflare.html", "bunny-fonts.html"}, files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "BuildBundle must not write files")
}

func TestWriteBundleMatchesBundle(t *testing.T) {
	b, err := BuildBundle(testCatalog())
	require.NoError(t, err)

	dir := t.TempDir()
	var seen []string
	files, err := WriteBundle(b, dir, func(p Page) { seen = append(seen, p.Tool.Name) })
	require.NoError(t, err)
	assert.Equal(t, []string{"google-analytics.html", "cloudflare.html", "bunny-fonts.html"}, files)
	assert.Equal(t, []string{"Google Analytics", "Cloudflare", "Bunny Fonts"}, seen)
	for _, p := range b.Pages {
		assert.Equal(t, p.HTML, readFile(t, filepath.Join(dir, p.File)))
	}
}

func TestWriteBundleStopsAtFirstFailure(t *testing.T) {
	b, err := BuildBundle(testCatalog())
	require.NoError(t, err)

	dir := t.TempDir()
	// A directory in the way of the second page makes its write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cloudflare.html"), 0o755))

	files, err := WriteBundle(b, dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloudflare.html")
	assert.Equal(t, []string{"google-analytics.html"}, files)
	assert.NoFileExists(t, filepath.Join(dir, "bunny-fonts.html"))
}

func TestGenerateAllDefaultCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	w := &Writer{SiteDir: t.TempDir()}
	res, err := w.GenerateAll(c)
	require.NoError(t, err)
	assert.Len(t, htmlFiles(t, res.Dir), c.Len())
}

func TestGenerateAllBunnyFontsExample(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{SiteDir: dir}
	_, err := w.GenerateAll(testCatalog())
	require.NoError(t, err)

	content := readFile(t, filepath.Join(dir, "tools", "bunny-fonts.html"))
	assert.Contains(t, content, "Is Bunny Fonts GDPR Compliant? (2025 Check)")
	assert.Contains(t, content, "✅")
	assert.NotContains(t, content, `class="alternative-card"`)
}

func TestGenerateAllGoogleAnalyticsExample(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{SiteDir: dir}
	_, err := w.GenerateAll(testCatalog())
	require.NoError(t, err)

	content := readFile(t, filepath.Join(dir, "tools", "google-analytics.html"))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	require.NoError(t, err)
	card := doc.Find(".alternative-card")
	require.Equal(t, 1, card.Length())
	assert.Equal(t, 1, strings.Count(card.Text(), "Fathom Analytics"))
}

func TestGenerateAllProgressOutput(t *testing.T) {
	var out bytes.Buffer
	w := &Writer{SiteDir: t.TempDir(), Out: &out}
	_, err := w.GenerateAll(testCatalog())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Generating 3 SEO pages...")
	lines := strings.Split(text, "\n")
	var progress []string
	for _, l := range lines {
		if strings.Contains(l, " → tools/") {
			progress = append(progress, l)
		}
	}
	require.Len(t, progress, 3)
	// Catalog order is preserved.
	assert.Contains(t, progress[0], "❌")
	assert.Contains(t, progress[0], "Google Analytics")
	assert.Contains(t, progress[0], "tools/google-analytics.html")
	assert.Contains(t, progress[1], "⚠️")
	assert.Contains(t, progress[2], "✅")
	assert.Contains(t, progress[2], "tools/bunny-fonts.html")
	assert.Contains(t, text, "Generated 3 pages in")
	assert.Contains(t, text, "Next steps:")
}

func TestGenerateAllOverwritesAndKeepsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	tools := filepath.Join(dir, "tools")
	require.NoError(t, os.MkdirAll(tools, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tools, "bunny-fonts.html"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tools, "removed-tool.html"), []byte("stale"), 0o644))

	w := &Writer{SiteDir: dir}
	_, err := w.GenerateAll(testCatalog())
	require.NoError(t, err)

	assert.NotEqual(t, "old", readFile(t, filepath.Join(tools, "bunny-fonts.html")))
	assert.Equal(t, "stale", readFile(t, filepath.Join(tools, "removed-tool.html")))
	assert.Len(t, htmlFiles(t, tools), 4)
}

func TestGenerateAllIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{SiteDir: dir}
	_, err := w.GenerateAll(testCatalog())
	require.NoError(t, err)
	first := readFile(t, filepath.Join(dir, "tools", "cloudflare.html"))

	_, err = w.GenerateAll(testCatalog())
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, filepath.Join(dir, "tools", "cloudflare.html")))
}

func TestGenerateAllSlugCollisionOverwrites(t *testing.T) {
	dir := t.TempDir()
	c := catalog.New([]catalog.Tool{
		{Name: "Foo Bar", Category: "x", Compliant: catalog.Compliant, Reason: "first"},
		{Name: "foo/bar", Category: "x", Compliant: catalog.Compliant, Reason: "second"},
	})
	w := &Writer{SiteDir: dir}
	res, err := w.GenerateAll(c)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo-bar.html", "foo-bar.html"}, res.Files)
	assert.Equal(t, []string{"foo-bar.html"}, res.Pages())
	assert.Len(t, htmlFiles(t, res.Dir), 1)
	assert.Contains(t, readFile(t, filepath.Join(res.Dir, "foo-bar.html")), "second")
}

func TestGenerateAllWriteFailureIsFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	tools := filepath.Join(dir, "tools")
	require.NoError(t, os.MkdirAll(tools, 0o755))
	require.NoError(t, os.Chmod(tools, 0o555))
	t.Cleanup(func() { _ = os.Chmod(tools, 0o755) })

	w := &Writer{SiteDir: dir}
	res, err := w.GenerateAll(testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google-analytics.html")
	assert.Empty(t, res.Files)
}

func TestGenerateAllMkdirFailure(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the site directory should be.
	blocker := filepath.Join(dir, "site")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := &Writer{SiteDir: blocker}
	_, err := w.GenerateAll(testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mkdir")
}

func TestWriteIndex(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{SiteDir: dir, Title: "Privacy Checker"}
	path, err := w.WriteIndex(testCatalog())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.html"), path)

	content := readFile(t, path)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	require.NoError(t, err)
	for _, id := range []string{"analytics", "cdn", "fonts"} {
		assert.Equal(t, 1, doc.Find("section#"+id).Length(), "section %s", id)
	}
	assert.Equal(t, 3, doc.Find("section.category li a").Length())
	assert.Contains(t, content, "Privacy Checker")
}
