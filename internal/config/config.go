package config

// config.go — gdprcheck configuration loaded from gdprcheck.yaml.
//
// Precedence, lowest first: Default(), the YAML file, GDPRCHECK_* environment
// variables, then CLI flags (applied by the caller). Paths in the file are
// relative to the working directory.

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gdprcheck/internal/catalog"
	"gdprcheck/internal/site"
)

// DefaultFile is the config file read when --config is not given.
const DefaultFile = "gdprcheck.yaml"

// PlaceholderBaseURL is the base URL shipped in the example config. It must
// be replaced before a sitemap or feed is built.
const PlaceholderBaseURL = "https://yourusername.github.io/gdpr-checker"

// Environment variables consulted by ApplyEnv.
const (
	EnvBaseURL = "GDPRCHECK_BASE_URL"
	EnvSiteDir = "GDPRCHECK_SITE_DIR"
)

var (
	ErrNoBaseURL          = errors.New("base_url is not set")
	ErrPlaceholderBaseURL = errors.New("base_url is still the placeholder")
	ErrInvalidBaseURL     = errors.New("base_url is not an absolute http(s) URL")
)

// Config holds gdprcheck settings.
type Config struct {
	// BaseURL is the deployed site URL, without a trailing slash.
	BaseURL string `yaml:"base_url"`
	// SiteDir is the site root. Tool pages go to SiteDir/tools.
	SiteDir string `yaml:"site_dir"`
	// Sitemap and Feed are paths relative to SiteDir. An empty Feed disables
	// the feed.
	Sitemap string `yaml:"sitemap"`
	Feed    string `yaml:"feed"`
	// Catalog optionally names a YAML catalog replacing the built-in one.
	Catalog   string `yaml:"catalog"`
	SiteTitle string `yaml:"site_title"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		SiteDir: ".",
		Sitemap: "sitemap.xml",
		Feed:    "feed.xml",
	}
}

// Load reads the YAML file at path over Default(). A missing file is not an
// error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv(EnvSiteDir); v != "" {
		c.SiteDir = v
	}
}

// Validate normalizes c and checks it. The base URL is only required when
// needBaseURL is set, since page generation does not use it.
func (c *Config) Validate(needBaseURL bool) error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.SiteDir == "" {
		c.SiteDir = "."
	}
	if c.Sitemap == "" {
		return errors.New("sitemap path is empty")
	}
	if c.BaseURL == "" {
		if needBaseURL {
			return ErrNoBaseURL
		}
		return nil
	}
	if strings.HasPrefix(c.BaseURL, PlaceholderBaseURL) {
		if needBaseURL {
			return fmt.Errorf("%w: %s", ErrPlaceholderBaseURL, c.BaseURL)
		}
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	return nil
}

// ToolsPath returns the directory tool pages are written to.
func (c *Config) ToolsPath() string {
	return filepath.Join(c.SiteDir, site.ToolsDir)
}

// SitemapPath returns the sitemap file path.
func (c *Config) SitemapPath() string {
	return filepath.Join(c.SiteDir, c.Sitemap)
}

// FeedPath returns the feed file path, or "" when the feed is disabled.
func (c *Config) FeedPath() string {
	if c.Feed == "" {
		return ""
	}
	return filepath.Join(c.SiteDir, c.Feed)
}

// LoadCatalog returns the configured catalog, or the built-in one when no
// catalog file is set.
func (c *Config) LoadCatalog() (catalog.Catalog, error) {
	if c.Catalog == "" {
		return catalog.Default()
	}
	return catalog.Load(c.Catalog)
}
