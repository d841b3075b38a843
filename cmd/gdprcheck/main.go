package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gdprcheck/internal/catalog"
	"gdprcheck/internal/check"
	"gdprcheck/internal/config"
	"gdprcheck/internal/feed"
	"gdprcheck/internal/site"
	"gdprcheck/internal/sitemap"
)

// app holds the flags and state shared by every subcommand. cfg and logger
// are set by the root command's PersistentPreRunE.
type app struct {
	configPath string
	siteDir    string
	baseURL    string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gdprcheck:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gdprcheck",
		Short: "Static page generator for GDPR compliance verdicts",
		Long: `gdprcheck renders one static HTML page per tool in its catalog, stating
whether the tool is GDPR compliant, why, and what to use instead.

Pages are written to <site-dir>/tools/<slug>.html. The sitemap and RSS feed
are written next to them and need base_url to be set.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultFile, "config file")
	pf.StringVar(&a.siteDir, "site-dir", "", "site root directory (overrides site_dir)")
	pf.StringVar(&a.baseURL, "base-url", "", "deployed site URL (overrides base_url)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.generateCmd(),
		a.sitemapCmd(),
		a.buildCmd(),
		a.checkCmd(),
		a.catalogCmd(),
	)
	return root
}

// setup builds the logger and resolves the configuration:
// defaults < config file < environment < flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(a.configPath); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	if a.siteDir != "" {
		cfg.SiteDir = a.siteDir
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	a.cfg = cfg
	logger.Debug("config resolved",
		zap.String("config", a.configPath),
		zap.String("site_dir", cfg.SiteDir),
		zap.String("base_url", cfg.BaseURL),
		zap.String("catalog", cfg.Catalog))
	return nil
}

func (a *app) writer(out io.Writer) *site.Writer {
	return &site.Writer{
		SiteDir: a.cfg.SiteDir,
		Title:   a.cfg.SiteTitle,
		Out:     out,
		Logger:  a.logger,
	}
}

// ---------------------------------------------------------------------------
// generate
// ---------------------------------------------------------------------------

func (a *app) generateCmd() *cobra.Command {
	var index bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write one HTML page per catalog tool",
		Long: `Render every catalog tool to <site-dir>/tools/<slug>.html.

Existing pages are overwritten. Pages for tools no longer in the catalog are
left in place. The first failed write stops the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(false); err != nil {
				return err
			}
			c, err := a.cfg.LoadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := a.writer(out)
			if _, err := w.GenerateAll(c); err != nil {
				return err
			}
			if index {
				path, err := w.WriteIndex(c)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&index, "index", false, "also write the index.html landing page")
	return cmd
}

// ---------------------------------------------------------------------------
// sitemap
// ---------------------------------------------------------------------------

func (a *app) sitemapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml from the pages in <site-dir>/tools",
		Long: `List the site root and every .html file in <site-dir>/tools in a
sitemaps.org sitemap. The catalog is not consulted, so stale pages are listed
too. Requires base_url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(true); err != nil {
				return err
			}
			path := a.cfg.SitemapPath()
			n, err := sitemap.Generate(a.cfg.ToolsPath(), path, a.cfg.BaseURL)
			if err != nil {
				return err
			}
			a.logger.Debug("sitemap written", zap.String("path", path), zap.Int("urls", n))
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Generated %s with %d URLs\n", filepath.Base(path), n)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// build
// ---------------------------------------------------------------------------

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Generate pages, index, sitemap and feed in one run",
		Long: `Run generate --index, then write the sitemap and feed.

Unlike the sitemap command, the sitemap lists only the pages written in this
run. Requires base_url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(true); err != nil {
				return err
			}
			c, err := a.cfg.LoadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := a.writer(out)
			res, err := w.GenerateAll(c)
			if err != nil {
				return err
			}
			indexPath, err := w.WriteIndex(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s\n", indexPath)

			smPath := a.cfg.SitemapPath()
			n, err := sitemap.Write(smPath, a.cfg.BaseURL, res.Pages())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Generated %s with %d URLs\n", filepath.Base(smPath), n)

			if fp := a.cfg.FeedPath(); fp != "" {
				if err := feed.Write(fp, a.cfg.BaseURL, a.cfg.SiteTitle, c); err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ Generated %s with %d items\n", filepath.Base(fp), c.Len())
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify links, anchors, sitemap and feed of a generated site",
		Long: `Crawl the generated site from disk and report broken internal links,
missing anchors, sitemap URLs without a page, and feed items without a page.
Exits non-zero when any problem is found. Requires base_url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(true); err != nil {
				return err
			}
			r, err := check.Run(check.Options{
				SiteDir: a.cfg.SiteDir,
				BaseURL: a.cfg.BaseURL,
				Sitemap: a.cfg.Sitemap,
				Feed:    a.cfg.Feed,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "⚠️  %s\n", w)
			}
			for _, p := range r.Problems {
				fmt.Fprintf(out, "❌ %s\n", p)
			}
			fmt.Fprintf(out, "Checked %d pages, %d links, %d sitemap URLs, %d feed items\n",
				r.Pages, r.Links, r.SitemapURLs, r.FeedItems)
			if !r.OK() {
				return fmt.Errorf("%d problem(s) found", len(r.Problems))
			}
			fmt.Fprintln(out, "✅ No problems found")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// catalog
// ---------------------------------------------------------------------------

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the effective tool catalog as YAML",
		Long: `Print the catalog in use, either the built-in one or the file named by
the catalog setting. The output is itself a valid catalog file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cfg.LoadCatalog()
			if err != nil {
				return err
			}
			data, err := catalog.Marshal(c)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
