// Package site drives a full build: index the content root, generate the
// page set, render it and write the output tree.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/generator"
	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/models"
	"github.com/starford/codeboost/internal/render"
	"github.com/starford/codeboost/internal/storage"
	"github.com/starford/codeboost/internal/theme"
)

// Config holds everything a build needs besides its collaborators.
type Config struct {
	Site         render.Site
	Theme        theme.Config
	Manifest     Manifest
	OutputDir    string
	StaticDir    string
	TopicsFile   string
	PageSize     int
	ArchiveBase  string
	VideosBase   string
	ContentLimit int
	FeedSize     int
	Newsletter   string
	LiveReload   bool
	// Protected lists extra paths the output directory must not hold, such
	// as the index database. The content root and StaticDir always are.
	Protected []string
}

// BuildOptions narrows one build run.
type BuildOptions struct {
	// Clean replaces the output directory instead of writing over it. The
	// new tree is rendered aside and swapped in only when the build succeeds.
	Clean bool
	// DryRun renders everything but writes nothing.
	DryRun bool
}

// BuildResult reports what a build produced.
type BuildResult struct {
	Pages    int
	Files    int
	Static   int
	Paths    []string
	Duration time.Duration
	DryRun   bool
}

// Builder renders the site from the content index.
type Builder struct {
	cfg      Config
	db       index.ContentIndex
	store    storage.Provider
	loader   *content.Loader
	renderer *render.Renderer
	logger   *slog.Logger

	mu sync.Mutex
}

// New wires a builder. store is the content root.
func New(cfg Config, db index.ContentIndex, store storage.Provider, loader *content.Loader, renderer *render.Renderer, logger *slog.Logger) *Builder {
	if cfg.PageSize <= 0 {
		cfg.PageSize = generator.DefaultPageSize
	}
	if cfg.ArchiveBase == "" {
		cfg.ArchiveBase = generator.DefaultArchiveBase
	}
	if cfg.VideosBase == "" {
		cfg.VideosBase = generator.DefaultVideosBase
	}
	return &Builder{
		cfg:      cfg,
		db:       db,
		store:    store,
		loader:   loader,
		renderer: renderer,
		logger:   logger,
	}
}

// Sync brings the index in line with the content root.
func (b *Builder) Sync() (index.SyncStats, error) {
	stats, err := index.Sync(b.db, b.store, b.loader, b.logger)
	if err != nil {
		return stats, err
	}
	b.logger.Info("site: content synced",
		slog.Int("indexed", stats.Indexed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("removed", stats.Removed),
		slog.Int("failed", len(stats.Failed)),
	)
	return stats, nil
}

// Build renders every page from the current index. A failing content query,
// a duplicate page path or a render error aborts the build.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	result := &BuildResult{DryRun: opts.DryRun}

	nodes, err := b.db.Query(ctx, index.ContentQuery{Limit: b.cfg.ContentLimit})
	if err != nil {
		return nil, fmt.Errorf("site: query content: %w", err)
	}
	data := newBuildData(nodes, b.loadTopics())

	pages, err := generator.Generate(nodes, data.tx, generator.Options{
		PageSize:    b.cfg.PageSize,
		ArchiveBase: b.cfg.ArchiveBase,
		VideosBase:  b.cfg.VideosBase,
	})
	if err != nil {
		return nil, err
	}

	out, err := b.output(opts)
	if err != nil {
		return nil, err
	}
	if err := b.writeSite(ctx, out.fs, result, pages, data); err != nil {
		if derr := out.discard(); derr != nil {
			b.logger.Warn("site: discard staged output failed", slog.String("error", derr.Error()))
		}
		return nil, err
	}
	if err := out.commit(); err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)

	b.logger.Info("site: build finished",
		slog.Int("pages", result.Pages),
		slog.Int("files", result.Files),
		slog.Int("static", result.Static),
		slog.Bool("dry_run", opts.DryRun),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// writeSite renders every page, the feeds and the static files into out. A
// nil out only records the paths.
func (b *Builder) writeSite(ctx context.Context, out *storage.FS, result *BuildResult, pages []models.PageDescriptor, data *buildData) error {
	write := func(path string, body []byte) error {
		result.Files++
		result.Paths = append(result.Paths, path)
		if out == nil {
			return nil
		}
		return out.Write(path, body)
	}

	var buf bytes.Buffer
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf.Reset()
		if err := b.renderPage(&buf, p, data); err != nil {
			return err
		}
		if err := write(outputPath(p.Path), buf.Bytes()); err != nil {
			return fmt.Errorf("site: write %s: %w", p.Path, err)
		}
		result.Pages++
	}

	if err := b.writeFeeds(write, pages, data); err != nil {
		return err
	}

	static, err := b.copyStatic(out)
	if err != nil {
		return err
	}
	result.Static = static
	return nil
}

func (b *Builder) renderPage(buf *bytes.Buffer, p models.PageDescriptor, data *buildData) error {
	pageData, title, desc, post, err := data.resolve(p, b)
	if err != nil {
		return err
	}
	return b.renderer.Render(buf, render.View{
		Site:        b.cfg.Site,
		Theme:       b.cfg.Theme,
		SEO:         render.PageSEO(b.cfg.Site, title, desc, p.Path, post),
		Page:        p,
		Data:        pageData,
		Newsletter:  b.cfg.Newsletter,
		LiveReload:  b.cfg.LiveReload,
		ArchiveBase: b.cfg.ArchiveBase,
		VideosBase:  b.cfg.VideosBase,
	})
}

func (b *Builder) writeFeeds(write func(string, []byte) error, pages []models.PageDescriptor, data *buildData) error {
	rss, err := buildRSS(b.cfg.Site, data.nodes, b.cfg.FeedSize)
	if err != nil {
		return err
	}
	sitemap, err := buildSitemap(b.cfg.Site, pages, data.bySlug)
	if err != nil {
		return err
	}
	manifest, err := buildManifest(b.cfg.Site, b.cfg.Manifest)
	if err != nil {
		return fmt.Errorf("site: encode manifest: %w", err)
	}
	search, err := buildSearchIndex(data.nodes)
	if err != nil {
		return fmt.Errorf("site: encode search index: %w", err)
	}

	files := []struct {
		path string
		body []byte
	}{
		{"rss.xml", rss},
		{"sitemap.xml", sitemap},
		{"robots.txt", buildRobots(b.cfg.Site.URL)},
		{"manifest.webmanifest", manifest},
		{"search.json", search},
	}
	for _, f := range files {
		if err := write(f.path, f.body); err != nil {
			return fmt.Errorf("site: write %s: %w", f.path, err)
		}
	}
	return nil
}

// buildOutput is where one build writes. fs is nil for dry runs.
type buildOutput struct {
	fs     *storage.FS
	target string
	staged bool
}

func (o *buildOutput) commit() error {
	if o.fs == nil || !o.staged {
		return nil
	}
	return o.fs.Promote(o.target)
}

func (o *buildOutput) discard() error {
	if o.fs == nil || !o.staged {
		return nil
	}
	return o.fs.Discard()
}

// output checks the output directory against the build inputs and opens it.
// Clean builds get a staging directory next to it.
func (b *Builder) output(opts BuildOptions) (*buildOutput, error) {
	if opts.DryRun {
		return &buildOutput{}, nil
	}
	protected := append([]string{b.store.Root(), b.cfg.StaticDir}, b.cfg.Protected...)
	if err := CheckOutputDir(b.cfg.OutputDir, protected...); err != nil {
		return nil, err
	}
	if opts.Clean {
		fs, err := storage.Stage(b.cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		return &buildOutput{fs: fs, target: b.cfg.OutputDir, staged: true}, nil
	}
	fs, err := storage.EnsureFS(b.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return &buildOutput{fs: fs, target: b.cfg.OutputDir}, nil
}

// copyStatic mirrors the static directory into the output. It reports the
// number of files copied; a missing static directory copies nothing.
func (b *Builder) copyStatic(out *storage.FS) (int, error) {
	if b.cfg.StaticDir == "" {
		return 0, nil
	}
	static, err := storage.NewFS(b.cfg.StaticDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	files, err := static.ListAll("")
	if err != nil {
		return 0, err
	}
	if out == nil {
		return len(files), nil
	}
	for _, f := range files {
		data, err := static.Read(f)
		if err != nil {
			return 0, err
		}
		if err := out.Write(f, data); err != nil {
			return 0, fmt.Errorf("site: copy static %s: %w", f, err)
		}
	}
	return len(files), nil
}

// loadTopics reads the topic table from the content root. A missing or
// malformed table leaves topic pages without images.
func (b *Builder) loadTopics() content.Topics {
	if b.cfg.TopicsFile == "" {
		return nil
	}
	raw, err := b.store.Read(b.cfg.TopicsFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("site: read topics failed", slog.String("error", err.Error()))
		}
		return nil
	}
	topics, err := content.ParseTopics(raw)
	if err != nil {
		b.logger.Warn("site: decode topics failed", slog.String("error", err.Error()))
		return nil
	}
	return topics
}
