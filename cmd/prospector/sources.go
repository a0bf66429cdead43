package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/nao1215/prospector/internal/browser"
	"github.com/nao1215/prospector/internal/config"
	"github.com/nao1215/prospector/internal/dom"
	"github.com/nao1215/prospector/internal/fetch"
	"github.com/nao1215/prospector/internal/locale"
	"github.com/nao1215/prospector/internal/materialize"
	"github.com/nao1215/prospector/internal/pipeline"
)

// sources opens targets for the configured source kind.
type sources struct {
	cfg     *config.Config
	logger  *slog.Logger
	browser *browser.Manager
}

// newSources creates the opener set for cfg. Close must be called to
// release a launched browser.
func newSources(cfg *config.Config, logger *slog.Logger) *sources {
	s := &sources{cfg: cfg, logger: logger}
	if cfg.Source == config.SourceBrowser {
		session := cfg.Session(browserSessionHost(cfg))
		s.browser = browser.NewManager(browser.Config{
			RemoteURL:         cfg.RemoteURL,
			Headless:          cfg.Headless,
			Stealth:           cfg.Stealth,
			Cookie:            session.Cookie,
			Headers:           session.Headers,
			NavigationTimeout: cfg.Timeout,
			Logger:            logger,
		})
	}
	return s
}

// browserSessionHost is the host whose session the shared browser uses.
func browserSessionHost(cfg *config.Config) string {
	for _, t := range cfg.Targets {
		if h := hostOf(t); h != "" {
			return h
		}
	}
	return ""
}

// Open implements pipeline.Opener.
func (s *sources) Open(ctx context.Context, target string) (dom.Source, error) {
	switch s.cfg.Source {
	case config.SourceFile:
		return dom.OpenFile(target)
	case config.SourceHTTP:
		session := s.cfg.Session(hostOf(target))
		f := fetch.New(
			fetch.WithCookie(session.Cookie),
			fetch.WithHeaders(session.Headers),
			fetch.WithTimeout(s.cfg.Timeout),
			fetch.WithLogger(s.logger),
		)
		return f.Open(ctx, target)
	case config.SourceBrowser:
		return s.browser.Open(ctx, target)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, s.cfg.Source)
	}
}

// Close releases the browser, if any.
func (s *sources) Close() error {
	if s.browser == nil {
		return nil
	}
	return s.browser.Close()
}

// reloader is implemented by sources that can re-render in place.
type reloader interface {
	Reload(ctx context.Context) error
}

// reestablish re-establishes the boundary of a source that became unavailable:
// a live page is reloaded, anything else is reopened.
func (s *sources) reestablish(ctx context.Context, src dom.Source, target string) (dom.Source, error) {
	if r, ok := src.(reloader); ok {
		err := r.Reload(ctx)
		if err == nil {
			return src, nil
		}
		s.logger.Warn("reload failed, reopening", "target", target, "error", err)
	}
	closeSource(src, s.logger)
	return s.Open(ctx, target)
}

// closeSource closes src when it owns resources.
func closeSource(src dom.Source, logger *slog.Logger) {
	c, ok := src.(interface{ Close() error })
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Debug("failed to close source", "error", err)
	}
}

// hostOf returns the host of a URL target, or "" for a file path.
func hostOf(target string) string {
	if !isURL(target) {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// newExtractorFactory returns a constructor of extractors sharing one
// vocabulary table.
func newExtractorFactory(cfg *config.Config, logger *slog.Logger) (func() *pipeline.Extractor, error) {
	table := locale.Default()
	if cfg.LocalePath != "" {
		var err error
		table, err = locale.LoadFile(cfg.LocalePath)
		if err != nil {
			if errors.Is(err, locale.ErrTableNotFound) {
				return nil, fmt.Errorf("%w: %s", err, cfg.LocalePath)
			}
			return nil, err
		}
	}

	posts := materialize.RecentActivity()
	posts.Timeout = cfg.PostsTimeout

	return func() *pipeline.Extractor {
		opts := []pipeline.ExtractorOption{
			pipeline.WithTable(table),
			pipeline.WithExtractorLogger(logger),
			pipeline.WithMaterializer(materialize.New(posts, materialize.WithLogger(logger))),
		}
		if cfg.SkipRecentPosts {
			opts = append(opts, pipeline.WithoutRecentPosts())
		}
		return pipeline.NewExtractor(opts...)
	}, nil
}
