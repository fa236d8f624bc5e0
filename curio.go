// Package curio is a multi-module content site: articles, notes and books
// with shared listing machinery, plus a picture gallery, comments, private
// messages and user accounts. It is built on Echo and renders server-side
// HTML through templ components.
package curio

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/curio/apperr"
	"github.com/eringen/curio/views"
)

// App wires together the config, the store, the content modules and the
// HTTP layer.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Log    *zap.Logger

	limiter   *Limiter
	transform TextTransform
	mailer    Mailer

	articles *contentModule
	notes    *contentModule
	books    *contentModule
	modules  []*contentModule
	kinds    []ContentKind
}

// Option configures additional App behavior.
type Option func(*App)

// WithTransform plugs in the markdown (or other) text-to-HTML pipeline.
func WithTransform(t TextTransform) Option {
	return func(a *App) {
		a.transform = t
	}
}

// WithMailer plugs in the outgoing mail delivery.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithStore injects an already-open store; mainly for tests.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// New creates a curio App with the given configuration.
func New(cfg SiteConfig, log *zap.Logger, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Log:       log,
		transform: plainTransform{},
	}
	a.mailer = logMailer{log: log}

	for _, opt := range opts {
		opt(a)
	}

	a.kinds = []ContentKind{
		{
			Key:        "article",
			Label:      "Articles",
			Table:      "article",
			IDCol:      "article_id",
			PageSize:   cfg.Article.PageSize,
			Categories: cfg.Article.Categories,
			Types:      cfg.Article.Types,
		},
		{
			Key:        "note",
			Label:      "Notes",
			Table:      "note",
			IDCol:      "note_id",
			HasLink:    true,
			PageSize:   cfg.Note.PageSize,
			Categories: cfg.Note.Categories,
			Types:      cfg.Note.Types,
		},
		{
			Key:        "book",
			Label:      "Books",
			Table:      "book",
			IDCol:      "book_id",
			HasCover:   true,
			HasAuthor:  true,
			HasLink:    true,
			PageSize:   cfg.Book.PageSize,
			Categories: cfg.Book.Categories,
			Types:      cfg.Book.Types,
			ThumbBase:  cfg.Book.PublicURL,
		},
	}
	return a
}

// Start opens the store, wires middleware and routes, and serves until the
// listener fails or the server is shut down.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("curio: session_secret is required")
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.Database)
		if err != nil {
			return fmt.Errorf("curio: init store: %w", err)
		}
		a.Store = store
	}
	a.limiter = NewLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	a.Log.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/static", a.Config.StaticDir)
	e.Static(a.Config.Gallery.PublicURL, a.Config.Gallery.UploadDir)
	e.Static(a.Config.Book.PublicURL, a.Config.Book.UploadDir)
	e.GET("/favicon.ico", func(c echo.Context) error {
		return c.File(a.Config.StaticDir + "/favicon.ico")
	})
	e.GET("/robots.txt", func(c echo.Context) error {
		return c.File(a.Config.StaticDir + "/robots.txt")
	})

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/article")
	})
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	for _, k := range a.kinds {
		m := newContentModule(a, k)
		m.register(e)
		a.modules = append(a.modules, m)
	}
	a.articles, a.notes, a.books = a.modules[0], a.modules[1], a.modules[2]

	a.setupCommentRoutes()
	a.setupMessageRoutes()
	a.setupGalleryRoutes()
	a.setupUserRoutes()
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// pageMeta assembles the page shell data for the current request.
func (a *App) pageMeta(c echo.Context, title string) views.PageMeta {
	meta := views.PageMeta{
		Title:       title,
		SiteName:    a.Config.Name,
		Description: a.Config.Description,
		CSRF:        CsrfToken(c),
	}
	if u, ok := CurrentUser(c); ok {
		meta.UserName = u.Name
		meta.Sudo = u.Sudo()
		n, err := a.Store.CountUnread(c.Request().Context(), u.ID)
		if err != nil {
			a.Log.Warn("count unread", zap.Int64("user", u.ID), zap.Error(err))
		} else {
			meta.Unread = n
		}
	}
	return meta
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	if ae := apperr.FromError(err); ae != nil && ae.Status != 0 {
		status = ae.Status
	}
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
	}
	var body func() error
	switch {
	case status == http.StatusNotFound:
		body = func() error {
			return RenderStatus(c, status, views.Page(a.pageMeta(c, "Not found"), views.NotFound()))
		}
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		body = func() error {
			return RenderStatus(c, status, views.Page(a.pageMeta(c, "Not allowed"), views.Forbidden()))
		}
	case status >= 500:
		a.Log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		body = func() error {
			return RenderStatus(c, status, views.Page(a.pageMeta(c, "Error"), views.ServerError()))
		}
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	if renderErr := body(); renderErr != nil {
		a.Log.Error("render error page", zap.Error(renderErr))
	}
}
