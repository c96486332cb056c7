// Package server renders the portfolio and serves its HTMX endpoints.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sirjanpreet/portfolio/internal/admin"
	"github.com/sirjanpreet/portfolio/internal/carousel"
	"github.com/sirjanpreet/portfolio/internal/contact"
	"github.com/sirjanpreet/portfolio/internal/content"
	"github.com/sirjanpreet/portfolio/internal/relay"
	"github.com/sirjanpreet/portfolio/internal/visitors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Options struct {
	Site   *content.Site
	Relay  relay.Relay
	Logger *zap.Logger

	RolePeriod time.Duration
	SessionTTL time.Duration
	// Retention is only shown on the privacy page.
	Retention time.Duration

	// Visitors and Admin are optional.
	Visitors *visitors.Store
	Admin    *admin.Handler
}

type Server struct {
	opts      Options
	logger    *zap.Logger
	templates *template.Template
	sessions  *sessionStore
	engine    *gin.Engine
}

func New(opts Options) (*Server, error) {
	if opts.Site == nil {
		return nil, errors.New("server: site content is required")
	}
	if opts.Relay == nil {
		return nil, errors.New("server: relay is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RolePeriod <= 0 {
		opts.RolePeriod = carousel.DefaultPeriod
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.Retention <= 0 {
		opts.Retention = visitors.DefaultRetention
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("server: parse templates: %w", err)
	}

	s := &Server{
		opts:      opts,
		logger:    opts.Logger,
		templates: tmpl,
	}
	s.sessions = newSessionStore(opts.Site, opts.SessionTTL, func() *contact.Flow {
		return contact.NewFlow(opts.Relay, opts.Logger)
	})
	s.engine, err = s.routes()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery())
	if s.opts.Visitors != nil {
		r.Use(visitors.Middleware(s.opts.Visitors, s.logger))
	}
	r.SetHTMLTemplate(s.templates)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("server: static files: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/privacy", s.privacy)

	r.GET("/events/roles", s.roleEvents)
	r.GET("/fragments/role", s.roleFragment)
	r.POST("/fragments/tech/next", s.techStep(true))
	r.POST("/fragments/tech/prev", s.techStep(false))
	r.POST("/fragments/tech/select/:index", s.techSelect)

	r.POST("/contact", s.submitContact)

	if s.opts.Admin != nil {
		s.opts.Admin.Register(r)
	}
	return r, nil
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.sessions.run(ctx, time.Minute)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
