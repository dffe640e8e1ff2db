// Package web serves the portfolio page and the nav fragments that keep its
// Section Tracker in sync.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devkumarp/portfolio/internal/config"
	"github.com/devkumarp/portfolio/internal/logging"
	"github.com/devkumarp/portfolio/internal/markup"
	"github.com/devkumarp/portfolio/internal/profile"
	"github.com/devkumarp/portfolio/internal/tracker"
	"github.com/devkumarp/portfolio/internal/visits"
)

//go:embed templates/*.html
var templatesFS embed.FS

// VisitLog is the optional analytics backend.
type VisitLog interface {
	visits.Recorder
	Stats(ctx context.Context) (*visits.Stats, error)
	Recent(ctx context.Context, limit int) ([]visits.Visit, error)
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// Deps are the collaborators a Server needs. Visits may be nil.
type Deps struct {
	Config  *config.Config
	Profile *profile.Profile
	Logger  *zap.Logger
	Visits  VisitLog
}

type Server struct {
	cfg      *config.Config
	profile  *profile.Profile
	features profile.Features
	logger   *zap.Logger
	visits   VisitLog
	views    *tracker.Registry
	tmpl     *template.Template
	engine   *gin.Engine
	now      func() time.Time
}

func New(d Deps) (*Server, error) {
	if d.Config == nil || d.Profile == nil {
		return nil, errors.New("web: config and profile are required")
	}
	features, err := d.Config.Features()
	if err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      d.Config,
		profile:  d.Profile,
		features: features,
		logger:   logger,
		visits:   d.Visits,
		now:      time.Now,
	}

	// Fail at startup, not on the first visit, when the nav cannot be built.
	if _, err := s.newTracker(); err != nil {
		return nil, fmt.Errorf("building tracker: %w", err)
	}
	s.views = tracker.NewRegistry(s.newTracker, tracker.RegistryConfig{
		TTL:      d.Config.Views.TTL,
		MaxViews: d.Config.Views.MaxViews,
	})

	renderer := markup.New()
	s.tmpl, err = template.New("").Funcs(template.FuncMap{
		"markdown": renderer.MustRender,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s.engine = s.routes()
	return s, nil
}

// newTracker builds the tracker for one page view.
func (s *Server) newTracker() (*tracker.Tracker, error) {
	opts := []tracker.Option{
		tracker.WithAnchors(s.profile.Anchors(s.features)),
		tracker.WithMissingAnchor(s.logMissingAnchor),
	}
	if s.features.MobileMenu {
		opts = append(opts, tracker.WithMobileMenu())
	}
	return tracker.New(s.profile.Sections(s.features), opts...)
}

func (s *Server) logMissingAnchor(id string) {
	if s.cfg.StrictAnchors {
		s.logger.Warn("selected section has no element on the page", zap.String("section", id))
		return
	}
	s.logger.Debug("scroll skipped, no element for section", zap.String("section", id))
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(s.tmpl)
	r.Use(logging.Middleware(s.logger), logging.Recovery(s.logger))
	if s.visits != nil {
		r.Use(visits.Middleware(s.visits, s.logger))
	}

	r.Static("/static", s.cfg.StaticDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/", s.handleIndex)
	r.GET("/resume", s.handleResume)

	views := r.Group("/views/:view")
	views.POST("/sections/:section", s.handleSelect)
	views.POST("/menu", s.handleToggleMenu)

	if s.cfg.Admin.Token != "" {
		r.POST("/admin/login", s.handleAdminLogin)
		r.GET("/admin/logout", s.handleAdminLogout)

		admin := r.Group("/admin")
		admin.Use(adminAuth(s.cfg.Admin.Token))
		admin.GET("/stats", s.handleStats)
		admin.GET("/visits", s.handleVisits)
		admin.GET("/export/stats", s.handleExportStats)
		admin.POST("/privacy/cleanup", s.handleCleanup)
	}
	return r
}

// Handler exposes the gin engine, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Views exposes the view registry.
func (s *Server) Views() *tracker.Registry {
	return s.views
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.views.Run(ctx, s.cfg.Views.CleanupInterval, func(n int) {
		s.logger.Debug("expired views removed", zap.Int("count", n))
	})

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("portfolio listening",
			zap.String("addr", s.cfg.Addr),
			zap.String("variant", s.cfg.Variant),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("portfolio stopped")
	return nil
}

// RenderStatic writes the page in its initial state without live nav
// endpoints, so it can be hosted as a plain file.
func (s *Server) RenderStatic(w io.Writer) error {
	t, err := s.newTracker()
	if err != nil {
		return err
	}
	return s.tmpl.ExecuteTemplate(w, "page", s.pageData("", t))
}
