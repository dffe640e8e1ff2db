package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devkumarp/portfolio/internal/logging"
	"github.com/devkumarp/portfolio/internal/profile"
	"github.com/devkumarp/portfolio/internal/tracker"
	"github.com/devkumarp/portfolio/internal/visits"
)

// scrollEvent is the client-side event the page script turns into
// scrollIntoView.
const scrollEvent = "portfolio:scroll"

type navData struct {
	ViewID     string
	Name       string
	Logo       string
	Resume     bool
	MobileMenu bool
	MenuOpen   bool
	Items      []tracker.NavItem
}

type pageData struct {
	Profile  *profile.Profile
	Features profile.Features
	Nav      navData
	Year     int
}

func (s *Server) navData(viewID string, t *tracker.Tracker) navData {
	st := t.State()
	return navData{
		ViewID:     viewID,
		Name:       s.profile.Person.Name,
		Logo:       s.profile.Person.Logo,
		Resume:     s.features.Resume && s.profile.Person.Resume != "",
		MobileMenu: t.MobileMenu(),
		MenuOpen:   st.MenuOpen,
		Items:      t.Items(),
	}
}

func (s *Server) pageData(viewID string, t *tracker.Tracker) pageData {
	return pageData{
		Profile:  s.profile,
		Features: s.features,
		Nav:      s.navData(viewID, t),
		Year:     s.now().Year(),
	}
}

// Each load mounts a new view, so a reload starts from the first section.
func (s *Server) handleIndex(c *gin.Context) {
	id, t, err := s.views.Mount()
	if err != nil {
		logging.FromGin(c, s.logger).Error("mounting view failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "page", s.pageData(id, t))
}

// triggerScroller remembers the scroll request so it can travel back to
// the browser in an HX-Trigger header.
type triggerScroller struct {
	target string
}

func (t *triggerScroller) ScrollIntoView(id string) { t.target = id }

func (t *triggerScroller) header() (string, bool) {
	if t.target == "" {
		return "", false
	}
	b, err := json.Marshal(map[string]any{
		scrollEvent: map[string]string{"target": t.target},
	})
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (s *Server) lookupView(c *gin.Context) (*tracker.Tracker, bool) {
	t, ok := s.views.Get(c.Param("view"))
	if !ok {
		// htmx reloads the page, which mounts a fresh view.
		c.Header("HX-Refresh", "true")
		c.String(http.StatusGone, "view expired")
		return nil, false
	}
	return t, true
}

func (s *Server) handleSelect(c *gin.Context) {
	t, ok := s.lookupView(c)
	if !ok {
		return
	}
	section := c.Param("section")

	sc := &triggerScroller{}
	if err := t.Select(section, sc); err != nil {
		if errors.Is(err, tracker.ErrUnknownSection) {
			c.String(http.StatusNotFound, "unknown section")
			return
		}
		logging.FromGin(c, s.logger).Error("selecting section failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	if s.visits != nil {
		visits.RecordSelection(c, s.visits, section, s.logger)
	}

	if h, ok := sc.header(); ok {
		c.Header("HX-Trigger", h)
	}
	c.HTML(http.StatusOK, "nav", s.navData(c.Param("view"), t))
}

func (s *Server) handleToggleMenu(c *gin.Context) {
	t, ok := s.lookupView(c)
	if !ok {
		return
	}
	t.ToggleMenu()
	c.HTML(http.StatusOK, "nav", s.navData(c.Param("view"), t))
}

func (s *Server) handleResume(c *gin.Context) {
	resume := s.profile.Person.Resume
	if !s.features.Resume || resume == "" {
		c.String(http.StatusNotFound, "not found")
		return
	}
	name := path.Base(resume)
	c.FileAttachment(filepath.Join(s.cfg.StaticDir, name), name)
}

func (s *Server) handleStats(c *gin.Context) {
	if !s.requireVisits(c) {
		return
	}
	stats, err := s.visits.Stats(c.Request.Context())
	if err != nil {
		logging.FromGin(c, s.logger).Error("loading stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

const adminCookie = "admin_token"

func (s *Server) handleAdminLogin(c *gin.Context) {
	token := c.PostForm("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Admin.Token)) != 1 {
		logging.FromGin(c, s.logger).Warn("failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.SetCookie(adminCookie, token, 3600*24, "/admin", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/admin/stats")
}

func (s *Server) handleAdminLogout(c *gin.Context) {
	c.SetCookie(adminCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) requireVisits(c *gin.Context) bool {
	if s.visits == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visit tracking disabled"})
		return false
	}
	return true
}

func (s *Server) handleVisits(c *gin.Context) {
	if !s.requireVisits(c) {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if err != nil || limit <= 0 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
		return
	}
	recent, err := s.visits.Recent(c.Request.Context(), limit)
	if err != nil {
		logging.FromGin(c, s.logger).Error("loading visits failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load visits"})
		return
	}
	c.JSON(http.StatusOK, recent)
}

func (s *Server) handleExportStats(c *gin.Context) {
	if !s.requireVisits(c) {
		return
	}
	c.Header("Content-Disposition", "attachment; filename=portfolio-stats.json")
	s.handleStats(c)
}

func (s *Server) handleCleanup(c *gin.Context) {
	if !s.requireVisits(c) {
		return
	}
	n, err := s.visits.Cleanup(c.Request.Context(), s.cfg.Tracking.Retention)
	if err != nil {
		logging.FromGin(c, s.logger).Error("visit cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// adminAuth accepts the token as a bearer token or an admin_token cookie.
func adminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got == "" || got == c.GetHeader("Authorization") {
			got, _ = c.Cookie(adminCookie)
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
