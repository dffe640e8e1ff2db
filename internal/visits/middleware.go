package visits

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recorder persists visits. *Store implements it.
type Recorder interface {
	HashIP(ip string) string
	Record(ctx context.Context, v Visit) error
}

var untrackedPrefixes = []string{
	"/static/",
	"/admin/",
	"/healthz",
	"/favicon",
	"/views/",
}

// Tracked reports whether a request should be logged as a page view. Do Not
// Track is honored.
func Tracked(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.Header.Get("DNT") == "1" {
		return false
	}
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return false
		}
	}
	return true
}

// Middleware records page views in the background. Only requests that hit a
// route and succeed count, so scanners probing for missing paths are ignored.
func Middleware(rec Recorder, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if rec == nil || !Tracked(c.Request) {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		c.Next()

		if c.FullPath() == "" || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		v := Visit{
			HashedIP:  rec.HashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
		}
		go record(rec, v, logger)
	}
}

// RecordSelection logs a section selection unless the visitor sent DNT.
func RecordSelection(c *gin.Context, rec Recorder, section string, logger *zap.Logger) {
	if rec == nil || c.GetHeader("DNT") == "1" {
		return
	}
	v := Visit{
		HashedIP:  rec.HashIP(c.ClientIP()),
		UserAgent: c.GetHeader("User-Agent"),
		Path:      "/",
		Section:   section,
	}
	go record(rec, v, logger)
}

func record(rec Recorder, v Visit, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Record(ctx, v); err != nil {
		logger.Warn("recording visit failed", zap.Error(err), zap.String("path", v.Path))
	}
}
