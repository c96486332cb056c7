package visitors

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin/",
	"/events/",
	"/fragments/",
	"/favicon",
	"/privacy",
	"/healthz",
}

func tracked(path string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

// Middleware records page views in the background. Asset, admin and
// fragment requests are skipped, and so is anyone sending DNT: 1.
func Middleware(s *Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !tracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		s.TrackBackground(c.ClientIP(), c.GetHeader("User-Agent"), path, func(err error) {
			logger.Warn("error recording visitor", zap.Error(err))
		})
		c.Next()
	}
}
