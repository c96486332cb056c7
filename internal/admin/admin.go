// Package admin serves the owner-only visitor dashboard.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirjanpreet/portfolio/internal/visitors"
)

const cookieName = "admin_token"

// ErrNoCredentials is returned in release mode when no admin username or
// password is configured.
var ErrNoCredentials = errors.New("admin: ADMIN_USERNAME and ADMIN_PASSWORD are required in release mode")

// Store is the part of the visitor store the dashboard reads.
type Store interface {
	Stats(ctx context.Context, recent int) (*visitors.Stats, error)
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
	HashIP(ip string) string
}

type Credentials struct {
	Username string
	Password string
}

type Handler struct {
	store     Store
	creds     Credentials
	token     string
	retention time.Duration
	logger    *zap.Logger
}

// New issues a fresh session token; every restart signs the owner out.
// Outside release mode, missing credentials fall back to development
// defaults with a warning.
func New(store Store, creds Credentials, retention time.Duration, logger *zap.Logger) (*Handler, error) {
	if gin.Mode() == gin.ReleaseMode && (creds.Username == "" || creds.Password == "") {
		return nil, ErrNoCredentials
	}
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	if creds.Username == "" {
		creds.Username = "admin"
		logger.Warn("using default admin username, set ADMIN_USERNAME")
	}
	if creds.Password == "" {
		creds.Password = "admin123"
		logger.Warn("using default admin password, set ADMIN_PASSWORD")
	}
	if gin.Mode() == gin.DebugMode {
		logger.Debug("admin token (dev only)", zap.String("token", token))
	}
	return &Handler{store: store, creds: creds, token: token, retention: retention, logger: logger}, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate admin token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (h *Handler) authenticated(c *gin.Context) bool {
	token, err := c.Cookie(cookieName)
	return err == nil && subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

func (h *Handler) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authenticated(c) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/admin/login", h.loginPage)
	r.POST("/admin/login", h.login)
	r.GET("/admin/logout", h.logout)

	g := r.Group("/admin")
	g.Use(h.requireLogin())
	g.GET("/dashboard", h.dashboard)
	g.GET("/api/stats", h.apiStats)
	g.GET("/export/stats", h.exportStats)
	g.POST("/privacy/cleanup", h.cleanup)
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
}

func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.creds.Password)) == 1
	if !userOK || !passOK {
		h.logger.Warn("failed admin login", zap.String("client", h.store.HashIP(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
		return
	}

	c.SetCookie(cookieName, h.token, 3600*24, "/admin", "", false, true)
	h.logger.Info("admin login", zap.String("client", h.store.HashIP(c.ClientIP())))
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(cookieName, "", -1, "/admin", "", false, true)
	c.Redirect(http.StatusFound, "/admin/login")
}

func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), 50)
	if err != nil {
		h.logger.Error("error loading admin stats", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
		return
	}
	c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
}

func (h *Handler) apiStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), 50)
	if err != nil {
		h.logger.Error("error loading admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) exportStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), 200)
	if err != nil {
		h.logger.Error("error exporting admin stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) cleanup(c *gin.Context) {
	n, err := h.store.Cleanup(c.Request.Context(), h.retention)
	if err != nil {
		h.logger.Error("privacy cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	h.logger.Info("privacy cleanup", zap.Int64("removed", n))
	c.JSON(http.StatusOK, gin.H{"removed": n})
}
