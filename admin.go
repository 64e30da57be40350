// admin.go - privacy-conscious visitor tracking and the admin API
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/store"
)

const adminCookie = "admin_token"

// adminAuth holds the session token issued on login and the salt used for
// visitor IP hashes. Both are regenerated on every start unless a salt is
// configured.
type adminAuth struct {
	username string
	password string
	token    string
	salt     string
}

func newAdminAuth(creds config.Admin, salt string) *adminAuth {
	if salt == "" {
		salt = generateToken()
	}
	return &adminAuth{
		username: creds.Username,
		password: creds.Password,
		token:    generateToken(),
		salt:     salt,
	}
}

func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b) // never fails
	return hex.EncodeToString(b)
}

// hashIP is stable per IP for the lifetime of the salt.
func (a *adminAuth) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (a *adminAuth) validCredentials(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

func (a *adminAuth) validToken(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1
}

func (s *server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !s.auth.validToken(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": UnauthorizedText})
			return
		}
		c.Next()
	}
}

// untrackedPrefixes are never recorded as page views.
var untrackedPrefixes = []string{
	"/static/",
	"/api/",
	"/admin",
	"/preview/",
	"/favicon",
	"/privacy",
}

func (s *server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		page := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(page, prefix) {
				return
			}
		}
		// only documents count as page views, not their assets
		if ext := path.Ext(page); ext != "" && ext != ".html" {
			return
		}
		// Respect Do Not Track
		if c.GetHeader("DNT") == "1" {
			return
		}

		err := s.store.RecordVisit(c.Request.Context(), store.Visit{
			HashedIP:  s.auth.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      page,
			Timestamp: s.now(),
		})
		if err != nil {
			s.logger.Warn("error recording visitor", zap.Error(err))
		}
	}
}

// cleanupOldVisitorData deletes visits older than the retention window.
func (s *server) cleanupOldVisitorData(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.store.PurgeVisitsBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("error cleaning up old visitor data", zap.Error(err))
		}
		return 0
	}
	if n > 0 {
		s.logger.Info("privacy cleanup", zap.Int64("removed", n), zap.Time("cutoff", cutoff))
	}
	return n
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (s *server) setupAdminRoutes(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		var req loginRequest
		_ = c.ShouldBind(&req)

		client := s.auth.hashIP(c.ClientIP())
		if !s.auth.validCredentials(req.Username, req.Password) {
			s.logger.Warn("failed admin login attempt", zap.String("client", client))
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": InvalidLoginText})
			return
		}

		// 24 hours
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.auth.token, 3600*24, "/admin", "", s.cfg.Production(), true)
		s.logger.Info("admin login successful", zap.String("client", client))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.POST("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", s.cfg.Production(), true)
		s.logger.Info("admin logout", zap.String("client", s.auth.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.adminAuthMiddleware())

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), s.now())
		if err != nil {
			s.logger.Error("error loading admin stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": StatsFailedText})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/api/visitors", func(c *gin.Context) {
		visits, err := s.store.RecentVisits(c.Request.Context(), queryLimit(c, 200))
		if err != nil {
			s.logger.Error("error loading visitors", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": VisitorsFailedText})
			return
		}
		c.JSON(http.StatusOK, gin.H{"visitors": visits})
	})

	adminGroup.GET("/api/contacts", func(c *gin.Context) {
		attempts, err := s.store.ContactLog(c.Request.Context(), queryLimit(c, 200))
		if err != nil {
			s.logger.Error("error loading contact log", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": ContactLogFailedText})
			return
		}
		c.JSON(http.StatusOK, gin.H{"contacts": attempts})
	})

	adminGroup.DELETE("/outbox/:token", func(c *gin.Context) {
		token := c.Param("token")
		err := s.store.DeleteOutbox(c.Request.Context(), token)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": PreviewNotFoundText})
			return
		}
		if err != nil {
			s.logger.Error("error deleting preview message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": DeleteFailedText})
			return
		}
		s.logger.Info("preview message deleted by admin", zap.String("client", s.auth.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed := s.cleanupOldVisitorData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
	})

	// statistics export for backups or analysis
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context(), s.now())
		if err != nil {
			s.logger.Error("error exporting admin stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": StatsFailedText})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin stats exported", zap.String("client", s.auth.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})
}

// queryLimit reads ?limit=, clamped to [1, 1000].
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 1 {
		return def
	}
	return min(n, 1000)
}
