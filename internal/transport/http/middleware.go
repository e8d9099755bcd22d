package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"quiz-app-service/internal/app"
	"quiz-app-service/internal/domain"
)

const callerKey = "caller"

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ev.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// authRequired resolves the bearer token into a caller stored on the context.
func authRequired(auth *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			writeError(c, domain.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			writeError(c, domain.ErrUnauthorized)
			return
		}

		caller, err := auth.Authenticate(parts[1])
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

func requireAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !callerFrom(c).Role.CanAuthor() {
			writeError(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

// rateLimit applies a fixed-window budget per caller and scope. Limiter
// failures are logged and the request is let through.
func rateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := scope + ":" + callerFrom(c).UserID
		ok, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			writeError(c, domain.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) domain.Caller {
	v, _ := c.Get(callerKey)
	caller, _ := v.(domain.Caller)
	return caller
}
