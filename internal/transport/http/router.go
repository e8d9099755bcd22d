// Package http exposes the quiz use cases as a JSON REST API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"quiz-app-service/internal/app"
)

// Limiter admits or rejects one request for a key within the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Services bundles what the router dispatches to. Limiter may be nil.
type Services struct {
	Auth       *app.AuthService
	Quizzes    *app.QuizService
	Results    *app.ResultService
	Limiter    Limiter
	CORSOrigin string
}

// NewRouter builds the gin engine with all routes under /api.
func NewRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors.New(corsConfig(s.CORSOrigin)))

	auth := &authHandler{auth: s.Auth}
	quizzes := &quizHandler{quizzes: s.Quizzes}
	results := &resultHandler{results: s.Results}
	requireAuth := authRequired(s.Auth)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", auth.register)
		authGroup.POST("/login", auth.login)
		authGroup.GET("/profile", requireAuth, auth.profile)
	}

	quizGroup := api.Group("/quizzes", requireAuth)
	{
		quizGroup.GET("", quizzes.list)
		quizGroup.GET("/:id", quizzes.get)
		quizGroup.POST("", requireAuthor(), quizzes.create)
		quizGroup.PUT("/:id", requireAuthor(), quizzes.update)
		quizGroup.DELETE("/:id", requireAuthor(), quizzes.delete)
		quizGroup.POST("/generate/book", requireAuthor(), rateLimit(s.Limiter, "generate"), quizzes.generateFromBook)
		quizGroup.POST("/generate/news", requireAuthor(), rateLimit(s.Limiter, "generate"), quizzes.generateFromNews)
	}

	resultGroup := api.Group("/results", requireAuth)
	{
		resultGroup.POST("", results.submit)
		resultGroup.GET("/user", results.userResults)
		resultGroup.GET("/user/:userId", results.userResults)
		resultGroup.GET("/stats", results.userStats)
		resultGroup.GET("/stats/:userId", results.userStats)
		resultGroup.GET("/leaderboard/quiz/:quizId", results.quizLeaderboard)
		resultGroup.GET("/leaderboard/global", results.globalLeaderboard)
	}

	return r
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = []string{origin}
	cfg.AllowCredentials = true
	return cfg
}
