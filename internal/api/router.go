package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter собирает gin роутер со всеми маршрутами API и /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:   []string{"Content-Length", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")

	quizzes := v1.Group("/quizzes")
	{
		quizzes.POST("", h.CreateQuiz)
		quizzes.GET("", h.ListQuizzes)
		quizzes.GET("/:quiz_id", h.GetQuiz)
		quizzes.DELETE("/:quiz_id", h.DeleteQuiz)
		quizzes.GET("/:quiz_id/attempts.csv", h.ExportAttempts)
		quizzes.POST("/:quiz_id/sessions", h.OpenSession)
	}

	sessions := v1.Group("/sessions/:session_id")
	{
		sessions.GET("", h.GetSession)
		sessions.DELETE("", h.CloseSession)
		sessions.GET("/answers", h.SessionAnswers)
		sessions.POST("/start", h.Start)
		sessions.POST("/next", h.Next)
		sessions.POST("/previous", h.Previous)
		sessions.POST("/goto/:index", h.GoTo)
		sessions.PUT("/answers/:question_id", h.Answer)
		sessions.POST("/reveal/:question_id", h.Reveal)
		sessions.POST("/submit", h.Submit)
	}

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
