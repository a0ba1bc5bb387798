package handler

import (
	"context"
	"net/http"
	"time"

	"commercial-file-service/internal/handler/authHandler"
	"commercial-file-service/internal/handler/fileHandler"
	"commercial-file-service/internal/handler/historyHandler"
	"commercial-file-service/internal/handler/notificationHandler"
	"commercial-file-service/internal/handler/referenceHandler"
	"commercial-file-service/internal/handler/response"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Auth          *authHandler.AuthHandler
	Files         *fileHandler.FileHandler
	History       *historyHandler.HistoryHandler
	Notifications *notificationHandler.NotificationHandler
	References    *referenceHandler.ReferenceHandler
}

type RouterConfig struct {
	Logger *zap.Logger
	Tokens middleware.TokenParser
	DB     Pinger
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsCfg.ExposeHeaders = []string{"Content-Disposition"}

	r.Use(
		middleware.RequestLogger(cfg.Logger),
		response.Recovery(),
		middleware.Metrics(),
		cors.New(corsCfg),
	)

	r.GET("/health", healthCheck(cfg.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(cfg.Tokens)
	api := r.Group("/api")
	h.Auth.Register(api, requireAuth)

	protected := api.Group("", requireAuth)
	h.Files.Register(protected)
	h.History.Register(protected)
	h.Notifications.Register(protected)
	h.References.Register(protected)

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "route not found")
	})
	return r
}

func healthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Envelope{
				Success: false,
				Message: "database unavailable",
				Data:    gin.H{"status": "DOWN"},
			})
			return
		}
		response.OK(c, "ok", gin.H{"status": "UP"})
	}
}
