package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/auth"
	"github.com/codecollab/codecollab-server/internal/config"
	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/exec"
	"github.com/codecollab/codecollab-server/internal/metrics"
	"github.com/codecollab/codecollab-server/internal/store"
)

// ServerDeps bundles everything the HTTP layer needs.
type ServerDeps struct {
	Hub         *core.Hub
	AuthService *auth.Service
	Store       store.Store
	ExecClient  *exec.Client
}

// NewServer builds the HTTP server with all routes wired up. The
// returned ExecHandlers exposes the limiter loop so the caller can
// stop it on shutdown.
func NewServer(deps ServerDeps, cfg config.Config, logger *zerolog.Logger) (*stdhttp.Server, *ExecHandlers) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	apiHandlers := NewAPIHandlers(deps.AuthService, logger)
	roomHandlers := NewRoomHandlers(deps.Store, logger)
	execHandlers := NewExecHandlers(deps.ExecClient, deps.Store, cfg.ExecRateLimit, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws", gin.WrapH(NewWSHandler(deps.Hub, logger, cfg.AllowedOrigins)))

	api := router.Group("/api")
	{
		api.POST("/register", apiHandlers.Register)
		api.POST("/login", apiHandlers.Login)
		api.GET("/rooms/:id", roomHandlers.GetRoom)

		authed := api.Group("")
		authed.Use(AuthMiddleware(deps.AuthService, logger))
		{
			authed.POST("/rooms", roomHandlers.CreateRoom)
			authed.DELETE("/rooms/:id", roomHandlers.DeleteRoom)
			authed.POST("/rooms/:id/execute", execHandlers.Execute)
		}
	}

	srv := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return srv, execHandlers
}
