package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ametelkin/onair-server/internal/auth"
	"github.com/ametelkin/onair-server/internal/config"
	"github.com/ametelkin/onair-server/internal/core"
	"github.com/ametelkin/onair-server/internal/store"
)

// NewServer builds the HTTP server: health check, REST API, and the
// WebSocket signaling endpoint.
func NewServer(coord *core.Coordinator, table *ConnTable, authService *auth.Service, journal store.Journal, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))

	r.GET("/health", healthHandler)

	handlers := NewAPIHandlers(authService, coord, journal, logger)
	api := r.Group("/api")
	api.POST("/host/login", handlers.HostLogin)
	api.GET("/session", handlers.GetSession)
	api.GET("/calls", handlers.ListCalls)

	r.GET("/ws", gin.WrapH(NewWSHandler(coord, table, cfg.WSMsgPerMinute, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
