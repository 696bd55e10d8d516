// Package server exposes the explorer over a small JSON API.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edudata-explorer/internal/common/config"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/internal/explorer"
)

func SetupRouter(cfg config.ServerConfig, svc *explorer.Service, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", healthHandler(svc))
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/datasets", ListDatasetsHandler(svc))
		api.POST("/sessions", CreateSessionHandler(svc))

		sessions := api.Group("/sessions/:id", sessionMiddleware(svc))
		{
			sessions.DELETE("", EndSessionHandler(svc))
			sessions.POST("/fetch", FetchHandler(svc))
			sessions.GET("/digest", DigestHandler(svc))
			sessions.POST("/query", QueryHandler(svc))
		}
	}

	return r
}
