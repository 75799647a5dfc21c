package handler

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ayurwell-backend/internal/auth"
	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/middleware"
	"ayurwell-backend/internal/mockgateway"
)

// SetupRouter wires the public routes. CORS headers go on every response,
// errors included.
func SetupRouter(cfg *config.Config, chatHandler *ChatHandler, provider auth.Provider) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.GET("/health", chatHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat := []gin.HandlerFunc{middleware.Auth(provider)}
	if cfg.RateLimit.Enabled {
		chat = append(chat, middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}
	chat = append(chat, chatHandler.StreamChat)

	router.OPTIONS("/chat", chatHandler.Preflight)
	router.POST("/chat", chat...)

	if cfg.MockGateway.Enabled {
		mockgateway.NewHandler(cfg.MockGateway.ChunkDelay).Register(router.Group("/mock"))
	}

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	if len(c.AllowHeaders) == 0 {
		c.AllowHeaders = config.DefaultAllowedHeaders
	}
	return c
}
