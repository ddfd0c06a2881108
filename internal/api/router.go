package api

import (
	"github.com/gin-gonic/gin"

	"github.com/searchforge/searchforge/internal/api/middleware"
	"github.com/searchforge/searchforge/internal/api/query"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	UIDir        string
}

// SetupRouter sets up the Gin router
func SetupRouter(queryHandler *query.Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Static UI
	SetupStaticRoutes(r, cfg.UIDir)

	// Query API
	queryHandler.RegisterRoutes(r)

	return r
}
