package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/api"
	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/middleware"
)

const (
	serviceName    = "RecipeFinder Backend"
	serviceVersion = "1.0.0"
)

// Options configures the engine built by SetupRouter
type Options struct {
	DB          *gorm.DB
	Log         *zap.Logger
	CORSOrigins []string
	// RateLimiter limits recipe searches when non-nil
	RateLimiter *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(services api.Services, opts Options) *gin.Engine {
	log := logger.OrNop(opts.Log)

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(requestid.New())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(opts.CORSOrigins))

	router.GET("/", welcome)
	router.GET("/health", healthHandler(opts.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.RateLimiter != nil {
		// A bearer token is optional on search; when valid it moves the
		// limit from the client IP to the user
		if services.Tokens != nil {
			services.SearchMiddleware = append(services.SearchMiddleware, middleware.OptionalAuth(services.Tokens))
		}
		services.SearchMiddleware = append(services.SearchMiddleware, opts.RateLimiter.RateLimitMiddleware())
	}
	api.SetupAPI(router, services)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found", "code": apperror.CodeNotFound})
	})

	return router
}

func welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + serviceName + "! 🍳",
		"status":  "running",
		"version": serviceVersion,
	})
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		if db != nil {
			if err := database.HealthCheck(c.Request.Context(), db); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["database"] = "unavailable"
			} else {
				body["database"] = "connected"
			}
		}

		c.JSON(status, body)
	}
}
