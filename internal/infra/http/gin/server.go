package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"ratecraft/internal/infra/config"
	"ratecraft/internal/infra/obs"
)

type PricingHTTP interface {
	Compute(c *gin.Context)
	Get(c *gin.Context)
	Calendar(c *gin.Context)
	Recompute(c *gin.Context)
	ExportFeed(c *gin.Context)
}

type RulesHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type OverridesHTTP interface {
	Create(c *gin.Context)
	Delete(c *gin.Context)
}

type Handlers struct {
	Pricing   PricingHTTP
	Rules     RulesHTTP
	Overrides OverridesHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Pricing != nil {
		props := api.Group("/properties")
		props.POST("/:id/price", h.Pricing.Compute)
		props.GET("/:id/price", h.Pricing.Get)
		props.GET("/:id/calendar", h.Pricing.Calendar)
		props.POST("/:id/recompute", h.Pricing.Recompute)
		props.POST("/:id/feed-export", h.Pricing.ExportFeed)
	}
	if h.Rules != nil {
		rulesGroup := api.Group("/rules")
		rulesGroup.GET("", h.Rules.List)
		rulesGroup.POST("", h.Rules.Create)
		rulesGroup.PUT("/:id", h.Rules.Update)
		rulesGroup.DELETE("/:id", h.Rules.Delete)
	}
	if h.Overrides != nil {
		api.POST("/properties/:id/overrides", h.Overrides.Create)
		api.DELETE("/properties/:id/overrides/:overrideId", h.Overrides.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
