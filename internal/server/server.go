// Package server exposes the assessment wizard, interaction checker,
// profile pages and informational content over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/MedSage/internal/auth"
	"github.com/Skufu/MedSage/internal/interaction"
	"github.com/Skufu/MedSage/internal/metrics"
	"github.com/Skufu/MedSage/internal/profile"
	"github.com/Skufu/MedSage/internal/session"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Sessions   *session.Store
	SessionTTL time.Duration
	Resolvers  map[string]interaction.Resolver
	Profiles   *profile.Service
	Authn      auth.Authenticator
	// Ready is pinged by /readyz; nil reports the store as disabled.
	Ready HealthChecker

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	SecureCookies  bool
	Logger         zerolog.Logger
}

type handler struct {
	opts   Options
	logger zerolog.Logger
}

func New(opts Options) *gin.Engine {
	h := &handler{opts: opts, logger: opts.Logger}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		requestLogger(opts.Logger),
		gin.Recovery(),
		recordMetrics(),
		limitBodySize(1<<20),
		cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", h.readyz)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	limited := newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).middleware()

	api := router.Group("/api")
	api.GET("/typeahead/:vocab", h.typeahead)

	wiz := api.Group("/wizard")
	wiz.POST("", h.startWizard)
	wiz.GET("", h.withSession(h.snapshot))
	wiz.PATCH("/form", h.withSession(h.patchForm))
	wiz.POST("/items/:field", h.withSession(h.addItem))
	wiz.DELETE("/items/:field", h.withSession(h.removeItem))
	wiz.PUT("/search/:field", h.withSession(h.search))
	wiz.POST("/search/:field/focus", h.withSession(h.focusSearch))
	wiz.POST("/search/:field/select", h.withSession(h.pick))
	wiz.POST("/search/:field/commit", h.withSession(h.commitSearch))
	wiz.POST("/search/:field/dismiss", h.withSession(h.dismissSearch))
	wiz.POST("/advance", limited, h.withSession(h.advance))
	wiz.POST("/retreat", h.withSession(h.retreat))
	wiz.POST("/retry", limited, h.withSession(h.retry))
	wiz.GET("/diseases", h.withSession(h.diseases))

	api.GET("/recommendations", h.recommendations)
	api.POST("/interactions/check", limited, h.checkInteractions)

	prof := api.Group("/profile", auth.Middleware(opts.Authn, opts.Logger))
	prof.GET("", h.loadProfile)
	prof.PUT("", h.saveProfile)
	prof.POST("/setup", h.setupProfile)

	api.GET("/content/about", h.about)
	api.GET("/content/faqs", h.faqs)
	api.GET("/content/contact", h.contactInfo)
	api.POST("/contact", h.contact)

	return router
}

func (h *handler) readyz(c *gin.Context) {
	if h.opts.Ready == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.opts.Ready.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"store":  fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok"})
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
