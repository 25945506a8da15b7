package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"terminal-voice-backend/config"
	"terminal-voice-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, d Deps) *gin.Engine {
	r := gin.New()
	handler := NewHandler(d)

	r.Use(gin.Recovery(), mw.Logging(handler.log), mw.CORS(cfg.AllowedOrigins))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Vessel calls are reference data; everything else changes per event.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL+time.Minute)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/containers/status", handler.GetContainerStatus)
		api.POST("/containers/update", handler.UpdateContainerStatus)
		api.POST("/gatepass/generate", handler.GenerateGatepass)
		api.POST("/vessels/schedule", handler.CheckVesselSchedule)
		api.POST("/ssr/submit", handler.SubmitSSR)
		api.POST("/ssr/status", handler.UpdateSSRStatus)

		api.GET("/dashboard", handler.GetDashboard)
		api.GET("/vessels", caching, handler.GetVessels)
		api.GET("/events", handler.GetEvents)
		api.GET("/health", handler.Health)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	r.GET("/ws", handler.ServeWS)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
