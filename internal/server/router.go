package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/access"
	"github.com/noah-isme/kiosk-complaint-api/internal/handler"
	"github.com/noah-isme/kiosk-complaint-api/internal/middleware"
	"github.com/noah-isme/kiosk-complaint-api/internal/service"
	"github.com/noah-isme/kiosk-complaint-api/internal/session"
	"github.com/noah-isme/kiosk-complaint-api/pkg/config"
	"github.com/noah-isme/kiosk-complaint-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/kiosk-complaint-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/kiosk-complaint-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Session   *handler.SessionHandler
	Auth      *handler.AuthHandler
	Complaint *handler.ComplaintHandler
	Admin     *handler.AdminHandler
	Metrics   *handler.MetricsHandler
}

// Dependencies carries everything the router needs.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *session.Registry
	Codec    *session.HandleCodec
	// Gates mounts the admin console gate per session; a nil value gets a private registry.
	Gates    *access.Gates
	Metrics  *service.MetricsService
	Handlers Handlers
}

// NewRouter assembles the kiosk API.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Session.Header))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.WithResponseMeta())

	gates := deps.Gates
	if gates == nil {
		gates = access.NewGates()
	}

	h := deps.Handlers
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/sessions", h.Session.Open)

	kiosk := api.Group("")
	kiosk.Use(middleware.KioskSession(deps.Codec, deps.Registry, cfg.Session.Header), middleware.AuditActor())
	{
		kiosk.GET("/session", h.Session.Current)
		kiosk.DELETE("/session", h.Session.Close)

		kiosk.POST("/auth/phone/request", h.Auth.RequestCode)
		kiosk.POST("/auth/phone/confirm", h.Auth.ConfirmCode)
		kiosk.POST("/auth/logout", h.Auth.Logout)
		kiosk.POST("/admin/elevate", h.Auth.Elevate)

		citizen := kiosk.Group("/complaints", middleware.RequireSession())
		citizen.POST("", h.Complaint.Submit)
		citizen.GET("/mine", h.Complaint.Mine)

		admin := kiosk.Group("/admin", middleware.RequireAdministrator(gates))
		admin.GET("/console", h.Admin.Console)
		admin.PUT("/console/filter", h.Admin.SetFilter)
		admin.GET("/console/export", h.Admin.Export)
		admin.PUT("/complaints/:id/status", h.Admin.SetStatus)
		admin.PUT("/complaints/:id/draft", h.Admin.SetDraft)
		admin.POST("/complaints/:id/reply", h.Admin.SaveReply)
	}

	return r
}
