package v1

import (
	"time"

	"talentlink-appointments/config"
	"talentlink-appointments/internal/delivery/http/middleware"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/internal/usecase"
	"talentlink-appointments/pkg/auth"
	"talentlink-appointments/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	EligibilityUC domain.EligibilityUsecase
	AppointmentUC domain.AppointmentUsecase
	HealthUC      usecase.HealthUsecase
	JWKSProvider  *auth.Provider
	SecurityLog   *security.SecurityLogger
	// RateLimitStore is shared across replicas when backed by redis
	RateLimitStore middleware.RateLimitStore
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	fallback := middleware.NewMemoryRateLimitStore()
	store := deps.RateLimitStore
	if store == nil {
		store = fallback
	}
	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, deps.Config.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(
		middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window),
		store, fallback, deps.SecurityLog,
	))

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Service-to-service
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalToken(deps.Config.InternalAPIToken, deps.SecurityLog))
	NewPipelineHandler(internal, deps.EligibilityUC)

	// Protected routes
	protected := v1.Group("")
	protected.Use(
		middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.SecurityLog),
		middleware.CSRFMiddleware(deps.Config.IsProduction()),
		middleware.RateLimitMiddleware(
			middleware.UserRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window),
			store, fallback, deps.SecurityLog,
		),
	)
	{
		recruiters := protected.Group("/recruiters")
		recruiters.Use(middleware.RequireRole(domain.RoleRecruiter, deps.SecurityLog))
		NewEligibilityHandler(recruiters, deps.EligibilityUC)
		NewAppointmentHandler(recruiters, deps.AppointmentUC, deps.SecurityLog)

		candidates := protected.Group("/candidates")
		candidates.Use(middleware.RequireRole(domain.RoleCandidate, deps.SecurityLog))
		NewCandidateAppointmentHandler(candidates, deps.AppointmentUC)
	}

	return r
}
