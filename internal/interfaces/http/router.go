package http

import (
	"github.com/gin-gonic/gin"

	"coursepay/internal/interfaces/http/handlers"
	"coursepay/internal/interfaces/http/middleware"
	"coursepay/internal/shared/logger"
)

type RouterDeps struct {
	WebhookHandler   *handlers.WebhookHandler
	EnrolmentHandler *handlers.EnrolmentHandler
	HealthHandler    *handlers.HealthHandler
	Logger           logger.Interface
	Mode             string
	AllowedOrigins   []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	switch deps.Mode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.ErrorHandler())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(deps.AllowedOrigins))
	}

	router.GET("/health", deps.HealthHandler.Health)

	// Server-to-server notification channel. Authenticated by signature,
	// so no other middleware guards it.
	router.POST("/paystack/webhook", deps.WebhookHandler.HandleWebhook)

	// Browser redirect back from the checkout page. The gateway may use
	// either method depending on integration settings.
	router.GET("/enrol/return", deps.EnrolmentHandler.HandleReturn)
	router.POST("/enrol/return", deps.EnrolmentHandler.HandleReturn)

	api := router.Group("/api")
	{
		api.POST("/enrolments", deps.EnrolmentHandler.StartEnrolment)
	}

	return router
}
