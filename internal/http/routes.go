package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/elemahana/farm-api/docs"
	"github.com/elemahana/farm-api/internal/domain"
)

// NewRouter wires the full middleware chain. Order matters: CSRF must see
// requests before authentication so the auth endpoints themselves are covered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Trace())
	r.Use(AccessLog())
	r.Use(Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.Cfg.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(h.CSRFProtect())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/csrf-token", h.CSRFToken)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.RateLimit("auth"), h.Register)
		auth.POST("/login", h.RateLimit("auth"), h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/google", h.GoogleStart)
		auth.GET("/google/callback", h.GoogleCallback)
		auth.GET("/google/failure", h.GoogleFailure)
		auth.GET("/me", h.Me)
	}

	cropOpts := ResourceOptions{OwnerField: "userId"}
	ci := r.Group("/cropinput", h.Authenticate(), Authorize(domain.RoleUser))
	{
		ci.POST("", h.CreateCropInput)
		ci.GET("", FilterUserResources(cropOpts), h.ListCropInputs)
		ci.GET("/:id", h.AuthorizeResource(domain.CollCropInputs, cropOpts), h.GetCropInput)
		ci.PUT("/:id", h.AuthorizeResource(domain.CollCropInputs, cropOpts), h.UpdateCropInput)
		ci.DELETE("/:id", h.AuthorizeResource(domain.CollCropInputs, cropOpts), h.DeleteCropInput)
	}

	fbOpts := ResourceOptions{EmailField: "email", AllowManagers: true}
	fb := r.Group("/feedback")
	{
		// submission is open to visitors without an account
		fb.POST("", h.CreateFeedback)
		fb.GET("", h.Authenticate(), FilterUserResources(fbOpts), h.ListFeedback)
		fb.GET("/:id", h.Authenticate(), h.AuthorizeResource(domain.CollFeedback, fbOpts), h.GetFeedback)
		fb.PUT("/:id", h.Authenticate(), h.AuthorizeResource(domain.CollFeedback, fbOpts), h.UpdateFeedback)
		fb.DELETE("/:id", h.Authenticate(), h.AuthorizeResource(domain.CollFeedback, fbOpts), h.DeleteFeedback)
	}

	r.NoRoute(NoRoute)
	return r
}
