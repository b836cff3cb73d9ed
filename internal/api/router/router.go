package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/handler"
)

// Options configure the HTTP surface around the handlers
type Options struct {
	AllowedOrigins []string
	Cookie         SessionCookie
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "portal-service",
			"time":    time.Now().UTC(),
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	authHandler := handler.NewAuthHandler(deps)
	profileHandler := handler.NewProfileHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(SessionMiddleware(deps.Sessions, opts.Cookie, deps.Logger))
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/featured", jobHandler.Featured)
			jobs.GET("/:id", jobHandler.GetJob)
			jobs.GET("/:id/apply", applicationHandler.OpenApplication)
			jobs.POST("/:id/apply", applicationHandler.SubmitApplication)
		}

		v1.GET("/categories", jobHandler.ListCategories)
		v1.GET("/applications", applicationHandler.History)

		auth := v1.Group("/auth")
		{
			auth.GET("/session", authHandler.Session)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)

			auth.POST("/register", authHandler.Register)
			auth.POST("/register/verify", authHandler.VerifyRegistration)
			auth.POST("/register/resend", authHandler.ResendOTP)

			reset := auth.Group("/password-reset")
			reset.POST("/request", authHandler.RequestPasswordReset)
			reset.POST("/verify", authHandler.VerifyPasswordReset)
			reset.POST("/confirm", authHandler.ConfirmPasswordReset)
			reset.POST("/back", authHandler.BackPasswordReset)
		}

		v1.GET("/profile", profileHandler.GetProfile)
		v1.PATCH("/profile", profileHandler.UpdateProfile)
	}

	return r
}
