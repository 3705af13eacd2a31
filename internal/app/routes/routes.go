package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scedev/parkpermit/internal/app/controllers"
	"github.com/scedev/parkpermit/internal/app/models/dto"
	"github.com/scedev/parkpermit/internal/middleware"
)

// Deps bundles everything the router needs.
type Deps struct {
	ApplicationController *controllers.ApplicationController
	RequestController     *controllers.RequestController
	UserController        *controllers.UserController
	AuthController        *controllers.AuthController
	AuthMiddleware        *middleware.AuthMiddleware
	SubmitLimiter         *middleware.RateLimiter
	UploadsDir            string
	Healthcheck           func() error
	CacheCheck            func() error
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, deps Deps) {
	router.Use(middleware.RequestLogger("/healthz", "/metrics"))
	router.Use(middleware.Metrics())

	// Uploaded license images are served verbatim from disk.
	router.Static("/uploads", deps.UploadsDir)

	// Operational endpoints. The optional cache is reported but never gates
	// health; only the database does.
	router.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok", "database": "ok"}
		code := 200

		if deps.CacheCheck != nil {
			if err := deps.CacheCheck(); err != nil {
				body["redis"] = "unavailable"
			} else {
				body["redis"] = "ok"
			}
		}

		if deps.Healthcheck != nil {
			if err := deps.Healthcheck(); err != nil {
				body["status"] = "degraded"
				body["database"] = "unavailable"
				body["error"] = err.Error()
				code = 503
			}
		}

		c.JSON(code, body)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// --- Public routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.AuthController.Login)
		auth.POST("/refresh", deps.AuthController.Refresh)
		auth.POST("/logout", deps.AuthController.Logout)
	}

	// Students submit applications and requests without an account.
	api.POST("/documents", deps.SubmitLimiter.Limit(), deps.ApplicationController.SubmitApplication)
	api.POST("/requests", deps.SubmitLimiter.Limit(), deps.RequestController.CreateRequest)

	// Registration is open; accounts never start with admin rights.
	api.POST("/users", deps.UserController.CreateUser)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(deps.AuthMiddleware.JWTAuth())
	{
		documents := authenticated.Group("/documents")
		{
			documents.GET("", deps.ApplicationController.ListApplications)
			// Registered before the parameterised route so "excel" is never
			// read as a student ID.
			documents.GET("/excel", deps.ApplicationController.ExportApplications)
			documents.GET("/:student_id", deps.ApplicationController.GetApplication)
			documents.PUT("/:student_id", deps.ApplicationController.ReplaceApplication)
		}

		requests := authenticated.Group("/requests")
		{
			requests.GET("", deps.RequestController.ListRequests)
			requests.GET("/types", deps.RequestController.RequestTypes)
			requests.GET("/:id", deps.RequestController.GetRequest)
		}

		// The review dashboard still posts decisions to the old form route.
		authenticated.POST("/update-status/:id/", deps.RequestController.UpdateStatus)

		// Reading and mutating existing accounts is restricted to administrators.
		users := authenticated.Group("/users")
		users.Use(deps.AuthMiddleware.AdminRequired())
		{
			users.GET("", deps.UserController.ListUsers)
			users.GET("/:username", deps.UserController.GetUser)
			users.PUT("/:username", deps.UserController.UpdateUser)
			users.POST("/:username/promote", deps.UserController.PromoteUser)
			users.DELETE("/:username", deps.UserController.DeleteUser)
		}
	}

	// Legacy dashboard detail route, outside the /api prefix.
	legacy := router.Group("")
	legacy.Use(deps.AuthMiddleware.JWTAuth())
	{
		legacy.GET("/request/:id/", deps.RequestController.GetRequestLegacy)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, dto.APIResponse{
			Error:     dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found"),
			Timestamp: time.Now(),
		})
	})
}
