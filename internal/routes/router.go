package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eco_report/docs" // swagger docs
	"github.com/eco_report/internal/auth"
	"github.com/eco_report/internal/handlers"
)

// Handlers bundles the handler set the router wires up.
type Handlers struct {
	Issue        *handlers.IssueHandler
	Verification *handlers.VerificationHandler
	Upload       *handlers.UploadHandler
	User         *handlers.UserHandler
}

// SetupRoutes registers all API routes.
func SetupRoutes(router *gin.Engine, h Handlers) {
	// The map and feed are consumed directly from the browser.
	router.Use(cors.Default())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	apiV1 := api.Group("/v1")
	{
		// Anonymous reporting is allowed; identity is attached when present.
		public := apiV1.Group("")
		public.Use(auth.OptionalJWTMiddleware())
		{
			public.POST("/uploads", h.Upload.UploadPhotos)
			public.POST("/issues", h.Issue.CreateIssue)
			public.GET("/issues", h.Issue.ListIssues)
			public.GET("/issues/:id", h.Issue.GetIssue)
			public.GET("/users/:id", h.User.GetUser)
		}

		// Verification and account routes require a signed-in caller.
		protected := apiV1.Group("")
		protected.Use(auth.JWTMiddleware())
		{
			protected.POST("/issues/:id/verifications", h.Verification.SubmitVerification)
			protected.POST("/issues/:id/flag", h.Issue.FlagIssue)
			protected.PATCH("/issues/:id/status", h.Issue.UpdateStatus)
			protected.DELETE("/uploads", h.Upload.DeletePhoto)
			protected.GET("/me", h.User.GetMe)
			protected.PATCH("/me", h.User.UpdateMe)
		}
	}
}
