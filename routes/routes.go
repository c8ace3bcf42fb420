package routes

import (
	"application-review-api/controllers"
	"application-review-api/middleware"
	"application-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Application Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/logout", controllers.Logout)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Common endpoints (all authenticated users)
			protected.GET("/funding-types", controllers.GetFundingTypes)
			protected.GET("/notifications", controllers.GetMyNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
			protected.POST("/notifications/read-all", controllers.MarkAllNotificationsRead)

			// Applications
			applications := protected.Group("/applications")
			{
				// Visibility is enforced per-caller inside the service
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/comments", controllers.GetComments)
				applications.POST("/:id/comments", controllers.AddComment)

				// Applicant lifecycle
				applications.POST("", middleware.RequireRole(models.RoleClient), controllers.CreateApplication)
				applications.PUT("/:id", middleware.RequireRole(models.RoleClient), controllers.UpdateApplication)
				applications.POST("/:id/submit", middleware.RequireRole(models.RoleClient), controllers.SubmitApplication)
				applications.POST("/:id/withdraw", middleware.RequireRole(models.RoleClient), controllers.WithdrawApplication)

				// Board voting
				applications.POST("/:id/votes", middleware.RequireRole(models.RoleBoardMember), controllers.CastVote)
				applications.GET("/:id/votes", middleware.RequireRole(models.RoleBoardMember, models.RoleAdmin), controllers.GetVotes)
				applications.GET("/:id/votes/summary", middleware.RequireRole(models.RoleBoardMember, models.RoleAdmin), controllers.GetVotingSummary)

				// Admin decisions
				applications.POST("/:id/start-review", middleware.RequireRole(models.RoleAdmin), controllers.StartReview)
				applications.POST("/:id/approve", middleware.RequireRole(models.RoleAdmin), controllers.ApproveApplication)
				applications.POST("/:id/reject", middleware.RequireRole(models.RoleAdmin), controllers.RejectApplication)
				applications.POST("/:id/request-info", middleware.RequireRole(models.RoleAdmin), controllers.RequestInformation)
			}

			// Board review queue and statistics
			reviewGroup := protected.Group("/review")
			reviewGroup.Use(middleware.RequireRole(models.RoleBoardMember, models.RoleAdmin))
			{
				reviewGroup.GET("/queue", controllers.GetReviewQueue)
				reviewGroup.GET("/statistics", controllers.GetBoardMemberStatistics)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			dashboard.Use(middleware.RequireRole(models.RoleAdmin))
			{
				dashboard.GET("/summary", controllers.GetDashboardSummary)
			}
		}
	}
}
