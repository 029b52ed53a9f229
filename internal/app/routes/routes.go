package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nbilal/scholarbridge/internal/app/controllers"
	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	applicationController *controllers.ApplicationController,
	documentController *controllers.DocumentController,
	fieldReviewController *controllers.FieldReviewController,
	sponsorshipController *controllers.SponsorshipController,
	disbursementController *controllers.DisbursementController,
	conversationController *controllers.ConversationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// The payment gateway authenticates with a shared secret, not a JWT.
	v1.POST("/payments/callback", sponsorshipController.PaymentCallback)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	students := authenticated.Group("/students")
	{
		students.GET("", studentController.List)
		students.GET("/me", studentController.GetOwn)
		students.GET("/:studentId", wrapParam(studentController.GetByID, "studentId", "id"))
		students.PATCH("/:studentId", wrapParam(studentController.UpdateProfile, "studentId", "id"))

		students.GET("/:studentId/documents", documentController.List)
		students.POST("/:studentId/documents", documentController.Upload)

		students.GET("/:studentId/sponsorships", sponsorshipController.ListByStudent)
		students.GET("/:studentId/sponsorship-check",
			authMiddleware.RoleRequired(models.RoleDonor), sponsorshipController.CheckGate)

		students.GET("/:studentId/disbursements", disbursementController.ListByStudent)
	}

	applications := authenticated.Group("/applications")
	{
		applications.POST("", applicationController.Create)
		applications.GET("", applicationController.List)
		applications.GET("/:id", applicationController.GetByID)
		applications.GET("/:id/completeness", applicationController.CheckCompleteness)
		applications.GET("/:id/field-review",
			wrapParam(fieldReviewController.GetByApplication, "id", "applicationId"))

		applications.PATCH("/:id/status",
			authMiddleware.RoleRequired(models.RoleAdmin), applicationController.UpdateStatus)
	}

	documents := authenticated.Group("/documents")
	{
		documents.DELETE("/:id",
			authMiddleware.RoleRequired(models.RoleAdmin), documentController.Delete)
	}

	fieldReviews := authenticated.Group("/field-reviews")
	{
		fieldReviews.POST("",
			authMiddleware.RoleRequired(models.RoleAdmin), fieldReviewController.Assign)

		officerOnly := fieldReviews.Group("")
		officerOnly.Use(authMiddleware.RoleRequired(models.RoleSubAdmin, models.RoleAdmin))
		{
			officerOnly.GET("/mine", fieldReviewController.ListOwn)
			officerOnly.POST("/:id/request-info", fieldReviewController.RequestMissingInfo)
			officerOnly.POST("/:id/complete", fieldReviewController.Complete)
		}
	}

	sponsorships := authenticated.Group("/sponsorships")
	{
		sponsorships.POST("",
			authMiddleware.RoleRequired(models.RoleDonor, models.RoleAdmin), sponsorshipController.Create)
		sponsorships.GET("/mine",
			authMiddleware.RoleRequired(models.RoleDonor), sponsorshipController.ListOwn)
		sponsorships.GET("/:id", sponsorshipController.GetByID)
	}

	disbursements := authenticated.Group("/disbursements")
	disbursements.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		disbursements.POST("", disbursementController.Create)
		disbursements.POST("/:id/complete", disbursementController.Complete)
	}

	conversations := authenticated.Group("/conversations")
	{
		conversations.POST("", conversationController.Start)
		conversations.GET("", conversationController.List)
		conversations.POST("/:id/messages", conversationController.SendMessage)
		conversations.GET("/:id/messages", conversationController.GetMessages)
	}
}

// wrapParam aliases a path parameter so one handler can serve routes that
// name it differently.
func wrapParam(handler gin.HandlerFunc, from, to string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: to, Value: c.Param(from)})
		handler(c)
	}
}
