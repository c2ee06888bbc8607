package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/controllers"
	"github.com/ozgurs/applyhub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	caseController *controllers.CaseController,
	chatController *controllers.ChatController,
	fileController *controllers.FileController,
	notificationController *controllers.NotificationController,
	unreadController *controllers.UnreadController,
	auditController *controllers.AuditController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// Public health check
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		cases := authenticated.Group("/cases")
		{
			cases.GET("", caseController.ListCases)
			cases.GET("/:id", caseController.GetCase)
			cases.PUT("/:id", caseController.UpdateCase)

			// Conversation endpoints. GET is the compound open-thread
			// operation; both carry the first-touch claim for staff.
			cases.GET("/:id/messages", chatController.OpenThread)
			cases.POST("/:id/messages", chatController.SendMessage)
		}

		// Attachments are uploaded first, then referenced by fileId from a
		// message.
		authenticated.POST("/files", fileController.UploadFile)

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.ListNotifications)
			notifications.GET("/unread-count", notificationController.GetUnreadCount)
			notifications.PUT("/read-all", notificationController.MarkAllRead)
			notifications.PUT("/:id/read", notificationController.MarkRead)
		}

		me := authenticated.Group("/me")
		me.Use(authMiddleware.StaffRequired())
		{
			me.GET("/unread", unreadController.GetUnreadSummary)
		}

		audit := authenticated.Group("/audit-logs")
		audit.Use(authMiddleware.SuperAdminRequired())
		{
			audit.GET("", auditController.ListAuditLogs)
		}
	}
}
