package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/controllers"
	"github.com/nazar-zhcet26/Tenant-management/middlewares"
)

// Controllers bundles everything the router needs.
type Controllers struct {
	Auth          *controllers.AuthController
	Drafts        *controllers.DraftController
	Reports       *controllers.ReportController
	JWTSecret     string
	SubmitLimiter middlewares.SubmitLimiter
}

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, ctl Controllers) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", ctl.Auth.RegisterTenant)
		auth.POST("/login", ctl.Auth.LoginTenant)
		auth.GET("/me", middlewares.AuthMiddleware(ctl.JWTSecret), ctl.Auth.GetMe)
		auth.POST("/logout", ctl.Auth.LogoutTenant)
	}
}

// DraftRoutes sets up the draft editing and submission routes
func DraftRoutes(r *gin.Engine, ctl Controllers) {
	drafts := r.Group("/api/drafts", middlewares.AuthMiddleware(ctl.JWTSecret))
	{
		drafts.POST("", ctl.Drafts.CreateDraft)
		drafts.GET("/:id", ctl.Drafts.GetDraft)
		drafts.PATCH("/:id", ctl.Drafts.UpdateDraft)
		drafts.DELETE("/:id", ctl.Drafts.DiscardDraft)
		drafts.POST("/:id/photos", ctl.Drafts.AddPhotos)
		drafts.POST("/:id/videos", ctl.Drafts.AddVideos)
		drafts.DELETE("/:id/attachments/:attachmentId", ctl.Drafts.RemoveAttachment)
		drafts.POST("/:id/location", ctl.Drafts.SetLocation)
		drafts.DELETE("/:id/location", ctl.Drafts.ClearLocation)
		drafts.POST("/:id/submit", middlewares.SubmitRateLimiter(ctl.SubmitLimiter), ctl.Reports.SubmitReport)
	}
}

// ReportRoutes sets up the report list and attachment preview routes
func ReportRoutes(r *gin.Engine, ctl Controllers) {
	api := r.Group("/api", middlewares.AuthMiddleware(ctl.JWTSecret))
	{
		api.GET("/reports", ctl.Reports.GetAllReports)
		api.GET("/previews/:id", ctl.Reports.GetPreview)
	}
}

// Register wires every route group plus the health check.
func Register(r *gin.Engine, ctl Controllers) {
	AuthRoutes(r, ctl)
	DraftRoutes(r, ctl)
	ReportRoutes(r, ctl)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
