package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func AdminRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	dashboard := r.Group("/dashboard")
	dashboard.Use(admin)
	{
		dashboard.GET("/stats", ctl.DashboardStats)
	}
}
