package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func AuthRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", ctl.Login)
		auth.GET("/profile", admin, ctl.Profile)
	}
}
