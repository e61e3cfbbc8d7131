package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func BulletinRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	news := r.Group("/news")
	{
		news.GET("", ctl.ListNews)
		news.POST("", admin, ctl.AddNews)
		news.DELETE("/:id", admin, ctl.DeleteNews)
	}

	media := r.Group("/media")
	{
		media.GET("", ctl.GetMedia)
		media.POST("", admin, ctl.UploadMedia)
	}
}
