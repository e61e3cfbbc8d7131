package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func CityRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	cities := r.Group("/cities")
	{
		cities.GET("", ctl.ListCities)
		cities.GET("/:id/zones", ctl.ListZonesByCity)
		cities.POST("", admin, ctl.CreateCity)
		cities.DELETE("/:id", admin, ctl.DeleteCity)
	}
}
