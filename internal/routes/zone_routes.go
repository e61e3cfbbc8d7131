package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func ZoneRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	zones := r.Group("/zones")
	{
		zones.GET("/locate", ctl.LocateZone)
		zones.GET("/:id/candidates", ctl.ListCandidatesByZone)
		zones.GET("/:id/boundary", ctl.GetZoneBoundary)

		zones.POST("/batch", admin, ctl.AddZones)
		zones.PUT("/:id", admin, ctl.UpdateZone)
		zones.DELETE("/:id", admin, ctl.DeleteZone)
		zones.PUT("/:id/boundary", admin, ctl.SetZoneBoundary)
	}
}
