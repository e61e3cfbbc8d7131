package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func CandidateRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	candidates := r.Group("/candidates")
	candidates.Use(admin)
	{
		candidates.POST("", ctl.RegisterCandidate)
		candidates.PUT("/:id", ctl.UpdateCandidate)
		candidates.DELETE("/:id", ctl.DeleteCandidate)
	}
}
