package routes

import (
	"github.com/gin-gonic/gin"

	"exit_poll/internal/controllers"
)

func VoteRoutes(r *gin.Engine, ctl *controllers.Controller, admin gin.HandlerFunc) {
	votes := r.Group("/votes")
	{
		votes.POST("", ctl.CastVote)
		votes.GET("/zone/:zoneId", ctl.ZoneTally)
		votes.GET("/stats", admin, ctl.VotingActivity)
	}
}
