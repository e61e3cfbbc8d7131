package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type voteInput struct {
	CandidateID uint   `json:"candidateId"`
	DeviceID    string `json:"deviceId"`
}

func (ctl *Controller) CastVote(c *gin.Context) {
	var input voteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	receipt, err := ctl.svc.CastVote(c.Request.Context(), input.CandidateID, input.DeviceID, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded", "data": receipt})
}

func (ctl *Controller) ZoneTally(c *gin.Context) {
	id, ok := parseID(c, "zoneId")
	if !ok {
		return
	}
	res, err := ctl.svc.ZoneTally(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (ctl *Controller) VotingActivity(c *gin.Context) {
	buckets, err := ctl.svc.VotingActivity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

func (ctl *Controller) DashboardStats(c *gin.Context) {
	stats, err := ctl.svc.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
