package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"exit_poll/internal/middleware"
	"exit_poll/internal/services"
)

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ctl *Controller) Login(c *gin.Context) {
	var body loginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	res, err := ctl.svc.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  res.Admin,
	})
}

func (ctl *Controller) Profile(c *gin.Context) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user in token", "code": services.KindUnauthenticated})
		return
	}
	admin, err := ctl.svc.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": admin})
}
