package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"exit_poll/internal/services"
)

// Controller binds HTTP requests to the poll services.
type Controller struct {
	svc     *services.Services
	tempDir string
}

func New(svc *services.Services, tempDir string) *Controller {
	return &Controller{svc: svc, tempDir: tempDir}
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindInvalidArgument:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict, services.KindAlreadyVoted:
		return http.StatusConflict
	case services.KindUnavailable:
		return http.StatusServiceUnavailable
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"} with the status of its kind.
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
		return
	}

	status := statusFor(se.Kind)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	body := gin.H{"error": se.Message, "code": se.Kind}
	if len(se.Failed) > 0 {
		body["failed"] = se.Failed
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": services.KindInvalidArgument})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param, "code": services.KindInvalidArgument})
		return 0, false
	}
	return uint(id), true
}
