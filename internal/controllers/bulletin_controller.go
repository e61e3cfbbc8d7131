package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"exit_poll/internal/services"
)

type newsInput struct {
	Title       string `json:"title"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}

func (ctl *Controller) AddNews(c *gin.Context) {
	var input newsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	item, err := ctl.svc.AddNews(c.Request.Context(), services.NewsInput(input))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (ctl *Controller) ListNews(c *gin.Context) {
	items, err := ctl.svc.ListNews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (ctl *Controller) DeleteNews(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.svc.DeleteNews(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "News deleted"})
}

// UploadMedia takes optional multipart files photo and video.
func (ctl *Controller) UploadMedia(c *gin.Context) {
	files := &spooled{}
	defer files.cleanup()

	var req services.MediaUpload
	var err error
	if req.Photo, err = ctl.file(c, files, "photo"); err != nil {
		badRequest(c, err)
		return
	}
	if req.Video, err = ctl.file(c, files, "video"); err != nil {
		badRequest(c, err)
		return
	}
	media, err := ctl.svc.UploadMedia(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": media})
}

func (ctl *Controller) GetMedia(c *gin.Context) {
	media, err := ctl.svc.GetMedia(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": media})
}
