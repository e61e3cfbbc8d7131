package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"exit_poll/internal/services"
)

// RegisterCandidate takes multipart fields name, partyName, zoneId and the
// files photo and partyLogo.
func (ctl *Controller) RegisterCandidate(c *gin.Context) {
	files := &spooled{}
	defer files.cleanup()

	photo, err := ctl.file(c, files, "photo")
	if err != nil {
		badRequest(c, err)
		return
	}
	logo, err := ctl.file(c, files, "partyLogo")
	if err != nil {
		badRequest(c, err)
		return
	}

	var zoneID uint
	if raw := strings.TrimSpace(c.PostForm("zoneId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zoneId", "code": services.KindInvalidArgument})
			return
		}
		zoneID = uint(id)
	}

	cand, err := ctl.svc.RegisterCandidate(c.Request.Context(), services.CandidateCreateRequest{
		ZoneID:    zoneID,
		Name:      c.PostForm("name"),
		PartyName: c.PostForm("partyName"),
		Photo:     photo,
		Logo:      logo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": cand})
}

func (ctl *Controller) ListCandidatesByZone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cands, err := ctl.svc.ListCandidatesByZone(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cands})
}

func (ctl *Controller) UpdateCandidate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	files := &spooled{}
	defer files.cleanup()

	var req services.CandidateUpdateRequest
	if v, ok := c.GetPostForm("name"); ok {
		req.Name = &v
	}
	if v, ok := c.GetPostForm("partyName"); ok {
		req.PartyName = &v
	}
	var err error
	if req.Photo, err = ctl.file(c, files, "photo"); err != nil {
		badRequest(c, err)
		return
	}
	if req.Logo, err = ctl.file(c, files, "partyLogo"); err != nil {
		badRequest(c, err)
		return
	}

	cand, err := ctl.svc.UpdateCandidate(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cand})
}

func (ctl *Controller) DeleteCandidate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.svc.DeleteCandidate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Candidate deleted"})
}
