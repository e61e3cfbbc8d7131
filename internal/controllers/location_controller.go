package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"exit_poll/internal/services"
)

type cityInput struct {
	Name string `json:"name" binding:"required"`
}

func (ctl *Controller) CreateCity(c *gin.Context) {
	var input cityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	city, err := ctl.svc.CreateCity(c.Request.Context(), input.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": city})
}

func (ctl *Controller) ListCities(c *gin.Context) {
	cities, err := ctl.svc.ListCities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cities})
}

func (ctl *Controller) DeleteCity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.svc.DeleteCity(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "City deleted"})
}

type zonesInput struct {
	CityID uint     `json:"cityId" binding:"required"`
	Zones  []string `json:"zones" binding:"required"`
}

// AddZones answers 201 when every zone was created and 409 with both the
// created zones and the rejected names otherwise.
func (ctl *Controller) AddZones(c *gin.Context) {
	var input zonesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	zones, err := ctl.svc.AddZones(c.Request.Context(), input.CityID, input.Zones)
	if err != nil {
		var se *services.Error
		if services.IsKind(err, services.KindConflict) && errors.As(err, &se) {
			c.JSON(http.StatusConflict, gin.H{
				"error":  se.Message,
				"code":   se.Kind,
				"data":   zones,
				"failed": se.Failed,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": zones})
}

func (ctl *Controller) ListZonesByCity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	zones, err := ctl.svc.ListZonesByCity(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": zones})
}

type zoneInput struct {
	Name string `json:"name" binding:"required"`
}

func (ctl *Controller) UpdateZone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input zoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	zone, err := ctl.svc.UpdateZone(c.Request.Context(), id, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": zone})
}

func (ctl *Controller) DeleteZone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctl.svc.DeleteZone(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted"})
}

type boundaryInput struct {
	// GeoJSON Polygon or MultiPolygon; null clears the boundary.
	Geometry json.RawMessage `json:"geometry"`
}

func (ctl *Controller) SetZoneBoundary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input boundaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	raw := string(input.Geometry)
	if raw == "null" {
		raw = ""
	}
	if err := ctl.svc.SetZoneBoundary(c.Request.Context(), id, raw); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Boundary updated"})
}

func (ctl *Controller) GetZoneBoundary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	geometry, err := ctl.svc.ZoneBoundary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var out any
	if geometry != "" {
		out = json.RawMessage(geometry)
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"zoneId": id, "geometry": out}})
}

func (ctl *Controller) LocateZone(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required", "code": services.KindInvalidArgument})
		return
	}
	zone, err := ctl.svc.LocateZone(c.Request.Context(), lat, lng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": zone})
}
