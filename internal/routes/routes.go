package routes

import (
	"context"
	"io"
	"net/http"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"exit_poll/internal/controllers"
	"exit_poll/internal/middleware"
	"exit_poll/internal/storage"
)

// Deps is everything the router needs.
type Deps struct {
	Controller *controllers.Controller
	Auth       *middleware.JWT
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// LogWriter receives the access log; nil disables it.
	LogWriter io.Writer
	// UploadDir is served under /uploads when the local store is in use.
	UploadDir   string
	MaxUploadMB int64
	// Health is called by /healthz.
	Health func(ctx context.Context) error
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.LogWriter != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(d.LogWriter),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/healthz", "/metrics"}),
		))
	}
	if d.MaxUploadMB > 0 {
		r.Use(middleware.LimitBody(d.MaxUploadMB << 20))
		r.MaxMultipartMemory = 8 << 20
	}

	admin := d.Auth.RequireAuthWithRole("admin")

	AuthRoutes(r, d.Controller, admin)
	CityRoutes(r, d.Controller, admin)
	ZoneRoutes(r, d.Controller, admin)
	CandidateRoutes(r, d.Controller, admin)
	VoteRoutes(r, d.Controller, admin)
	AdminRoutes(r, d.Controller, admin)
	BulletinRoutes(r, d.Controller, admin)

	if d.UploadDir != "" {
		r.Static(storage.LocalURLPrefix, d.UploadDir)
	}
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
