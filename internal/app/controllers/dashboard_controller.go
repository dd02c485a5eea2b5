package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/services"
	"github.com/yigit/escola/internal/pkg/session"
)

// DashboardController renders the home page
type DashboardController struct {
	pages
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService, sessions *session.Manager, logger zerolog.Logger) *DashboardController {
	return &DashboardController{
		pages:            newPages(sessions, 0, logger),
		dashboardService: dashboardService,
	}
}

// Index renders the totals, grouped counts and the latest students
func (c *DashboardController) Index(ctx *gin.Context) {
	dashboard, err := c.dashboardService.Dashboard(ctx.Request.Context())
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "dashboard/index.html", gin.H{
		"Title":     "Dashboard",
		"Active":    "dashboard",
		"Dashboard": dashboard,
	})
}
