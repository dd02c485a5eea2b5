package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/services"
	"github.com/yigit/escola/internal/pkg/session"
)

// ReportController handles the reports section
type ReportController struct {
	pages
	reportService    *services.ReportService
	dashboardService *services.DashboardService
	studentService   *services.StudentService
}

// NewReportController creates a new ReportController
func NewReportController(
	reportService *services.ReportService,
	dashboardService *services.DashboardService,
	studentService *services.StudentService,
	sessions *session.Manager,
	logger zerolog.Logger,
) *ReportController {
	return &ReportController{
		pages:            newPages(sessions, 0, logger),
		reportService:    reportService,
		dashboardService: dashboardService,
		studentService:   studentService,
	}
}

type countTable struct {
	Title string
	Rows  []models.CountByLabel
}

// Index lists the available reports
func (c *ReportController) Index(ctx *gin.Context) {
	students, err := c.studentService.Options(ctx.Request.Context())
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "reports/index.html", gin.H{
		"Title":    "Relatórios",
		"Active":   "reports",
		"Students": students,
	})
}

// StudentsPDF downloads the student table as a PDF
func (c *ReportController) StudentsPDF(ctx *gin.Context) {
	var buf bytes.Buffer
	filename, err := c.reportService.StudentsPDF(ctx.Request.Context(), &buf)
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Statistics renders the grouped counts
func (c *ReportController) Statistics(ctx *gin.Context) {
	stats, err := c.dashboardService.Statistics(ctx.Request.Context())
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "reports/statistics.html", gin.H{
		"Title":  "Estatísticas",
		"Active": "reports",
		"Tables": []countTable{
			{Title: "Alunos por curso", Rows: stats.ByCourse},
			{Title: "Alunos por sexo", Rows: stats.BySex},
			{Title: "Distribuição de idade", Rows: stats.ByAge},
			{Title: "Pets por raça", Rows: stats.ByBreed},
		},
	})
}

// MasterDetail renders one student or all students with their pets.
// A missing or non-numeric studentId means all students.
func (c *ReportController) MasterDetail(ctx *gin.Context) {
	studentID, _ := strconv.ParseInt(ctx.Query("studentId"), 10, 64)

	students, err := c.reportService.MasterDetail(ctx.Request.Context(), studentID)
	if err != nil {
		c.failPage(ctx, err)
		return
	}

	c.render(ctx, http.StatusOK, "reports/master_detail.html", gin.H{
		"Title":    "Relatório mestre-detalhe",
		"Active":   "reports",
		"Students": students,
	})
}
