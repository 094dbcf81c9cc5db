package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/report"
	"github.com/1989Cristianq/modelodatos/internal/services"
)

// ReportController handles the spreadsheet export and the dashboard
type ReportController struct {
	svc services.ReportService
}

// NewReportController creates a new instance of ReportController
func NewReportController(svc services.ReportService) *ReportController {
	return &ReportController{svc: svc}
}

// Register registers the routes for the report controller
func (ctrl *ReportController) Register(g *echo.Group) {
	g.GET("/reports/accidents", ctrl.ExportAccidents)
	g.GET("/dashboard", ctrl.GetDashboard)
}

// parseExportFilter reads from, to, year, month, agent_id and area.
func parseExportFilter(c echo.Context) (services.ExportFilter, error) {
	var f services.ExportFilter
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := c.QueryParam(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return f, &models.ParseError{Field: p.name, Value: raw}
		}
		*p.dst = &t
	}

	var err error
	if f.Year, err = queryInt(c, "year"); err != nil {
		return f, &models.ParseError{Field: "year", Value: c.QueryParam("year")}
	}
	if f.Month, err = queryInt(c, "month"); err != nil {
		return f, &models.ParseError{Field: "month", Value: c.QueryParam("month")}
	}
	agent, err := queryInt(c, "agent_id")
	if err != nil || agent < 0 {
		return f, &models.ParseError{Field: "agent_id", Value: c.QueryParam("agent_id")}
	}
	f.AgentID = uint(agent)
	f.Area = models.Area(strings.ToUpper(strings.TrimSpace(c.QueryParam("area"))))
	return f, nil
}

// ExportAccidents streams the filtered accidents as an XLSX workbook.
func (ctrl *ReportController) ExportAccidents(c echo.Context) error {
	f, err := parseExportFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	exp, err := ctrl.svc.Export(c.Request().Context(), principal(c), f)
	if err != nil {
		return respondError(c, err)
	}

	setAttachment(c, exp.FileName)
	return c.Blob(http.StatusOK, report.ContentType, exp.Data)
}

func (ctrl *ReportController) GetDashboard(c echo.Context) error {
	d, err := ctrl.svc.Dashboard(c.Request().Context(), principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
