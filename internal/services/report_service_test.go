package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/1989Cristianq/modelodatos/internal/logging"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/report"
)

func newReportService(f *fixture, now time.Time) ReportService {
	svc := NewReportService(f.db, 2, nil, logging.Discard())
	svc.(*reportService).now = func() time.Time { return now }
	return svc
}

func seedReportAccidents(t *testing.T, f *fixture) {
	t.Helper()
	march := f.urbanAccident("EXP-1")
	march.Vehicles = []models.VehicleInvolvement{vehicle(1, 2, 0)}
	f.createAccident(t, march)

	march2 := f.urbanAccident("EXP-2")
	march2.IncidentDate = date(2024, time.March, 15)
	f.createAccident(t, march2)

	f.createAccident(t, f.ruralAccident("EXP-3"))
}

func TestExport_Filters(t *testing.T) {
	f := newFixture(t)
	seedReportAccidents(t, f)
	svc := newReportService(f, time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ExportFilter
		rows   int
	}{
		{"everything", ExportFilter{}, 3},
		{"date range inclusive", ExportFilter{From: ptr(date(2024, time.March, 1)), To: ptr(date(2024, time.March, 15))}, 2},
		{"year and month", ExportFilter{Year: 2024, Month: 4}, 1},
		{"area", ExportFilter{Area: models.AreaUrban}, 2},
		{"agent", ExportFilter{AgentID: f.agent.AgentID}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := svc.Export(ctx, f.supervisor, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, exp.Rows)
			assert.Equal(t, "reporte_accidentes_20240601_090000.xlsx", exp.FileName)

			wb, err := excelize.OpenReader(bytes.NewReader(exp.Data))
			require.NoError(t, err)
			defer wb.Close()
			rows, err := wb.GetRows(report.SheetName)
			require.NoError(t, err)
			assert.Len(t, rows, tt.rows+1, "header plus one row per accident")
		})
	}
}

func TestExport_Errors(t *testing.T) {
	f := newFixture(t)
	seedReportAccidents(t, f)
	svc := newReportService(f, time.Now())
	ctx := context.Background()

	_, err := svc.Export(ctx, f.fieldAgent, ExportFilter{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Export(ctx, f.admin, ExportFilter{Year: 1999})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Export(ctx, f.admin, ExportFilter{From: ptr(date(2024, time.March, 1))})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date_range")

	_, err = svc.Export(ctx, f.admin, ExportFilter{Month: 13, Area: "MIXTA"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "month")
	assert.Contains(t, verr.Fields, "area")
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	seedReportAccidents(t, f)
	svc := newReportService(f, time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.TotalAccidents)
	assert.EqualValues(t, 2, d.AccidentsThisMonth)
	assert.EqualValues(t, 4, d.TotalUsers)
	require.Len(t, d.Recent, 2, "limited to the configured size")
	assert.Equal(t, "EXP-3", d.Recent[0].IPATNumber)
	assert.Equal(t, "EXP-2", d.Recent[1].IPATNumber)

	d, err = svc.Dashboard(ctx, f.fieldAgent)
	require.NoError(t, err)
	assert.Zero(t, d.TotalUsers, "user statistics are reserved to administrators")
	assert.EqualValues(t, 3, d.TotalAccidents)
}
