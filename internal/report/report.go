// Package report renders accident exports as XLSX workbooks.
package report

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/1989Cristianq/modelodatos/internal/models"
)

const (
	SheetName   = "Accidentes"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// excelize refuses wider columns.
	maxColumnWidth = 255
)

var baseColumns = []string{
	"Número IPAT",
	"Fecha Accidente",
	"Hora Accidente",
	"Agente Responsable",
	"Área",
	"Ubicación",
	"Dirección",
	"Clase Accidente",
	"Tipo Vía",
	"Con Heridos",
	"Con Muertos",
	"Con Daños Materiales",
	"Total Vehículos",
	"Fecha Registro",
	"Registrado Por",
}

var vehicleColumns = []string{"Tipo", "Servicio", "Heridos", "Fallecidos", "Embriaguez"}

// FileName is the download name of an export generated at now.
func FileName(now time.Time) string {
	return "reporte_accidentes_" + now.Format("20060102_150405") + ".xlsx"
}

// Header returns the column titles for exports whose widest accident has
// maxVehicles vehicles.
func Header(maxVehicles int) []string {
	header := append([]string(nil), baseColumns...)
	for i := 1; i <= maxVehicles; i++ {
		for _, c := range vehicleColumns {
			header = append(header, fmt.Sprintf("Vehículo %d - %s", i, c))
		}
	}
	return header
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// Row flattens one accident. Relations must be preloaded; vehicles are
// appended in the order given.
func Row(a *models.Accident) []any {
	agent := ""
	if a.Agent != nil {
		agent = a.Agent.Name
	}
	registeredBy := ""
	if a.User != nil {
		registeredBy = a.User.DisplayName()
	}

	row := []any{
		a.IPATNumber,
		a.IncidentDate.Format(models.DateLayout),
		a.IncidentTime.String(),
		agent,
		string(a.Area),
		a.Location(),
		a.ComposeAddress(),
		string(a.Class),
		string(a.RoadCategory),
		yesNo(a.HasInjuries),
		yesNo(a.HasFatalities),
		yesNo(a.HasPropertyDamage),
		a.TotalVehicles,
		a.RegisteredAt.Format("2006-01-02 15:04:05"),
		registeredBy,
	}
	for _, v := range a.Vehicles {
		row = append(row,
			string(v.VehicleClass),
			string(v.ServiceType),
			v.InjuredCount,
			v.FatalityCount,
			string(v.DriverIntoxication),
		)
	}
	return row
}

// Build lays out the workbook: one header row, one row per accident and
// column widths fitted to the longest cell plus two.
func Build(accidents []models.Accident) (*excelize.File, error) {
	maxVehicles := 0
	for i := range accidents {
		maxVehicles = max(maxVehicles, len(accidents[i].Vehicles))
	}
	header := Header(maxVehicles)

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		_ = f.Close()
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, style)
	}

	for i := range accidents {
		row := Row(&accidents[i])
		for j, v := range row {
			widths[j] = max(widths[j], utf8.RuneCountInString(fmt.Sprint(v)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, accidents []models.Accident) error {
	f, err := Build(accidents)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.WriteTo(w)
	return err
}
