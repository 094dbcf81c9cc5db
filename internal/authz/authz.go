// Package authz decides what a principal may do with accident records.
package authz

import "github.com/1989Cristianq/modelodatos/internal/models"

// Principal is the authenticated caller as seen by the services.
type Principal struct {
	UserID   uint
	Username string
	Role     models.Role
}

type Capability string

const (
	ViewAccidents      Capability = "view_accidents"
	CreateAccidents    Capability = "create_accidents"
	EditAnyAccident    Capability = "edit_any_accident"
	DeleteAccidents    Capability = "delete_accidents"
	ExportReports      Capability = "export_reports"
	ManageReferences   Capability = "manage_references"
	ViewUserStatistics Capability = "view_user_statistics"
)

var grants = map[models.Role]map[Capability]bool{
	models.RoleAdmin: {
		ViewAccidents:      true,
		CreateAccidents:    true,
		EditAnyAccident:    true,
		DeleteAccidents:    true,
		ExportReports:      true,
		ManageReferences:   true,
		ViewUserStatistics: true,
	},
	models.RoleSupervisor: {
		ViewAccidents:   true,
		CreateAccidents: true,
		EditAnyAccident: true,
		DeleteAccidents: true,
		ExportReports:   true,
	},
	models.RoleFieldAgent: {
		ViewAccidents:   true,
		CreateAccidents: true,
	},
}

// Can reports whether p holds capability c. Unknown roles hold nothing.
func (p Principal) Can(c Capability) bool {
	return grants[p.Role][c]
}

// CanEditAccident allows supervisors and administrators to edit any record
// and field agents only the records they registered.
func (p Principal) CanEditAccident(a *models.Accident) bool {
	if p.Can(EditAnyAccident) {
		return true
	}
	return p.Can(CreateAccidents) && a != nil && a.UserID == p.UserID
}
