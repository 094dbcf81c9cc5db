package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultGraceDays applies when an accident is saved without grace days.
const DefaultGraceDays = 1

// UnspecifiedLocation is returned by Location when no place is recorded.
const UnspecifiedLocation = "No especificado"

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var upperES = cases.Upper(language.Spanish)

// MonthLabel returns the upper-cased Spanish month name of t.
func MonthLabel(t time.Time) string {
	return upperES.String(monthNames[t.Month()-1])
}

// DateOnly drops the clock part of t, keeping its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// ComputeDerived recomputes every field derived from the stored inputs:
// month label, year and month, delivery deadline, lateness and full address.
// The deadline is only filled when unset.
func (a *Accident) ComputeDerived() {
	if a.GraceDays <= 0 {
		a.GraceDays = DefaultGraceDays
	}

	if !a.IncidentDate.IsZero() {
		a.IncidentDate = DateOnly(a.IncidentDate)
		a.MonthLabel = MonthLabel(a.IncidentDate)
		a.IncidentYear = a.IncidentDate.Year()
		a.IncidentMonth = int(a.IncidentDate.Month())

		if a.DeliveryDeadline == nil {
			deadline := a.IncidentDate.AddDate(0, 0, a.GraceDays)
			a.DeliveryDeadline = &deadline
		}
	}

	a.LatenessDays = 0
	a.OnTime = nil
	if a.DeliveryDate != nil && a.DeliveryDeadline != nil {
		delivered := DateOnly(*a.DeliveryDate)
		a.DeliveryDate = &delivered
		if late := DaysBetween(*a.DeliveryDeadline, delivered); late > 0 {
			a.LatenessDays = late
		}
		onTime := a.LatenessDays <= a.GraceDays
		a.OnTime = &onTime
	}

	a.FullAddress = a.ComposeAddress()
}

// ComposeAddress joins the address components with single spaces, leaving
// out empty parts and the complement-2 sentinel.
func (a *Accident) ComposeAddress() string {
	parts := make([]string, 0, 5)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(string(a.RoadType))
	add(a.RoadNumber)
	add(a.Complement1)
	if a.Complement2 != ComplementNone {
		add(string(a.Complement2))
	}
	add(a.AddressExtra)

	return strings.Join(parts, " ")
}

// Location names the neighborhood or rural sector that matches the area.
// Relations must be preloaded to be taken into account.
func (a *Accident) Location() string {
	switch {
	case a.Area == AreaUrban && a.Neighborhood != nil:
		return a.Neighborhood.Name
	case a.Area == AreaRural && a.RuralSector != nil:
		return a.RuralSector.Name
	default:
		return UnspecifiedLocation
	}
}
