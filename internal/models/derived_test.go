package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeDerived_Delivery(t *testing.T) {
	tests := []struct {
		name     string
		grace    int
		delivery *time.Time
		deadline string
		lateness int
		onTime   *bool
	}{
		{"not delivered", 1, nil, "2024-03-02", 0, nil},
		{"delivered before deadline", 1, ptrTo(day(2024, time.March, 1)), "2024-03-02", 0, ptrTo(true)},
		{"delivered on deadline", 1, ptrTo(day(2024, time.March, 2)), "2024-03-02", 0, ptrTo(true)},
		{"late within grace", 2, ptrTo(day(2024, time.March, 5)), "2024-03-03", 2, ptrTo(true)},
		{"late beyond grace", 1, ptrTo(day(2024, time.March, 5)), "2024-03-02", 3, ptrTo(false)},
		{"missing grace uses default", 0, ptrTo(day(2024, time.March, 3)), "2024-03-02", 1, ptrTo(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Accident{
				IncidentDate: time.Date(2024, time.March, 1, 18, 45, 0, 0, time.UTC),
				GraceDays:    tt.grace,
				DeliveryDate: tt.delivery,
			}
			a.ComputeDerived()

			require.NotNil(t, a.DeliveryDeadline)
			assert.Equal(t, tt.deadline, a.DeliveryDeadline.Format(DateLayout))
			assert.Equal(t, tt.lateness, a.LatenessDays)
			assert.Equal(t, tt.onTime, a.OnTime)
			assert.Equal(t, day(2024, time.March, 1), a.IncidentDate)
		})
	}
}

func TestComputeDerived_KeepsExistingDeadline(t *testing.T) {
	deadline := day(2024, time.January, 31)
	a := &Accident{
		IncidentDate:     day(2024, time.January, 10),
		GraceDays:        1,
		DeliveryDeadline: &deadline,
		DeliveryDate:     ptrTo(day(2024, time.February, 2)),
	}
	a.ComputeDerived()

	assert.Equal(t, deadline, *a.DeliveryDeadline)
	assert.Equal(t, 2, a.LatenessDays)
	assert.False(t, *a.OnTime)
}

func TestComputeDerived_ClearsStaleLateness(t *testing.T) {
	a := &Accident{
		IncidentDate: day(2024, time.March, 1),
		LatenessDays: 9,
		OnTime:       ptrTo(false),
	}
	a.ComputeDerived()

	assert.Zero(t, a.LatenessDays)
	assert.Nil(t, a.OnTime)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "ENERO", MonthLabel(day(2024, time.January, 1)))
	assert.Equal(t, "SEPTIEMBRE", MonthLabel(day(2024, time.September, 30)))
	assert.Equal(t, "DICIEMBRE", MonthLabel(day(2023, time.December, 31)))

	a := &Accident{IncidentDate: day(2023, time.July, 20)}
	a.ComputeDerived()
	assert.Equal(t, "JULIO", a.MonthLabel)
	assert.Equal(t, 2023, a.IncidentYear)
	assert.Equal(t, 7, a.IncidentMonth)
}

func TestComposeAddress(t *testing.T) {
	tests := []struct {
		name string
		a    Accident
		want string
	}{
		{"road only", Accident{RoadType: RoadCalle, RoadNumber: "10", Complement2: ComplementNone}, "CALLE 10"},
		{"all parts", Accident{RoadType: RoadCarrera, RoadNumber: "5", Complement1: "12", Complement2: ComplementCalle, AddressExtra: "Local 3"}, "CARRERA 5 12 CALLE Local 3"},
		{"sentinel skipped", Accident{RoadType: RoadAvenida, RoadNumber: "Sur", Complement1: "3", Complement2: ComplementNone, AddressExtra: "Frente al parque"}, "AVENIDA Sur 3 Frente al parque"},
		{"blank parts skipped", Accident{RoadType: RoadVereda, RoadNumber: " El Rosal ", Complement1: "  "}, "VEREDA El Rosal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.ComposeAddress())
		})
	}
}

func TestLocation(t *testing.T) {
	urban := Accident{Area: AreaUrban, Neighborhood: &Neighborhood{Name: "El Centro"}}
	assert.Equal(t, "El Centro", urban.Location())

	rural := Accident{Area: AreaRural, RuralSector: &RuralSector{Name: "La Pradera"}, Neighborhood: &Neighborhood{Name: "El Centro"}}
	assert.Equal(t, "La Pradera", rural.Location())

	assert.Equal(t, UnspecifiedLocation, (&Accident{Area: AreaUrban}).Location())
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween(day(2024, time.February, 28), day(2024, time.February, 29)))
	assert.Equal(t, 2, DaysBetween(time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC), day(2024, time.March, 3)))
	assert.Equal(t, -1, DaysBetween(day(2024, time.March, 3), day(2024, time.March, 2)))
}

func ptrTo[T any](v T) *T { return &v }
