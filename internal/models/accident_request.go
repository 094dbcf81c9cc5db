package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Layouts accepted for dates and times coming from the front-end.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// AccidentRequest is the JSON body used to create or edit an accident.
type AccidentRequest struct {
	IPATNumber        string `json:"ipat_number"`
	AgentID           uint   `json:"agent_id"`
	IncidentDate      string `json:"incident_date"`
	IncidentTime      string `json:"incident_time"`
	GraceDays         int    `json:"grace_days"`
	DeliveryDate      string `json:"delivery_date"`
	TotalVehicles     int    `json:"total_vehicles"`
	HasPropertyDamage bool   `json:"has_property_damage"`

	RoadType     string `json:"road_type"`
	RoadNumber   string `json:"road_number"`
	Complement1  string `json:"complement1"`
	Complement2  string `json:"complement2"`
	AddressExtra string `json:"address_extra"`

	Area           string `json:"area"`
	TrafficZoneID  *uint  `json:"traffic_zone_id"`
	NeighborhoodID *uint  `json:"neighborhood_id"`
	RuralSectorID  *uint  `json:"rural_sector_id"`

	Class            string `json:"class"`
	OtherClass       string `json:"other_class"`
	RoadCategory     string `json:"road_category"`
	CollisionWith    string `json:"collision_with"`
	FixedObject      string `json:"fixed_object"`
	OtherFixedObject string `json:"other_fixed_object"`
	ReferredTo       string `json:"referred_to"`

	DriverHypothesis1ID     *uint `json:"driver_hypothesis1_id"`
	DriverHypothesis2ID     *uint `json:"driver_hypothesis2_id"`
	DriverHypothesis3ID     *uint `json:"driver_hypothesis3_id"`
	DriverHypothesis4ID     *uint `json:"driver_hypothesis4_id"`
	VehicleHypothesis1ID    *uint `json:"vehicle_hypothesis1_id"`
	VehicleHypothesis2ID    *uint `json:"vehicle_hypothesis2_id"`
	RoadHypothesis1ID       *uint `json:"road_hypothesis1_id"`
	RoadHypothesis2ID       *uint `json:"road_hypothesis2_id"`
	PedestrianHypothesis1ID *uint `json:"pedestrian_hypothesis1_id"`
	PedestrianHypothesis2ID *uint `json:"pedestrian_hypothesis2_id"`

	Vehicles []VehicleRequest `json:"vehicles"`
}

// VehicleRequest is one vehicle of an AccidentRequest.
type VehicleRequest struct {
	Sequence           int               `json:"sequence"`
	ServiceType        string            `json:"service_type"`
	VehicleClass       string            `json:"vehicle_class"`
	Gender             string            `json:"gender"`
	AgeRange           string            `json:"age_range"`
	InjuredType        string            `json:"injured_type"`
	FatalityType       string            `json:"fatality_type"`
	DriverIntoxication string            `json:"driver_intoxication"`
	IntoxicationGrade  string            `json:"intoxication_grade"`
	InjuredCount       int               `json:"injured_count"`
	FatalityCount      int               `json:"fatality_count"`
	InjuredDiedLater   [4]string         `json:"injured_died_later"`
	Fatalities         []FatalityRequest `json:"fatalities"`
}

// FatalityRequest names a deceased person carried by a vehicle.
type FatalityRequest struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
}

// ParseError reports a request field that could not be parsed.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}

// ToAccident converts the request into an Accident with its vehicles and
// fatalities. Only syntax is checked here; business rules live in services.
func (r *AccidentRequest) ToAccident() (*Accident, error) {
	a := &Accident{
		IPATNumber:        strings.TrimSpace(r.IPATNumber),
		AgentID:           r.AgentID,
		GraceDays:         r.GraceDays,
		TotalVehicles:     r.TotalVehicles,
		HasPropertyDamage: r.HasPropertyDamage,

		RoadType:     RoadType(strings.TrimSpace(r.RoadType)),
		RoadNumber:   strings.TrimSpace(r.RoadNumber),
		Complement1:  strings.TrimSpace(r.Complement1),
		Complement2:  Complement2(strings.TrimSpace(r.Complement2)),
		AddressExtra: strings.TrimSpace(r.AddressExtra),

		Area:           Area(r.Area),
		TrafficZoneID:  r.TrafficZoneID,
		NeighborhoodID: r.NeighborhoodID,
		RuralSectorID:  r.RuralSectorID,

		Class:            AccidentClass(r.Class),
		OtherClass:       strings.TrimSpace(r.OtherClass),
		RoadCategory:     RoadCategory(r.RoadCategory),
		CollisionWith:    CollisionType(r.CollisionWith),
		FixedObject:      FixedObject(r.FixedObject),
		OtherFixedObject: strings.TrimSpace(r.OtherFixedObject),
		ReferredTo:       ReferralTarget(r.ReferredTo),

		DriverHypothesis1ID:     r.DriverHypothesis1ID,
		DriverHypothesis2ID:     r.DriverHypothesis2ID,
		DriverHypothesis3ID:     r.DriverHypothesis3ID,
		DriverHypothesis4ID:     r.DriverHypothesis4ID,
		VehicleHypothesis1ID:    r.VehicleHypothesis1ID,
		VehicleHypothesis2ID:    r.VehicleHypothesis2ID,
		RoadHypothesis1ID:       r.RoadHypothesis1ID,
		RoadHypothesis2ID:       r.RoadHypothesis2ID,
		PedestrianHypothesis1ID: r.PedestrianHypothesis1ID,
		PedestrianHypothesis2ID: r.PedestrianHypothesis2ID,
	}

	if r.IncidentDate != "" {
		d, err := time.Parse(DateLayout, r.IncidentDate)
		if err != nil {
			return nil, &ParseError{Field: "incident_date", Value: r.IncidentDate}
		}
		a.IncidentDate = d
	}
	if r.IncidentTime != "" {
		t, err := parseClock(r.IncidentTime)
		if err != nil {
			return nil, &ParseError{Field: "incident_time", Value: r.IncidentTime}
		}
		a.IncidentTime = t
	}
	if r.DeliveryDate != "" {
		d, err := time.Parse(DateLayout, r.DeliveryDate)
		if err != nil {
			return nil, &ParseError{Field: "delivery_date", Value: r.DeliveryDate}
		}
		a.DeliveryDate = &d
	}

	for i := range r.Vehicles {
		a.Vehicles = append(a.Vehicles, r.Vehicles[i].ToVehicle(i+1))
	}
	return a, nil
}

// ToVehicle converts the request; fallbackSeq is used when no sequence was sent.
func (r *VehicleRequest) ToVehicle(fallbackSeq int) VehicleInvolvement {
	seq := r.Sequence
	if seq <= 0 {
		seq = fallbackSeq
	}
	v := VehicleInvolvement{
		Sequence:           seq,
		ServiceType:        ServiceType(r.ServiceType),
		VehicleClass:       VehicleClass(r.VehicleClass),
		Gender:             Gender(r.Gender),
		AgeRange:           AgeRange(r.AgeRange),
		InjuredType:        InjuryType(r.InjuredType),
		FatalityType:       InjuryType(r.FatalityType),
		DriverIntoxication: YesNo(r.DriverIntoxication),
		IntoxicationGrade:  IntoxicationGrade(r.IntoxicationGrade),
		InjuredCount:       r.InjuredCount,
		FatalityCount:      r.FatalityCount,
		Injured1DiedLater:  YesNo(r.InjuredDiedLater[0]),
		Injured2DiedLater:  YesNo(r.InjuredDiedLater[1]),
		Injured3DiedLater:  YesNo(r.InjuredDiedLater[2]),
		Injured4DiedLater:  YesNo(r.InjuredDiedLater[3]),
	}
	for i, f := range r.Fatalities {
		v.Fatalities = append(v.Fatalities, Fatality{
			Sequence: i + 1,
			FullName: strings.TrimSpace(f.FullName),
			Address:  strings.TrimSpace(f.Address),
		})
	}
	return v
}

func parseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}
