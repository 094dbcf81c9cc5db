package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Limits on the number of vehicles a single accident can involve.
const (
	MinVehicles = 1
	MaxVehicles = 10
)

// Accident is a traffic accident report identified by its IPAT number.
type Accident struct {
	AccidentID uint `json:"accident_id" gorm:"primaryKey;column:accident_id"`

	// No foreignKey tags on these belongs-to fields: the referenced tables use
	// the same key names, and a tag would make GORM read them as has-one.
	UserID uint  `json:"user_id" gorm:"column:user_id;not null;index"`
	User   *User `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	IPATNumber   string         `json:"ipat_number" gorm:"column:ipat_number;size:50;not null;uniqueIndex"`
	AgentID      uint           `json:"agent_id" gorm:"column:agent_id;not null;index"`
	Agent        *Agent         `json:"agent,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	IncidentDate time.Time      `json:"incident_date" gorm:"column:incident_date;type:date;not null;index"`
	IncidentTime datatypes.Time `json:"incident_time" gorm:"column:incident_time;not null"`

	// Delivery tracking. DeliveryDeadline, LatenessDays and OnTime are derived.
	GraceDays        int        `json:"grace_days" gorm:"column:grace_days;not null;default:1"`
	DeliveryDate     *time.Time `json:"delivery_date" gorm:"column:delivery_date;type:date"`
	DeliveryDeadline *time.Time `json:"delivery_deadline" gorm:"column:delivery_deadline;type:date"`
	LatenessDays     int        `json:"lateness_days" gorm:"column:lateness_days;not null;default:0"`
	OnTime           *bool      `json:"on_time" gorm:"column:on_time"`

	MonthLabel    string    `json:"month_label" gorm:"column:month_label;size:15"`
	IncidentYear  int       `json:"incident_year" gorm:"column:incident_year;index"`
	IncidentMonth int       `json:"incident_month" gorm:"column:incident_month;index"`
	RegisteredAt  time.Time `json:"registered_at" gorm:"column:registered_at;autoCreateTime"`

	TotalVehicles     int  `json:"total_vehicles" gorm:"column:total_vehicles;not null;default:1"`
	HasInjuries       bool `json:"has_injuries" gorm:"column:has_injuries;not null;default:false"`
	HasFatalities     bool `json:"has_fatalities" gorm:"column:has_fatalities;not null;default:false"`
	HasPropertyDamage bool `json:"has_property_damage" gorm:"column:has_property_damage;not null;default:false"`
	TotalInjured      int  `json:"total_injured" gorm:"column:total_injured;not null;default:0"`
	TotalFatalities   int  `json:"total_fatalities" gorm:"column:total_fatalities;not null;default:0"`

	// Address components. FullAddress is derived.
	RoadType     RoadType    `json:"road_type" gorm:"column:road_type;size:20;not null"`
	RoadNumber   string      `json:"road_number" gorm:"column:road_number;size:20;not null"`
	Complement1  string      `json:"complement1" gorm:"column:complement1;size:50"`
	Complement2  Complement2 `json:"complement2" gorm:"column:complement2;size:20"`
	AddressExtra string      `json:"address_extra" gorm:"column:address_extra;size:255"`
	FullAddress  string      `json:"full_address" gorm:"column:full_address;size:400"`

	Area           Area          `json:"area" gorm:"column:area;size:10;not null;index"`
	TrafficZoneID  *uint         `json:"traffic_zone_id" gorm:"column:traffic_zone_id;index"`
	TrafficZone    *TrafficZone  `json:"traffic_zone,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	NeighborhoodID *uint         `json:"neighborhood_id" gorm:"column:neighborhood_id;index"`
	Neighborhood   *Neighborhood `json:"neighborhood,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	RuralSectorID  *uint         `json:"rural_sector_id" gorm:"column:rural_sector_id;index"`
	RuralSector    *RuralSector  `json:"rural_sector,omitempty" gorm:"constraint:OnDelete:RESTRICT"`

	Class            AccidentClass  `json:"class" gorm:"column:class;size:20;not null"`
	OtherClass       string         `json:"other_class" gorm:"column:other_class;size:50"`
	RoadCategory     RoadCategory   `json:"road_category" gorm:"column:road_category;size:20;not null"`
	CollisionWith    CollisionType  `json:"collision_with" gorm:"column:collision_with;size:20"`
	FixedObject      FixedObject    `json:"fixed_object" gorm:"column:fixed_object;size:30"`
	OtherFixedObject string         `json:"other_fixed_object" gorm:"column:other_fixed_object;size:50"`
	ReferredTo       ReferralTarget `json:"referred_to" gorm:"column:referred_to;size:30"`

	DriverHypothesis1ID     *uint       `json:"driver_hypothesis1_id" gorm:"column:driver_hypothesis1_id"`
	DriverHypothesis1       *Hypothesis `json:"driver_hypothesis1,omitempty" gorm:"foreignKey:DriverHypothesis1ID;constraint:OnDelete:RESTRICT"`
	DriverHypothesis2ID     *uint       `json:"driver_hypothesis2_id" gorm:"column:driver_hypothesis2_id"`
	DriverHypothesis2       *Hypothesis `json:"driver_hypothesis2,omitempty" gorm:"foreignKey:DriverHypothesis2ID;constraint:OnDelete:RESTRICT"`
	DriverHypothesis3ID     *uint       `json:"driver_hypothesis3_id" gorm:"column:driver_hypothesis3_id"`
	DriverHypothesis3       *Hypothesis `json:"driver_hypothesis3,omitempty" gorm:"foreignKey:DriverHypothesis3ID;constraint:OnDelete:RESTRICT"`
	DriverHypothesis4ID     *uint       `json:"driver_hypothesis4_id" gorm:"column:driver_hypothesis4_id"`
	DriverHypothesis4       *Hypothesis `json:"driver_hypothesis4,omitempty" gorm:"foreignKey:DriverHypothesis4ID;constraint:OnDelete:RESTRICT"`
	VehicleHypothesis1ID    *uint       `json:"vehicle_hypothesis1_id" gorm:"column:vehicle_hypothesis1_id"`
	VehicleHypothesis1      *Hypothesis `json:"vehicle_hypothesis1,omitempty" gorm:"foreignKey:VehicleHypothesis1ID;constraint:OnDelete:RESTRICT"`
	VehicleHypothesis2ID    *uint       `json:"vehicle_hypothesis2_id" gorm:"column:vehicle_hypothesis2_id"`
	VehicleHypothesis2      *Hypothesis `json:"vehicle_hypothesis2,omitempty" gorm:"foreignKey:VehicleHypothesis2ID;constraint:OnDelete:RESTRICT"`
	RoadHypothesis1ID       *uint       `json:"road_hypothesis1_id" gorm:"column:road_hypothesis1_id"`
	RoadHypothesis1         *Hypothesis `json:"road_hypothesis1,omitempty" gorm:"foreignKey:RoadHypothesis1ID;constraint:OnDelete:RESTRICT"`
	RoadHypothesis2ID       *uint       `json:"road_hypothesis2_id" gorm:"column:road_hypothesis2_id"`
	RoadHypothesis2         *Hypothesis `json:"road_hypothesis2,omitempty" gorm:"foreignKey:RoadHypothesis2ID;constraint:OnDelete:RESTRICT"`
	PedestrianHypothesis1ID *uint       `json:"pedestrian_hypothesis1_id" gorm:"column:pedestrian_hypothesis1_id"`
	PedestrianHypothesis1   *Hypothesis `json:"pedestrian_hypothesis1,omitempty" gorm:"foreignKey:PedestrianHypothesis1ID;constraint:OnDelete:RESTRICT"`
	PedestrianHypothesis2ID *uint       `json:"pedestrian_hypothesis2_id" gorm:"column:pedestrian_hypothesis2_id"`
	PedestrianHypothesis2   *Hypothesis `json:"pedestrian_hypothesis2,omitempty" gorm:"foreignKey:PedestrianHypothesis2ID;constraint:OnDelete:RESTRICT"`

	// SketchKey locates the sketch document in the attachment store.
	SketchKey string `json:"sketch_key,omitempty" gorm:"column:sketch_key;size:255"`

	Vehicles []VehicleInvolvement `json:"vehicles,omitempty" gorm:"foreignKey:AccidentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Accident) TableName() string {
	return "accidents"
}

// BeforeSave refreshes the derived fields before every insert or update.
func (a *Accident) BeforeSave(_ *gorm.DB) error {
	a.ComputeDerived()
	return nil
}

// HypothesisSlot binds one hypothesis column of an accident to the category
// it must reference.
type HypothesisSlot struct {
	Field    string
	Category HypothesisCategory
	ID       *uint
}

// HypothesisSlots lists the ten hypothesis slots of the accident in form order.
func (a *Accident) HypothesisSlots() []HypothesisSlot {
	return []HypothesisSlot{
		{"driver_hypothesis1_id", HypothesisDriver, a.DriverHypothesis1ID},
		{"driver_hypothesis2_id", HypothesisDriver, a.DriverHypothesis2ID},
		{"driver_hypothesis3_id", HypothesisDriver, a.DriverHypothesis3ID},
		{"driver_hypothesis4_id", HypothesisDriver, a.DriverHypothesis4ID},
		{"vehicle_hypothesis1_id", HypothesisVehicle, a.VehicleHypothesis1ID},
		{"vehicle_hypothesis2_id", HypothesisVehicle, a.VehicleHypothesis2ID},
		{"road_hypothesis1_id", HypothesisRoad, a.RoadHypothesis1ID},
		{"road_hypothesis2_id", HypothesisRoad, a.RoadHypothesis2ID},
		{"pedestrian_hypothesis1_id", HypothesisPedestrian, a.PedestrianHypothesis1ID},
		{"pedestrian_hypothesis2_id", HypothesisPedestrian, a.PedestrianHypothesis2ID},
	}
}

// HypothesisAssociations are the association names used to preload the slots.
var HypothesisAssociations = []string{
	"DriverHypothesis1", "DriverHypothesis2", "DriverHypothesis3", "DriverHypothesis4",
	"VehicleHypothesis1", "VehicleHypothesis2",
	"RoadHypothesis1", "RoadHypothesis2",
	"PedestrianHypothesis1", "PedestrianHypothesis2",
}
