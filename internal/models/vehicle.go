package models

import "time"

// VehicleInvolvement records one vehicle taking part in an accident together
// with the victims attributed to it.
type VehicleInvolvement struct {
	VehicleID  uint `json:"vehicle_id" gorm:"primaryKey;column:vehicle_id"`
	AccidentID uint `json:"accident_id" gorm:"column:accident_id;not null;uniqueIndex:idx_vehicle_accident_sequence"`
	Sequence   int  `json:"sequence" gorm:"column:sequence;not null;uniqueIndex:idx_vehicle_accident_sequence"`

	ServiceType  ServiceType  `json:"service_type" gorm:"column:service_type;size:20;not null"`
	VehicleClass VehicleClass `json:"vehicle_class" gorm:"column:vehicle_class;size:30;not null"`
	Gender       Gender       `json:"gender" gorm:"column:gender;size:10;not null"`
	AgeRange     AgeRange     `json:"age_range" gorm:"column:age_range;size:20;not null"`
	InjuredType  InjuryType   `json:"injured_type" gorm:"column:injured_type;size:20;not null"`
	FatalityType InjuryType   `json:"fatality_type" gorm:"column:fatality_type;size:20;not null"`

	DriverIntoxication YesNo             `json:"driver_intoxication" gorm:"column:driver_intoxication;size:10;not null"`
	IntoxicationGrade  IntoxicationGrade `json:"intoxication_grade" gorm:"column:intoxication_grade;size:10"`

	InjuredCount  int `json:"injured_count" gorm:"column:injured_count;not null;default:0"`
	FatalityCount int `json:"fatality_count" gorm:"column:fatality_count;not null;default:0"`

	// Follow-up of injured people that died after the report was filed.
	Injured1DiedLater YesNo `json:"injured1_died_later" gorm:"column:injured1_died_later;size:10"`
	Injured2DiedLater YesNo `json:"injured2_died_later" gorm:"column:injured2_died_later;size:10"`
	Injured3DiedLater YesNo `json:"injured3_died_later" gorm:"column:injured3_died_later;size:10"`
	Injured4DiedLater YesNo `json:"injured4_died_later" gorm:"column:injured4_died_later;size:10"`

	Fatalities []Fatality `json:"fatalities,omitempty" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VehicleInvolvement) TableName() string {
	return "vehicle_involvements"
}

// DiedLater returns the four follow-up answers in order.
func (v *VehicleInvolvement) DiedLater() []YesNo {
	return []YesNo{v.Injured1DiedLater, v.Injured2DiedLater, v.Injured3DiedLater, v.Injured4DiedLater}
}

// Fatality is a person who died in the accident, attached to a vehicle.
type Fatality struct {
	FatalityID uint      `json:"fatality_id" gorm:"primaryKey;column:fatality_id"`
	VehicleID  uint      `json:"vehicle_id" gorm:"column:vehicle_id;not null;uniqueIndex:idx_fatality_vehicle_sequence"`
	Sequence   int       `json:"sequence" gorm:"column:sequence;not null;uniqueIndex:idx_fatality_vehicle_sequence"`
	FullName   string    `json:"full_name" gorm:"column:full_name;size:100;not null"`
	Address    string    `json:"address" gorm:"column:address;size:255;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Fatality) TableName() string {
	return "fatalities"
}
