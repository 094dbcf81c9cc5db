package models

import "time"

// Agent is a traffic agent that can be responsible for an accident report.
type Agent struct {
	AgentID   uint      `json:"agent_id" gorm:"primaryKey;column:agent_id"`
	Name      string    `json:"name" gorm:"column:name;size:50;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Agent) TableName() string {
	return "agents"
}

// TrafficZone is a traffic analysis zone (ZAT). It owns neighborhoods.
type TrafficZone struct {
	TrafficZoneID uint           `json:"traffic_zone_id" gorm:"primaryKey;column:traffic_zone_id"`
	Code          int            `json:"code" gorm:"column:code;not null;uniqueIndex"`
	Name          string         `json:"name" gorm:"column:name;size:10;not null"`
	Neighborhoods []Neighborhood `json:"neighborhoods,omitempty" gorm:"foreignKey:TrafficZoneID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

func (TrafficZone) TableName() string {
	return "traffic_zones"
}

// Neighborhood is an urban neighborhood (barrio) inside a traffic zone.
type Neighborhood struct {
	NeighborhoodID uint      `json:"neighborhood_id" gorm:"primaryKey;column:neighborhood_id"`
	Name           string    `json:"name" gorm:"column:name;size:100;not null"`
	TrafficZoneID  uint      `json:"traffic_zone_id" gorm:"column:traffic_zone_id;not null;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Neighborhood) TableName() string {
	return "neighborhoods"
}

// RuralSector is a populated center or vereda in the rural area.
type RuralSector struct {
	RuralSectorID uint      `json:"rural_sector_id" gorm:"primaryKey;column:rural_sector_id"`
	Name          string    `json:"name" gorm:"column:name;size:100;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (RuralSector) TableName() string {
	return "rural_sectors"
}

// Hypothesis is a coded causal factor. Codes are unique within a category.
type Hypothesis struct {
	HypothesisID uint               `json:"hypothesis_id" gorm:"primaryKey;column:hypothesis_id"`
	Category     HypothesisCategory `json:"category" gorm:"column:category;size:20;not null;uniqueIndex:idx_hypothesis_category_code"`
	Code         string             `json:"code" gorm:"column:code;size:10;not null;uniqueIndex:idx_hypothesis_category_code"`
	Description  string             `json:"description" gorm:"column:description;size:255;not null"`
}

func (Hypothesis) TableName() string {
	return "hypotheses"
}

// DefaultAgents is the roster loaded by the seed command.
var DefaultAgents = []string{
	"WILSON SAIZ", "ANDREA GUAVITA", "SANDRA LOPEZ", "ANGEL FORERO", "MAURICIO MORALES",
	"DIEGO PEREZ", "CARLOS VARON", "NESTOR VALBUENA", "MIGUEL HERNANDEZ", "LEONARDO RAMIREZ",
	"EDER PERILLA", "EDIXON MANCERA", "RICARDO SANCHEZ", "MARCELA MARTINEZ", "VIANY NOVA",
	"JAVIER TIMOTE", "YAMPIER RUIZ", "CAMILO GUASCA", "CRISTIAN REY", "DUVAN SANCHEZ", "POLCA",
}
