package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/1989Cristianq/modelodatos/internal/models"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Agent{},
		&models.TrafficZone{},
		&models.Neighborhood{},
		&models.RuralSector{},
		&models.Hypothesis{},
		&models.Accident{},
		&models.VehicleInvolvement{},
		&models.Fatality{},
	}
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Seed inserts the default agent roster. Existing names are left untouched.
func Seed(ctx context.Context, db *gorm.DB) (int64, error) {
	agents := make([]models.Agent, 0, len(models.DefaultAgents))
	for _, name := range models.DefaultAgents {
		agents = append(agents, models.Agent{Name: name})
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&agents)
	if res.Error != nil {
		return 0, fmt.Errorf("seed agents: %w", res.Error)
	}
	return res.RowsAffected, nil
}
