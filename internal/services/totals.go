package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/1989Cristianq/modelodatos/internal/models"
)

// Totals are the counters rolled up from an accident's vehicles.
type Totals struct {
	Injured    int `json:"total_injured"`
	Fatalities int `json:"total_fatalities"`
}

// RecomputeTotals rewrites the injury and fatality counters of an accident
// from its current vehicles. It must run inside the transaction that wrote
// the vehicles: the parent row is locked first so concurrent writers to the
// same accident serialize (SQLite ignores the lock; its writers are
// serialized already).
func RecomputeTotals(tx *gorm.DB, accidentID uint) (Totals, error) {
	var parent models.Accident
	if err := lockRow(tx.Select("accident_id"), &parent, accidentID); err != nil {
		return Totals{}, err
	}

	var sums struct {
		Injured    int64
		Fatalities int64
	}
	err := tx.Model(&models.VehicleInvolvement{}).
		Select("COALESCE(SUM(injured_count), 0) AS injured, COALESCE(SUM(fatality_count), 0) AS fatalities").
		Where("accident_id = ?", accidentID).
		Scan(&sums).Error
	if err != nil {
		return Totals{}, err
	}

	t := Totals{Injured: int(sums.Injured), Fatalities: int(sums.Fatalities)}
	err = tx.Model(&models.Accident{}).
		Where("accident_id = ?", accidentID).
		UpdateColumns(map[string]any{
			"total_injured":    t.Injured,
			"total_fatalities": t.Fatalities,
			"has_injuries":     t.Injured > 0,
			"has_fatalities":   t.Fatalities > 0,
		}).Error
	return t, err
}

// lockRow loads an accident row with SELECT ... FOR UPDATE.
func lockRow(tx *gorm.DB, dest *models.Accident, accidentID uint) error {
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("accident_id = ?", accidentID).
		Take(dest).Error
	return translateDBError(err)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// startTimer returns a func reporting the time elapsed since the call.
func startTimer() func() time.Duration {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}
