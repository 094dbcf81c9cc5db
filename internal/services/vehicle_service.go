package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/models"
)

// VehicleService edits the vehicles of an existing accident one at a time.
// Every write re-aggregates the parent totals in the same transaction.
type VehicleService interface {
	ListByAccident(ctx context.Context, accidentID uint) ([]models.VehicleInvolvement, error)
	Add(ctx context.Context, p authz.Principal, accidentID uint, v *models.VehicleInvolvement) (*models.VehicleInvolvement, Totals, error)
	Update(ctx context.Context, p authz.Principal, vehicleID uint, v *models.VehicleInvolvement) (*models.VehicleInvolvement, Totals, error)
	Delete(ctx context.Context, p authz.Principal, vehicleID uint) (Totals, error)
}

type vehicleService struct {
	db      *gorm.DB
	metrics *metrics.RegistryMetrics
	log     *slog.Logger
}

func NewVehicleService(db *gorm.DB, m *metrics.RegistryMetrics, log *slog.Logger) VehicleService {
	if log == nil {
		log = slog.Default()
	}
	return &vehicleService{db: db, metrics: m, log: log.With("service", "vehicles")}
}

// lockAccident loads the accident row for update and checks that p may
// edit it.
func lockAccident(tx *gorm.DB, p authz.Principal, accidentID uint) (*models.Accident, error) {
	var a models.Accident
	if err := lockRow(tx, &a, accidentID); err != nil {
		return nil, err
	}
	if !p.CanEditAccident(&a) {
		return nil, ErrForbidden
	}
	return &a, nil
}

func (s *vehicleService) ListByAccident(ctx context.Context, accidentID uint) ([]models.VehicleInvolvement, error) {
	var vehicles []models.VehicleInvolvement
	err := s.db.WithContext(ctx).
		Preload("Fatalities", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Where("accident_id = ?", accidentID).
		Order("sequence").
		Find(&vehicles).Error
	return vehicles, err
}

func (s *vehicleService) Add(ctx context.Context, p authz.Principal, accidentID uint, v *models.VehicleInvolvement) (*models.VehicleInvolvement, Totals, error) {
	var totals Totals
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := lockAccident(tx, p, accidentID)
		if err != nil {
			return err
		}

		var stats struct {
			Count  int64
			MaxSeq int64
		}
		err = tx.Model(&models.VehicleInvolvement{}).
			Select("COUNT(*) AS count, COALESCE(MAX(sequence), 0) AS max_seq").
			Where("accident_id = ?", accidentID).
			Scan(&stats).Error
		if err != nil {
			return err
		}

		errs := fieldErrors{}
		if int(stats.Count) >= a.TotalVehicles {
			errs.add("vehicles", "accident already has its %d vehicle(s)", a.TotalVehicles)
		}
		if v.Sequence == 0 {
			v.Sequence = int(stats.MaxSeq) + 1
		}
		if err := checkSequence(tx, accidentID, v.Sequence, 0, errs); err != nil {
			return err
		}
		validateVehicle(v, "", errs)
		if err := errs.err(); err != nil {
			return err
		}

		v.AccidentID = accidentID
		if err := insertVehicle(tx, v); err != nil {
			return err
		}
		totals, err = RecomputeTotals(tx, accidentID)
		return err
	})
	s.metrics.RecordVehicle("add", err)
	if err != nil {
		return nil, Totals{}, err
	}
	s.log.InfoContext(ctx, "vehicle added", "accident_id", accidentID, "vehicle_id", v.VehicleID, "sequence", v.Sequence)
	return v, totals, nil
}

func (s *vehicleService) Update(ctx context.Context, p authz.Principal, vehicleID uint, v *models.VehicleInvolvement) (*models.VehicleInvolvement, Totals, error) {
	var totals Totals
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.VehicleInvolvement
		if err := tx.Where("vehicle_id = ?", vehicleID).Take(&current).Error; err != nil {
			return translateDBError(err)
		}
		if _, err := lockAccident(tx, p, current.AccidentID); err != nil {
			return err
		}

		errs := fieldErrors{}
		if v.Sequence == 0 {
			v.Sequence = current.Sequence
		}
		if v.Sequence != current.Sequence {
			if err := checkSequence(tx, current.AccidentID, v.Sequence, vehicleID, errs); err != nil {
				return err
			}
		}
		validateVehicle(v, "", errs)
		if err := errs.err(); err != nil {
			return err
		}

		fatalities := v.Fatalities
		v.Fatalities = nil
		v.VehicleID = vehicleID
		v.AccidentID = current.AccidentID
		v.CreatedAt = current.CreatedAt
		if err := tx.Omit(clause.Associations).Save(v).Error; err != nil {
			return translateDBError(err)
		}
		if err := tx.Where("vehicle_id = ?", vehicleID).Delete(&models.Fatality{}).Error; err != nil {
			return err
		}
		if err := insertFatalities(tx, vehicleID, fatalities); err != nil {
			return err
		}
		v.Fatalities = fatalities

		var err error
		totals, err = RecomputeTotals(tx, current.AccidentID)
		return err
	})
	s.metrics.RecordVehicle("update", err)
	if err != nil {
		return nil, Totals{}, err
	}
	return v, totals, nil
}

func (s *vehicleService) Delete(ctx context.Context, p authz.Principal, vehicleID uint) (Totals, error) {
	var totals Totals
	var accidentID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.VehicleInvolvement
		if err := tx.Where("vehicle_id = ?", vehicleID).Take(&current).Error; err != nil {
			return translateDBError(err)
		}
		accidentID = current.AccidentID
		if _, err := lockAccident(tx, p, accidentID); err != nil {
			return err
		}
		if err := deleteVehicle(tx, vehicleID); err != nil {
			return err
		}

		var err error
		totals, err = RecomputeTotals(tx, accidentID)
		return err
	})
	s.metrics.RecordVehicle("delete", err)
	if err != nil {
		return Totals{}, err
	}
	s.log.InfoContext(ctx, "vehicle deleted", "accident_id", accidentID, "vehicle_id", vehicleID)
	return totals, nil
}

// checkSequence adds an error when seq is out of range or already used by
// another vehicle of the accident than exceptID.
func checkSequence(tx *gorm.DB, accidentID uint, seq int, exceptID uint, errs fieldErrors) error {
	if seq < 1 || seq > models.MaxVehicles {
		errs.add("sequence", "must be between 1 and %d", models.MaxVehicles)
		return nil
	}
	var count int64
	q := tx.Model(&models.VehicleInvolvement{}).Where("accident_id = ? AND sequence = ?", accidentID, seq)
	if exceptID != 0 {
		q = q.Where("vehicle_id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs.add("sequence", "sequence %d already used", seq)
	}
	return nil
}
