package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/config"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/storage"
)

// AccidentService registers and maintains accident reports together with
// their vehicles and fatalities.
type AccidentService interface {
	// Create stores a, its vehicles and fatalities in one transaction and
	// rolls up the totals. The principal becomes the owner.
	Create(ctx context.Context, p authz.Principal, a *models.Accident) (*models.Accident, error)
	// Update replaces the accident's fields. Vehicles are matched by
	// sequence: present ones are updated, new ones created and missing ones
	// deleted. Fatalities of each vehicle are recreated.
	Update(ctx context.Context, p authz.Principal, id uint, a *models.Accident) (*models.Accident, error)
	Delete(ctx context.Context, p authz.Principal, id uint) error
	Get(ctx context.Context, id uint) (*models.Accident, error)
	GetByIPAT(ctx context.Context, ipat string) (*models.Accident, error)
	List(ctx context.Context, q ListQuery) (*AccidentPage, error)
}

// ListQuery selects a page of accidents. Search matches the IPAT number, the
// agent, the neighborhood and the rural sector names.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

type AccidentPage struct {
	Items      []models.Accident `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

type accidentService struct {
	db      *gorm.DB
	store   storage.Store
	records config.RecordsConfig
	metrics *metrics.RegistryMetrics
	log     *slog.Logger
}

// NewAccidentService wires the service. store may be nil when sketches are
// not used.
func NewAccidentService(db *gorm.DB, store storage.Store, records config.RecordsConfig, m *metrics.RegistryMetrics, log *slog.Logger) AccidentService {
	if records.DefaultGraceDays < 1 {
		records.DefaultGraceDays = models.DefaultGraceDays
	}
	if records.PageSize < 1 {
		records.PageSize = 10
	}
	if log == nil {
		log = slog.Default()
	}
	return &accidentService{
		db:      db,
		store:   store,
		records: records,
		metrics: m,
		log:     log.With("service", "accidents"),
	}
}

// preloadAccident loads every relation shown on the detail view.
func preloadAccident(q *gorm.DB) *gorm.DB {
	q = q.Preload("User").
		Preload("Agent").
		Preload("TrafficZone").
		Preload("Neighborhood").
		Preload("RuralSector")
	for _, name := range models.HypothesisAssociations {
		q = q.Preload(name)
	}
	return q.
		Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Vehicles.Fatalities", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") })
}

func (s *accidentService) Create(ctx context.Context, p authz.Principal, a *models.Accident) (*models.Accident, error) {
	if !p.Can(authz.CreateAccidents) {
		return nil, ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateAccident(tx, a, s.records.DefaultGraceDays); err != nil {
			return err
		}
		if err := checkIPATFree(tx, a.IPATNumber, 0); err != nil {
			return err
		}

		vehicles := a.Vehicles
		a.Vehicles = nil
		a.AccidentID = 0
		a.UserID = p.UserID
		a.SketchKey = ""
		a.DeliveryDeadline = nil

		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return translateAccidentError(err)
		}
		for i := range vehicles {
			vehicles[i].AccidentID = a.AccidentID
			if err := insertVehicle(tx, &vehicles[i]); err != nil {
				return err
			}
		}
		_, err := s.rollup(tx, a.AccidentID)
		return err
	})
	s.metrics.RecordAccident("create", err)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "accident registered",
		"accident_id", a.AccidentID,
		"ipat", a.IPATNumber,
		"user", p.Username)
	return s.Get(ctx, a.AccidentID)
}

func (s *accidentService) Update(ctx context.Context, p authz.Principal, id uint, a *models.Accident) (*models.Accident, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Accident
		if err := lockRow(tx, &current, id); err != nil {
			return err
		}
		if !p.CanEditAccident(&current) {
			return ErrForbidden
		}

		if err := validateAccident(tx, a, s.records.DefaultGraceDays); err != nil {
			return err
		}
		if a.IPATNumber != current.IPATNumber {
			if err := checkIPATFree(tx, a.IPATNumber, id); err != nil {
				return err
			}
		}

		vehicles := a.Vehicles
		a.Vehicles = nil
		a.AccidentID = id
		a.UserID = current.UserID
		a.SketchKey = current.SketchKey
		a.RegisteredAt = current.RegisteredAt
		a.CreatedAt = current.CreatedAt
		a.DeliveryDeadline = current.DeliveryDeadline
		if !models.DateOnly(a.IncidentDate).Equal(models.DateOnly(current.IncidentDate)) || a.GraceDays != current.GraceDays {
			a.DeliveryDeadline = nil
		}

		if err := tx.Omit(clause.Associations).Save(a).Error; err != nil {
			return translateAccidentError(err)
		}
		if err := syncVehicles(tx, id, vehicles); err != nil {
			return err
		}
		_, err := s.rollup(tx, id)
		return err
	})
	s.metrics.RecordAccident("update", err)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "accident updated", "accident_id", id, "user", p.Username)
	return s.Get(ctx, id)
}

func (s *accidentService) Delete(ctx context.Context, p authz.Principal, id uint) error {
	if !p.Can(authz.DeleteAccidents) {
		return ErrForbidden
	}

	var sketchKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Accident
		if err := tx.Where("accident_id = ?", id).Take(&a).Error; err != nil {
			return translateDBError(err)
		}
		sketchKey = a.SketchKey

		vehicleIDs := tx.Model(&models.VehicleInvolvement{}).Select("vehicle_id").Where("accident_id = ?", id)
		if err := tx.Where("vehicle_id IN (?)", vehicleIDs).Delete(&models.Fatality{}).Error; err != nil {
			return err
		}
		if err := tx.Where("accident_id = ?", id).Delete(&models.VehicleInvolvement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&a).Error
	})
	s.metrics.RecordAccident("delete", err)
	if err != nil {
		return err
	}

	if sketchKey != "" && s.store != nil {
		if err := s.store.Delete(ctx, sketchKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.log.WarnContext(ctx, "sketch left behind after delete", "key", sketchKey, "error", err)
		}
	}
	s.log.InfoContext(ctx, "accident deleted", "accident_id", id, "user", p.Username)
	return nil
}

func (s *accidentService) Get(ctx context.Context, id uint) (*models.Accident, error) {
	var a models.Accident
	err := preloadAccident(s.db.WithContext(ctx)).Where("accident_id = ?", id).Take(&a).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &a, nil
}

func (s *accidentService) GetByIPAT(ctx context.Context, ipat string) (*models.Accident, error) {
	var a models.Accident
	err := preloadAccident(s.db.WithContext(ctx)).Where("ipat_number = ?", strings.TrimSpace(ipat)).Take(&a).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &a, nil
}

func (s *accidentService) List(ctx context.Context, q ListQuery) (*AccidentPage, error) {
	if q.PageSize < 1 {
		q.PageSize = s.records.PageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}

	base := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.Accident{})
		if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
			like := "%" + search + "%"
			db = db.
				Joins("LEFT JOIN agents ON agents.agent_id = accidents.agent_id").
				Joins("LEFT JOIN neighborhoods ON neighborhoods.neighborhood_id = accidents.neighborhood_id").
				Joins("LEFT JOIN rural_sectors ON rural_sectors.rural_sector_id = accidents.rural_sector_id").
				Where("LOWER(accidents.ipat_number) LIKE ? OR LOWER(agents.name) LIKE ? OR LOWER(neighborhoods.name) LIKE ? OR LOWER(rural_sectors.name) LIKE ?",
					like, like, like, like)
		}
		return db
	}

	page := &AccidentPage{Page: q.Page, PageSize: q.PageSize}
	if err := base().Count(&page.Total).Error; err != nil {
		return nil, err
	}
	page.TotalPages = int((page.Total + int64(q.PageSize) - 1) / int64(q.PageSize))

	err := base().
		Select("accidents.*").
		Preload("Agent").
		Preload("Neighborhood").
		Preload("RuralSector").
		Preload("User").
		Order("accidents.incident_date DESC").
		Order("accidents.incident_time DESC").
		Order("accidents.accident_id DESC").
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&page.Items).Error
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *accidentService) rollup(tx *gorm.DB, accidentID uint) (Totals, error) {
	timer := startTimer()
	t, err := RecomputeTotals(tx, accidentID)
	s.metrics.ObserveRollup(timer())
	return t, err
}

// checkIPATFree fails with ErrDuplicateIPAT when another accident than
// exceptID already uses ipat.
func checkIPATFree(tx *gorm.DB, ipat string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Accident{}).Where("ipat_number = ?", ipat)
	if exceptID != 0 {
		q = q.Where("accident_id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateIPAT, ipat)
	}
	return nil
}

// translateAccidentError reports unique violations on the accident row as
// duplicate IPAT numbers, the only unique column besides the key.
func translateAccidentError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateIPAT, err)
	}
	return translateDBError(err)
}

// insertVehicle creates v and its fatalities.
func insertVehicle(tx *gorm.DB, v *models.VehicleInvolvement) error {
	fatalities := v.Fatalities
	v.Fatalities = nil
	v.VehicleID = 0
	if err := tx.Omit(clause.Associations).Create(v).Error; err != nil {
		return translateDBError(err)
	}
	if err := insertFatalities(tx, v.VehicleID, fatalities); err != nil {
		return err
	}
	v.Fatalities = fatalities
	return nil
}

func insertFatalities(tx *gorm.DB, vehicleID uint, fatalities []models.Fatality) error {
	if len(fatalities) == 0 {
		return nil
	}
	for i := range fatalities {
		fatalities[i].FatalityID = 0
		fatalities[i].VehicleID = vehicleID
		fatalities[i].Sequence = i + 1
	}
	return translateDBError(tx.Create(&fatalities).Error)
}

// syncVehicles makes the stored vehicles of an accident match want.
func syncVehicles(tx *gorm.DB, accidentID uint, want []models.VehicleInvolvement) error {
	var existing []models.VehicleInvolvement
	if err := tx.Where("accident_id = ?", accidentID).Find(&existing).Error; err != nil {
		return err
	}
	bySeq := make(map[int]models.VehicleInvolvement, len(existing))
	for _, v := range existing {
		bySeq[v.Sequence] = v
	}

	for i := range want {
		v := &want[i]
		v.AccidentID = accidentID
		old, ok := bySeq[v.Sequence]
		if !ok {
			if err := insertVehicle(tx, v); err != nil {
				return err
			}
			continue
		}
		delete(bySeq, v.Sequence)

		fatalities := v.Fatalities
		v.Fatalities = nil
		v.VehicleID = old.VehicleID
		v.CreatedAt = old.CreatedAt
		if err := tx.Omit(clause.Associations).Save(v).Error; err != nil {
			return translateDBError(err)
		}
		if err := tx.Where("vehicle_id = ?", v.VehicleID).Delete(&models.Fatality{}).Error; err != nil {
			return err
		}
		if err := insertFatalities(tx, v.VehicleID, fatalities); err != nil {
			return err
		}
	}

	for _, stale := range bySeq {
		if err := deleteVehicle(tx, stale.VehicleID); err != nil {
			return err
		}
	}
	return nil
}

// deleteVehicle removes a vehicle and its fatalities.
func deleteVehicle(tx *gorm.DB, vehicleID uint) error {
	if err := tx.Where("vehicle_id = ?", vehicleID).Delete(&models.Fatality{}).Error; err != nil {
		return err
	}
	return tx.Where("vehicle_id = ?", vehicleID).Delete(&models.VehicleInvolvement{}).Error
}
