package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/models"
)

// ReferenceService manages the lookup tables referenced by accidents.
// Writes are reserved to administrators; referenced rows cannot be deleted.
type ReferenceService interface {
	ListAgents(ctx context.Context) ([]models.Agent, error)
	CreateAgent(ctx context.Context, p authz.Principal, a *models.Agent) error
	DeleteAgent(ctx context.Context, p authz.Principal, id uint) error

	ListTrafficZones(ctx context.Context) ([]models.TrafficZone, error)
	CreateTrafficZone(ctx context.Context, p authz.Principal, z *models.TrafficZone) error
	DeleteTrafficZone(ctx context.Context, p authz.Principal, id uint) error

	// ListNeighborhoods returns the neighborhoods of a traffic zone, or all
	// of them when zoneID is 0.
	ListNeighborhoods(ctx context.Context, zoneID uint) ([]models.Neighborhood, error)
	CreateNeighborhood(ctx context.Context, p authz.Principal, n *models.Neighborhood) error
	DeleteNeighborhood(ctx context.Context, p authz.Principal, id uint) error

	ListRuralSectors(ctx context.Context) ([]models.RuralSector, error)
	CreateRuralSector(ctx context.Context, p authz.Principal, s *models.RuralSector) error
	DeleteRuralSector(ctx context.Context, p authz.Principal, id uint) error

	// ListHypotheses filters by category unless category is empty.
	ListHypotheses(ctx context.Context, category models.HypothesisCategory) ([]models.Hypothesis, error)
	CreateHypothesis(ctx context.Context, p authz.Principal, h *models.Hypothesis) error
	DeleteHypothesis(ctx context.Context, p authz.Principal, id uint) error
}

type referenceService struct {
	db      *gorm.DB
	cache   *cache.Cache
	metrics *metrics.RegistryMetrics
}

// NewReferenceService returns a ReferenceService whose list results are
// cached for ttl. Any write flushes the cache.
func NewReferenceService(db *gorm.DB, ttl time.Duration, m *metrics.RegistryMetrics) ReferenceService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &referenceService{
		db:      db,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func cacheKey(prefix string, params ...any) string {
	key := prefix
	for _, param := range params {
		key += ":" + fmt.Sprintf("%v", param)
	}
	return key
}

// cachedList serves key from the cache or loads it with load.
func cachedList[T any](s *referenceService, key string, load func() ([]T, error)) ([]T, error) {
	name, _, _ := strings.Cut(key, ":")
	if v, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(name, true)
		return v.([]T), nil
	}
	s.metrics.RecordCacheLookup(name, false)

	items, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, items)
	return items, nil
}

func (s *referenceService) requireManage(p authz.Principal) error {
	if !p.Can(authz.ManageReferences) {
		return ErrForbidden
	}
	return nil
}

func (s *referenceService) create(ctx context.Context, p authz.Principal, value any) error {
	if err := s.requireManage(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(value).Error; err != nil {
		return translateDBError(err)
	}
	s.cache.Flush()
	return nil
}

// deleteUnreferenced removes the row with primary key id from model's table
// unless an accident still matches refQuery. cascade, when set, runs first
// inside the same transaction.
func (s *referenceService) deleteUnreferenced(ctx context.Context, p authz.Principal, model any, id uint, cascade func(tx *gorm.DB) error, refQuery string, refArgs ...any) error {
	if err := s.requireManage(p); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(model, id).Error; err != nil {
			return translateDBError(err)
		}

		var refs int64
		if err := tx.Model(&models.Accident{}).Where(refQuery, refArgs...).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: %d accident(s)", ErrProtectedReference, refs)
		}
		if cascade != nil {
			if err := cascade(tx); err != nil {
				return err
			}
		}

		return translateDBError(tx.Delete(model).Error)
	})
	if err != nil {
		return err
	}
	s.cache.Flush()
	return nil
}

func (s *referenceService) ListAgents(ctx context.Context) ([]models.Agent, error) {
	return cachedList(s, cacheKey("agents"), func() ([]models.Agent, error) {
		var agents []models.Agent
		err := s.db.WithContext(ctx).Order("name").Find(&agents).Error
		return agents, err
	})
}

func (s *referenceService) CreateAgent(ctx context.Context, p authz.Principal, a *models.Agent) error {
	a.Name = strings.ToUpper(strings.TrimSpace(a.Name))
	if a.Name == "" {
		return newValidationError("name", "is required")
	}
	return s.create(ctx, p, a)
}

func (s *referenceService) DeleteAgent(ctx context.Context, p authz.Principal, id uint) error {
	return s.deleteUnreferenced(ctx, p, &models.Agent{}, id, nil, "agent_id = ?", id)
}

func (s *referenceService) ListTrafficZones(ctx context.Context) ([]models.TrafficZone, error) {
	return cachedList(s, cacheKey("zones"), func() ([]models.TrafficZone, error) {
		var zones []models.TrafficZone
		err := s.db.WithContext(ctx).Order("code").Find(&zones).Error
		return zones, err
	})
}

func (s *referenceService) CreateTrafficZone(ctx context.Context, p authz.Principal, z *models.TrafficZone) error {
	z.Name = strings.TrimSpace(z.Name)
	if z.Name == "" {
		return newValidationError("name", "is required")
	}
	return s.create(ctx, p, z)
}

// DeleteTrafficZone removes the zone and its neighborhoods when no accident
// points at either.
func (s *referenceService) DeleteTrafficZone(ctx context.Context, p authz.Principal, id uint) error {
	inZone := s.db.Model(&models.Neighborhood{}).Select("neighborhood_id").Where("traffic_zone_id = ?", id)
	dropNeighborhoods := func(tx *gorm.DB) error {
		return tx.Where("traffic_zone_id = ?", id).Delete(&models.Neighborhood{}).Error
	}
	return s.deleteUnreferenced(ctx, p, &models.TrafficZone{}, id, dropNeighborhoods,
		"traffic_zone_id = ? OR neighborhood_id IN (?)", id, inZone)
}

func (s *referenceService) ListNeighborhoods(ctx context.Context, zoneID uint) ([]models.Neighborhood, error) {
	return cachedList(s, cacheKey("neighborhoods", zoneID), func() ([]models.Neighborhood, error) {
		var neighborhoods []models.Neighborhood
		q := s.db.WithContext(ctx).Order("name")
		if zoneID != 0 {
			q = q.Where("traffic_zone_id = ?", zoneID)
		}
		err := q.Find(&neighborhoods).Error
		return neighborhoods, err
	})
}

func (s *referenceService) CreateNeighborhood(ctx context.Context, p authz.Principal, n *models.Neighborhood) error {
	n.Name = strings.TrimSpace(n.Name)
	errs := fieldErrors{}
	if n.Name == "" {
		errs.add("name", "is required")
	}
	if n.TrafficZoneID == 0 {
		errs.add("traffic_zone_id", "is required")
	} else {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.TrafficZone{}).Where("traffic_zone_id = ?", n.TrafficZoneID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			errs.add("traffic_zone_id", "unknown traffic zone %d", n.TrafficZoneID)
		}
	}
	if err := errs.err(); err != nil {
		return err
	}
	return s.create(ctx, p, n)
}

func (s *referenceService) DeleteNeighborhood(ctx context.Context, p authz.Principal, id uint) error {
	return s.deleteUnreferenced(ctx, p, &models.Neighborhood{}, id, nil, "neighborhood_id = ?", id)
}

func (s *referenceService) ListRuralSectors(ctx context.Context) ([]models.RuralSector, error) {
	return cachedList(s, cacheKey("rural_sectors"), func() ([]models.RuralSector, error) {
		var sectors []models.RuralSector
		err := s.db.WithContext(ctx).Order("name").Find(&sectors).Error
		return sectors, err
	})
}

func (s *referenceService) CreateRuralSector(ctx context.Context, p authz.Principal, sec *models.RuralSector) error {
	sec.Name = strings.TrimSpace(sec.Name)
	if sec.Name == "" {
		return newValidationError("name", "is required")
	}
	return s.create(ctx, p, sec)
}

func (s *referenceService) DeleteRuralSector(ctx context.Context, p authz.Principal, id uint) error {
	return s.deleteUnreferenced(ctx, p, &models.RuralSector{}, id, nil, "rural_sector_id = ?", id)
}

func (s *referenceService) ListHypotheses(ctx context.Context, category models.HypothesisCategory) ([]models.Hypothesis, error) {
	if category != "" && !category.Valid() {
		return nil, newValidationError("category", "unknown hypothesis category")
	}
	return cachedList(s, cacheKey("hypotheses", category), func() ([]models.Hypothesis, error) {
		var hs []models.Hypothesis
		q := s.db.WithContext(ctx).Order("category").Order("code")
		if category != "" {
			q = q.Where("category = ?", category)
		}
		err := q.Find(&hs).Error
		return hs, err
	})
}

func (s *referenceService) CreateHypothesis(ctx context.Context, p authz.Principal, h *models.Hypothesis) error {
	h.Code = strings.TrimSpace(h.Code)
	h.Description = strings.TrimSpace(h.Description)

	errs := fieldErrors{}
	if !h.Category.Valid() {
		errs.add("category", "unknown hypothesis category %q", h.Category)
	}
	if h.Code == "" {
		errs.add("code", "is required")
	}
	if h.Description == "" {
		errs.add("description", "is required")
	}
	if err := errs.err(); err != nil {
		return err
	}
	return s.create(ctx, p, h)
}

func (s *referenceService) DeleteHypothesis(ctx context.Context, p authz.Principal, id uint) error {
	cols := make([]string, 0, 10)
	args := make([]any, 0, 10)
	for _, slot := range (&models.Accident{}).HypothesisSlots() {
		cols = append(cols, slot.Field+" = ?")
		args = append(args, id)
	}
	return s.deleteUnreferenced(ctx, p, &models.Hypothesis{}, id, nil, strings.Join(cols, " OR "), args...)
}
