package services

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/report"
)

// ExportFilter narrows an export. Zero values mean "any". From and To are
// inclusive and must be given together.
type ExportFilter struct {
	From    *time.Time
	To      *time.Time
	Year    int
	Month   int
	AgentID uint
	Area    models.Area
}

func (f ExportFilter) validate() error {
	errs := fieldErrors{}
	if (f.From == nil) != (f.To == nil) {
		errs.add("date_range", "both ends of the date range are required")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs.add("date_range", "end date is before start date")
	}
	if f.Month < 0 || f.Month > 12 {
		errs.add("month", "must be between 1 and 12")
	}
	if f.Year < 0 {
		errs.add("year", "must be positive")
	}
	if f.Area != "" && !f.Area.Valid() {
		errs.add("area", "unknown value %q", f.Area)
	}
	return errs.err()
}

func (f ExportFilter) apply(q *gorm.DB) *gorm.DB {
	if f.From != nil && f.To != nil {
		q = q.Where("incident_date BETWEEN ? AND ?", models.DateOnly(*f.From), models.DateOnly(*f.To))
	}
	if f.Year != 0 {
		q = q.Where("incident_year = ?", f.Year)
	}
	if f.Month != 0 {
		q = q.Where("incident_month = ?", f.Month)
	}
	if f.AgentID != 0 {
		q = q.Where("agent_id = ?", f.AgentID)
	}
	if f.Area != "" {
		q = q.Where("area = ?", f.Area)
	}
	return q
}

// Export is a rendered workbook ready to download.
type Export struct {
	FileName string
	Rows     int
	Data     []byte
}

type Dashboard struct {
	TotalAccidents     int64             `json:"total_accidents"`
	AccidentsThisMonth int64             `json:"accidents_this_month"`
	TotalUsers         int64             `json:"total_users"`
	Recent             []models.Accident `json:"recent"`
}

// ReportService produces exports and dashboard figures.
type ReportService interface {
	// Export renders the accidents matching f. No match is ErrNotFound.
	Export(ctx context.Context, p authz.Principal, f ExportFilter) (*Export, error)
	Dashboard(ctx context.Context, p authz.Principal) (*Dashboard, error)
}

type reportService struct {
	db          *gorm.DB
	recentLimit int
	now         func() time.Time
	metrics     *metrics.RegistryMetrics
	log         *slog.Logger
}

func NewReportService(db *gorm.DB, recentLimit int, m *metrics.RegistryMetrics, log *slog.Logger) ReportService {
	if recentLimit < 1 {
		recentLimit = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &reportService{
		db:          db,
		recentLimit: recentLimit,
		now:         time.Now,
		metrics:     m,
		log:         log.With("service", "reports"),
	}
}

func (s *reportService) Export(ctx context.Context, p authz.Principal, f ExportFilter) (*Export, error) {
	if !p.Can(authz.ExportReports) {
		return nil, ErrForbidden
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	var accidents []models.Accident
	err := f.apply(s.db.WithContext(ctx).Model(&models.Accident{})).
		Preload("Agent").
		Preload("User").
		Preload("Neighborhood").
		Preload("RuralSector").
		Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Order("incident_date").
		Order("incident_time").
		Order("accident_id").
		Find(&accidents).Error
	if err != nil {
		s.metrics.RecordExport(0, err)
		return nil, err
	}
	if len(accidents) == 0 {
		return nil, ErrNotFound
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, accidents); err != nil {
		s.metrics.RecordExport(0, err)
		return nil, err
	}
	s.metrics.RecordExport(len(accidents), nil)
	s.log.InfoContext(ctx, "report exported", "rows", len(accidents), "user", p.Username)

	return &Export{
		FileName: report.FileName(s.now()),
		Rows:     len(accidents),
		Data:     buf.Bytes(),
	}, nil
}

func (s *reportService) Dashboard(ctx context.Context, p authz.Principal) (*Dashboard, error) {
	if !p.Can(authz.ViewAccidents) {
		return nil, ErrForbidden
	}

	db := s.db.WithContext(ctx)
	d := &Dashboard{}
	if err := db.Model(&models.Accident{}).Count(&d.TotalAccidents).Error; err != nil {
		return nil, err
	}

	now := s.now()
	err := db.Model(&models.Accident{}).
		Where("incident_year = ? AND incident_month = ?", now.Year(), int(now.Month())).
		Count(&d.AccidentsThisMonth).Error
	if err != nil {
		return nil, err
	}

	if p.Can(authz.ViewUserStatistics) {
		if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
			return nil, err
		}
	}

	err = db.Preload("Agent").
		Preload("Neighborhood").
		Preload("RuralSector").
		Order("incident_date DESC").
		Order("incident_time DESC").
		Limit(s.recentLimit).
		Find(&d.Recent).Error
	if err != nil {
		return nil, err
	}
	return d, nil
}
