package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/models"
	"github.com/1989Cristianq/modelodatos/internal/storage"
)

const sketchContentType = "application/pdf"

// Upload describes an incoming sketch document.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService stores the sketch (croquis) of an accident. The blob
// is written before the row points at it, so a saved record never names a
// missing object.
type AttachmentService interface {
	AttachSketch(ctx context.Context, p authz.Principal, accidentID uint, up Upload) (*models.Accident, error)
	OpenSketch(ctx context.Context, accidentID uint) (io.ReadCloser, string, error)
	RemoveSketch(ctx context.Context, p authz.Principal, accidentID uint) error
}

type attachmentService struct {
	db       *gorm.DB
	store    storage.Store
	maxBytes int64
	metrics  *metrics.RegistryMetrics
	log      *slog.Logger
}

func NewAttachmentService(db *gorm.DB, store storage.Store, maxBytes int64, m *metrics.RegistryMetrics, log *slog.Logger) AttachmentService {
	if log == nil {
		log = slog.Default()
	}
	return &attachmentService{
		db:       db,
		store:    store,
		maxBytes: maxBytes,
		metrics:  m,
		log:      log.With("service", "attachments"),
	}
}

func (s *attachmentService) validateUpload(up Upload) error {
	errs := fieldErrors{}
	if strings.ToLower(filepath.Ext(up.FileName)) != ".pdf" {
		errs.add("sketch", "only .pdf files are accepted")
	}
	if up.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(up.ContentType); err != nil || mt != sketchContentType {
			errs.add("sketch", "content type must be %s", sketchContentType)
		}
	}
	if up.Size <= 0 {
		errs.add("sketch", "file is empty")
	} else if s.maxBytes > 0 && up.Size > s.maxBytes {
		errs.add("sketch", "file exceeds %d bytes", s.maxBytes)
	}
	return errs.err()
}

func (s *attachmentService) AttachSketch(ctx context.Context, p authz.Principal, accidentID uint, up Upload) (*models.Accident, error) {
	a, err := s.attach(ctx, p, accidentID, up)
	s.metrics.RecordSketchUpload(err)
	return a, err
}

func (s *attachmentService) attach(ctx context.Context, p authz.Principal, accidentID uint, up Upload) (*models.Accident, error) {
	if err := s.validateUpload(up); err != nil {
		return nil, err
	}

	var a models.Accident
	if err := s.db.WithContext(ctx).Where("accident_id = ?", accidentID).Take(&a).Error; err != nil {
		return nil, translateDBError(err)
	}
	if !p.CanEditAccident(&a) {
		return nil, ErrForbidden
	}

	key := storage.SketchKey(accidentID, ".pdf")
	body := up.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes)
	}
	if err := s.store.Put(ctx, key, body, up.Size, sketchContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var oldKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Accident
		if err := lockRow(tx, &current, accidentID); err != nil {
			return err
		}
		oldKey = current.SketchKey
		return tx.Model(&models.Accident{}).
			Where("accident_id = ?", accidentID).
			UpdateColumn("sketch_key", key).Error
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		s.discard(ctx, oldKey)
	}
	s.log.InfoContext(ctx, "sketch attached", "accident_id", accidentID, "key", key, "size", up.Size)

	a.SketchKey = key
	return &a, nil
}

func (s *attachmentService) OpenSketch(ctx context.Context, accidentID uint) (io.ReadCloser, string, error) {
	var a models.Accident
	if err := s.db.WithContext(ctx).Select("accident_id", "ipat_number", "sketch_key").Where("accident_id = ?", accidentID).Take(&a).Error; err != nil {
		return nil, "", translateDBError(err)
	}
	if a.SketchKey == "" {
		return nil, "", ErrNotFound
	}

	rc, err := s.store.Open(ctx, a.SketchKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rc, "croquis_" + a.IPATNumber + ".pdf", nil
}

func (s *attachmentService) RemoveSketch(ctx context.Context, p authz.Principal, accidentID uint) error {
	var oldKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Accident
		if err := lockRow(tx, &current, accidentID); err != nil {
			return err
		}
		if !p.CanEditAccident(&current) {
			return ErrForbidden
		}
		if current.SketchKey == "" {
			return ErrNotFound
		}
		oldKey = current.SketchKey
		return tx.Model(&models.Accident{}).
			Where("accident_id = ?", accidentID).
			UpdateColumn("sketch_key", "").Error
	})
	if err != nil {
		return err
	}
	s.discard(ctx, oldKey)
	return nil
}

// discard removes an object whose reference is gone. Failures only leave
// an orphan behind, so they are logged.
func (s *attachmentService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.log.WarnContext(ctx, "orphaned sketch", "key", key, "error", err)
	}
}
