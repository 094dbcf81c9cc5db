package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/authz"
	"github.com/1989Cristianq/modelodatos/internal/metrics"
	"github.com/1989Cristianq/modelodatos/internal/models"
)

// UserService mirrors upstream identities into the users table.
type UserService interface {
	// Resolve returns the principal for username, creating the user row on
	// first sight and keeping its role and full name in sync.
	Resolve(ctx context.Context, username, fullName string, role models.Role) (authz.Principal, error)
	Count(ctx context.Context) (int64, error)
}

type userService struct {
	db      *gorm.DB
	cache   *cache.Cache
	metrics *metrics.RegistryMetrics
}

func NewUserService(db *gorm.DB, ttl time.Duration, m *metrics.RegistryMetrics) UserService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &userService{db: db, cache: cache.New(ttl, 2*ttl), metrics: m}
}

func (s *userService) Resolve(ctx context.Context, username, fullName string, role models.Role) (authz.Principal, error) {
	username = strings.TrimSpace(username)
	fullName = strings.TrimSpace(fullName)
	role = models.Role(strings.ToUpper(strings.TrimSpace(string(role))))

	errs := fieldErrors{}
	if username == "" {
		errs.add("username", "is required")
	}
	if !role.Valid() {
		errs.add("role", "unknown role %q", role)
	}
	if err := errs.err(); err != nil {
		return authz.Principal{}, err
	}

	key := cacheKey("user", username, role, fullName)
	if v, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup("user", true)
		return v.(authz.Principal), nil
	}
	s.metrics.RecordCacheLookup("user", false)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).Take(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{Username: username, FullName: fullName, Role: role}
			return tx.Create(&user).Error
		case err != nil:
			return err
		case user.Role != role || (fullName != "" && user.FullName != fullName):
			user.Role = role
			if fullName != "" {
				user.FullName = fullName
			}
			return tx.Save(&user).Error
		default:
			return nil
		}
	})
	if err != nil {
		return authz.Principal{}, translateDBError(err)
	}

	p := authz.Principal{UserID: user.UserID, Username: user.Username, Role: user.Role}
	s.cache.SetDefault(key, p)
	return p, nil
}

func (s *userService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
