package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1989Cristianq/modelodatos/internal/models"
)

func TestResolve_CreatesAndSyncsUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, time.Minute, nil)
	ctx := context.Background()

	p, err := svc.Resolve(ctx, " jrodriguez ", "Julián Rodríguez", "usuario")
	require.NoError(t, err)
	assert.NotZero(t, p.UserID)
	assert.Equal(t, "jrodriguez", p.Username)
	assert.Equal(t, models.RoleFieldAgent, p.Role)

	again, err := svc.Resolve(ctx, "jrodriguez", "Julián Rodríguez", models.RoleFieldAgent)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	promoted, err := svc.Resolve(ctx, "jrodriguez", "", models.RoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, promoted.UserID)
	assert.Equal(t, models.RoleSupervisor, promoted.Role)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "jrodriguez").Take(&stored).Error)
	assert.Equal(t, models.RoleSupervisor, stored.Role)
	assert.Equal(t, "Julián Rodríguez", stored.DisplayName())

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestResolve_Rejects(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, time.Minute, nil)

	_, err := svc.Resolve(context.Background(), "", "", "ROOT")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "role")
}

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCategory
	}{
		{nil, ""},
		{newValidationError("x", "bad"), CategoryValidation},
		{fmt.Errorf("wrap: %w", ErrNotFound), CategoryNotFound},
		{ErrDuplicateIPAT, CategoryConflict},
		{ErrDuplicate, CategoryConflict},
		{ErrForbidden, CategoryForbidden},
		{ErrProtectedReference, CategoryProtected},
		{ErrStorage, CategoryStorage},
		{errors.New("boom"), CategoryInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.err), "%v", tt.err)
	}
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"road_number": "is required", "area": "unknown"}}
	assert.Equal(t, "validation failed: area: unknown; road_number: is required", err.Error())
}
