package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1989Cristianq/modelodatos/internal/models"
)

func TestReferenceService_CreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	err := svc.CreateAgent(ctx, f.supervisor, &models.Agent{Name: "nuevo"})
	require.ErrorIs(t, err, ErrForbidden)

	agent := &models.Agent{Name: "  carlos varon "}
	require.NoError(t, svc.CreateAgent(ctx, f.admin, agent))
	assert.Equal(t, "CARLOS VARON", agent.Name)

	err = svc.CreateAgent(ctx, f.admin, &models.Agent{Name: "Carlos Varon"})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, CategoryConflict, Category(err))
}

func TestReferenceService_ListIsRefreshedAfterWrite(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	agents, err := svc.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	require.NoError(t, svc.CreateAgent(ctx, f.admin, &models.Agent{Name: "ANDREA GUAVITA"}))

	agents, err = svc.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "ANDREA GUAVITA", agents[0].Name, "ordered by name")
}

func TestReferenceService_ListNeighborhoodsByZone(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	other := &models.TrafficZone{Code: 2, Name: "ZAT 2"}
	require.NoError(t, svc.CreateTrafficZone(ctx, f.admin, other))
	require.NoError(t, svc.CreateNeighborhood(ctx, f.admin, &models.Neighborhood{Name: "San Rafael", TrafficZoneID: other.TrafficZoneID}))

	all, err := svc.ListNeighborhoods(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inZone, err := svc.ListNeighborhoods(ctx, other.TrafficZoneID)
	require.NoError(t, err)
	require.Len(t, inZone, 1)
	assert.Equal(t, "San Rafael", inZone[0].Name)

	err = svc.CreateNeighborhood(ctx, f.admin, &models.Neighborhood{Name: "Sin zona", TrafficZoneID: 999})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "traffic_zone_id")
}

func TestReferenceService_ListHypothesesByCategory(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	road, err := svc.ListHypotheses(ctx, models.HypothesisRoad)
	require.NoError(t, err)
	require.Len(t, road, 1)
	assert.Equal(t, "301", road[0].Code)

	all, err := svc.ListHypotheses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListHypotheses(ctx, "CLIMA")
	assert.Equal(t, CategoryValidation, Category(err))
}

func TestReferenceService_ReferencedRowsAreProtected(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	a := f.urbanAccident("REF-1")
	a.RoadHypothesis1ID = ptr(f.roadHyp.HypothesisID)
	f.createAccident(t, a)

	tests := []struct {
		name string
		del  func() error
	}{
		{"agent", func() error { return svc.DeleteAgent(ctx, f.admin, f.agent.AgentID) }},
		{"neighborhood", func() error { return svc.DeleteNeighborhood(ctx, f.admin, f.neighborhood.NeighborhoodID) }},
		{"traffic zone", func() error { return svc.DeleteTrafficZone(ctx, f.admin, f.zone.TrafficZoneID) }},
		{"hypothesis", func() error { return svc.DeleteHypothesis(ctx, f.admin, f.roadHyp.HypothesisID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.del()
			require.ErrorIs(t, err, ErrProtectedReference)
			assert.Equal(t, CategoryProtected, Category(err))
		})
	}

	assert.EqualValues(t, 1, f.count(t, &models.Neighborhood{}, "1 = 1"))
	assert.EqualValues(t, 2, f.count(t, &models.Hypothesis{}, "1 = 1"))
}

func TestReferenceService_DeleteUnreferenced(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteRuralSector(ctx, f.supervisor, f.sector.RuralSectorID), ErrForbidden)
	require.NoError(t, svc.DeleteRuralSector(ctx, f.admin, f.sector.RuralSectorID))
	require.ErrorIs(t, svc.DeleteRuralSector(ctx, f.admin, f.sector.RuralSectorID), ErrNotFound)

	require.NoError(t, svc.DeleteHypothesis(ctx, f.admin, f.driverHyp.HypothesisID))
	assert.EqualValues(t, 1, f.count(t, &models.Hypothesis{}, "1 = 1"))
}

func TestReferenceService_DeleteZoneCascadesToNeighborhoods(t *testing.T) {
	f := newFixture(t)
	svc := NewReferenceService(f.db, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, svc.CreateNeighborhood(ctx, f.admin, &models.Neighborhood{Name: "La Esperanza", TrafficZoneID: f.zone.TrafficZoneID}))

	require.NoError(t, svc.DeleteTrafficZone(ctx, f.admin, f.zone.TrafficZoneID))

	assert.Zero(t, f.count(t, &models.TrafficZone{}, "1 = 1"))
	assert.Zero(t, f.count(t, &models.Neighborhood{}, "1 = 1"))

	zones, err := svc.ListTrafficZones(ctx)
	require.NoError(t, err)
	assert.Empty(t, zones)
}
