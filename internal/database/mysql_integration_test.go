//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/config"
	"github.com/1989Cristianq/modelodatos/internal/logging"
	"github.com/1989Cristianq/modelodatos/internal/models"
)

func TestMigrateAndSeed_MySQL(t *testing.T) {
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0.36",
		mysql.WithDatabase("accidentes"),
		mysql.WithUsername("transito"),
		mysql.WithPassword("secreto"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	db, err := Connect(config.DatabaseConfig{
		Driver:       "mysql",
		Host:         host,
		Port:         port.Port(),
		User:         "transito",
		Password:     "secreto",
		Name:         "accidentes",
		Timezone:     "UTC",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(ctx, db))
	n, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, len(models.DefaultAgents), n)

	err = db.Create(&models.Agent{Name: models.DefaultAgents[0]}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = db.Create(&models.Neighborhood{Name: "Huérfano", TrafficZoneID: 42}).Error
	require.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}
