package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/1989Cristianq/modelodatos/internal/config"
	"github.com/1989Cristianq/modelodatos/internal/logging"
	"github.com/1989Cristianq/modelodatos/internal/models"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "accidentes.db"),
	}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestMigrateAndSeed_SQLite(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	n, err := Seed(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, len(models.DefaultAgents), n)

	n, err = Seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding twice inserts nothing")

	var count int64
	require.NoError(t, db.Model(&models.Agent{}).Count(&count).Error)
	assert.EqualValues(t, len(models.DefaultAgents), count)
}

type foreignKey struct {
	Table    string
	From     string
	To       string
	OnDelete string
}

func foreignKeys(t *testing.T, db *gorm.DB, table string) map[string]foreignKey {
	t.Helper()
	var rows []foreignKey
	require.NoError(t, db.Raw("PRAGMA foreign_key_list(" + table + ")").Scan(&rows).Error)
	byColumn := make(map[string]foreignKey, len(rows))
	for _, fk := range rows {
		byColumn[fk.From] = fk
	}
	return byColumn
}

func TestMigrate_ForeignKeysPointAtReferencedTables(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(context.Background(), db))

	for _, table := range []string{"users", "agents", "traffic_zones", "rural_sectors", "hypotheses"} {
		assert.Empty(t, foreignKeys(t, db, table), table)
	}

	assert.Equal(t, map[string]foreignKey{
		"traffic_zone_id": {Table: "traffic_zones", From: "traffic_zone_id", To: "traffic_zone_id", OnDelete: "CASCADE"},
	}, foreignKeys(t, db, "neighborhoods"))

	accidents := foreignKeys(t, db, "accidents")
	want := map[string]foreignKey{
		"user_id":         {Table: "users", From: "user_id", To: "user_id", OnDelete: "CASCADE"},
		"agent_id":        {Table: "agents", From: "agent_id", To: "agent_id", OnDelete: "RESTRICT"},
		"traffic_zone_id": {Table: "traffic_zones", From: "traffic_zone_id", To: "traffic_zone_id", OnDelete: "RESTRICT"},
		"neighborhood_id": {Table: "neighborhoods", From: "neighborhood_id", To: "neighborhood_id", OnDelete: "RESTRICT"},
		"rural_sector_id": {Table: "rural_sectors", From: "rural_sector_id", To: "rural_sector_id", OnDelete: "RESTRICT"},
	}
	for _, slot := range (&models.Accident{}).HypothesisSlots() {
		want[slot.Field] = foreignKey{Table: "hypotheses", From: slot.Field, To: "hypothesis_id", OnDelete: "RESTRICT"}
	}
	assert.Equal(t, want, accidents)

	assert.Equal(t, "accidents", foreignKeys(t, db, "vehicle_involvements")["accident_id"].Table)
	assert.Equal(t, "vehicle_involvements", foreignKeys(t, db, "fatalities")["vehicle_id"].Table)
}

func TestConnect_SQLiteEnforcesForeignKeys(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(context.Background(), db))

	err := db.Create(&models.Neighborhood{Name: "Huérfano", TrafficZoneID: 42}).Error
	require.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	user := models.User{Username: "agente1", Role: models.RoleFieldAgent}
	require.NoError(t, db.Create(&user).Error)
	agent := models.Agent{Name: "WILSON SAIZ"}
	require.NoError(t, db.Create(&agent).Error)
	require.NoError(t, db.Create(&models.TrafficZone{Code: 1, Name: "ZAT 1"}).Error)
	require.NoError(t, db.Create(&models.RuralSector{Name: "La Pradera"}).Error)

	accident := models.Accident{
		UserID:        user.UserID,
		AgentID:       agent.AgentID,
		IPATNumber:    "FK-1",
		IncidentDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		TotalVehicles: 1,
		RoadType:      models.RoadCalle,
		RoadNumber:    "10",
		Area:          models.AreaUrban,
		Class:         models.ClassChoque,
		RoadCategory:  "URBANA",
	}
	require.NoError(t, db.Create(&accident).Error)

	orphan := accident
	orphan.AccidentID = 0
	orphan.IPATNumber = "FK-2"
	orphan.AgentID = 999
	require.ErrorIs(t, db.Create(&orphan).Error, gorm.ErrForeignKeyViolated)

	require.ErrorIs(t, db.Delete(&agent).Error, gorm.ErrForeignKeyViolated, "a referenced agent cannot be deleted")
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"}, logging.Discard())
	require.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "3306",
		User:     "transito",
		Password: "secreto",
		Name:     "accidentes",
		Timezone: "UTC",
	})
	assert.True(t, strings.HasPrefix(dsn, "transito:secreto@tcp(db:3306)/accidentes?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "x.db?_foreign_keys=1&_busy_timeout=5000", SQLiteDSN("x.db"))
}
