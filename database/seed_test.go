package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekdhawan/gravimetry-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const catalogCSV = `time,latitude,longitude,depth,mag,magType,nst,gap,dmin,rms,net,id,updated,place,type
2023-06-01T12:00:00Z,10.5,70.2,33.0,4.5,mb,20,110,1.2,0.8,us,us7000abcd,2023-06-02T00:00:00Z,"offshore region",earthquake
2023-06-03T08:30:00Z,11.1,71.0,10.0,5.2,mww,45,80,0.5,0.6,us,us7000efgh,2023-06-04T00:00:00Z,"inland region",earthquake
bad-time,12,72,5,3.1,mb,10,200,2,1,us,us7000bad,,skipped row,earthquake
`

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Earthquake{}))
	return db
}

func TestSeedEarthquakeCatalog(t *testing.T) {
	db := newSeedTestDB(t)

	csvPath := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(catalogCSV), 0o644))
	t.Setenv("EARTHQUAKE_CSV", csvPath)

	require.NoError(t, seedEarthquakeCatalog(db))

	var quakes []model.Earthquake
	require.NoError(t, db.Order("time").Find(&quakes).Error)
	require.Len(t, quakes, 2, "row with invalid time is skipped")

	assert.Equal(t, "us7000abcd", quakes[0].ID)
	assert.Equal(t, 4.5, quakes[0].Mag)
	assert.Equal(t, "offshore region", quakes[0].Place)
	assert.Equal(t, "mb", quakes[0].MagType)
	require.NotNil(t, quakes[0].Updated)

	// Re-seeding is a no-op rather than a duplicate-key failure.
	require.NoError(t, seedEarthquakeCatalog(db))
	var count int64
	require.NoError(t, db.Model(&model.Earthquake{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSeedEarthquakeCatalogMissingColumn(t *testing.T) {
	db := newSeedTestDB(t)

	csvPath := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("time,latitude\n2023-06-01T12:00:00Z,10\n"), 0o644))
	t.Setenv("EARTHQUAKE_CSV", csvPath)

	assert.Error(t, seedEarthquakeCatalog(db))
}

func TestSeedAdminUser(t *testing.T) {
	db := newSeedTestDB(t)

	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "admin-password")

	require.NoError(t, seedAdminUser(db))

	var user model.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&user).Error)
	assert.True(t, user.IsVerified)
	assert.NotEqual(t, "admin-password", user.PasswordHash)

	// Idempotent.
	require.NoError(t, seedAdminUser(db))
	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedSkipsWhenUnset(t *testing.T) {
	db := newSeedTestDB(t)

	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("EARTHQUAKE_CSV", "")

	require.NoError(t, RunSeeds(db))

	var users, quakes int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Earthquake{}).Count(&quakes).Error)
	assert.Zero(t, users)
	assert.Zero(t, quakes)
}
