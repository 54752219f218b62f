package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekdhawan/gravimetry-api/model"
	"github.com/vivekdhawan/gravimetry-api/utils/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.PasswordResetToken{},
		&model.EmailVerificationToken{},
		&model.GravityRecord{},
		&model.Earthquake{},
		&model.CronJobLog{},
	))

	return db
}

const sampleCSV = `latitude,longitude,elevation,gravity
10.0,70.0,100.0,980000.0
10.5,70.8,150.0,980010.0
11.0,70.2,200.0,980020.0
11.5,71.5,250.0,980030.0
12.0,70.9,300.0,980040.0
`

func seedGravityData(t *testing.T, svc *GravityService) []model.GravityRecord {
	t.Helper()

	records, err := svc.ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)
	_, err = svc.ReplaceAll(context.Background(), records)
	require.NoError(t, err)

	stored, err := svc.All(context.Background())
	require.NoError(t, err)
	return stored
}

func TestParseCSV(t *testing.T) {
	svc := NewGravityService(newTestDB(t))

	records, err := svc.ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, 10.0, records[0].Latitude)
	assert.Equal(t, 70.0, records[0].Longitude)
	assert.Equal(t, 100.0, records[0].Elevation)
	assert.Equal(t, 980000.0, records[0].Gravity)
}

func TestParseCSVHeaderCaseAndOrder(t *testing.T) {
	svc := NewGravityService(newTestDB(t))

	csv := "Gravity,LATITUDE,extra,Longitude,Elevation\n980000,10,junk,70,100\n"
	records, err := svc.ParseCSV([]byte(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10.0, records[0].Latitude)
	assert.Equal(t, 980000.0, records[0].Gravity)
}

func TestParseCSVMissingColumn(t *testing.T) {
	svc := NewGravityService(newTestDB(t))

	csv := "latitude,longitude,elevation\n10,70,100\n"
	_, err := svc.ParseCSV([]byte(csv))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestParseCSVNonNumericValue(t *testing.T) {
	svc := NewGravityService(newTestDB(t))

	csv := "latitude,longitude,elevation,gravity\n10,70,abc,980000\n"
	_, err := svc.ParseCSV([]byte(csv))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestParseCSVMalformedRowMidFile(t *testing.T) {
	svc := NewGravityService(newTestDB(t))

	// Second data row has the wrong field count; the parser must reject the
	// whole file rather than truncate at the bad row.
	csv := "latitude,longitude,elevation,gravity\n" +
		"10,70,100,980000\n" +
		"11,71,150\n" +
		"12,72,200,980100\n"
	_, err := svc.ParseCSV([]byte(csv))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "Row 3")
}

func TestReplaceAllIsDestructive(t *testing.T) {
	svc := NewGravityService(newTestDB(t))
	ctx := context.Background()

	seedGravityData(t, svc)

	// A second upload replaces, never appends.
	replacement := []model.GravityRecord{
		{Latitude: 50, Longitude: 60, Elevation: 10, Gravity: 979000},
	}
	count, err := svc.ReplaceAll(ctx, replacement)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 50.0, stored[0].Latitude)
}

func TestAllEmptyDataset(t *testing.T) {
	svc := NewGravityService(newTestDB(t))

	_, err := svc.All(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.KindEmptyDataset, apperror.KindOf(err))
}

func TestClear(t *testing.T) {
	svc := NewGravityService(newTestDB(t))
	ctx := context.Background()

	seedGravityData(t, svc)
	require.NoError(t, svc.Clear(ctx))

	_, err := svc.All(ctx)
	assert.Equal(t, apperror.KindEmptyDataset, apperror.KindOf(err))
}

func TestComputeBouguer(t *testing.T) {
	svc := NewGravityService(newTestDB(t))
	ctx := context.Background()

	seedGravityData(t, svc)

	records, err := svc.ComputeBouguer(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5)

	// 980000 - 0.3086*100 + 0.0419*2.670*100
	require.NotNil(t, records[0].Bouguer)
	assert.InDelta(t, 979980.3253, *records[0].Bouguer, 1e-6)

	// Written back to storage, other derived columns untouched.
	stored, err := svc.All(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored[0].Bouguer)
	assert.InDelta(t, 979980.3253, *stored[0].Bouguer, 1e-6)
	assert.Nil(t, stored[0].Cluster)
	assert.Nil(t, stored[0].Anomaly)
}

func TestComputeDistances(t *testing.T) {
	svc := NewGravityService(newTestDB(t))
	ctx := context.Background()

	seedGravityData(t, svc)

	records, err := svc.ComputeDistances(ctx, 10.0, 70.0)
	require.NoError(t, err)

	// First row is the reference point itself.
	require.NotNil(t, records[0].DistanceKM)
	assert.InDelta(t, 0.0, *records[0].DistanceKM, 1e-9)

	require.NotNil(t, records[1].DistanceKM)
	assert.Greater(t, *records[1].DistanceKM, 0.0)

	stored, err := svc.All(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored[1].DistanceKM)
	assert.InDelta(t, *records[1].DistanceKM, *stored[1].DistanceKM, 1e-9)
}

func TestDerivationsOnEmptyDataset(t *testing.T) {
	svc := NewGravityService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.ComputeBouguer(ctx)
	assert.Equal(t, apperror.KindEmptyDataset, apperror.KindOf(err))

	_, err = svc.ComputeDistances(ctx, 0, 0)
	assert.Equal(t, apperror.KindEmptyDataset, apperror.KindOf(err))

	_, err = svc.Cluster(ctx, 3)
	assert.Equal(t, apperror.KindEmptyDataset, apperror.KindOf(err))

	_, err = svc.DetectAnomalies(ctx, 0.05)
	assert.Equal(t, apperror.KindEmptyDataset, apperror.KindOf(err))
}

func TestDerivedColumnsSurviveEachOther(t *testing.T) {
	svc := NewGravityService(newTestDB(t))
	ctx := context.Background()

	seedGravityData(t, svc)

	_, err := svc.ComputeBouguer(ctx)
	require.NoError(t, err)
	_, err = svc.Cluster(ctx, 2)
	require.NoError(t, err)

	stored, err := svc.All(ctx)
	require.NoError(t, err)
	for _, r := range stored {
		assert.NotNil(t, r.Bouguer)
		assert.NotNil(t, r.Cluster)
	}
}
