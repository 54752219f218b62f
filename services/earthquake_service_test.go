package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekdhawan/gravimetry-api/model"
	"gorm.io/gorm"
)

func seedEarthquakes(t *testing.T, db *gorm.DB) {
	t.Helper()

	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	quakes := []model.Earthquake{
		{ID: "eq1", Time: base, Latitude: 10, Longitude: 70, Depth: 5, Mag: 3.0, Place: "near A"},
		{ID: "eq2", Time: base.AddDate(0, 0, 10), Latitude: 11, Longitude: 71, Depth: 50, Mag: 5.5, Place: "near B"},
		{ID: "eq3", Time: base.AddDate(0, 1, 0), Latitude: 12, Longitude: 72, Depth: 120, Mag: 6.8, Place: "near C"},
	}
	require.NoError(t, db.Create(&quakes).Error)
}

func TestEarthquakeQueryTimeWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEarthquakeService(db)
	seedEarthquakes(t, db)

	quakes, err := svc.Query(context.Background(), EarthquakeQuery{
		StartDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, quakes, 2)

	// Ordered by time ascending.
	assert.Equal(t, "eq1", quakes[0].ID)
	assert.Equal(t, "eq2", quakes[1].ID)
}

func TestEarthquakeQueryMagnitudeBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewEarthquakeService(db)
	seedEarthquakes(t, db)

	minMag := 5.0
	maxMag := 6.0
	quakes, err := svc.Query(context.Background(), EarthquakeQuery{
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MinMag:    &minMag,
		MaxMag:    &maxMag,
	})
	require.NoError(t, err)
	require.Len(t, quakes, 1)
	assert.Equal(t, "eq2", quakes[0].ID)
}

func TestEarthquakeQueryDepthBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewEarthquakeService(db)
	seedEarthquakes(t, db)

	minDepth := 100.0
	quakes, err := svc.Query(context.Background(), EarthquakeQuery{
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MinDepth:  &minDepth,
	})
	require.NoError(t, err)
	require.Len(t, quakes, 1)
	assert.Equal(t, "eq3", quakes[0].ID)
}

func TestEarthquakeQueryNoMatches(t *testing.T) {
	db := newTestDB(t)
	svc := NewEarthquakeService(db)
	seedEarthquakes(t, db)

	quakes, err := svc.Query(context.Background(), EarthquakeQuery{
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, quakes)
}
