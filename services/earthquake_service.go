package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vivekdhawan/gravimetry-api/model"
	"gorm.io/gorm"
)

// EarthquakeQuery filters the earthquake catalog. The time window is
// required; the magnitude and depth bounds are optional.
type EarthquakeQuery struct {
	StartDate time.Time
	EndDate   time.Time
	MinMag    *float64
	MaxMag    *float64
	MinDepth  *float64
	MaxDepth  *float64
}

// EarthquakeService reads the earthquake catalog. Rows are populated by an
// external ingestion process (cmd/seed); the API never writes them.
type EarthquakeService struct {
	db *gorm.DB
}

// NewEarthquakeService creates a new earthquake service
func NewEarthquakeService(db *gorm.DB) *EarthquakeService {
	return &EarthquakeService{db: db}
}

// Query returns catalog records matching the filters.
func (s *EarthquakeService) Query(ctx context.Context, q EarthquakeQuery) ([]model.Earthquake, error) {
	tx := s.db.WithContext(ctx).
		Where("time >= ?", q.StartDate).
		Where("time <= ?", q.EndDate)

	if q.MinMag != nil {
		tx = tx.Where("mag >= ?", *q.MinMag)
	}
	if q.MaxMag != nil {
		tx = tx.Where("mag <= ?", *q.MaxMag)
	}
	if q.MinDepth != nil {
		tx = tx.Where("depth >= ?", *q.MinDepth)
	}
	if q.MaxDepth != nil {
		tx = tx.Where("depth <= ?", *q.MaxDepth)
	}

	var quakes []model.Earthquake
	if err := tx.Order("time").Find(&quakes).Error; err != nil {
		return nil, fmt.Errorf("failed to query earthquakes: %w", err)
	}
	return quakes, nil
}
