package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/vivekdhawan/gravimetry-api/model"
	"github.com/vivekdhawan/gravimetry-api/utils/apperror"
	"github.com/vivekdhawan/gravimetry-api/utils/geodesy"
	"gorm.io/gorm"
)

// RequiredColumns are the survey columns a gravity CSV must provide.
// Header matching is case-insensitive and order-independent; extra columns
// are ignored.
var RequiredColumns = []string{"latitude", "longitude", "elevation", "gravity"}

// GravityService orchestrates the gravity dataset pipeline: ingest,
// retrieval, derivations and their selective write-back.
type GravityService struct {
	db *gorm.DB
}

// NewGravityService creates a new gravity service
func NewGravityService(db *gorm.DB) *GravityService {
	return &GravityService{db: db}
}

// ParseCSV parses raw CSV bytes into gravity records.
func (s *GravityService) ParseCSV(data []byte) ([]model.GravityRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "Failed to read CSV header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	missing := []string{}
	for _, col := range RequiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.Newf(apperror.KindValidation,
			"CSV must contain the following columns: %s", strings.Join(RequiredColumns, ", "))
	}

	records := []model.GravityRecord{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.Wrap(apperror.KindValidation,
				fmt.Sprintf("Row %d is malformed", line+1), err)
		}
		line++

		values := make([]float64, len(RequiredColumns))
		for i, col := range RequiredColumns {
			idx := columns[col]
			if idx >= len(row) {
				return nil, apperror.Newf(apperror.KindValidation, "Row %d is missing a value for %s", line, col)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
			if err != nil {
				return nil, apperror.Newf(apperror.KindValidation, "Row %d has a non-numeric %s value", line, col)
			}
			values[i] = v
		}

		records = append(records, model.GravityRecord{
			Latitude:  values[0],
			Longitude: values[1],
			Elevation: values[2],
			Gravity:   values[3],
		})
	}

	return records, nil
}

// ReplaceAll atomically replaces the entire stored dataset with the given
// rows and returns the inserted row count. Upload is destructive: there is
// no merge or append mode.
func (s *GravityService) ReplaceAll(ctx context.Context, records []model.GravityRecord) (int, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.GravityRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 500).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to replace gravity data: %w", err)
	}
	return len(records), nil
}

// All returns the full current dataset. Every derivation and visualization
// depends on this precondition: an empty table is an error, not an empty
// slice.
func (s *GravityService) All(ctx context.Context) ([]model.GravityRecord, error) {
	var records []model.GravityRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load gravity data: %w", err)
	}
	if len(records) == 0 {
		return nil, apperror.EmptyDataset()
	}
	return records, nil
}

// Clear deletes the entire dataset.
func (s *GravityService) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.GravityRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear gravity data: %w", err)
	}
	return nil
}

// updateColumn writes back a single derived column for every record, keyed
// by row id, inside one transaction so a mid-loop failure rolls back rather
// than leaving a half-updated dataset. Other derived columns are never
// touched.
//
// Records lacking an id fall through to a destructive clear-and-reinsert.
// That path drops every other derived column, so it logs a warning and
// should stay a defensive fallback, not the steady state.
func (s *GravityService) updateColumn(ctx context.Context, column string, records []model.GravityRecord, values []interface{}) error {
	for _, r := range records {
		if r.ID == 0 {
			log.Printf("Warning: gravity records missing ids for %s update; clearing and re-inserting dataset", column)
			_, err := s.ReplaceAll(ctx, records)
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, r := range records {
			err := tx.Model(&model.GravityRecord{}).
				Where("id = ?", r.ID).
				Update(column, values[i]).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ComputeBouguer applies the Bouguer correction to every row and persists
// only the bouguer column.
func (s *GravityService) ComputeBouguer(ctx context.Context) ([]model.GravityRecord, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(records))
	for i := range records {
		b := geodesy.BouguerCorrection(records[i].Gravity, records[i].Elevation)
		records[i].Bouguer = &b
		values[i] = b
	}

	if err := s.updateColumn(ctx, "bouguer", records, values); err != nil {
		return nil, err
	}
	return records, nil
}

// ComputeDistances calculates the Haversine distance of every row from the
// reference point and persists only the distance_km column.
func (s *GravityService) ComputeDistances(ctx context.Context, refLat, refLon float64) ([]model.GravityRecord, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(records))
	for i := range records {
		d := geodesy.Haversine(refLat, refLon, records[i].Latitude, records[i].Longitude)
		records[i].DistanceKM = &d
		values[i] = d
	}

	if err := s.updateColumn(ctx, "distance_km", records, values); err != nil {
		return nil, err
	}
	return records, nil
}

// features projects the dataset onto the four numeric model inputs.
func features(records []model.GravityRecord) [][]float64 {
	out := make([][]float64, len(records))
	for i, r := range records {
		out[i] = []float64{r.Latitude, r.Longitude, r.Elevation, r.Gravity}
	}
	return out
}
