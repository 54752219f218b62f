package services

import (
	"context"

	"github.com/vivekdhawan/gravimetry-api/model"
	"github.com/vivekdhawan/gravimetry-api/services/numeric"
	"github.com/vivekdhawan/gravimetry-api/utils/apperror"
	"github.com/vivekdhawan/gravimetry-api/utils/plotly"
)

// DefaultGridResolution is the interpolation grid size when the caller
// supplies none.
const DefaultGridResolution = 100

// Cluster partitions the dataset into nClusters groups over the four
// feature columns and persists only the cluster column. The underlying
// k-means run is seeded, so repeated calls label identically.
func (s *GravityService) Cluster(ctx context.Context, nClusters int) ([]model.GravityRecord, error) {
	if nClusters < 1 {
		return nil, apperror.Validation("n_clusters must be at least 1.")
	}

	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	labels, err := numeric.KMeans(features(records), nClusters)
	if err != nil {
		return nil, apperror.Model("K-Means clustering failed", err)
	}

	values := make([]interface{}, len(records))
	for i := range records {
		label := labels[i]
		records[i].Cluster = &label
		values[i] = label
	}

	if err := s.updateColumn(ctx, "cluster", records, values); err != nil {
		return nil, err
	}
	return records, nil
}

// DetectAnomalies labels every row -1 (anomaly) or 1 (normal) with a seeded
// isolation forest and persists only the anomaly column. Contamination is
// the expected outlier fraction, exclusive on both ends.
func (s *GravityService) DetectAnomalies(ctx context.Context, contamination float64) ([]model.GravityRecord, error) {
	if contamination <= 0 || contamination >= 0.5 {
		return nil, apperror.Validation("Contamination must be between 0 and 0.5.")
	}

	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	labels, err := numeric.IsolationForest(features(records), contamination)
	if err != nil {
		return nil, apperror.Model("Isolation Forest anomaly detection failed", err)
	}

	values := make([]interface{}, len(records))
	for i := range records {
		label := labels[i]
		records[i].Anomaly = &label
		values[i] = label
	}

	if err := s.updateColumn(ctx, "anomaly", records, values); err != nil {
		return nil, err
	}
	return records, nil
}

// coordinates extracts the point geometry of the dataset.
func coordinates(records []model.GravityRecord) (lats, lons []float64) {
	lats = make([]float64, len(records))
	lons = make([]float64, len(records))
	for i, r := range records {
		lats[i] = r.Latitude
		lons[i] = r.Longitude
	}
	return lats, lons
}

// MapBouguer renders the Bouguer anomaly scatter map. The bouguer column
// must have been derived first.
func (s *GravityService) MapBouguer(ctx context.Context) (*plotly.Figure, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(records))
	lats := make([]float64, 0, len(records))
	lons := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Bouguer != nil {
			values = append(values, *r.Bouguer)
			lats = append(lats, r.Latitude)
			lons = append(lons, r.Longitude)
		}
	}
	if len(values) == 0 {
		return nil, apperror.Precondition("Bouguer anomaly not calculated. Please run /gravity/bouguer-anomaly first.")
	}

	fig := plotly.ScatterMapContinuous("Bouguer Anomaly Map", "bouguer", lats, lons, values)
	return &fig, nil
}

// MapAnomaly renders the anomaly detection scatter map with the fixed
// discrete color mapping {-1: red, 1: blue}.
func (s *GravityService) MapAnomaly(ctx context.Context) (*plotly.Figure, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	labels := make([]int, 0, len(records))
	lats := make([]float64, 0, len(records))
	lons := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Anomaly != nil {
			labels = append(labels, *r.Anomaly)
			lats = append(lats, r.Latitude)
			lons = append(lons, r.Longitude)
		}
	}
	if len(labels) == 0 {
		return nil, apperror.Precondition("Anomaly detection not performed. Please run /gravity/anomaly-detection first.")
	}

	fig := plotly.ScatterMapDiscrete("Gravity Anomaly Detection", lats, lons, labels,
		map[int]string{-1: "red", 1: "blue"},
		map[int]string{-1: "anomaly", 1: "normal"})
	return &fig, nil
}

// MapClusters renders the k-means clustering scatter map with default
// categorical coloring.
func (s *GravityService) MapClusters(ctx context.Context) (*plotly.Figure, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	labels := make([]int, 0, len(records))
	lats := make([]float64, 0, len(records))
	lons := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Cluster != nil {
			labels = append(labels, *r.Cluster)
			lats = append(lats, r.Latitude)
			lons = append(lons, r.Longitude)
		}
	}
	if len(labels) == 0 {
		return nil, apperror.Precondition("K-Means clustering not performed. Please run /gravity/kmeans-clusters first.")
	}

	fig := plotly.ScatterMapCategorical("Gravity Data K-Means Clusters", "cluster", lats, lons, labels)
	return &fig, nil
}

// MapInterpolated interpolates the raw gravity values onto a regular grid
// spanning the data's bounding box and renders a contour figure.
func (s *GravityService) MapInterpolated(ctx context.Context, gridResolution int) (*plotly.Figure, error) {
	if gridResolution <= 0 {
		gridResolution = DefaultGridResolution
	}

	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	lats, lons := coordinates(records)
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Gravity
	}

	grid, err := numeric.InterpolateCubicGrid(lats, lons, values, gridResolution)
	if err != nil {
		return nil, apperror.Model("Gravity interpolation failed", err)
	}

	fig := plotly.Contour("Interpolated Gravity Map", "Gravity (mGal)", "Longitude", "Latitude",
		grid.Lon, grid.Lat, grid.Z)
	return &fig, nil
}
