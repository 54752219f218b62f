package gravity

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekdhawan/gravimetry-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const surveyCSV = `latitude,longitude,elevation,gravity
10.0,70.0,100.0,980000.0
10.5,70.8,150.0,980010.0
11.0,70.2,200.0,980020.0
11.5,71.5,250.0,980030.0
12.0,70.9,300.0,980040.0
`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newGravityTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.GravityRecord{}, &model.Earthquake{}))

	handler := NewGravityHandler(db)
	earthquakes := NewEarthquakeHandler(db)

	app := fiber.New()
	grp := app.Group("/gravity")
	grp.Post("/upload-data", handler.Upload)
	grp.Get("/data", handler.Data)
	grp.Post("/clear-data", handler.Clear)
	grp.Get("/bouguer-anomaly", handler.Bouguer)
	grp.Get("/distance-from-point", handler.Distance)
	grp.Get("/kmeans-clusters", handler.Clusters)
	grp.Get("/anomaly-detection", handler.Anomalies)
	grp.Get("/plot-map-bouguer", handler.MapBouguer)
	grp.Get("/plot-map-anomaly", handler.MapAnomaly)
	grp.Get("/plot-map-clusters", handler.MapClusters)
	grp.Get("/interpolate-gravity", handler.Interpolate)
	grp.Post("/earthquakes", earthquakes.Query)

	return app, db
}

func uploadCSV(t *testing.T, app *fiber.App, filename, content string) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/gravity/upload-data", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestUploadData(t *testing.T) {
	app, _ := newGravityTestApp(t)

	resp, env := uploadCSV(t, app, "survey.csv", surveyCSV)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var data struct {
		Message  string `json:"message"`
		RowCount int    `json:"row_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 5, data.RowCount)
}

func TestUploadRejectsNonCSV(t *testing.T) {
	app, _ := newGravityTestApp(t)

	resp, env := uploadCSV(t, app, "survey.txt", surveyCSV)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid file format. Please upload a CSV file.", env.Error.Message)
}

func TestUploadRejectsMissingColumns(t *testing.T) {
	app, db := newGravityTestApp(t)

	// Load a good dataset first; a failed upload must not disturb it.
	resp, _ := uploadCSV(t, app, "survey.csv", surveyCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := uploadCSV(t, app, "bad.csv", "latitude,longitude\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	var count int64
	require.NoError(t, db.Model(&model.GravityRecord{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestUploadReplacesExistingData(t *testing.T) {
	app, db := newGravityTestApp(t)

	uploadCSV(t, app, "survey.csv", surveyCSV)
	resp, _ := uploadCSV(t, app, "next.csv", "latitude,longitude,elevation,gravity\n1,2,3,4\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.GravityRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDataEmptyDataset(t *testing.T) {
	app, _ := newGravityTestApp(t)

	resp, env := get(t, app, "/gravity/data")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMPTY_DATASET", env.Error.Code)
}

func TestDataAfterUpload(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, env := get(t, app, "/gravity/data")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []model.GravityRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 5)
	assert.Equal(t, 10.0, records[0].Latitude)
}

func TestClearData(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	req := httptest.NewRequest("POST", "/gravity/clear-data", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := get(t, app, "/gravity/data")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_DATASET", env.Error.Code)
}

func TestBouguerEndpoint(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, env := get(t, app, "/gravity/bouguer-anomaly")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []model.GravityRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.NotNil(t, records[0].Bouguer)
	assert.InDelta(t, 979980.3253, *records[0].Bouguer, 1e-6)
}

func TestDistanceEndpointValidatesParams(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, _ := get(t, app, "/gravity/distance-from-point?ref_lat=abc&ref_lon=1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env := get(t, app, "/gravity/distance-from-point?ref_lat=10&ref_lon=70")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []model.GravityRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.NotNil(t, records[0].DistanceKM)
	assert.InDelta(t, 0.0, *records[0].DistanceKM, 1e-9)
}

func TestClustersEndpoint(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, env := get(t, app, "/gravity/kmeans-clusters?n_clusters=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []model.GravityRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	for _, r := range records {
		require.NotNil(t, r.Cluster)
	}
}

func TestClustersEndpointRejectsTooMany(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	// More clusters than rows is a model failure.
	resp, env := get(t, app, "/gravity/kmeans-clusters?n_clusters=50")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MODEL_ERROR", env.Error.Code)
}

func TestAnomalyEndpointValidatesContamination(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, env := get(t, app, "/gravity/anomaly-detection?contamination=0.9")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestPlotMapRequiresDerivation(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, env := get(t, app, "/gravity/plot-map-bouguer")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PRECONDITION_FAILED", env.Error.Code)
	assert.Equal(t, "Bouguer anomaly not calculated. Please run /gravity/bouguer-anomaly first.", env.Error.Message)
}

func TestPlotMapBouguer(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)
	get(t, app, "/gravity/bouguer-anomaly")

	resp, env := get(t, app, "/gravity/plot-map-bouguer")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fig struct {
		Data []struct {
			Type string `json:"type"`
		} `json:"data"`
		Layout struct {
			Map struct {
				Style string `json:"style"`
			} `json:"map"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fig))
	require.Len(t, fig.Data, 1)
	assert.Equal(t, "scattermap", fig.Data[0].Type)
	assert.Equal(t, "open-street-map", fig.Layout.Map.Style)
}

func TestInterpolateEndpoint(t *testing.T) {
	app, _ := newGravityTestApp(t)
	uploadCSV(t, app, "survey.csv", surveyCSV)

	resp, env := get(t, app, "/gravity/interpolate-gravity?grid_resolution=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fig struct {
		Data []struct {
			Type string      `json:"type"`
			Z    [][]float64 `json:"z"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fig))
	require.Len(t, fig.Data, 1)
	assert.Equal(t, "contour", fig.Data[0].Type)
	assert.Len(t, fig.Data[0].Z, 10)
}

func TestEarthquakesEndpoint(t *testing.T) {
	app, db := newGravityTestApp(t)

	require.NoError(t, db.Create(&model.Earthquake{
		ID:   "eq1",
		Time: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Latitude: 10, Longitude: 70, Depth: 12, Mag: 4.2, Place: "offshore",
	}).Error)

	body, err := json.Marshal(fiber.Map{
		"start_date": "2000-01-01T00:00:00Z",
		"end_date":   "2100-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/gravity/earthquakes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var quakes []EarthquakeResponse
	require.NoError(t, json.Unmarshal(env.Data, &quakes))
	require.Len(t, quakes, 1)
	assert.Equal(t, "eq1", quakes[0].ID)
	assert.Equal(t, 4.2, quakes[0].Mag)
}

func TestEarthquakesEndpointRequiresDates(t *testing.T) {
	app, _ := newGravityTestApp(t)

	req := httptest.NewRequest("POST", "/gravity/earthquakes", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
