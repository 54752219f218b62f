package gravity

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
)

// Bouguer calculates the Bouguer anomaly for the loaded dataset and returns
// the updated rows.
func (h *GravityHandler) Bouguer(c *fiber.Ctx) error {
	records, err := h.svc.ComputeBouguer(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, records)
}

// Distance calculates the Haversine distance of each row from the supplied
// reference point.
func (h *GravityHandler) Distance(c *fiber.Ctx) error {
	refLat, err := strconv.ParseFloat(c.Query("ref_lat"), 64)
	if err != nil {
		return response.BadRequest(c, "ref_lat must be a number")
	}
	refLon, err := strconv.ParseFloat(c.Query("ref_lon"), 64)
	if err != nil {
		return response.BadRequest(c, "ref_lon must be a number")
	}

	records, err := h.svc.ComputeDistances(c.Context(), refLat, refLon)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, records)
}

// Clusters runs k-means clustering over the dataset's feature columns.
func (h *GravityHandler) Clusters(c *fiber.Ctx) error {
	nClusters := c.QueryInt("n_clusters", 3)

	records, err := h.svc.Cluster(c.Context(), nClusters)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, records)
}

// Anomalies runs isolation-forest anomaly detection over the dataset's
// feature columns.
func (h *GravityHandler) Anomalies(c *fiber.Ctx) error {
	contamination := 0.05
	if raw := c.Query("contamination"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return response.BadRequest(c, "contamination must be a number")
		}
		contamination = v
	}

	records, err := h.svc.DetectAnomalies(c.Context(), contamination)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, records)
}
