package gravity

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/services"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
)

// MapBouguer generates the Bouguer anomaly scatter map.
func (h *GravityHandler) MapBouguer(c *fiber.Ctx) error {
	fig, err := h.svc.MapBouguer(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fig)
}

// MapAnomaly generates the anomaly detection scatter map.
func (h *GravityHandler) MapAnomaly(c *fiber.Ctx) error {
	fig, err := h.svc.MapAnomaly(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fig)
}

// MapClusters generates the k-means clustering scatter map.
func (h *GravityHandler) MapClusters(c *fiber.Ctx) error {
	fig, err := h.svc.MapClusters(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fig)
}

// Interpolate generates the interpolated gravity contour map.
func (h *GravityHandler) Interpolate(c *fiber.Ctx) error {
	resolution := c.QueryInt("grid_resolution", services.DefaultGridResolution)

	fig, err := h.svc.MapInterpolated(c.Context(), resolution)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fig)
}
