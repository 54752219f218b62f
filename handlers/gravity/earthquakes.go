package gravity

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/services"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
	"github.com/vivekdhawan/gravimetry-api/utils/validation"
	"gorm.io/gorm"
)

// EarthquakeHandler serves filtered earthquake catalog queries
type EarthquakeHandler struct {
	svc       *services.EarthquakeService
	validator *validation.Validator
}

// NewEarthquakeHandler creates a new earthquake handler
func NewEarthquakeHandler(db *gorm.DB) *EarthquakeHandler {
	return &EarthquakeHandler{
		svc:       services.NewEarthquakeService(db),
		validator: validation.NewValidator(),
	}
}

// EarthquakeQueryRequest filters the catalog by time window and optional
// magnitude/depth bounds.
type EarthquakeQueryRequest struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	MinMag    *float64  `json:"min_mag,omitempty"`
	MaxMag    *float64  `json:"max_mag,omitempty"`
	MinDepth  *float64  `json:"min_depth,omitempty"`
	MaxDepth  *float64  `json:"max_depth,omitempty"`
}

// EarthquakeResponse is one catalog record in query results
type EarthquakeResponse struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Mag       float64   `json:"mag"`
	Depth     float64   `json:"depth"`
	Place     string    `json:"place"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// Query retrieves earthquake records matching the filters.
func (h *EarthquakeHandler) Query(c *fiber.Ctx) error {
	var req EarthquakeQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, validation.FormatValidationError(err))
	}

	quakes, err := h.svc.Query(c.Context(), services.EarthquakeQuery{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		MinMag:    req.MinMag,
		MaxMag:    req.MaxMag,
		MinDepth:  req.MinDepth,
		MaxDepth:  req.MaxDepth,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	out := make([]EarthquakeResponse, len(quakes))
	for i, q := range quakes {
		out[i] = EarthquakeResponse{
			ID:        q.ID,
			Time:      q.Time,
			Mag:       q.Mag,
			Depth:     q.Depth,
			Place:     q.Place,
			Latitude:  q.Latitude,
			Longitude: q.Longitude,
		}
	}
	return response.Success(c, out)
}
