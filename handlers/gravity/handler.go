package gravity

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/services"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
	"gorm.io/gorm"
)

// GravityHandler handles gravity dataset requests
type GravityHandler struct {
	svc *services.GravityService
}

// NewGravityHandler creates a new gravity handler
func NewGravityHandler(db *gorm.DB) *GravityHandler {
	return &GravityHandler{
		svc: services.NewGravityService(db),
	}
}

// UploadResponse reports an accepted upload
type UploadResponse struct {
	Message  string `json:"message"`
	RowCount int    `json:"row_count"`
}

// Upload accepts a gravity survey CSV and replaces the stored dataset with
// its rows.
func (h *GravityHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A CSV file is required in the 'file' field")
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		return response.BadRequest(c, "Invalid file format. Please upload a CSV file.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	records, err := h.svc.ParseCSV(data)
	if err != nil {
		return response.FromError(c, err)
	}

	count, err := h.svc.ReplaceAll(c.Context(), records)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, UploadResponse{
		Message:  "Successfully uploaded " + fileHeader.Filename,
		RowCount: count,
	})
}

// Data retrieves all loaded gravity data, including any derived fields.
func (h *GravityHandler) Data(c *fiber.Ctx) error {
	records, err := h.svc.All(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, records)
}

// Clear deletes all loaded gravity data.
func (h *GravityHandler) Clear(c *fiber.Ctx) error {
	if err := h.svc.Clear(c.Context()); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"message": "All gravity data cleared from the database.",
	})
}
