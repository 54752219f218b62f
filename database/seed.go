package database

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vivekdhawan/gravimetry-api/model"
	"github.com/vivekdhawan/gravimetry-api/utils/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RunSeeds populates the database with initial reference data:
// an admin user (from ADMIN_EMAIL / ADMIN_PASSWORD) and the
// earthquake catalog (from EARTHQUAKE_CSV).
func RunSeeds(db *gorm.DB) error {
	if err := seedAdminUser(db); err != nil {
		return err
	}

	if err := seedEarthquakeCatalog(db); err != nil {
		return err
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin user seed")
		return nil
	}

	var existing model.User
	err := db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		log.Printf("Admin user %s already exists, skipping", adminEmail)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.User{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Created admin user %s", adminEmail)
	return nil
}

func seedEarthquakeCatalog(db *gorm.DB) error {
	csvPath := os.Getenv("EARTHQUAKE_CSV")
	if csvPath == "" {
		log.Println("EARTHQUAKE_CSV not set, skipping earthquake catalog seed")
		return nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open earthquake catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read catalog header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "time", "latitude", "longitude", "depth", "mag"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("catalog is missing required column %q", required)
		}
	}

	var (
		quakes  []model.Earthquake
		total   int
		skipped int
	)

	flush := func() error {
		if len(quakes) == 0 {
			return nil
		}
		// Re-seeding an already loaded catalog should be a no-op
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(quakes, 500).Error
		if err != nil {
			return err
		}
		total += len(quakes)
		quakes = quakes[:0]
		return nil
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read catalog row %d: %w", line, err)
		}

		quake, err := parseEarthquakeRow(record, col)
		if err != nil {
			log.Printf("Skipping catalog row %d: %v", line, err)
			skipped++
			continue
		}
		quakes = append(quakes, quake)

		if len(quakes) >= 500 {
			if err := flush(); err != nil {
				return fmt.Errorf("failed to insert catalog rows: %w", err)
			}
		}
	}

	if err := flush(); err != nil {
		return fmt.Errorf("failed to insert catalog rows: %w", err)
	}

	log.Printf("Seeded %d earthquake records (%d rows skipped)", total, skipped)
	return nil
}

func parseEarthquakeRow(record []string, col map[string]int) (model.Earthquake, error) {
	field := func(name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	floatField := func(name string) float64 {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return 0
		}
		return v
	}

	intField := func(name string) int {
		v, err := strconv.Atoi(field(name))
		if err != nil {
			return 0
		}
		return v
	}

	var quake model.Earthquake

	quake.ID = field("id")
	if quake.ID == "" {
		return quake, fmt.Errorf("empty id")
	}

	eventTime, err := time.Parse(time.RFC3339, field("time"))
	if err != nil {
		return quake, fmt.Errorf("invalid time %q", field("time"))
	}
	quake.Time = eventTime.UTC()

	for name, dst := range map[string]*float64{
		"latitude":  &quake.Latitude,
		"longitude": &quake.Longitude,
		"depth":     &quake.Depth,
		"mag":       &quake.Mag,
	} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return quake, fmt.Errorf("invalid %s %q", name, field(name))
		}
		*dst = v
	}

	quake.MagType = field("magtype")
	quake.Nst = intField("nst")
	quake.Gap = floatField("gap")
	quake.Dmin = floatField("dmin")
	quake.RMS = floatField("rms")
	quake.Net = field("net")
	quake.Place = field("place")
	quake.Type = field("type")
	quake.HorizontalError = floatField("horizontalerror")
	quake.DepthError = floatField("deptherror")
	quake.MagError = floatField("magerror")
	quake.MagNst = intField("magnst")
	quake.Status = field("status")
	quake.LocationSource = field("locationsource")
	quake.MagSource = field("magsource")

	if updated, err := time.Parse(time.RFC3339, field("updated")); err == nil {
		utc := updated.UTC()
		quake.Updated = &utc
	}

	return quake, nil
}
