package model

import (
	"time"
)

// Earthquake represents one earthquake catalog record. Rows are read-only
// from the API's perspective; they are loaded by cmd/seed from a catalog CSV.
type Earthquake struct {
	ID        string    `gorm:"primaryKey;type:varchar(100)" json:"id"`
	Time      time.Time `gorm:"not null;index" json:"time"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Depth     float64   `gorm:"not null" json:"depth"`
	Mag       float64   `gorm:"not null;index" json:"mag"`

	// Provenance metadata from the source catalog
	MagType         string     `gorm:"type:varchar(50)" json:"magType"`
	Nst             int        `json:"nst"`
	Gap             float64    `json:"gap"`
	Dmin            float64    `json:"dmin"`
	RMS             float64    `gorm:"column:rms" json:"rms"`
	Net             string     `gorm:"type:varchar(50)" json:"net"`
	Updated         *time.Time `json:"updated"`
	Place           string     `gorm:"type:varchar(255)" json:"place"`
	Type            string     `gorm:"type:varchar(50)" json:"type"`
	HorizontalError float64    `json:"horizontalError"`
	DepthError      float64    `json:"depthError"`
	MagError        float64    `json:"magError"`
	MagNst          int        `json:"magNst"`
	Status          string     `gorm:"type:varchar(50)" json:"status"`
	LocationSource  string     `gorm:"type:varchar(50)" json:"locationSource"`
	MagSource       string     `gorm:"type:varchar(50)" json:"magSource"`
}

// TableName specifies the table name for Earthquake
func (Earthquake) TableName() string {
	return "earthquakes"
}
