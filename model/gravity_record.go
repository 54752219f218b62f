package model

// GravityRecord is one gravity survey measurement. The four survey columns
// come from the uploaded CSV; the remaining columns are derived on demand
// and stay null until their endpoint runs.
type GravityRecord struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	Elevation float64 `gorm:"not null" json:"elevation"`
	Gravity   float64 `gorm:"not null" json:"gravity"`

	// Derived columns
	Bouguer    *float64 `json:"bouguer,omitempty"`
	Cluster    *int     `json:"cluster,omitempty"`
	Anomaly    *int     `json:"anomaly,omitempty"`
	DistanceKM *float64 `gorm:"column:distance_km" json:"distance_km,omitempty"`
}

// TableName specifies the table name for GravityRecord
func (GravityRecord) TableName() string {
	return "gravity_data"
}
