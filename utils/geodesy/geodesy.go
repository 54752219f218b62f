// Package geodesy provides the pure numeric routines used by the gravity
// pipeline: the Bouguer correction and the Haversine great-circle distance.
package geodesy

import (
	"math"
)

const (
	// RHO is the crustal density used by the Bouguer correction, in kg/m3.
	RHO = 2670.0

	// EarthRadiusKM is the Earth's mean radius used by the Haversine formula.
	EarthRadiusKM = 6371.0
)

// BouguerCorrection applies the free-air and Bouguer slab corrections to a
// raw gravity reading at the given elevation (meters).
func BouguerCorrection(gravity, elevation float64) float64 {
	return gravity - 0.3086*elevation + 0.0419*(RHO/1000.0)*elevation
}

// Haversine returns the great-circle distance in kilometers between two
// latitude/longitude points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusKM * c
}
