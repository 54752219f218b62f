package numeric

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MinInterpolationPoints is the smallest point cloud cubic interpolation
// accepts; fewer points cannot determine the cubic surface.
const MinInterpolationPoints = 4

// Grid is a cubic-interpolated scalar field over a regular lat/lon grid
// spanning the input bounding box. Z is indexed [lat][lon].
type Grid struct {
	Lat []float64
	Lon []float64
	Z   [][]float64
}

// InterpolateCubicGrid fits a cubic radial basis function surface
// (phi(r) = r^3, with a linear polynomial term) through the scattered
// points and samples it on a resolution x resolution grid.
//
// The fit solves a dense linear system; a degenerate point cloud
// (duplicates, collinear points) makes the system singular and returns an
// error instead of a silently wrong surface.
func InterpolateCubicGrid(lats, lons, values []float64, resolution int) (*Grid, error) {
	n := len(values)
	if n < MinInterpolationPoints {
		return nil, errors.New("not enough points for cubic interpolation")
	}
	if resolution < 2 {
		return nil, errors.New("grid resolution must be at least 2")
	}

	// System: [ K  P ] [w]   [v]
	//         [ P' 0 ] [a] = [0]
	// where K[i][j] = phi(dist(i, j)) and P augments a linear polynomial.
	size := n + 3
	a := mat.NewDense(size, size, nil)
	b := mat.NewVecDense(size, nil)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, cubicKernel(lats[i], lons[i], lats[j], lons[j]))
		}
		a.Set(i, n, 1)
		a.Set(i, n+1, lats[i])
		a.Set(i, n+2, lons[i])
		a.Set(n, i, 1)
		a.Set(n+1, i, lats[i])
		a.Set(n+2, i, lons[i])
		b.SetVec(i, values[i])
	}

	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return nil, err
	}

	latMin, latMax := minMax(lats)
	lonMin, lonMax := minMax(lons)

	grid := &Grid{
		Lat: linspace(latMin, latMax, resolution),
		Lon: linspace(lonMin, lonMax, resolution),
		Z:   make([][]float64, resolution),
	}

	for i, glat := range grid.Lat {
		row := make([]float64, resolution)
		for j, glon := range grid.Lon {
			v := coef.AtVec(n) + coef.AtVec(n+1)*glat + coef.AtVec(n+2)*glon
			for p := 0; p < n; p++ {
				v += coef.AtVec(p) * cubicKernel(glat, glon, lats[p], lons[p])
			}
			row[j] = v
		}
		grid.Z[i] = row
	}

	return grid, nil
}

func cubicKernel(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := lat1 - lat2
	dlon := lon1 - lon2
	r := math.Sqrt(dlat*dlat + dlon*dlon)
	return r * r * r
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
