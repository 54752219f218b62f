// Package numeric holds the deterministic numeric subroutines invoked by the
// model adapters: k-means partitioning, isolation-forest scoring and cubic
// RBF grid interpolation. Every routine is seeded so repeated calls over the
// same input produce identical output.
package numeric

import (
	"errors"
	"math"
	"math/rand"
)

// Seed fixes the pseudo-random sequence of every routine in this package.
const Seed = 42

const (
	kmeansRestarts = 10
	kmeansMaxIter  = 300
)

// KMeans partitions the feature rows into k clusters and returns one integer
// label per row. Initialization uses the k-means++ scheme; the best of
// several seeded restarts (lowest inertia) wins.
func KMeans(features [][]float64, k int) ([]int, error) {
	n := len(features)
	if n == 0 {
		return nil, errors.New("no feature rows")
	}
	if k > n {
		return nil, errors.New("more clusters requested than data points")
	}

	rng := rand.New(rand.NewSource(Seed))

	bestLabels := make([]int, n)
	bestInertia := math.Inf(1)

	for restart := 0; restart < kmeansRestarts; restart++ {
		centroids := seedCentroids(features, k, rng)
		labels := make([]int, n)

		for iter := 0; iter < kmeansMaxIter; iter++ {
			changed := false
			for i, row := range features {
				nearest := nearestCentroid(row, centroids)
				if labels[i] != nearest {
					labels[i] = nearest
					changed = true
				}
			}

			recomputeCentroids(features, labels, centroids)

			if !changed && iter > 0 {
				break
			}
		}

		inertia := 0.0
		for i, row := range features {
			inertia += squaredDistance(row, centroids[labels[i]])
		}
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}

	return bestLabels, nil
}

// seedCentroids picks k initial centroids with k-means++ weighting.
func seedCentroids(features [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(features)
	dim := len(features[0])

	centroids := make([][]float64, 0, k)
	first := append([]float64(nil), features[rng.Intn(n)]...)
	centroids = append(centroids, first)

	dists := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, row := range features {
			d := math.Inf(1)
			for _, c := range centroids {
				if sd := squaredDistance(row, c); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}

		// All points coincide with a centroid; fall back to uniform choice.
		pick := rng.Intn(n)
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dists {
				acc += d
				if acc >= target {
					pick = i
					break
				}
			}
		}

		c := make([]float64, dim)
		copy(c, features[pick])
		centroids = append(centroids, c)
	}

	return centroids
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for j, c := range centroids {
		if d := squaredDistance(row, c); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

func recomputeCentroids(features [][]float64, labels []int, centroids [][]float64) {
	dim := len(features[0])
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for j := range sums {
		sums[j] = make([]float64, dim)
	}

	for i, row := range features {
		j := labels[i]
		counts[j]++
		for d, v := range row {
			sums[j][d] += v
		}
	}

	for j := range centroids {
		if counts[j] == 0 {
			// Empty cluster keeps its previous centroid.
			continue
		}
		for d := range centroids[j] {
			centroids[j][d] = sums[j][d] / float64(counts[j])
		}
	}
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
