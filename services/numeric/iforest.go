package numeric

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

const (
	iforestTrees     = 100
	iforestSubsample = 256
)

// IsolationForest scores each feature row for isolation and labels the
// expected `contamination` fraction of rows with the highest anomaly scores
// as -1 (anomaly); all other rows are labeled 1 (normal).
func IsolationForest(features [][]float64, contamination float64) ([]int, error) {
	n := len(features)
	if n == 0 {
		return nil, errors.New("no feature rows")
	}

	rng := rand.New(rand.NewSource(Seed))

	psi := iforestSubsample
	if psi > n {
		psi = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(psi))))
	if heightLimit < 1 {
		heightLimit = 1
	}

	trees := make([]*isoNode, iforestTrees)
	for t := range trees {
		sample := sampleRows(features, psi, rng)
		trees[t] = buildIsoTree(sample, 0, heightLimit, rng)
	}

	// Anomaly score per Liu et al.: s(x) = 2^(-E[h(x)] / c(psi)).
	norm := avgPathLength(float64(psi))
	scores := make([]float64, n)
	for i, row := range features {
		sum := 0.0
		for _, tree := range trees {
			sum += pathLength(tree, row, 0)
		}
		mean := sum / float64(iforestTrees)
		scores[i] = math.Pow(2, -mean/norm)
	}

	// Threshold at the (1 - contamination) score quantile.
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	cut := int(math.Ceil(float64(n) * (1 - contamination)))
	if cut >= n {
		cut = n - 1
	}
	threshold := sorted[cut]

	labels := make([]int, n)
	for i, s := range scores {
		if s >= threshold {
			labels[i] = -1
		} else {
			labels[i] = 1
		}
	}
	return labels, nil
}

type isoNode struct {
	splitDim   int
	splitValue float64
	left       *isoNode
	right      *isoNode
	size       int // leaf only
}

func sampleRows(features [][]float64, psi int, rng *rand.Rand) [][]float64 {
	idx := rng.Perm(len(features))[:psi]
	sample := make([][]float64, psi)
	for i, j := range idx {
		sample[i] = features[j]
	}
	return sample
}

func buildIsoTree(rows [][]float64, depth, limit int, rng *rand.Rand) *isoNode {
	if len(rows) <= 1 || depth >= limit {
		return &isoNode{size: len(rows)}
	}

	dim := len(rows[0])
	d := rng.Intn(dim)
	lo, hi := rows[0][d], rows[0][d]
	for _, row := range rows {
		if row[d] < lo {
			lo = row[d]
		}
		if row[d] > hi {
			hi = row[d]
		}
	}
	if lo == hi {
		return &isoNode{size: len(rows)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range rows {
		if row[d] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isoNode{
		splitDim:   d,
		splitValue: split,
		left:       buildIsoTree(left, depth+1, limit, rng),
		right:      buildIsoTree(right, depth+1, limit, rng),
	}
}

func pathLength(node *isoNode, row []float64, depth int) float64 {
	if node.left == nil && node.right == nil {
		if node.size > 1 {
			return float64(depth) + avgPathLength(float64(node.size))
		}
		return float64(depth)
	}
	if row[node.splitDim] < node.splitValue {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// avgPathLength is c(n), the average path length of an unsuccessful BST
// search over n points.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	const euler = 0.5772156649
	h := math.Log(n-1) + euler
	return 2*h - 2*(n-1)/n
}
