package segment

import (
	"math"
	"math/rand"
)

// kmeans runs Lloyd's algorithm with k-means++ initialization from a fixed
// seed, so identical inputs cluster identically.
func kmeans(points [][]float64, k int, seed int64, maxIter int) ([]int, [][]float64) {
	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(points, k, rng)
	assign := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			c := nearest(p, centroids)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		recompute(points, assign, centroids)
	}
	return assign, centroids
}

// seedCentroids is k-means++: the first centroid is the first point, each
// subsequent one is drawn with probability proportional to squared distance
// from the nearest chosen centroid.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	dims := len(points[0])
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), points[0]...))

	d2 := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d2[i] = sqDist(p, centroids[nearest(p, centroids)])
			total += d2[i]
		}
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range d2 {
				acc += d
				if acc >= target {
					next = i
					break
				}
			}
		} else {
			// All points coincide with a centroid; any choice is equivalent.
			next = len(centroids) % len(points)
		}
		c := make([]float64, dims)
		copy(c, points[next])
		centroids = append(centroids, c)
	}
	return centroids
}

func recompute(points [][]float64, assign []int, centroids [][]float64) {
	dims := len(centroids[0])
	counts := make([]int, len(centroids))
	for i := range centroids {
		for d := 0; d < dims; d++ {
			centroids[i][d] = 0
		}
	}
	for i, p := range points {
		c := assign[i]
		counts[c]++
		for d, v := range p {
			centroids[c][d] += v
		}
	}
	for i, n := range counts {
		if n == 0 {
			// Empty cluster: move its centroid onto the point farthest from
			// its current centroid so the next assignment pass repopulates it.
			far := farthestPoint(points, assign, centroids)
			copy(centroids[i], points[far])
			continue
		}
		for d := range centroids[i] {
			centroids[i][d] /= float64(n)
		}
	}
}

func farthestPoint(points [][]float64, assign []int, centroids [][]float64) int {
	best, bestD := 0, -1.0
	for i, p := range points {
		d := sqDist(p, centroids[assign[i]])
		if d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

// nearest returns the index of the closest centroid, lowest index on ties.
func nearest(p []float64, centroids [][]float64) int {
	best, bestD := 0, math.Inf(1)
	for i, c := range centroids {
		if d := sqDist(p, c); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func dist(a, b []float64) float64 { return math.Sqrt(sqDist(a, b)) }

// silhouette is the mean silhouette coefficient over all points. Singleton
// clusters contribute 0 for their point, matching the usual convention.
func silhouette(points [][]float64, assign []int, k int) float64 {
	if len(points) <= k {
		return 0
	}
	sizes := make([]int, k)
	for _, c := range assign {
		sizes[c]++
	}

	total := 0.0
	for i, p := range points {
		own := assign[i]
		if sizes[own] <= 1 {
			continue
		}
		sums := make([]float64, k)
		for j, q := range points {
			if j != i {
				sums[assign[j]] += dist(p, q)
			}
		}
		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			if m := sums[c] / float64(sizes[c]); m < b {
				b = m
			}
		}
		if math.IsInf(b, 1) {
			continue
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(len(points))
}
