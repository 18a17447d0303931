package analysis

import (
	"math"
	"math/rand"
)

const (
	kmeansInits    = 10
	kmeansMaxIter  = 300
	kmeansTol      = 1e-4
	maxColorSample = 10000
)

type point [3]float64

func sqDist(a, b point) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// clustering is one k-means solution.
type clustering struct {
	centers []point
	labels  []int
	inertia float64
}

// kmeans partitions points into k clusters, running kmeansInits seeded
// k-means++ initializations and keeping the lowest inertia. The caller
// guarantees at least k distinct points.
func kmeans(points []point, k int, rng *rand.Rand) clustering {
	var best clustering
	best.inertia = math.Inf(1)
	for run := 0; run < kmeansInits; run++ {
		c := lloyd(points, initPlusPlus(points, k, rng))
		if c.inertia < best.inertia {
			best = c
		}
	}
	return best
}

// initPlusPlus picks k starting centers with k-means++ seeding.
func initPlusPlus(points []point, k int, rng *rand.Rand) []point {
	centers := make([]point, 0, k)
	centers = append(centers, points[rng.Intn(len(points))])

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = sqDist(p, centers[0])
	}

	for len(centers) < k {
		total := 0.0
		for _, d := range dist {
			total += d
		}
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			cum := 0.0
			next = len(points) - 1
			for i, d := range dist {
				cum += d
				if cum > target {
					next = i
					break
				}
			}
		} else {
			next = rng.Intn(len(points))
		}
		centers = append(centers, points[next])
		for i, p := range points {
			if d := sqDist(p, points[next]); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

// lloyd refines centers until assignments settle, the centers move less
// than kmeansTol in total, or kmeansMaxIter is reached. An empty cluster is
// re-seeded with the point farthest from its current center.
func lloyd(points []point, centers []point) clustering {
	k := len(centers)
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}
	sums := make([]point, k)
	counts := make([]int, k)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, p := range points {
			best, bestD := 0, math.Inf(1)
			for j, c := range centers {
				if d := sqDist(p, c); d < bestD {
					best, bestD = j, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for j := range sums {
			sums[j] = point{}
			counts[j] = 0
		}
		for i, p := range points {
			l := labels[i]
			sums[l][0] += p[0]
			sums[l][1] += p[1]
			sums[l][2] += p[2]
			counts[l]++
		}

		shift := 0.0
		for j := range centers {
			if counts[j] == 0 {
				far, farD := 0, -1.0
				for i, p := range points {
					if d := sqDist(p, centers[labels[i]]); d > farD {
						far, farD = i, d
					}
				}
				shift += sqDist(centers[j], points[far])
				centers[j] = points[far]
				labels[far] = j
				continue
			}
			n := float64(counts[j])
			next := point{sums[j][0] / n, sums[j][1] / n, sums[j][2] / n}
			shift += sqDist(centers[j], next)
			centers[j] = next
		}
		if shift <= kmeansTol {
			break
		}
	}

	// Final assignment against the settled centers.
	inertia := 0.0
	for i, p := range points {
		best, bestD := 0, math.Inf(1)
		for j, c := range centers {
			if d := sqDist(p, c); d < bestD {
				best, bestD = j, d
			}
		}
		labels[i] = best
		inertia += bestD
	}
	return clustering{centers: centers, labels: labels, inertia: inertia}
}

// samplePixels draws up to maxColorSample distinct pixel indices uniformly
// without replacement using a sparse Fisher-Yates shuffle. When the image is
// small enough every pixel is returned in order.
func samplePixels(n int, rng *rand.Rand) []int {
	if n <= maxColorSample {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	swapped := make(map[int]int, maxColorSample*2)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	idx := make([]int, maxColorSample)
	for i := 0; i < maxColorSample; i++ {
		j := i + rng.Intn(n-i)
		vi, vj := at(i), at(j)
		swapped[i], swapped[j] = vj, vi
		idx[i] = vj
	}
	return idx
}
