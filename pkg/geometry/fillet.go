package geometry

import (
	"sort"

	"github.com/qweave/metalize/pkg/units"
)

// DefaultPrecision is the number of decimal digits used for length
// comparisons when callers do not specify one.
const DefaultPrecision = 9

// BadFilletIndexes returns the vertex indices of pts that cannot be rounded
// with the given fillet radius.
//
// A fillet arc consumes up to one radius of each edge adjacent to its vertex.
// When two neighboring vertices are both rounded, the arcs meet in the middle
// of the shared edge, so a vertex is ineligible as soon as either adjacent
// segment is shorter than twice the radius. Both the segment length and the
// 2×radius threshold are rounded to precision decimal digits before the
// comparison.
//
// For closed shapes the wraparound segment between the last and first vertex
// participates. For open shapes only the n-1 interior segments do; endpoint
// eligibility is the caller's concern (see GoodFilletIndexes).
//
// The result is sorted and free of duplicates.
func BadFilletIndexes(pts []Point, radius float64, precision int, closed bool) []int {
	n := len(pts)
	if n < 2 || radius <= 0 {
		return nil
	}

	threshold := units.Round(2*radius, precision)

	bad := make(map[int]struct{})
	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % n
		if units.Round(Dist(pts[i], pts[j]), precision) < threshold {
			// Segment too short for two fillet arcs: both endpoints lose.
			bad[i] = struct{}{}
			bad[j] = struct{}{}
		}
	}

	out := make([]int, 0, len(bad))
	for i := range bad {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// GoodFilletIndexes returns the vertex indices of pts that can be rounded
// with the given fillet radius: the complement of BadFilletIndexes over
// [0, n). For open shapes the first and last vertex are excluded
// unconditionally, since each has an edge on only one side.
func GoodFilletIndexes(pts []Point, radius float64, precision int, closed bool) []int {
	n := len(pts)
	if n == 0 || radius <= 0 {
		return nil
	}

	bad := BadFilletIndexes(pts, radius, precision, closed)
	badSet := make(map[int]struct{}, len(bad))
	for _, i := range bad {
		badSet[i] = struct{}{}
	}

	good := make([]int, 0, n-len(bad))
	for i := 0; i < n; i++ {
		if !closed && (i == 0 || i == n-1) {
			continue
		}
		if _, ok := badSet[i]; ok {
			continue
		}
		good = append(good, i)
	}
	return good
}
