package geo

import (
	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

const (
	// meters
	DOUGLAS_PEUCKER_THRESHOLDS = 7.0
)

type span struct {
	first, last int
}

func RamesDouglasPeucker(coords []datastructure.Coordinate) []datastructure.Coordinate {
	return RamesDouglasPeuckerWithThreshold(coords, DOUGLAS_PEUCKER_THRESHOLDS)
}

/*
RamesDouglasPeuckerWithThreshold. simplify polyline route:
untuk setiap span (first,last), cari titik dengan jarak tegak lurus terjauh ke segment first-last.
kalau jaraknya > threshold titik itu dipertahankan dan span dipecah dua, kalau tidak semua titik di antaranya dibuang.
titik pertama & terakhir selalu dipertahankan.
*/
func RamesDouglasPeuckerWithThreshold(coords []datastructure.Coordinate, threshold float64) []datastructure.Coordinate {
	n := len(coords)
	if n < 3 {
		return coords
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	spans := []span{{first: 0, last: n - 1}}
	for len(spans) > 0 {
		s := spans[len(spans)-1]
		spans = spans[:len(spans)-1]

		farthest, farthestDist := -1, threshold
		for i := s.first + 1; i < s.last; i++ {
			d := PointLinePerpendicularDistance(coords[s.first], coords[s.last], coords[i])
			if d > farthestDist {
				farthest, farthestDist = i, d
			}
		}
		if farthest == -1 {
			continue
		}

		keep[farthest] = true
		spans = append(spans, span{first: s.first, last: farthest}, span{first: farthest, last: s.last})
	}

	simplified := make([]datastructure.Coordinate, 0, n)
	for i, c := range coords {
		if keep[i] {
			simplified = append(simplified, c)
		}
	}
	return simplified
}
