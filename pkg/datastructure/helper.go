package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// CreatePolyline encodes path with the google polyline algorithm (precision 5).
func CreatePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
