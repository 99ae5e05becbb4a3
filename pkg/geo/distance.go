package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// CalculateHaversineDistance returns the great circle distance in km.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// DistanceMeter is the s2 great circle distance between a and b in meters.
func DistanceMeter(a, b datastructure.Coordinate) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusM
}

// PathLengthMeter sums DistanceMeter over consecutive points.
func PathLengthMeter(coords []datastructure.Coordinate) float64 {
	length := 0.0
	for i := 1; i < len(coords); i++ {
		length += DistanceMeter(coords[i-1], coords[i])
	}
	return length
}

func toS2Point(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// PointLinePerpendicularDistance returns the distance in meters from p to the segment (a,b).
func PointLinePerpendicularDistance(a, b, p datastructure.Coordinate) float64 {
	return s2.DistanceFromSegment(toS2Point(p), toS2Point(a), toS2Point(b)).Radians() * earthRadiusM
}

// ProjectPointToLineCoord returns the point of segment (a,b) closest to p.
func ProjectPointToLineCoord(a, b, p datastructure.Coordinate) datastructure.Coordinate {
	projection := s2.LatLngFromPoint(s2.Project(toS2Point(p), toS2Point(a), toS2Point(b)))
	return datastructure.NewCoordinate(projection.Lat.Degrees(), projection.Lng.Degrees())
}
