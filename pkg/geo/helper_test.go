package geo

import (
	"testing"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
)

func TestDouglasPecker(t *testing.T) {
	lineCoords := []datastructure.Coordinate{
		{Lat: -7.565837, Lon: 110.831586},
		{Lat: -7.566063, Lon: 110.832379},
		{Lat: -7.566406, Lon: 110.833232},
	}

	simplified := RamesDouglasPeucker(lineCoords)
	assert.Len(t, simplified, 2)
	assert.Equal(t, lineCoords[0], simplified[0])
	assert.Equal(t, lineCoords[2], simplified[1])
}

func TestDouglasPeckerKeepsCorner(t *testing.T) {
	lineCoords := []datastructure.Coordinate{
		{Lat: -7.565, Lon: 110.830},
		{Lat: -7.565, Lon: 110.835},
		{Lat: -7.570, Lon: 110.835},
	}

	simplified := RamesDouglasPeucker(lineCoords)
	assert.Equal(t, lineCoords, simplified)

	assert.Len(t, RamesDouglasPeucker(lineCoords[:2]), 2)
}
