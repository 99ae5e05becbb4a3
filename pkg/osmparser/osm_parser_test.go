package osmparser

import (
	"testing"

	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWay(id osm.WayID, nodes []osm.NodeID, tags osm.Tags) *osm.Way {
	wayNodes := make(osm.WayNodes, 0, len(nodes))
	for _, n := range nodes {
		wayNodes = append(wayNodes, osm.WayNode{ID: n})
	}
	return &osm.Way{ID: id, Nodes: wayNodes, Tags: tags}
}

// parse replays the two pbf passes on in memory objects.
func parse(t *testing.T, nodes []*osm.Node, ways []*osm.Way) (*OsmParser, *datastructure.Graph, *datastructure.TagTable) {
	p := NewOSMParser(NewCarCostFunction(config.Default().Profile), zap.NewNop())
	for _, way := range ways {
		if acceptOsmWay(way) {
			p.markWayNodes(way)
		}
	}
	for _, n := range nodes {
		p.acceptNode(n)
	}
	for _, way := range ways {
		if acceptOsmWay(way) {
			require.NoError(t, p.processWay(way))
		}
	}
	return p, p.graph, p.tags
}

/*
1 - 2 - 3 - 4
        |
        5 - 6 (barrier di 5)

way a: 1,2,3,4 (primary, oneway)
way b: 3,5,6 (residential)
way c: 7,8 (footway, di skip)
*/
func TestParseWays(t *testing.T) {
	nodes := []*osm.Node{
		{ID: 1, Lat: -7.7800, Lon: 110.3600},
		{ID: 2, Lat: -7.7800, Lon: 110.3610},
		{ID: 3, Lat: -7.7800, Lon: 110.3620},
		{ID: 4, Lat: -7.7800, Lon: 110.3630},
		{ID: 5, Lat: -7.7810, Lon: 110.3620, Tags: osm.Tags{{Key: "barrier", Value: "gate"}}},
		{ID: 6, Lat: -7.7820, Lon: 110.3620},
		{ID: 7, Lat: -7.7900, Lon: 110.3700},
		{ID: 8, Lat: -7.7910, Lon: 110.3700},
	}
	ways := []*osm.Way{
		newWay(100, []osm.NodeID{1, 2, 3, 4}, osm.Tags{
			{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "yes"},
			{Key: "name", Value: "Jalan Malioboro"}, {Key: "source", Value: "survey"},
		}),
		newWay(101, []osm.NodeID{3, 5, 6}, osm.Tags{{Key: "highway", Value: "residential"}}),
		newWay(102, []osm.NodeID{7, 8}, osm.Tags{{Key: "highway", Value: "footway"}}),
	}

	p, g, tags := parse(t, nodes, ways)

	// vertices: 1, 3, 4, 5, 6 (2 bukan junction, 7 & 8 footway)
	assert.Equal(t, 5, g.NumNodes())
	assert.Equal(t, 4, g.NumArcs())
	assert.NotContains(t, p.nodeIDMap, osm.NodeID(2))
	assert.NotContains(t, p.nodeIDMap, osm.NodeID(7))

	v1, v3, v4 := p.nodeIDMap[1], p.nodeIDMap[3], p.nodeIDMap[4]
	v5, v6 := p.nodeIDMap[5], p.nodeIDMap[6]

	arc13, ok := g.DirectedArc(v1, v3)
	require.True(t, ok)
	assert.False(t, arc13.IsShortcut)
	assert.Greater(t, arc13.Weight, 0.0)
	_, ok = g.DirectedArc(v3, v1)
	assert.False(t, ok, "oneway must not be traversable backwards")

	_, ok = g.DirectedArc(v3, v4)
	assert.True(t, ok)

	// barrier node memotong segment 3-5-6 jadi 3-5 & 5-6
	_, ok = g.DirectedArc(v3, v5)
	assert.True(t, ok)
	_, ok = g.DirectedArc(v5, v3)
	assert.True(t, ok)
	_, ok = g.DirectedArc(v6, v5)
	assert.True(t, ok)

	assert.Equal(t, "Jalan Malioboro", tags.Find(arc13.TagsRef, "name"))
	assert.Equal(t, "primary", tags.Find(arc13.TagsRef, "highway"))
	assert.Equal(t, "", tags.Find(arc13.TagsRef, "source"))

	coord := g.GetNode(v4).Coordinate()
	assert.Equal(t, datastructure.NewCoordinate(-7.7800, 110.3630), coord)
}

func TestParseClosedWay(t *testing.T) {
	nodes := []*osm.Node{
		{ID: 1, Lat: 0, Lon: 0},
		{ID: 2, Lat: 0, Lon: 0.001},
		{ID: 3, Lat: 0.001, Lon: 0.001},
	}
	ways := []*osm.Way{
		newWay(200, []osm.NodeID{1, 2, 3, 1}, osm.Tags{
			{Key: "highway", Value: "tertiary"}, {Key: "junction", Value: "roundabout"},
		}),
	}

	p, g, _ := parse(t, nodes, ways)

	assert.Equal(t, 2, g.NumNodes())
	v1, v3 := p.nodeIDMap[1], p.nodeIDMap[3]
	_, ok := g.DirectedArc(v1, v3)
	assert.True(t, ok)
	_, ok = g.DirectedArc(v3, v1)
	assert.True(t, ok)
	for v := int32(0); v < int32(g.NumNodes()); v++ {
		_, selfLoop := g.DirectedArc(v, v)
		assert.False(t, selfLoop)
	}
}

func TestAcceptOsmWay(t *testing.T) {
	assert.True(t, acceptOsmWay(newWay(1, []osm.NodeID{1, 2}, osm.Tags{{Key: "highway", Value: "primary"}})))
	assert.True(t, acceptOsmWay(newWay(1, []osm.NodeID{1, 2}, osm.Tags{{Key: "route", Value: "road"}})))
	assert.False(t, acceptOsmWay(newWay(1, []osm.NodeID{1, 2}, osm.Tags{{Key: "highway", Value: "steps"}})))
	assert.False(t, acceptOsmWay(newWay(1, []osm.NodeID{1}, osm.Tags{{Key: "highway", Value: "primary"}})))
	assert.False(t, acceptOsmWay(newWay(1, []osm.NodeID{1, 2}, osm.Tags{{Key: "building", Value: "yes"}})))
}
