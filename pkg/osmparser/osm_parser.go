package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type NodeType uint8

const (
	END_NODE NodeType = iota + 1
	BETWEEN_NODE
	JUNCTION_NODE
)

type node struct {
	id    osm.NodeID
	coord datastructure.Coordinate
}

type OsmParser struct {
	cost   CostFunction
	logger *zap.Logger

	wayNodeMap      map[osm.NodeID]NodeType
	acceptedNodeMap map[osm.NodeID]datastructure.Coordinate
	barrierNodes    map[osm.NodeID]bool
	nodeIDMap       map[osm.NodeID]int32

	graph *datastructure.Graph
	tags  *datastructure.TagTable
}

func NewOSMParser(cost CostFunction, logger *zap.Logger) *OsmParser {
	return &OsmParser{
		cost:            cost,
		logger:          logger,
		wayNodeMap:      make(map[osm.NodeID]NodeType),
		acceptedNodeMap: make(map[osm.NodeID]datastructure.Coordinate),
		barrierNodes:    make(map[osm.NodeID]bool),
		nodeIDMap:       make(map[osm.NodeID]int32),
		graph:           datastructure.NewGraph(),
		tags:            datastructure.NewTagTable(),
	}
}

var (
	skipHighway = map[string]struct{}{
		"footway":                {},
		"construction":           {},
		"cycleway":               {},
		"path":                   {},
		"pedestrian":             {},
		"busway":                 {},
		"steps":                  {},
		"bridleway":              {},
		"corridor":               {},
		"street_lamp":            {},
		"bus_stop":               {},
		"crossing":               {},
		"cyclist_waiting_aid":    {},
		"elevator":               {},
		"emergency_bay":          {},
		"emergency_access_point": {},
		"give_way":               {},
		"phone":                  {},
		"ladder":                 {},
		"milestone":              {},
		"passing_place":          {},
		"platform":               {},
		"speed_camera":           {},
		"track":                  {},
		"bus_guideway":           {},
		"speed_display":          {},
		"stop":                   {},
		"toll_gantry":            {},
		"traffic_mirror":         {},
		"traffic_signals":        {},
		"trailhead":              {},
	}

	// way tags copied into the tag table
	keptWayTags = map[string]struct{}{
		"highway":  {},
		"name":     {},
		"ref":      {},
		"junction": {},
		"lanes":    {},
		"maxspeed": {},
		"oneway":   {},
	}
)

// Parse reads an osm pbf file into a graph of junction vertices.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.Graph, *datastructure.TagTable, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open map file %s: %w", mapFile, err)
	}
	defer f.Close()

	return p.ParseReader(ctx, f)
}

/*
ParseReader. dua kali scan file pbf:
 1. scan ways, tandai node yang dipakai lebih dari satu way (atau muncul dua kali di satu way) sebagai junction.
 2. scan nodes (simpan koordinat & barrier), lalu ways: tiap way dipotong jadi segment antar junction/barrier,
    tiap segment jadi satu arc dengan weight & arah dari CostFunction.

scanner tidak boleh paralel, urutan nodes sebelum ways di file pbf dipakai di pass kedua.
*/
func (p *OsmParser) ParseReader(ctx context.Context, r io.ReadSeeker) (*datastructure.Graph, *datastructure.TagTable, error) {
	st := time.Now()

	scanner := osmpbf.New(ctx, r, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Info("reading openstreetmap ways...", zap.Int("ways", countWays+1))
		}
		countWays++
		p.markWayNodes(way)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, nil, fmt.Errorf("scan ways: %w", err)
	}
	scanner.Close()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, err
	}

	scanner = osmpbf.New(ctx, r, 1)
	scanner.SkipRelations = true
	defer scanner.Close()

	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if (countNodes+1)%50000 == 0 {
				p.logger.Debug("processing openstreetmap nodes...", zap.Int("nodes", countNodes+1))
			}
			countNodes++
			p.acceptNode(o)
		case *osm.Way:
			if !acceptOsmWay(o) {
				continue
			}
			if (countWays+1)%50000 == 0 {
				p.logger.Info("processing openstreetmap ways...", zap.Int("ways", countWays+1))
			}
			countWays++
			if err := p.processWay(o); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan nodes and ways: %w", err)
	}

	p.logger.Info("openstreetmap parsed",
		zap.Int("ways", countWays), zap.Int("vertices", p.graph.NumNodes()), zap.Int("arcs", p.graph.NumArcs()),
		zap.Int("tag sets", p.tags.Len()), zap.Duration("elapsed", time.Since(st)))
	return p.graph, p.tags, nil
}

func (p *OsmParser) markWayNodes(way *osm.Way) {
	for i, wayNode := range way.Nodes {
		if _, ok := p.wayNodeMap[wayNode.ID]; !ok {
			if i == 0 || i == len(way.Nodes)-1 {
				p.wayNodeMap[wayNode.ID] = END_NODE
			} else {
				p.wayNodeMap[wayNode.ID] = BETWEEN_NODE
			}
		} else {
			p.wayNodeMap[wayNode.ID] = JUNCTION_NODE
		}
	}
}

func (p *OsmParser) acceptNode(n *osm.Node) {
	if _, ok := p.wayNodeMap[n.ID]; !ok {
		return
	}
	p.acceptedNodeMap[n.ID] = datastructure.NewCoordinate(n.Lat, n.Lon)
	if n.Tags.Find("barrier") != "" || n.Tags.Find("ford") != "" {
		p.barrierNodes[n.ID] = true
	}
}

// endpoints of a way are vertices too, so dead ends stay reachable.
func (p *OsmParser) isSplitNode(nodeID osm.NodeID) bool {
	nodeType := p.wayNodeMap[nodeID]
	return nodeType == JUNCTION_NODE || nodeType == END_NODE
}

func (p *OsmParser) processWay(way *osm.Way) error {
	kept := make([]datastructure.Tag, 0, len(keptWayTags))
	for _, tag := range way.Tags {
		if _, ok := keptWayTags[tag.Key]; ok {
			kept = append(kept, datastructure.NewTag(tag.Key, tag.Value))
		}
	}
	tagsRef := p.tags.Add(kept)

	waySegment := []node{}
	for i, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[wayNode.ID]
		if !ok {
			// node di luar extract
			if len(waySegment) > 1 {
				if err := p.processSegment(way, waySegment, tagsRef); err != nil {
					return err
				}
			}
			waySegment = []node{}
			continue
		}
		nodeData := node{id: wayNode.ID, coord: coord}
		waySegment = append(waySegment, nodeData)

		if i > 0 && p.isSplitNode(wayNode.ID) && len(waySegment) > 1 {
			if err := p.processSegment(way, waySegment, tagsRef); err != nil {
				return err
			}
			waySegment = []node{nodeData}
		}
	}
	if len(waySegment) > 1 {
		return p.processSegment(way, waySegment, tagsRef)
	}
	return nil
}

func (p *OsmParser) processSegment(way *osm.Way, segment []node, tagsRef int32) error {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		return nil
	}
	if segment[0].id == segment[len(segment)-1].id {
		// loop, dipecah jadi dua supaya tidak ada self loop
		if err := p.splitAtBarriers(way, segment[0:len(segment)-1], tagsRef); err != nil {
			return err
		}
		return p.splitAtBarriers(way, segment[len(segment)-2:], tagsRef)
	}
	return p.splitAtBarriers(way, segment, tagsRef)
}

func (p *OsmParser) splitAtBarriers(way *osm.Way, segment []node, tagsRef int32) error {
	waySegment := []node{}
	for _, nodeData := range segment {
		if p.barrierNodes[nodeData.id] && len(waySegment) != 0 {
			waySegment = append(waySegment, nodeData)
			if err := p.addArc(way, waySegment, tagsRef); err != nil {
				return err
			}
			waySegment = []node{}
		}
		waySegment = append(waySegment, nodeData)
	}
	if len(waySegment) > 1 {
		return p.addArc(way, waySegment, tagsRef)
	}
	return nil
}

func (p *OsmParser) vertexID(n node) int32 {
	if id, ok := p.nodeIDMap[n.id]; ok {
		return id
	}
	id := p.graph.AddVertex(n.coord)
	p.nodeIDMap[n.id] = id
	return id
}

func (p *OsmParser) addArc(way *osm.Way, segment []node, tagsRef int32) error {
	from, to := segment[0], segment[len(segment)-1]
	if from.id == to.id {
		return nil
	}

	points := make([]datastructure.Coordinate, 0, len(segment))
	for _, n := range segment {
		points = append(points, n.coord)
	}
	weight, forward, backward := p.cost.ComputeArcCost(Segment{
		WayID:       way.ID,
		Tags:        way.Tags,
		LengthMeter: geo.PathLengthMeter(points),
	})
	if !forward && !backward {
		return nil
	}

	fromID, toID := p.vertexID(from), p.vertexID(to)
	if err := p.graph.AddArc(fromID, toID, datastructure.NewArcData(weight, forward, backward, tagsRef)); err != nil {
		return fmt.Errorf("way %d: %w", way.ID, err)
	}
	return nil
}

func acceptOsmWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := skipHighway[highway]; !ok {
			return true
		}
	} else if way.Tags.Find("route") == "road" {
		return true
	} else if junction != "" {
		return true
	}
	return false
}
