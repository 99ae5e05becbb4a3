package datastructure

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

const (
	// NoLevel is the level of a vertex that has not been contracted yet.
	NoLevel int32 = -1
	// NoVia is the via vertex of an original (non shortcut) arc.
	NoVia int32 = -1
	// NoTags marks an arc without a tags handle.
	NoTags int32 = -1
)

// CHNode is a vertex of the road network. Level is its rank in the contraction order.
type CHNode struct {
	ID    int32   `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Level int32   `json:"level"`
}

func NewCHNode(lat, lon float64, id int32) CHNode {
	return CHNode{
		ID:    id,
		Lat:   lat,
		Lon:   lon,
		Level: NoLevel,
	}
}

func (n CHNode) IsContracted() bool {
	return n.Level != NoLevel
}

func (n CHNode) Coordinate() Coordinate {
	return NewCoordinate(n.Lat, n.Lon)
}

/*
ArcData. data of one stored arc record (from,to).
Forward: from->to traversable, Backward: to->from traversable.
kalau Forward dan Backward sama-sama false, arc sudah dihapus (logically deleted).
*/
type ArcData struct {
	Weight     float64
	Forward    bool
	Backward   bool
	IsShortcut bool
	ViaNodeID  int32
	TagsRef    int32
}

func NewArcData(weight float64, forward, backward bool, tagsRef int32) ArcData {
	return ArcData{
		Weight:    weight,
		Forward:   forward,
		Backward:  backward,
		ViaNodeID: NoVia,
		TagsRef:   tagsRef,
	}
}

func NewShortcutArcData(weight float64, forward, backward bool, viaNodeID int32) ArcData {
	return ArcData{
		Weight:     weight,
		Forward:    forward,
		Backward:   backward,
		IsShortcut: true,
		ViaNodeID:  viaNodeID,
		TagsRef:    NoTags,
	}
}

func (a ArcData) IsDeleted() bool {
	return !a.Forward && !a.Backward
}

// Reversed returns the same record seen from the other endpoint.
func (a ArcData) Reversed() ArcData {
	a.Forward, a.Backward = a.Backward, a.Forward
	return a
}

// sameContent reports whether two records describe the same traversal, ignoring direction flags.
func (a ArcData) sameContent(b ArcData) bool {
	return a.Weight == b.Weight && a.IsShortcut == b.IsShortcut &&
		a.ViaNodeID == b.ViaNodeID && a.TagsRef == b.TagsRef
}

// Arc is a stored arc record.
type Arc struct {
	ArcID  int32
	FromID int32
	ToID   int32
	Data   ArcData
}

func NewArc(arcID, fromID, toID int32, data ArcData) Arc {
	return Arc{
		ArcID:  arcID,
		FromID: fromID,
		ToID:   toID,
		Data:   data,
	}
}

// AdjacentArc is one live directed move seen from a vertex.
// for OutArcs(v) the move is v->NeighborID, for InArcs(v) it is NeighborID->v.
type AdjacentArc struct {
	ArcID      int32
	NeighborID int32
	Weight     float64
	IsShortcut bool
	ViaNodeID  int32
	TagsRef    int32
}

func newAdjacentArc(arc *Arc, neighborID int32) AdjacentArc {
	return AdjacentArc{
		ArcID:      arc.ArcID,
		NeighborID: neighborID,
		Weight:     arc.Data.Weight,
		IsShortcut: arc.Data.IsShortcut,
		ViaNodeID:  arc.Data.ViaNodeID,
		TagsRef:    arc.Data.TagsRef,
	}
}
