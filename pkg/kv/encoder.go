package kv

import (
	"fmt"

	"github.com/kelindar/binary"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

const (
	chunkSize = 1000

	metadataKey   = "meta"
	nodePrefix    = "node:"
	arcPrefix     = "arc:"
	tagSetPrefix  = "tagset:"
	tagStringsKey = "tagstrings"
)

// metadata is stored under metadataKey and tells LoadGraph how many chunks to read.
type metadata struct {
	NumNodes   int
	NumArcs    int
	NumTagSets int
	ChunkSize  int
}

func chunkKey(prefix string, chunk int) []byte {
	return []byte(fmt.Sprintf("%s%08d", prefix, chunk))
}

func numChunks(n, size int) int {
	return (n + size - 1) / size
}

func encodeNodes(nodes []datastructure.CHNode) ([]byte, error) {
	return encodeCompressed(nodes)
}

func decodeNodes(bb []byte) ([]datastructure.CHNode, error) {
	var nodes []datastructure.CHNode
	err := decodeCompressed(bb, &nodes)
	return nodes, err
}

func encodeArcs(arcs []datastructure.Arc) ([]byte, error) {
	return encodeCompressed(arcs)
}

func decodeArcs(bb []byte) ([]datastructure.Arc, error) {
	var arcs []datastructure.Arc
	err := decodeCompressed(bb, &arcs)
	return arcs, err
}

func encodeTagSets(sets [][]int32) ([]byte, error) {
	return encodeCompressed(sets)
}

func decodeTagSets(bb []byte) ([][]int32, error) {
	var sets [][]int32
	err := decodeCompressed(bb, &sets)
	return sets, err
}

func encodeStrings(strs []string) ([]byte, error) {
	return encodeCompressed(strs)
}

func decodeStrings(bb []byte) ([]string, error) {
	var strs []string
	err := decodeCompressed(bb, &strs)
	return strs, err
}

func encodeMetadata(meta metadata) ([]byte, error) {
	return binary.Marshal(meta)
}

func decodeMetadata(bb []byte) (metadata, error) {
	var meta metadata
	err := binary.Unmarshal(bb, &meta)
	return meta, err
}

func encodeNodeIDs(ids []int32) ([]byte, error) {
	return binary.Marshal(ids)
}

func decodeNodeIDs(bb []byte) ([]int32, error) {
	var ids []int32
	err := binary.Unmarshal(bb, &ids)
	return ids, err
}

func encodeCompressed(v any) ([]byte, error) {
	bb, err := binary.Marshal(v)
	if err != nil {
		return nil, err
	}
	return compress(bb)
}

func decodeCompressed(bbCompressed []byte, v any) error {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return err
	}
	return binary.Unmarshal(bb, v)
}
