package routingalgorithm

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/chroute/pkg/util"
)

var (
	ErrMissingArc = errors.New("arc referenced by shortcut does not exist")
)

type move struct {
	from int32
	to   int32
}

func moveKey(from, to int32) int64 {
	return util.BitPackInt64(int64(from), int64(to), 32)
}

/*
unpackMove. expand move from->to menjadi urutan original arc.
shortcut (u,w) via v diganti dengan (u,v) lalu (v,w), pakai explicit stack supaya tidak rekursif.
hasil expand shortcut disimpan di lru cache.
*/
func (rt *RouteAlgorithm) unpackMove(from, to int32) ([]PathArc, error) {
	top, ok := rt.g.DirectedArc(from, to)
	if !ok {
		return nil, fmt.Errorf("unpack %d->%d: %w", from, to, ErrMissingArc)
	}
	if !top.IsShortcut {
		return []PathArc{{From: from, To: to, Weight: top.Weight, TagsRef: top.TagsRef}}, nil
	}

	key := moveKey(from, to)
	if rt.unpackCache != nil {
		if cached, ok := rt.unpackCache.Get(key); ok {
			return cached, nil
		}
	}

	path := make([]PathArc, 0)
	stack := []move{{from: from, to: to}}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		arc, ok := rt.g.DirectedArc(curr.from, curr.to)
		if !ok {
			return nil, fmt.Errorf("unpack %d->%d: %w", curr.from, curr.to, ErrMissingArc)
		}
		if !arc.IsShortcut {
			path = append(path, PathArc{From: curr.from, To: curr.to, Weight: arc.Weight, TagsRef: arc.TagsRef})
			continue
		}
		if rt.unpackCache != nil {
			if cached, ok := rt.unpackCache.Get(moveKey(curr.from, curr.to)); ok {
				path = append(path, cached...)
				continue
			}
		}

		// (u,v) harus diproses duluan, jadi di push terakhir
		stack = append(stack, move{from: arc.ViaNodeID, to: curr.to})
		stack = append(stack, move{from: curr.from, to: arc.ViaNodeID})
	}

	if rt.unpackCache != nil {
		rt.unpackCache.Add(key, path)
	}
	return path, nil
}

// UnpackShortcut returns the original arcs represented by the move from->to.
func (rt *RouteAlgorithm) UnpackShortcut(from, to int32) ([]PathArc, error) {
	unpacked, err := rt.unpackMove(from, to)
	if err != nil {
		return nil, err
	}
	return append([]PathArc{}, unpacked...), nil
}
