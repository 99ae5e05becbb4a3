package kv

import (
	"context"
	"testing"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestH3IndexSnap(t *testing.T) {
	g := datastructure.NewGraph()
	// sekitar tugu jogja
	g.AddVertex(datastructure.NewCoordinate(-7.782889, 110.367083))
	g.AddVertex(datastructure.NewCoordinate(-7.783500, 110.367900))
	g.AddVertex(datastructure.NewCoordinate(-7.801400, 110.364700))

	db, err := OpenBadger("")
	require.NoError(t, err)
	index := NewH3Index(db, zap.NewNop())
	defer index.Close()

	require.NoError(t, index.Build(context.Background(), g))

	tests := []struct {
		name     string
		lat, lon float64
		want     int32
	}{
		{name: "on vertex", lat: -7.782889, lon: 110.367083, want: 0},
		{name: "on second vertex", lat: -7.783500, lon: 110.367900, want: 1},
		{name: "needs ring search", lat: -7.799000, lon: 110.364700, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, dist, err := index.Snap(tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
			assert.GreaterOrEqual(t, dist, 0.0)
		})
	}

	_, dist, err := index.Snap(-7.782889, 110.367083)
	require.NoError(t, err)
	assert.InDelta(t, 0, dist, 1e-6)
}

func TestH3IndexEmpty(t *testing.T) {
	db, err := OpenBadger("")
	require.NoError(t, err)
	index := NewH3Index(db, zap.NewNop())
	defer index.Close()

	require.NoError(t, index.Build(context.Background(), datastructure.NewGraph()))
	_, _, err = index.Snap(-7.78, 110.36)
	assert.ErrorIs(t, err, ErrNodesNotFound)
}
