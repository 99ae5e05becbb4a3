package kv

import (
	"context"
	"testing"

	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/lintang-b-s/chroute/pkg/contractor"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

func newContractedGraph(t *testing.T, n, m int) (*datastructure.Graph, *datastructure.TagTable) {
	rd := rand.New(rand.NewSource(42))
	tags := datastructure.NewTagTable()
	g := datastructure.NewGraph()
	for i := 0; i < n; i++ {
		g.AddVertex(datastructure.NewCoordinate(-7.8+rd.Float64()*0.1, 110.3+rd.Float64()*0.1))
	}
	highways := []string{"primary", "secondary", "residential"}
	for i := 0; i < m; i++ {
		from, to := int32(rd.Intn(n)), int32(rd.Intn(n))
		if from == to {
			continue
		}
		ref := tags.Add([]datastructure.Tag{
			datastructure.NewTag("highway", highways[rd.Intn(len(highways))]),
		})
		require.NoError(t, g.AddArc(from, to, datastructure.NewArcData(float64(1+rd.Intn(20)), true, rd.Intn(2) == 0, ref)))
	}

	c := contractor.NewContractor(g, contractor.NewLazyOrdering(), contractor.NewDefaultWitnessCalculator())
	require.NoError(t, c.Contract(context.Background()))
	return g, tags
}

func assertSameGraph(t *testing.T, want, got *datastructure.Graph) {
	require.Equal(t, want.NumNodes(), got.NumNodes())
	assert.Equal(t, want.GetNodes(), got.GetNodes())
	assert.Equal(t, want.GetArcs(), got.GetArcs())
	assert.Equal(t, want.NumShortcuts(), got.NumShortcuts())
	for v := int32(0); v < int32(want.NumNodes()); v++ {
		assert.ElementsMatch(t, want.OutArcs(v), got.OutArcs(v))
		assert.ElementsMatch(t, want.InArcs(v), got.InArcs(v))
	}
}

func TestHierarchyStoreRoundTrip(t *testing.T) {
	g, tags := newContractedGraph(t, 1500, 4000)
	require.True(t, g.IsFullyContracted())
	require.Greater(t, len(g.GetArcs()), chunkSize)

	stores := map[string]func(t *testing.T) HierarchyStore{
		"badger": func(t *testing.T) HierarchyStore {
			db, err := OpenBadger("")
			require.NoError(t, err)
			return NewBadgerStore(db, zap.NewNop())
		},
		"pebble": func(t *testing.T) HierarchyStore {
			db, err := OpenPebble("")
			require.NoError(t, err)
			return NewPebbleStore(db, zap.NewNop())
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()

			_, _, err := store.LoadGraph(context.Background())
			assert.ErrorIs(t, err, ErrHierarchyNotFound)

			require.NoError(t, store.SaveGraph(context.Background(), g, tags))
			loaded, loadedTags, err := store.LoadGraph(context.Background())
			require.NoError(t, err)

			assertSameGraph(t, g, loaded)
			assert.True(t, loaded.IsFullyContracted())
			assert.Equal(t, tags.Len(), loadedTags.Len())
			for ref := int32(0); ref < int32(tags.Len()); ref++ {
				assert.Equal(t, tags.Get(ref), loadedTags.Get(ref))
			}
		})
	}
}

func TestSaveGraphWithoutTags(t *testing.T) {
	g := datastructure.NewGraph()
	g.AddVertex(datastructure.NewCoordinate(0, 0))
	g.AddVertex(datastructure.NewCoordinate(0, 1))
	require.NoError(t, g.AddArc(0, 1, datastructure.NewArcData(2, true, false, datastructure.NoTags)))

	db, err := OpenBadger("")
	require.NoError(t, err)
	store := NewBadgerStore(db, zap.NewNop())
	defer store.Close()

	require.NoError(t, store.SaveGraph(context.Background(), g, nil))
	loaded, tags, err := store.LoadGraph(context.Background())
	require.NoError(t, err)
	assertSameGraph(t, g, loaded)
	assert.Equal(t, 0, tags.Len())
}

func TestSaveGraphCancelled(t *testing.T) {
	g, tags := newContractedGraph(t, 100, 300)
	db, err := OpenPebble("")
	require.NoError(t, err)
	store := NewPebbleStore(db, zap.NewNop())
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.SaveGraph(ctx, g, tags), context.Canceled)

	_, _, err = store.LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrHierarchyNotFound)
}

func TestLoadGraphMissingChunk(t *testing.T) {
	g, tags := newContractedGraph(t, 100, 300)
	db, err := OpenBadger("")
	require.NoError(t, err)
	store := NewBadgerStore(db, zap.NewNop())
	defer store.Close()

	require.NoError(t, store.SaveGraph(context.Background(), g, tags))
	require.NoError(t, db.DropPrefix([]byte(arcPrefix)))

	_, _, err = store.LoadGraph(context.Background())
	assert.ErrorIs(t, err, ErrCorruptedHierarchy)
}

func TestOpenHierarchyStore(t *testing.T) {
	store, err := OpenHierarchyStore(config.StorageOptions{Backend: config.PEBBLE}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &PebbleStore{}, store)
	require.NoError(t, store.Close())

	store, err = OpenHierarchyStore(config.StorageOptions{Backend: config.BADGER}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, store)
	require.NoError(t, store.Close())

	_, err = OpenHierarchyStore(config.StorageOptions{Backend: "rocksdb"}, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}
