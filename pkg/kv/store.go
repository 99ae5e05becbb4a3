package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lintang-b-s/chroute/pkg/concurrent"
	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"go.uber.org/zap"
)

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrHierarchyNotFound  = errors.New("no contracted graph stored")
	ErrCorruptedHierarchy = errors.New("stored contracted graph is corrupted")
)

const (
	defaultEncodeWorkers = 4
	chunksPerBatch       = 64
)

// HierarchyStore persists a contracted graph together with its tag table.
type HierarchyStore interface {
	SaveGraph(ctx context.Context, g *datastructure.Graph, tags *datastructure.TagTable) error
	LoadGraph(ctx context.Context) (*datastructure.Graph, *datastructure.TagTable, error)
	Close() error
}

type kvPair struct {
	key   []byte
	value []byte
}

// backend is the minimal key value surface shared by the badger and pebble stores.
type backend interface {
	writeBatch(ctx context.Context, pairs []kvPair) error
	get(key []byte) ([]byte, error)
}

type chunkJob struct {
	key    []byte
	encode func() ([]byte, error)
}

type encodedChunk struct {
	pair kvPair
	err  error
}

/*
saveGraph. nodes, arcs (termasuk arc yang sudah dihapus, supaya arc id tetap sama dengan posisinya) dan tag sets
disimpan per chunk 1000 record. tiap chunk di encode kelindar/binary lalu di compress zstd secara paralel.
metadata ditulis paling akhir, jadi save yang gagal di tengah jalan tidak bisa di load.
*/
func saveGraph(ctx context.Context, b backend, logger *zap.Logger, g *datastructure.Graph, tags *datastructure.TagTable) error {
	st := time.Now()
	if tags == nil {
		tags = datastructure.NewTagTable()
	}
	nodes := g.GetNodes()
	arcs := g.GetArcs()
	sets := tags.EncodedSets()

	jobs := make([]chunkJob, 0, numChunks(len(nodes), chunkSize)+numChunks(len(arcs), chunkSize)+numChunks(len(sets), chunkSize)+1)
	for i := 0; i < numChunks(len(nodes), chunkSize); i++ {
		part := nodes[i*chunkSize : min(len(nodes), (i+1)*chunkSize)]
		jobs = append(jobs, chunkJob{key: chunkKey(nodePrefix, i), encode: func() ([]byte, error) { return encodeNodes(part) }})
	}
	for i := 0; i < numChunks(len(arcs), chunkSize); i++ {
		part := arcs[i*chunkSize : min(len(arcs), (i+1)*chunkSize)]
		jobs = append(jobs, chunkJob{key: chunkKey(arcPrefix, i), encode: func() ([]byte, error) { return encodeArcs(part) }})
	}
	for i := 0; i < numChunks(len(sets), chunkSize); i++ {
		part := sets[i*chunkSize : min(len(sets), (i+1)*chunkSize)]
		jobs = append(jobs, chunkJob{key: chunkKey(tagSetPrefix, i), encode: func() ([]byte, error) { return encodeTagSets(part) }})
	}
	strs := tags.Strings()
	jobs = append(jobs, chunkJob{key: []byte(tagStringsKey), encode: func() ([]byte, error) { return encodeStrings(strs) }})

	encoded := concurrent.ParallelMap(defaultEncodeWorkers, jobs, func(job chunkJob) encodedChunk {
		val, err := job.encode()
		return encodedChunk{pair: kvPair{key: job.key, value: val}, err: err}
	})

	batch := make([]kvPair, 0, chunksPerBatch)
	for _, chunk := range encoded {
		if chunk.err != nil {
			return fmt.Errorf("encode %s: %w", chunk.pair.key, chunk.err)
		}
		batch = append(batch, chunk.pair)
		if len(batch) == chunksPerBatch {
			if err := b.writeBatch(ctx, batch); err != nil {
				return err
			}
			batch = make([]kvPair, 0, chunksPerBatch)
		}
	}

	meta, err := encodeMetadata(metadata{
		NumNodes:   len(nodes),
		NumArcs:    len(arcs),
		NumTagSets: len(sets),
		ChunkSize:  chunkSize,
	})
	if err != nil {
		return err
	}
	batch = append(batch, kvPair{key: []byte(metadataKey), value: meta})
	if err := b.writeBatch(ctx, batch); err != nil {
		return err
	}

	logger.Info("contracted graph saved",
		zap.Int("nodes", len(nodes)), zap.Int("arcs", len(arcs)), zap.Int("tag sets", len(sets)),
		zap.Duration("elapsed", time.Since(st)))
	return nil
}

func loadGraph(ctx context.Context, b backend, logger *zap.Logger) (*datastructure.Graph, *datastructure.TagTable, error) {
	st := time.Now()
	bb, err := b.get([]byte(metadataKey))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil, ErrHierarchyNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	meta, err := decodeMetadata(bb)
	if err != nil {
		return nil, nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta.ChunkSize <= 0 {
		return nil, nil, fmt.Errorf("chunk size %d: %w", meta.ChunkSize, ErrCorruptedHierarchy)
	}

	nodes := make([]datastructure.CHNode, 0, meta.NumNodes)
	for i := 0; i < numChunks(meta.NumNodes, meta.ChunkSize); i++ {
		part, err := readChunk(ctx, b, chunkKey(nodePrefix, i), decodeNodes)
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, part...)
	}
	arcs := make([]datastructure.Arc, 0, meta.NumArcs)
	for i := 0; i < numChunks(meta.NumArcs, meta.ChunkSize); i++ {
		part, err := readChunk(ctx, b, chunkKey(arcPrefix, i), decodeArcs)
		if err != nil {
			return nil, nil, err
		}
		arcs = append(arcs, part...)
	}
	sets := make([][]int32, 0, meta.NumTagSets)
	for i := 0; i < numChunks(meta.NumTagSets, meta.ChunkSize); i++ {
		part, err := readChunk(ctx, b, chunkKey(tagSetPrefix, i), decodeTagSets)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, part...)
	}
	strs, err := readChunk(ctx, b, []byte(tagStringsKey), decodeStrings)
	if err != nil {
		return nil, nil, err
	}

	if len(nodes) != meta.NumNodes || len(arcs) != meta.NumArcs || len(sets) != meta.NumTagSets {
		return nil, nil, ErrCorruptedHierarchy
	}

	g, err := datastructure.RestoreGraph(nodes, arcs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptedHierarchy, err)
	}
	logger.Info("contracted graph loaded",
		zap.Int("nodes", len(nodes)), zap.Int("arcs", len(arcs)), zap.Duration("elapsed", time.Since(st)))
	return g, datastructure.NewTagTableFrom(strs, sets), nil
}

func readChunk[T any](ctx context.Context, b backend, key []byte, decode func([]byte) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	bb, err := b.get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return zero, fmt.Errorf("chunk %s: %w", key, ErrCorruptedHierarchy)
	}
	if err != nil {
		return zero, err
	}
	part, err := decode(bb)
	if err != nil {
		return zero, fmt.Errorf("decode chunk %s: %w", key, err)
	}
	return part, nil
}

// OpenHierarchyStore opens the backend named in opts.
func OpenHierarchyStore(opts config.StorageOptions, logger *zap.Logger) (HierarchyStore, error) {
	switch opts.Backend {
	case config.PEBBLE:
		db, err := OpenPebble(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("open pebble db: %w", err)
		}
		return NewPebbleStore(db, logger), nil
	case config.BADGER, "":
		db, err := OpenBadger(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("open badger db: %w", err)
		}
		return NewBadgerStore(db, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, opts.Backend)
	}
}
