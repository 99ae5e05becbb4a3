package kv

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"go.uber.org/zap"
)

// PebbleStore is a HierarchyStore on top of pebble.
type PebbleStore struct {
	db     *pebble.DB
	logger *zap.Logger
}

func NewPebbleStore(db *pebble.DB, logger *zap.Logger) *PebbleStore {
	return &PebbleStore{db: db, logger: logger}
}

// OpenPebble opens a pebble db at path. an empty path gives an in memory db.
func OpenPebble(path string) (*pebble.DB, error) {
	opts := &pebble.Options{}
	if path == "" {
		opts.FS = vfs.NewMem()
	}
	return pebble.Open(path, opts)
}

func (p *PebbleStore) SaveGraph(ctx context.Context, g *datastructure.Graph, tags *datastructure.TagTable) error {
	return saveGraph(ctx, p, p.logger, g, tags)
}

func (p *PebbleStore) LoadGraph(ctx context.Context) (*datastructure.Graph, *datastructure.TagTable, error) {
	return loadGraph(ctx, p, p.logger)
}

func (p *PebbleStore) writeBatch(ctx context.Context, pairs []kvPair) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := batch.Set(pair.key, pair.value, nil); err != nil {
			return err
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		p.logger.Error("error saving batch", zap.Error(err))
		return err
	}
	p.logger.Debug("batch saved", zap.Int("keys", len(pairs)))
	return nil
}

func (p *PebbleStore) get(key []byte) ([]byte, error) {
	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte{}, val...), nil
}

func (p *PebbleStore) Close() error {
	return p.db.Close()
}
