package kv

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"go.uber.org/zap"
)

// BadgerStore is a HierarchyStore on top of badger.
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

func NewBadgerStore(db *badger.DB, logger *zap.Logger) *BadgerStore {
	return &BadgerStore{db: db, logger: logger}
}

// OpenBadger opens a badger db at path. an empty path gives an in memory db.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

func (k *BadgerStore) SaveGraph(ctx context.Context, g *datastructure.Graph, tags *datastructure.TagTable) error {
	return saveGraph(ctx, k, k.logger, g, tags)
}

func (k *BadgerStore) LoadGraph(ctx context.Context) (*datastructure.Graph, *datastructure.TagTable, error) {
	return loadGraph(ctx, k, k.logger)
}

func (k *BadgerStore) writeBatch(ctx context.Context, pairs []kvPair) error {
	return badgerWriteBatch(ctx, k.db, k.logger, pairs)
}

func (k *BadgerStore) get(key []byte) ([]byte, error) {
	return badgerGet(k.db, key)
}

func (k *BadgerStore) Close() error {
	return k.db.Close()
}

func badgerWriteBatch(ctx context.Context, db *badger.DB, logger *zap.Logger, pairs []kvPair) error {
	batch := db.NewWriteBatch()
	defer batch.Cancel()

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := batch.Set(pair.key, pair.value); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		logger.Error("error saving batch", zap.Error(err))
		return err
	}
	logger.Debug("batch saved", zap.Int("keys", len(pairs)))
	return nil
}

func badgerGet(db *badger.DB, key []byte) ([]byte, error) {
	var val []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return val, err
}
