package cache

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/omniscale/contour-osm/log"
	"github.com/pkg/errors"
)

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Printf("[error] badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Printf("[warn] badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Printf("[debug] badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {}

type badgerDB struct {
	db    *badger.DB
	batch *badger.WriteBatch
}

func openBadger(path string) (kv, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{}).
		WithSyncWrites(false)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerDB{db: db}, nil
}

func (b *badgerDB) put(key, value []byte) error {
	if b.batch == nil {
		b.batch = b.db.NewWriteBatch()
	}
	return b.batch.Set(key, value)
}

func (b *badgerDB) flush() error {
	if b.batch == nil {
		return nil
	}
	err := b.batch.Flush()
	b.batch = nil
	return errors.Wrap(err, "writing badger batch")
}

func (b *badgerDB) iter(fn func(key, value []byte) error) error {
	if err := b.flush(); err != nil {
		return err
	}
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 1000
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			err := item.Value(func(val []byte) error {
				return fn(key, val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *badgerDB) close() error {
	if b.batch != nil {
		b.batch.Cancel()
		b.batch = nil
	}
	return b.db.Close()
}
