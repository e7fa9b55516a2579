package cache

import (
	"github.com/jmhodges/levigo"
	"github.com/pkg/errors"
)

const levelDBBatchSize = 4096

type levelDB struct {
	db      *levigo.DB
	opts    *levigo.Options
	cache   *levigo.Cache
	wo      *levigo.WriteOptions
	ro      *levigo.ReadOptions
	batch   *levigo.WriteBatch
	batched int
}

func openLevelDB(path string) (kv, error) {
	opts := levigo.NewOptions()
	cache := levigo.NewLRUCache(1024 * 1024 * 16)
	opts.SetCache(cache)
	opts.SetCreateIfMissing(true)
	opts.SetMaxOpenFiles(64)
	opts.SetWriteBufferSize(64 * 1024 * 1024)
	opts.SetBlockRestartInterval(128)
	db, err := levigo.Open(path, opts)
	if err != nil {
		opts.Close()
		cache.Close()
		return nil, err
	}
	ro := levigo.NewReadOptions()
	ro.SetFillCache(false)
	return &levelDB{
		db:    db,
		opts:  opts,
		cache: cache,
		wo:    levigo.NewWriteOptions(),
		ro:    ro,
	}, nil
}

func (l *levelDB) put(key, value []byte) error {
	if l.batch == nil {
		l.batch = levigo.NewWriteBatch()
	}
	l.batch.Put(key, value)
	l.batched++
	if l.batched >= levelDBBatchSize {
		return l.flush()
	}
	return nil
}

func (l *levelDB) flush() error {
	if l.batch == nil {
		return nil
	}
	err := l.db.Write(l.wo, l.batch)
	l.batch.Close()
	l.batch = nil
	l.batched = 0
	return errors.Wrap(err, "writing leveldb batch")
}

func (l *levelDB) iter(fn func(key, value []byte) error) error {
	if err := l.flush(); err != nil {
		return err
	}
	it := l.db.NewIterator(l.ro)
	defer it.Close()
	for it.SeekToFirst(); it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.GetError()
}

func (l *levelDB) close() error {
	if l.batch != nil {
		l.batch.Close()
		l.batch = nil
	}
	l.db.Close()
	l.wo.Close()
	l.ro.Close()
	l.opts.Close()
	l.cache.Close()
	return nil
}
