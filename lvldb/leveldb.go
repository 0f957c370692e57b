// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb backs the kv interfaces with goleveldb.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/undinefi/undine/kv"
)

var _ kv.GetPutCloser = (*LevelDB)(nil)

// Options tunes a persistent instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

// LevelDB adapts a goleveldb database to the kv interfaces.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the database at path, creating it if absent.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb file storage")
	}
	return open(stg, opts)
}

// NewMem creates a memory-backed instance, for tests.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, 16)
	openFiles := max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{db: db}, nil
}

// Get returns the value for the given key.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, nil)
}

// IsNotFound reports whether err from Get means the key is absent.
func (l *LevelDB) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

// Put stores the value for the given key.
func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

// Delete removes the given key.
func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

// NewBatch creates an empty write batch.
func (l *LevelDB) NewBatch() kv.Batch {
	return &batch{db: l.db, b: &leveldb.Batch{}}
}

// Close releases the database. Later operations all fail.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) NewBatch() kv.Batch {
	return &batch{db: b.db, b: &leveldb.Batch{}}
}

func (b *batch) Write() error {
	return b.db.Write(b.b, nil)
}
