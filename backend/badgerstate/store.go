// Package badgerstate 把 shuffle 状态快照保存在 BadgerDB 中
package badgerstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/lbp0200/shufflebuddy/shuffle"
)

var prefixKeyShuffleBytes = []byte("SHUFFLE_")

// Store 实现 shuffle.Backend
type Store struct {
	db *badger.DB
}

// Open 打开 path 目录下的 BadgerDB
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func snapshotKey(name string) []byte {
	return append(append([]byte(nil), prefixKeyShuffleBytes...), name...)
}

// Get 读取快照，不存在时返回 shuffle.ErrStateNotFound
func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(name))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, shuffle.ErrStateNotFound
	}
	return val, err
}

// Put 覆盖写入快照
func (s *Store) Put(_ context.Context, name string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(name), data)
	})
}

// Delete 删除快照，不存在时不报错
func (s *Store) Delete(_ context.Context, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(name))
	})
}

// Names 列出所有快照名称
func (s *Store) Names(_ context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefixKeyShuffleBytes); iter.ValidForPrefix(prefixKeyShuffleBytes); iter.Next() {
			key := iter.Item().Key()
			names = append(names, string(key[len(prefixKeyShuffleBytes):]))
		}
		return nil
	})
	return names, err
}

// Close 关闭底层数据库
func (s *Store) Close() error {
	return s.db.Close()
}
