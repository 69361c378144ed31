// Package redisstate 把 shuffle 状态快照保存在 Redis 字符串键中
package redisstate

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/lbp0200/shufflebuddy/shuffle"
)

// DefaultPrefix 是快照键的默认前缀
const DefaultPrefix = "shufflebuddy:"

// Store 实现 shuffle.Backend
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New 使用调用方的 Redis 客户端；prefix 为空时使用 DefaultPrefix
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Dial 按地址创建客户端并检查连通性
func Dial(ctx context.Context, addr, password string, db int, prefix string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(client, prefix), nil
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Get 读取快照，不存在时返回 shuffle.ErrStateNotFound
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shuffle.ErrStateNotFound
	}
	return data, err
}

// Put 覆盖写入快照，不设置过期时间
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.client.Set(ctx, s.key(name), data, 0).Err()
}

// Delete 删除快照
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.client.Del(ctx, s.key(name)).Err()
}

// Close 关闭客户端
func (s *Store) Close() error {
	return s.client.Close()
}
