// Package redisstore persists bizdesk collection blobs as Redis strings.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/dwoolworth/bizdesk"
)

// DefaultPrefix namespaces blob keys.
const DefaultPrefix = "bizdesk:"

// Store keeps each blob under prefix+key. SET replaces the value atomically.
type Store struct {
	client *goRedis.Client
	prefix string
	owned  bool
}

// Connect parses a redis:// URL, creates a client and performs a health check.
func Connect(url, prefix string) (*Store, error) {
	opts, err := goRedis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisstore: %w", err)
	}

	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}

	s := New(client, prefix)
	s.owned = true
	return s, nil
}

// New wraps an existing client. The caller keeps ownership of it.
func New(client *goRedis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goRedis.Nil) {
		return nil, bizdesk.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get %q: %w", key, err)
	}
	return blob, nil
}

func (s *Store) Put(ctx context.Context, key string, blob []byte) error {
	if key == "" {
		return fmt.Errorf("redisstore: empty key")
	}
	if err := s.client.Set(ctx, s.prefix+key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: put %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redisstore: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redisstore: keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the client when the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ bizdesk.Backend = (*Store)(nil)
