// Package cache はプロセスローカルのメモ化キャッシュを提供する。
// ストアが常に信頼できる情報源であり、キャッシュは同一プロセス内の
// 読み取り最適化としてのみ使用する。
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Recorder はキャッシュのヒット/ミスの記録インターフェース。
// metrics.Collectorが満たす。
type Recorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// Cache はスレッドセーフなLRUキャッシュ。
// 依存性注入で各サービスに渡し、共有とインバリデーションを明示的にする。
type Cache[K comparable, V any] struct {
	inner    *lru.Cache[K, V]
	name     string
	recorder Recorder
}

// New は指定サイズのCacheを生成する。sizeは1以上であること。
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	inner, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache[K, V]{inner: inner}, nil
}

// NewObserved はヒット/ミスをメトリクスに記録するCacheを生成する。
// nameはメトリクスのラベルに使用する。
func NewObserved[K comparable, V any](size int, name string, recorder Recorder) (*Cache[K, V], error) {
	c, err := New[K, V](size)
	if err != nil {
		return nil, err
	}
	c.name = name
	c.recorder = recorder
	return c, nil
}

// Get はキーに対応する値を返す。
func (c *Cache[K, V]) Get(key K) (V, bool) {
	value, ok := c.inner.Get(key)
	if c.recorder != nil {
		if ok {
			c.recorder.RecordCacheHit(c.name)
		} else {
			c.recorder.RecordCacheMiss(c.name)
		}
	}
	return value, ok
}

// Set は値を格納する。容量超過時は最も使われていないエントリが追い出される。
func (c *Cache[K, V]) Set(key K, value V) {
	c.inner.Add(key, value)
}

// Remove はキーのエントリを削除する。
func (c *Cache[K, V]) Remove(key K) {
	c.inner.Remove(key)
}

// Len は現在のエントリ数を返す。
func (c *Cache[K, V]) Len() int {
	return c.inner.Len()
}
