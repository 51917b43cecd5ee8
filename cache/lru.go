// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a typed, size bounded cache over golang-lru.
// Lookups made through GetOrLoad are counted under the cache name.
type LRU[K comparable, V any] struct {
	inner *lru.Cache
	stats Stats
}

// NewLRU creates a cache holding at most maxSize entries.
// maxSize should be > 0, or an error returned.
func NewLRU[K comparable, V any](name string, maxSize int) (*LRU[K, V], error) {
	inner, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{inner: inner, stats: Stats{name: name}}, nil
}

// Get returns the cached value of key without counting the lookup.
func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.inner.Get(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

// Add puts or refreshes a value.
func (l *LRU[K, V]) Add(key K, value V) {
	l.inner.Add(key, value)
}

func (l *LRU[K, V]) Contains(key K) bool {
	return l.inner.Contains(key)
}

func (l *LRU[K, V]) Remove(key K) {
	l.inner.Remove(key)
}

func (l *LRU[K, V]) Len() int {
	return l.inner.Len()
}

// Purge drops all entries. Counters are kept.
func (l *LRU[K, V]) Purge() {
	l.inner.Purge()
}

// GetOrLoad first tries the cache and calls load on a miss.
// A failed load is not cached.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		l.stats.hit()
		return v, nil
	}
	l.stats.miss()
	v, err := load(key)
	if err != nil {
		var zero V
		return zero, err
	}
	l.Add(key, v)
	return v, nil
}

// Stats returns the GetOrLoad counters.
func (l *LRU[K, V]) Stats() Snapshot {
	return l.stats.Snapshot()
}
