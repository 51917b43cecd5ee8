// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	"github.com/vechain/stakeledger/metrics"
)

var metricCacheLookups = metrics.LazyLoadCounterVec("cache_lookup_count", []string{"cache", "result"})

// Stats counts cache hits and misses, mirrored to the cache_lookup_count metric.
type Stats struct {
	name                string
	hitCount, missCount atomic.Int64
}

func (s *Stats) hit() {
	s.hitCount.Add(1)
	metricCacheLookups().AddWithLabel(1, map[string]string{"cache": s.name, "result": "hit"})
}

func (s *Stats) miss() {
	s.missCount.Add(1)
	metricCacheLookups().AddWithLabel(1, map[string]string{"cache": s.name, "result": "miss"})
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{Hits: s.hitCount.Load(), Misses: s.missCount.Load()}
}

type Snapshot struct {
	Hits   int64
	Misses int64
}

// HitRate is hits over lookups, 0 before the first lookup.
func (s Snapshot) HitRate() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(lookups)
}
