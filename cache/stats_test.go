// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	s := &Stats{name: "test"}
	assert.Equal(t, float64(0), s.Snapshot().HitRate())

	s.hit()
	s.hit()
	s.hit()
	s.miss()

	snap := s.Snapshot()
	assert.Equal(t, int64(3), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, 0.75, snap.HitRate())
}
