// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
)

// Stater is the state creator.
// States created by the same stater share one value cache.
type Stater struct {
	store kv.Store
	cache *cache.LRU[string, rlp.RawValue]
}

// NewStater create a new stater. A cacheSize <= 0 disables the value cache.
func NewStater(store kv.Store, cacheSize int) *Stater {
	var c *cache.LRU[string, rlp.RawValue]
	if cacheSize > 0 {
		c, _ = cache.NewLRU[string, rlp.RawValue]("state", cacheSize)
	}
	return &Stater{store, c}
}

// NewState create a new state object over the committed values.
func (s *Stater) NewState() *State {
	return New(s.store, s.cache)
}
