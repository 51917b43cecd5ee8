// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
)

// Stage abstracts changes to be written into the store.
type Stage struct {
	store   kv.Store
	cache   *cache.LRU[string, rlp.RawValue]
	changes map[key]rlp.RawValue
}

// Len returns the number of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes in one batch.
func (s *Stage) Commit() error {
	if len(s.changes) == 0 {
		return nil
	}

	batch := s.store.NewBatch()
	encoded := make(map[string]rlp.RawValue, len(s.changes))
	for k, v := range s.changes {
		enc := k.encode()
		var err error
		if len(v) == 0 {
			err = batch.Delete(enc)
		} else {
			err = batch.Put(enc, v)
		}
		if err != nil {
			return errors.Wrap(err, "stage")
		}
		encoded[string(enc)] = v
		metricStateAccess().AddWithLabel(1, map[string]string{"type": "write", "target": k.kind.String()})
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit stage")
	}

	if s.cache != nil {
		for k, v := range encoded {
			s.cache.Add(k, v)
		}
	}
	return nil
}
