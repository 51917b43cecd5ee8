// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"sync"

	"github.com/vechain/stakeledger/cache"
)

const maxMessageCacheSize = 1000

// recordKey locates a notification: the call that emitted it and its index within the call.
type recordKey struct {
	seq   uint64
	index uint32
}

// messageCache shares encoded messages between the connections receiving the same record.
type messageCache struct {
	lru *cache.LRU[recordKey, []byte]
	mu  sync.Mutex
}

func newMessageCache(size uint32) *messageCache {
	size = min(max(size, 1), maxMessageCacheSize)
	lru, err := cache.NewLRU[recordKey, []byte]("subscriptions", int(size))
	if err != nil {
		panic(fmt.Errorf("failed to create message cache: %v", err))
	}
	return &messageCache{lru: lru}
}

// GetOrAdd returns the encoded message of record (seq, index), building it with createMessage
// on first use. The bool reports whether the message was built by this call.
func (mc *messageCache) GetOrAdd(seq uint64, index uint32, createMessage func() ([]byte, error)) ([]byte, bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	created := false
	msg, err := mc.lru.GetOrLoad(recordKey{seq, index}, func(recordKey) ([]byte, error) {
		created = true
		return createMessage()
	})
	if err != nil {
		return nil, false, err
	}
	return msg, created, nil
}
