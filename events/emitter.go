// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/stakeledger/log"
)

var logger = log.WithContext("pkg", "events")

// Emitter delivers committed records to downstream consumers (api, event log).
type Emitter interface {
	Emit(records []*Record) error
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all records.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit([]*Record) error { return nil }

// Emitters fans records out to several emitters in order.
// A failing emitter is logged and does not stop the others.
type Emitters []Emitter

// Emit implements the Emitter interface. It returns the first error met.
func (es Emitters) Emit(records []*Record) error {
	var first error
	for _, e := range es {
		if err := e.Emit(records); err != nil {
			logger.Warn("failed to emit records", "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// feedQueueSize is the number of batches a Feed holds before Emit blocks.
const feedQueueSize = 1024

// Feed broadcasts records to channel subscribers.
// Batches are handed to a single dispatcher goroutine, so subscribers see
// records in emission order and a slow subscriber does not hold up the emitter
// until the queue is full.
type Feed struct {
	feed  event.Feed
	scope event.SubscriptionScope

	initOnce  sync.Once
	closeOnce sync.Once
	queue     chan []*Record
	quit      chan struct{}
	done      chan struct{}
}

func (f *Feed) init() {
	f.initOnce.Do(func() {
		f.queue = make(chan []*Record, feedQueueSize)
		f.quit = make(chan struct{})
		f.done = make(chan struct{})
		go f.loop()
	})
}

func (f *Feed) loop() {
	defer close(f.done)
	for {
		select {
		case <-f.quit:
			return
		case records := <-f.queue:
			for _, rec := range records {
				f.feed.Send(rec)
			}
		}
	}
}

// Emit implements the Emitter interface.
// Records emitted after Close are dropped.
func (f *Feed) Emit(records []*Record) error {
	f.init()
	select {
	case f.queue <- records:
	case <-f.quit:
		logger.Debug("feed closed, records dropped", "count", len(records))
	}
	return nil
}

// Subscribe registers ch to receive records until the subscription is closed.
func (f *Feed) Subscribe(ch chan *Record) event.Subscription {
	return f.scope.Track(f.feed.Subscribe(ch))
}

// Close stops the dispatcher and unsubscribes all subscribers.
func (f *Feed) Close() {
	f.init()
	f.closeOnce.Do(func() {
		close(f.quit)
		// unblocks a pending send
		f.scope.Close()
		<-f.done
	})
}
