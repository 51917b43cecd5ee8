// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
	"sync/atomic"
	"time"
)

// Goes tracks a group of go routines so their owner can wait for them on shutdown.
type Goes struct {
	wg      sync.WaitGroup
	running atomic.Int32
}

// Go runs f in a new go routine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	g.running.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.running.Add(-1)
		f()
	}()
}

// Running returns the number of go routines not yet returned.
func (g *Goes) Running() int {
	return int(g.running.Load())
}

// Wait blocks until all go routines started by Go are done.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once all go routines are done.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

// WaitTimeout is Wait bounded by d. It reports whether all go routines returned in time.
func (g *Goes) WaitTimeout(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-g.Done():
		return true
	case <-timer.C:
		return false
	}
}
