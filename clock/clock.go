// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock supplies the time of calls, in unix seconds.
package clock

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrOverflow is returned when advancing would move a clock past the uint64 range.
var ErrOverflow = errors.New("clock: advance overflows")

// Clock reads the current time in unix seconds.
type Clock interface {
	Now() uint64
}

// Advancer is a clock that can be moved forward.
type Advancer interface {
	Clock
	// Advance moves the clock forward by seconds and returns the new time.
	// The clock is left untouched when the new time would overflow.
	Advance(seconds uint64) (uint64, error)
}

// System reads the wall clock.
type System struct{}

// Now implements Clock.
func (System) Now() uint64 {
	return uint64(time.Now().Unix())
}

// Manual only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

// NewManual creates a manual clock reading start.
func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance implements Advancer.
func (m *Manual) Advance(seconds uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seconds > math.MaxUint64-m.now {
		return m.now, ErrOverflow
	}
	m.now += seconds
	return m.now, nil
}

// Set moves the clock to t, backwards included.
func (m *Manual) Set(t uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Offset is a base clock shifted by an accumulated offset.
type Offset struct {
	base   Clock
	mu     sync.Mutex
	offset uint64
}

// NewOffset wraps base with a zero offset.
func NewOffset(base Clock) *Offset {
	return &Offset{base: base}
}

// Now implements Clock.
func (o *Offset) Now() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.base.Now() + o.offset
}

// Advance implements Advancer.
func (o *Offset) Advance(seconds uint64) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.base.Now() + o.offset
	if seconds > math.MaxUint64-now {
		return now, ErrOverflow
	}
	o.offset += seconds
	return now + seconds, nil
}
