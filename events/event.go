// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the notifications produced by ledger and staking calls
// and the emitters delivering them.
package events

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/token"
)

const (
	TypeTransfer = "transfer"
	TypeApproval = "approval"
	TypeStaked   = "staked"
	TypeUnstaked = "unstaked"
)

// Event represents a structured state change.
type Event interface {
	EventType() string
}

// Transfer is emitted for every balance movement. Mints come from the zero
// address and burns go to it.
type Transfer struct {
	From   token.Address
	To     token.Address
	Amount *uint256.Int
}

func (Transfer) EventType() string { return TypeTransfer }

// Approval is emitted when an allowance is set.
type Approval struct {
	Owner   token.Address
	Spender token.Address
	Amount  *uint256.Int
}

func (Approval) EventType() string { return TypeApproval }

// Staked is emitted when a stake is created.
type Staked struct {
	Staker    token.Address
	Amount    *uint256.Int
	Index     uint64 // stakeholder index
	Position  uint64
	Timestamp uint64
}

func (Staked) EventType() string { return TypeStaked }

// Unstaked is emitted when a stake is partially or fully withdrawn.
type Unstaked struct {
	Staker    token.Address
	Amount    *uint256.Int
	Reward    *uint256.Int
	Position  uint64
	Timestamp uint64
}

func (Unstaked) EventType() string { return TypeUnstaked }

// Record is an event as delivered after its call committed.
type Record struct {
	Seq   uint64 // sequence of the call
	Index uint32 // position of the event within the call
	Time  uint64 // clock reading of the call
	Event Event
}

// Sink collects events while a call runs.
type Sink interface {
	Add(Event)
}

// Buffer is a Sink keeping events in order.
type Buffer struct {
	events []Event
}

// Add implements Sink.
func (b *Buffer) Add(ev Event) {
	b.events = append(b.events, ev)
}

// Records stamps the buffered events with the call sequence and time.
func (b *Buffer) Records(seq, time uint64) []*Record {
	records := make([]*Record, 0, len(b.events))
	for i, ev := range b.events {
		records = append(records, &Record{
			Seq:   seq,
			Index: uint32(i),
			Time:  time,
			Event: ev,
		})
	}
	return records
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}
