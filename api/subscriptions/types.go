// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/token"
)

// EventMessage is one notification pushed to subscribers.
// Fields absent for the event type are omitted.
type EventMessage struct {
	Type             string                `json:"type"`
	Seq              uint64                `json:"seq"`
	Index            uint32                `json:"index"`
	Time             uint64                `json:"time"`
	From             *token.Address        `json:"from,omitempty"`
	To               *token.Address        `json:"to,omitempty"`
	Owner            *token.Address        `json:"owner,omitempty"`
	Spender          *token.Address        `json:"spender,omitempty"`
	Staker           *token.Address        `json:"staker,omitempty"`
	Amount           *math.HexOrDecimal256 `json:"amount"`
	Reward           *math.HexOrDecimal256 `json:"reward,omitempty"`
	Position         *uint64               `json:"position,omitempty"`
	StakeholderIndex *uint64               `json:"stakeholderIndex,omitempty"`
	Timestamp        *uint64               `json:"timestamp,omitempty"`
}

func addr(a token.Address) *token.Address { return &a }
func u64(n uint64) *uint64                { return &n }

func convertRecord(rec *events.Record) *EventMessage {
	msg := &EventMessage{
		Type:  rec.Event.EventType(),
		Seq:   rec.Seq,
		Index: rec.Index,
		Time:  rec.Time,
	}
	switch ev := rec.Event.(type) {
	case *events.Transfer:
		msg.From = addr(ev.From)
		msg.To = addr(ev.To)
		msg.Amount = utils.FromAmount(ev.Amount)
	case *events.Approval:
		msg.Owner = addr(ev.Owner)
		msg.Spender = addr(ev.Spender)
		msg.Amount = utils.FromAmount(ev.Amount)
	case *events.Staked:
		msg.Staker = addr(ev.Staker)
		msg.Amount = utils.FromAmount(ev.Amount)
		msg.Position = u64(ev.Position)
		msg.StakeholderIndex = u64(ev.Index)
		msg.Timestamp = u64(ev.Timestamp)
	case *events.Unstaked:
		msg.Staker = addr(ev.Staker)
		msg.Amount = utils.FromAmount(ev.Amount)
		msg.Reward = utils.FromAmount(ev.Reward)
		msg.Position = u64(ev.Position)
		msg.Timestamp = u64(ev.Timestamp)
	}
	return msg
}

// EventFilter selects records by type and by any address the event carries.
type EventFilter struct {
	Type    string
	Address *token.Address
}

func (f *EventFilter) match(rec *events.Record) bool {
	if f.Type != "" && rec.Event.EventType() != f.Type {
		return false
	}
	if f.Address == nil {
		return true
	}
	var involved []token.Address
	switch ev := rec.Event.(type) {
	case *events.Transfer:
		involved = []token.Address{ev.From, ev.To}
	case *events.Approval:
		involved = []token.Address{ev.Owner, ev.Spender}
	case *events.Staked:
		involved = []token.Address{ev.Staker}
	case *events.Unstaked:
		involved = []token.Address{ev.Staker}
	}
	for _, a := range involved {
		if a == *f.Address {
			return true
		}
	}
	return false
}
