// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/token"
)

// Stake is one slot of an owner's stake list.
// RLP encoded objects are stored under the (owner, position) key.
type Stake struct {
	Owner    token.Address
	Amount   *uint256.Int
	Since    uint64
	Position uint64 `rlp:"-"`
}

// IsEmpty returns if the slot holds nothing.
// A withdrawn slot is reset to the empty value and keeps its position.
func (s *Stake) IsEmpty() bool {
	return s.Owner.IsZero() && (s.Amount == nil || s.Amount.IsZero())
}

func emptyStake(position uint64) *Stake {
	return &Stake{Amount: new(uint256.Int), Position: position}
}

// Copy returns a deep copy.
func (s *Stake) Copy() *Stake {
	cpy := *s
	if s.Amount != nil {
		cpy.Amount = s.Amount.Clone()
	} else {
		cpy.Amount = new(uint256.Int)
	}
	return &cpy
}
