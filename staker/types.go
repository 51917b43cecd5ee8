// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/token"
)

// StakeView is one slot of a stake list with the reward it would pay now.
type StakeView struct {
	Owner     token.Address
	Amount    *uint256.Int
	Since     uint64
	Position  uint64
	Claimable *uint256.Int
}

// IsEmpty returns if the slot was fully withdrawn.
func (v *StakeView) IsEmpty() bool {
	return v.Owner.IsZero() && v.Amount.IsZero()
}

// Summary is the stake projection of one address.
// Empty slots are listed so that positions line up with the stored list.
type Summary struct {
	Index       uint64
	TotalAmount *uint256.Int
	Stakes      []*StakeView
}
