// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/token"
)

// Transfer is a stored transfer notification.
type Transfer struct {
	Seq       uint64
	Index     uint32
	Time      uint64
	Sender    token.Address
	Recipient token.Address
	Amount    *uint256.Int
}

// Approval is a stored approval notification.
type Approval struct {
	Seq     uint64
	Index   uint32
	Time    uint64
	Owner   token.Address
	Spender token.Address
	Amount  *uint256.Int
}

type StakeAction string

const (
	Staked   StakeAction = "staked"
	Unstaked StakeAction = "unstaked"
)

// StakeLog is a stored staked or unstaked notification.
type StakeLog struct {
	Seq              uint64
	Index            uint32
	Time             uint64
	Action           StakeAction
	Staker           token.Address
	Amount           *uint256.Int
	Reward           *uint256.Int // zero for staked
	Position         uint64
	StakeholderIndex uint64 // zero for unstaked
	Timestamp        uint64
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds a query by call sequence or call time, both inclusive.
// A To lower than From leaves the range open ended.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type TransferCriteria struct {
	Sender    *token.Address `json:"sender"`    //who transferred tokens
	Recipient *token.Address `json:"recipient"` //who received tokens
}

type TransferFilter struct {
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

type ApprovalFilter struct {
	Owner   *token.Address
	Spender *token.Address
	Range   *Range
	Options *Options
	Order   Order
}

type StakeFilter struct {
	Staker  *token.Address
	Action  StakeAction // empty matches both
	Range   *Range
	Options *Options
	Order   Order
}
