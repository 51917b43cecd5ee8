// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"math"

	gethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/token"
)

// Range bounds a query by call sequence (default) or time.
type Range struct {
	Unit logdb.RangeType `json:"unit"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type TransferFilter struct {
	CriteriaSet []*logdb.TransferCriteria `json:"criteriaSet"`
	Range       *Range                    `json:"range"`
	Options     *Options                  `json:"options"`
	Order       logdb.Order               `json:"order"`
}

type ApprovalFilter struct {
	Owner   *token.Address `json:"owner"`
	Spender *token.Address `json:"spender"`
	Range   *Range         `json:"range"`
	Options *Options       `json:"options"`
	Order   logdb.Order    `json:"order"`
}

type StakeFilter struct {
	Staker  *token.Address    `json:"staker"`
	Action  logdb.StakeAction `json:"action"`
	Range   *Range            `json:"range"`
	Options *Options          `json:"options"`
	Order   logdb.Order       `json:"order"`
}

// LogMeta locates a notification in the call history.
type LogMeta struct {
	Seq   uint64 `json:"seq"`
	Index uint32 `json:"index"`
	Time  uint64 `json:"time"`
}

type FilteredTransfer struct {
	Sender    token.Address             `json:"sender"`
	Recipient token.Address             `json:"recipient"`
	Amount    *gethmath.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta                   `json:"meta"`
}

type FilteredApproval struct {
	Owner   token.Address             `json:"owner"`
	Spender token.Address             `json:"spender"`
	Amount  *gethmath.HexOrDecimal256 `json:"amount"`
	Meta    LogMeta                   `json:"meta"`
}

type FilteredStake struct {
	Action           logdb.StakeAction         `json:"action"`
	Staker           token.Address             `json:"staker"`
	Amount           *gethmath.HexOrDecimal256 `json:"amount"`
	Reward           *gethmath.HexOrDecimal256 `json:"reward,omitempty"`
	Position         uint64                    `json:"position"`
	StakeholderIndex uint64                    `json:"stakeholderIndex,omitempty"`
	Timestamp        uint64                    `json:"timestamp"`
	Meta             LogMeta                   `json:"meta"`
}

// ConvertRange maps an API range to a db range. Missing bounds are open.
func ConvertRange(r *Range) (*logdb.Range, error) {
	if r == nil {
		return nil, nil
	}
	unit := r.Unit
	switch unit {
	case "":
		unit = logdb.Seq
	case logdb.Seq, logdb.Time:
	default:
		return nil, errors.Errorf("unit: unsupported %q", r.Unit)
	}
	rng := &logdb.Range{Unit: unit}
	if r.From != nil {
		rng.From = *r.From
	}
	if r.To != nil {
		if *r.To < rng.From {
			return nil, errors.New("range.to must be greater than or equal to range.from")
		}
		rng.To = *r.To
	} else {
		rng.To = math.MaxInt64
	}
	return rng, nil
}

func convertOrder(o logdb.Order) (logdb.Order, error) {
	switch o {
	case "", logdb.ASC:
		return logdb.ASC, nil
	case logdb.DESC:
		return logdb.DESC, nil
	}
	return "", errors.Errorf("order: unsupported %q", o)
}

func ConvertTransfer(t *logdb.Transfer) *FilteredTransfer {
	return &FilteredTransfer{
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    utils.FromAmount(t.Amount),
		Meta:      LogMeta{t.Seq, t.Index, t.Time},
	}
}

func ConvertApproval(a *logdb.Approval) *FilteredApproval {
	return &FilteredApproval{
		Owner:   a.Owner,
		Spender: a.Spender,
		Amount:  utils.FromAmount(a.Amount),
		Meta:    LogMeta{a.Seq, a.Index, a.Time},
	}
}

func ConvertStake(s *logdb.StakeLog) *FilteredStake {
	fs := &FilteredStake{
		Action:           s.Action,
		Staker:           s.Staker,
		Amount:           utils.FromAmount(s.Amount),
		Position:         s.Position,
		StakeholderIndex: s.StakeholderIndex,
		Timestamp:        s.Timestamp,
		Meta:             LogMeta{s.Seq, s.Index, s.Time},
	}
	if s.Action == logdb.Unstaked {
		fs.Reward = utils.FromAmount(s.Reward)
	}
	return fs
}
