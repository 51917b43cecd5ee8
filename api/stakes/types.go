// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/token"
)

type StakeRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type StakeResult struct {
	Position uint64 `json:"position"`
}

type WithdrawRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type WithdrawResult struct {
	Reward *math.HexOrDecimal256 `json:"reward"`
}

type Stake struct {
	Owner     token.Address         `json:"owner"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Since     uint64                `json:"since"`
	Position  uint64                `json:"position"`
	Claimable *math.HexOrDecimal256 `json:"claimable"`
	Empty     bool                  `json:"empty"`
}

type Summary struct {
	Index       uint64                `json:"index"`
	TotalAmount *math.HexOrDecimal256 `json:"totalAmount"`
	Stakes      []*Stake              `json:"stakes"`
}

func convertSummary(s *staker.Summary) *Summary {
	out := &Summary{
		Index:       s.Index,
		TotalAmount: utils.FromAmount(s.TotalAmount),
		Stakes:      make([]*Stake, 0, len(s.Stakes)),
	}
	for _, v := range s.Stakes {
		out.Stakes = append(out.Stakes, &Stake{
			Owner:     v.Owner,
			Amount:    utils.FromAmount(v.Amount),
			Since:     v.Since,
			Position:  v.Position,
			Claimable: utils.FromAmount(v.Claimable),
			Empty:     v.IsEmpty(),
		})
	}
	return out
}
