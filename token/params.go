// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

// Constants of the staking reward schedule.
const (
	// RewardPeriod is the accrual unit in seconds. Partial periods earn nothing.
	RewardPeriod uint64 = 3600
	// RewardPerPeriodDivisor gives a reward of 1/1000 of the staked amount per period.
	RewardPerPeriodDivisor uint64 = 1000
)

// Info describes the fungible token held by the ledger.
type Info struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// IsEmpty returns whether the info was never written.
func (i *Info) IsEmpty() bool {
	return i == nil || (i.Name == "" && i.Symbol == "" && i.Decimals == 0)
}
