// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ErrOverflow is the panic value raised when checked arithmetic leaves the uint256 range.
// Reaching it means a ledger invariant was broken, so it is never returned as an error.
type ErrOverflow struct {
	Op   string
	X, Y *uint256.Int
}

func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("arithmetic overflow: %v %s %v", e.X, e.Op, e.Y)
}

// Add returns x+y, panic on overflow.
func Add(x, y *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		panic(&ErrOverflow{"+", x, y})
	}
	return z
}

// Sub returns x-y, panic on underflow.
func Sub(x, y *uint256.Int) *uint256.Int {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		panic(&ErrOverflow{"-", x, y})
	}
	return z
}

// Mul returns x*y, panic on overflow.
func Mul(x, y *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		panic(&ErrOverflow{"*", x, y})
	}
	return z
}

// Reward computes the reward earned by amount staked since `since` at time `now`.
// Only whole periods count, and a clock behind `since` earns nothing.
func Reward(amount *uint256.Int, since, now uint64) *uint256.Int {
	if now <= since || amount.IsZero() {
		return new(uint256.Int)
	}
	periods := (now - since) / RewardPeriod
	if periods == 0 {
		return new(uint256.Int)
	}
	x := Mul(uint256.NewInt(periods), amount)
	return x.Div(x, uint256.NewInt(RewardPerPeriodDivisor))
}

// NewAmount returns a uint256 holding v.
func NewAmount(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// ParseAmount parses a decimal or 0x-prefixed hex amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}
