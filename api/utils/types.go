// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/token"
)

// Amount converts a JSON amount, decimal or 0x-prefixed hex, into a token amount.
func Amount(v *math.HexOrDecimal256, name string) (*uint256.Int, error) {
	if v == nil {
		return nil, BadRequest(errors.Errorf("%s: required", name))
	}
	amount, overflow := uint256.FromBig((*big.Int)(v))
	if overflow || (*big.Int)(v).Sign() < 0 {
		return nil, BadRequest(errors.Errorf("%s: out of range", name))
	}
	return amount, nil
}

// FromAmount converts a token amount for JSON output.
func FromAmount(v *uint256.Int) *math.HexOrDecimal256 {
	if v == nil {
		return (*math.HexOrDecimal256)(new(big.Int))
	}
	return (*math.HexOrDecimal256)(v.ToBig())
}

// AddressVar parses the path variable name as an address.
func AddressVar(vars map[string]string, name string) (token.Address, error) {
	addr, err := token.ParseAddress(vars[name])
	if err != nil {
		return token.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// Uint64Var parses the path variable name as an unsigned integer.
func Uint64Var(vars map[string]string, name string) (uint64, error) {
	n, err := strconv.ParseUint(vars[name], 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}
