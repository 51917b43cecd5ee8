// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial token and balances of a ledger.
package genesis

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/token"
)

// Alloc is an extra amount minted at initialization.
type Alloc struct {
	Address token.Address
	Amount  *uint256.Int
}

// Genesis seeds a ledger.
type Genesis struct {
	Info   token.Info
	Owner  token.Address
	Supply *uint256.Int
	Allocs []Alloc
	// LaunchTime is the initial reading of clocks created for this genesis, unix seconds.
	LaunchTime uint64
}

// Validate checks the genesis can initialize a ledger.
func (g *Genesis) Validate() error {
	if g.Info.IsEmpty() {
		return errors.New("genesis: token info is empty")
	}
	if g.Owner.IsZero() {
		return errors.New("genesis: owner is the zero address")
	}
	if g.Supply == nil {
		return errors.New("genesis: initial supply missing")
	}
	total := g.Supply.Clone()
	for i, a := range g.Allocs {
		if a.Address.IsZero() {
			return errors.Errorf("genesis: alloc %d to the zero address", i)
		}
		if a.Amount == nil {
			return errors.Errorf("genesis: alloc %d has no amount", i)
		}
		if _, overflow := total.AddOverflow(total, a.Amount); overflow {
			return errors.New("genesis: total supply overflows")
		}
	}
	return nil
}

// ID returns the hash identifying the genesis. The launch time is not part of it.
func (g *Genesis) ID() common.Hash {
	data, err := rlp.EncodeToBytes([]any{
		g.Info,
		g.Owner,
		g.Supply,
		g.Allocs,
	})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(data)
}
