// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/token"
)

// Token describes the ledger.
type Token struct {
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
	GenesisID   common.Hash           `json:"genesisID"`
}

// Account for marshal account
type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
	Nonce   uint64                `json:"nonce"`
}

type Allowance struct {
	Owner     token.Address         `json:"owner"`
	Spender   token.Address         `json:"spender"`
	Allowance *math.HexOrDecimal256 `json:"allowance"`
}

// TransferRequest moves funds of the caller.
type TransferRequest struct {
	To     *token.Address        `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ApproveRequest sets the allowance of spender over the caller's funds.
type ApproveRequest struct {
	Spender *token.Address        `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

// TransferFromRequest moves funds of owner with the caller's allowance.
type TransferFromRequest struct {
	Owner  *token.Address        `json:"owner"`
	To     *token.Address        `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
