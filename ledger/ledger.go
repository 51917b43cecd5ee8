// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the fungible token: balances, total supply and allowances.
package ledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

// Revert reasons.
const (
	ReasonMintToZero             = "IkmToken: cannot mint to zero address"
	ReasonBurnFromZero           = "Tokens cannot be burnt from the zero address."
	ReasonBurnExceedsBalance     = "The amount of Tokens to be burnt does not exist in the account."
	ReasonTransferExceedsBalance = "The amount of Tokens to be transferred does not exist in the account."
	ReasonApproveToZero          = "Tokens cannot be approved to the zero address."
	ReasonExceedsAllowance       = "The amount of Tokens to be transferred does not exist in the allowance of the sender."
)

// Ledger reads and writes token records in a state.
type Ledger struct {
	state *state.State
	sink  events.Sink
}

// New creates a ledger over st. Events go to sink, which may be nil.
func New(st *state.State, sink events.Sink) *Ledger {
	return &Ledger{st, sink}
}

func (l *Ledger) emit(ev events.Event) {
	if l.sink != nil {
		l.sink.Add(ev)
	}
}

// Initialize writes the token info and mints the initial supply to owner.
func (l *Ledger) Initialize(info token.Info, owner token.Address, supply *uint256.Int) error {
	if err := l.state.SetInfo(info); err != nil {
		return err
	}
	return l.Mint(owner, supply)
}

// TokenInfo returns name, symbol and decimals.
func (l *Ledger) TokenInfo() (token.Info, error) {
	return l.state.GetInfo()
}

// BalanceOf returns the balance of addr, zero for unknown addresses.
func (l *Ledger) BalanceOf(addr token.Address) (*uint256.Int, error) {
	return l.state.GetBalance(addr)
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return l.state.GetTotalSupply()
}

// Allowance returns how much spender may move out of owner's balance.
func (l *Ledger) Allowance(owner, spender token.Address) (*uint256.Int, error) {
	return l.state.GetAllowance(owner, spender)
}

// Mint credits amount to to and grows the supply.
func (l *Ledger) Mint(to token.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return reverts.New(reverts.KindInvalidRecipient, ReasonMintToZero)
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	supply, err := l.state.GetTotalSupply()
	if err != nil {
		return err
	}
	if err := l.state.SetTotalSupply(token.Add(supply, amount)); err != nil {
		return err
	}
	l.emit(&events.Transfer{To: to, Amount: amount.Clone()})
	return nil
}

// Burn debits amount from from and shrinks the supply.
func (l *Ledger) Burn(from token.Address, amount *uint256.Int) error {
	if from.IsZero() {
		return reverts.New(reverts.KindInvalidRecipient, ReasonBurnFromZero)
	}
	if err := l.debit(from, amount, ReasonBurnExceedsBalance); err != nil {
		return err
	}
	supply, err := l.state.GetTotalSupply()
	if err != nil {
		return err
	}
	if err := l.state.SetTotalSupply(token.Sub(supply, amount)); err != nil {
		return err
	}
	l.emit(&events.Transfer{From: from, Amount: amount.Clone()})
	return nil
}

// Transfer moves amount from from to to.
func (l *Ledger) Transfer(from, to token.Address, amount *uint256.Int) error {
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	l.emit(&events.Transfer{From: from, To: to, Amount: amount.Clone()})
	return nil
}

// Approve sets the allowance of spender over owner's balance. The previous allowance is replaced.
func (l *Ledger) Approve(owner, spender token.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return reverts.New(reverts.KindInvalidRecipient, ReasonApproveToZero)
	}
	if err := l.state.SetAllowance(owner, spender, amount); err != nil {
		return err
	}
	l.emit(&events.Approval{Owner: owner, Spender: spender, Amount: amount.Clone()})
	return nil
}

// TransferFrom moves amount from owner to to on behalf of spender, consuming allowance.
func (l *Ledger) TransferFrom(spender, owner, to token.Address, amount *uint256.Int) error {
	allowance, err := l.state.GetAllowance(owner, spender)
	if err != nil {
		return err
	}
	if allowance.Lt(amount) {
		return reverts.New(reverts.KindInsufficientAllowance, ReasonExceedsAllowance)
	}
	if err := l.state.SetAllowance(owner, spender, token.Sub(allowance, amount)); err != nil {
		return err
	}
	return l.Transfer(owner, to, amount)
}

func (l *Ledger) move(from, to token.Address, amount *uint256.Int) error {
	if err := l.debit(from, amount, ReasonTransferExceedsBalance); err != nil {
		return err
	}
	return l.credit(to, amount)
}

func (l *Ledger) debit(addr token.Address, amount *uint256.Int, reason string) error {
	bal, err := l.state.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return reverts.New(reverts.KindInsufficientBalance, reason)
	}
	return l.state.SetBalance(addr, token.Sub(bal, amount))
}

func (l *Ledger) credit(addr token.Address, amount *uint256.Int) error {
	bal, err := l.state.GetBalance(addr)
	if err != nil {
		return err
	}
	return l.state.SetBalance(addr, token.Add(bal, amount))
}
