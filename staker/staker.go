// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker locks ledger balance into per-owner stake lists and pays a
// linear hourly reward on withdrawal.
package staker

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "staker")

// Revert reasons.
const (
	ReasonStakeNothing        = "Cannot stake nothing"
	ReasonStakeExceedsBalance = "The amount to be staked cannot exceed your current balance."
	ReasonNoSuchStake         = "Stake does not exist."
	ReasonExcessiveWithdrawal = "You cannot withdraw more than you have staked."
)

// Staker implements the staking operations over a state and its ledger.
type Staker struct {
	state  *state.State
	ledger *ledger.Ledger
	sink   events.Sink
}

// New create a new instance. The ledger must work on the same state.
func New(st *state.State, l *ledger.Ledger, sink events.Sink) *Staker {
	return &Staker{st, l, sink}
}

func (s *Staker) emit(ev events.Event) {
	if s.sink != nil {
		s.sink.Add(ev)
	}
}

// Stake burns amount from caller and appends a stake started at now.
// It returns the position of the new stake.
func (s *Staker) Stake(caller token.Address, amount *uint256.Int, now uint64) (uint64, error) {
	if amount.IsZero() {
		return 0, reverts.New(reverts.KindInvalidAmount, ReasonStakeNothing)
	}
	bal, err := s.ledger.BalanceOf(caller)
	if err != nil {
		return 0, err
	}
	if bal.Lt(amount) {
		return 0, reverts.New(reverts.KindInsufficientBalance, ReasonStakeExceedsBalance)
	}
	if err := s.ledger.Burn(caller, amount); err != nil {
		return 0, errors.WithMessage(err, "burn stake")
	}

	index, err := s.stakeholderIndex(caller)
	if err != nil {
		return 0, err
	}

	position, err := s.state.GetStakeCount(caller)
	if err != nil {
		return 0, err
	}
	stake := &state.Stake{
		Owner:    caller,
		Amount:   amount.Clone(),
		Since:    now,
		Position: position,
	}
	if err := s.state.SetStake(caller, position, stake); err != nil {
		return 0, err
	}
	if err := s.state.SetStakeCount(caller, position+1); err != nil {
		return 0, err
	}

	s.emit(&events.Staked{
		Staker:    caller,
		Amount:    amount.Clone(),
		Index:     index,
		Position:  position,
		Timestamp: now,
	})
	logger.Debug("stake added", "staker", caller, "index", index, "position", position, "amount", amount)
	return position, nil
}

// stakeholderIndex returns the index of addr, assigning the next one on first use.
func (s *Staker) stakeholderIndex(addr token.Address) (uint64, error) {
	index, err := s.state.GetStakeholderIndex(addr)
	if err != nil {
		return 0, err
	}
	if index != 0 {
		return index, nil
	}

	count, err := s.state.GetStakeholderCount()
	if err != nil {
		return 0, err
	}
	index = count + 1
	if err := s.state.SetStakeholderCount(index); err != nil {
		return 0, err
	}
	if err := s.state.SetStakeholderIndex(addr, index); err != nil {
		return 0, err
	}
	return index, nil
}

// WithdrawStake takes amount out of the stake at position and credits amount plus
// the reward accrued by the whole stake since its last reset.
// It returns the reward paid.
func (s *Staker) WithdrawStake(caller token.Address, amount *uint256.Int, position uint64, now uint64) (*uint256.Int, error) {
	count, err := s.state.GetStakeCount(caller)
	if err != nil {
		return nil, err
	}
	if position >= count {
		return nil, reverts.New(reverts.KindNoSuchStake, ReasonNoSuchStake)
	}
	stake, err := s.state.GetStake(caller, position)
	if err != nil {
		return nil, err
	}
	if stake.IsEmpty() || stake.Owner != caller {
		return nil, reverts.New(reverts.KindNoSuchStake, ReasonNoSuchStake)
	}
	if stake.Amount.Lt(amount) {
		return nil, reverts.New(reverts.KindExcessiveWithdrawal, ReasonExcessiveWithdrawal)
	}

	reward := token.Reward(stake.Amount, stake.Since, now)

	// bookkeeping goes first, the credit is the last effect of the call
	remaining := token.Sub(stake.Amount, amount)
	if remaining.IsZero() {
		stake = &state.Stake{Amount: new(uint256.Int), Position: position}
	} else {
		stake.Amount = remaining
		stake.Since = now
	}
	if err := s.state.SetStake(caller, position, stake); err != nil {
		return nil, err
	}

	if err := s.ledger.Mint(caller, token.Add(amount, reward)); err != nil {
		return nil, errors.WithMessage(err, "credit withdrawal")
	}

	s.emit(&events.Unstaked{
		Staker:    caller,
		Amount:    amount.Clone(),
		Reward:    reward.Clone(),
		Position:  position,
		Timestamp: now,
	})
	logger.Debug("stake withdrawn", "staker", caller, "position", position, "amount", amount, "reward", reward)
	return reward, nil
}

// HasStake projects the stake list of addr with rewards claimable at now.
// It never writes to the state.
func (s *Staker) HasStake(addr token.Address, now uint64) (*Summary, error) {
	index, err := s.state.GetStakeholderIndex(addr)
	if err != nil {
		return nil, err
	}
	count, err := s.state.GetStakeCount(addr)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Index:       index,
		TotalAmount: new(uint256.Int),
		Stakes:      make([]*StakeView, 0, count),
	}
	for pos := uint64(0); pos < count; pos++ {
		stake, err := s.state.GetStake(addr, pos)
		if err != nil {
			return nil, err
		}
		view := &StakeView{
			Owner:     stake.Owner,
			Amount:    stake.Amount,
			Since:     stake.Since,
			Position:  pos,
			Claimable: new(uint256.Int),
		}
		if !stake.IsEmpty() {
			view.Claimable = token.Reward(stake.Amount, stake.Since, now)
			summary.TotalAmount = token.Add(summary.TotalAmount, stake.Amount)
		}
		summary.Stakes = append(summary.Stakes, view)
	}
	return summary, nil
}

// StakeholderCount returns the number of addresses that ever staked.
func (s *Staker) StakeholderCount() (uint64, error) {
	return s.state.GetStakeholderCount()
}
