// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/stackedmap"
	"github.com/vechain/stakeledger/token"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State manages ledger balances, allowances and stake lists.
type State struct {
	store kv.Store
	cache *cache.LRU[string, rlp.RawValue]          // committed values keyed by store key, optional
	sm    *stackedmap.StackedMap[key, rlp.RawValue] // keeps revisions of state
}

// New create state object. The cache may be nil.
func New(store kv.Store, c *cache.LRU[string, rlp.RawValue]) *State {
	s := &State{
		store: store,
		cache: c,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(k key) (rlp.RawValue, bool, error) {
	enc := k.encode()
	load := func() (rlp.RawValue, error) {
		metricStateAccess().AddWithLabel(1, map[string]string{"type": "load", "target": k.kind.String()})
		val, err := s.store.Get(enc)
		if err != nil {
			if s.store.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return val, nil
	}

	if s.cache == nil {
		val, err := load()
		if err != nil {
			return nil, false, err
		}
		return val, true, nil
	}

	val, err := s.cache.GetOrLoad(string(enc), func(string) (rlp.RawValue, error) {
		return load()
	})
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *State) getStructed(k key, val any) error {
	raw, _, err := s.sm.Get(k)
	if err != nil {
		return &Error{err}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := rlp.DecodeBytes(raw, val); err != nil {
		return &Error{err}
	}
	return nil
}

// setStructed puts the encoded value, or clears the key when isZero.
func (s *State) setStructed(k key, val any, isZero bool) error {
	if isZero {
		s.sm.Put(k, nil)
		return nil
	}
	raw, err := rlp.EncodeToBytes(val)
	if err != nil {
		return &Error{err}
	}
	s.sm.Put(k, raw)
	return nil
}

func (s *State) getUint256(k key) (*uint256.Int, error) {
	var v uint256.Int
	if err := s.getStructed(k, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *State) setUint256(k key, v *uint256.Int) error {
	return s.setStructed(k, v, v == nil || v.IsZero())
}

func (s *State) getUint64(k key) (uint64, error) {
	var v uint64
	if err := s.getStructed(k, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *State) setUint64(k key, v uint64) error {
	return s.setStructed(k, v, v == 0)
}

// GetGenesisID returns the id of the genesis the state was initialized with.
func (s *State) GetGenesisID() (common.Hash, error) {
	var id common.Hash
	if err := s.getStructed(key{kind: genesisKind}, &id); err != nil {
		return common.Hash{}, err
	}
	return id, nil
}

// SetGenesisID records the genesis id.
func (s *State) SetGenesisID(id common.Hash) error {
	return s.setStructed(key{kind: genesisKind}, id, id == common.Hash{})
}

// GetInfo returns the token info, empty before initialization.
func (s *State) GetInfo() (token.Info, error) {
	var info token.Info
	if err := s.getStructed(key{kind: infoKind}, &info); err != nil {
		return token.Info{}, err
	}
	return info, nil
}

// SetInfo sets the token info.
func (s *State) SetInfo(info token.Info) error {
	return s.setStructed(key{kind: infoKind}, &info, info.IsEmpty())
}

// GetTotalSupply returns the total supply.
func (s *State) GetTotalSupply() (*uint256.Int, error) {
	return s.getUint256(key{kind: supplyKind})
}

// SetTotalSupply sets the total supply.
func (s *State) SetTotalSupply(supply *uint256.Int) error {
	return s.setUint256(key{kind: supplyKind}, supply)
}

// GetSequence returns the number of committed mutating calls.
func (s *State) GetSequence() (uint64, error) {
	return s.getUint64(key{kind: sequenceKind})
}

// SetSequence sets the call sequence.
func (s *State) SetSequence(seq uint64) error {
	return s.setUint64(key{kind: sequenceKind}, seq)
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr token.Address) (*uint256.Int, error) {
	return s.getUint256(key{kind: balanceKind, a: addr})
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr token.Address, balance *uint256.Int) error {
	return s.setUint256(key{kind: balanceKind, a: addr}, balance)
}

// GetAllowance returns what spender may still move out of owner's balance.
func (s *State) GetAllowance(owner, spender token.Address) (*uint256.Int, error) {
	return s.getUint256(key{kind: allowanceKind, a: owner, b: spender})
}

// SetAllowance sets the allowance of (owner, spender).
func (s *State) SetAllowance(owner, spender token.Address, amount *uint256.Int) error {
	return s.setUint256(key{kind: allowanceKind, a: owner, b: spender}, amount)
}

// GetStakeholderIndex returns the stakeholder index of addr, 0 if it never staked.
func (s *State) GetStakeholderIndex(addr token.Address) (uint64, error) {
	return s.getUint64(key{kind: stakeholderKind, a: addr})
}

// SetStakeholderIndex sets the stakeholder index of addr.
func (s *State) SetStakeholderIndex(addr token.Address, index uint64) error {
	return s.setUint64(key{kind: stakeholderKind, a: addr}, index)
}

// GetStakeholderCount returns the last assigned stakeholder index.
func (s *State) GetStakeholderCount() (uint64, error) {
	return s.getUint64(key{kind: stakeholderCountKind})
}

// SetStakeholderCount sets the last assigned stakeholder index.
func (s *State) SetStakeholderCount(count uint64) error {
	return s.setUint64(key{kind: stakeholderCountKind}, count)
}

// GetStakeCount returns the number of slots in owner's stake list, empty slots included.
func (s *State) GetStakeCount(owner token.Address) (uint64, error) {
	return s.getUint64(key{kind: stakeCountKind, a: owner})
}

// SetStakeCount sets the slot count of owner's stake list.
func (s *State) SetStakeCount(owner token.Address, count uint64) error {
	return s.setUint64(key{kind: stakeCountKind, a: owner}, count)
}

// GetStake returns the slot at position. An unset or withdrawn slot is returned empty.
func (s *State) GetStake(owner token.Address, position uint64) (*Stake, error) {
	stake := emptyStake(position)
	if err := s.getStructed(key{kind: stakeKind, a: owner, n: position}, stake); err != nil {
		return nil, err
	}
	stake.Position = position
	if stake.Amount == nil {
		stake.Amount = new(uint256.Int)
	}
	return stake, nil
}

// SetStake writes the slot at position. An empty stake clears the slot.
func (s *State) SetStake(owner token.Address, position uint64, stake *Stake) error {
	return s.setStructed(key{kind: stakeKind, a: owner, n: position}, stake, stake == nil || stake.IsEmpty())
}

// GetNonce returns the nonce the next signed request of addr must carry.
func (s *State) GetNonce(addr token.Address) (uint64, error) {
	return s.getUint64(key{kind: nonceKind, a: addr})
}

// SetNonce sets the nonce of addr.
func (s *State) SetNonce(addr token.Address, nonce uint64) error {
	return s.setUint64(key{kind: nonceKind, a: addr}, nonce)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the latest value of every key changed since the state was created.
func (s *State) Stage() *Stage {
	changes := make(map[key]rlp.RawValue)
	s.sm.Journal(func(k key, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{
		store:   s.store,
		cache:   s.cache,
		changes: changes,
	}
}
