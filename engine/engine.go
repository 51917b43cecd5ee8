// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine is the single entry point to the ledger and staking operations.
//
// Calls are serialized. Each call runs against a fresh state over the committed
// store, inside a checkpoint: any error or panic reverts it, success commits all
// its writes in one batch. Events of a call are delivered only after the commit
// and after the engine lock is released, in commit order.
package engine

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "engine")

var (
	ErrNotInitialized     = errors.New("engine: not initialized")
	ErrAlreadyInitialized = errors.New("engine: already initialized")
	ErrNonceMismatch      = errors.New("engine: nonce mismatch")
)

// Options configures an engine.
type Options struct {
	Clock     clock.Clock    // defaults to the system clock
	Emitter   events.Emitter // defaults to discarding events, must not call mutating methods
	CacheSize int            // state value cache entries, 0 disables
}

// Engine serializes calls over one store.
type Engine struct {
	lock      sync.Mutex
	stater    *state.Stater
	clock     clock.Clock
	emitter   events.Emitter
	genesisID common.Hash
	lastNow   uint64

	emitMu   sync.Mutex
	emitCond *sync.Cond
	nextEmit uint64 // sequence whose records are emitted next
}

// New opens an engine over store. A store initialized before is picked up as is.
func New(store kv.Store, opts Options) (*Engine, error) {
	e := &Engine{
		stater:  state.NewStater(store, opts.CacheSize),
		clock:   opts.Clock,
		emitter: opts.Emitter,
	}
	if e.clock == nil {
		e.clock = clock.System{}
	}
	if e.emitter == nil {
		e.emitter = events.NoopEmitter{}
	}

	e.emitCond = sync.NewCond(&e.emitMu)

	st := e.stater.NewState()
	id, err := st.GetGenesisID()
	if err != nil {
		return nil, errors.WithMessage(err, "load genesis id")
	}
	seq, err := st.GetSequence()
	if err != nil {
		return nil, errors.WithMessage(err, "load sequence")
	}
	e.genesisID = id
	e.nextEmit = seq + 1
	return e, nil
}

// call is the context of one operation.
type call struct {
	state  *state.State
	ledger *ledger.Ledger
	staker *staker.Staker
	now    uint64
}

// now returns the clock reading, held at the last returned value when the clock regresses.
func (e *Engine) now() uint64 {
	t := e.clock.Now()
	if t < e.lastNow {
		logger.Warn("clock regressed, holding time", "now", t, "last", e.lastNow)
		return e.lastNow
	}
	e.lastNow = t
	return t
}

func (e *Engine) newCall(buf *events.Buffer) *call {
	st := e.stater.NewState()
	l := ledger.New(st, buf)
	return &call{
		state:  st,
		ledger: l,
		staker: staker.New(st, l, buf),
		now:    e.now(),
	}
}

// execute runs fn as one atomic call and returns the records to emit with
// the sequence of the call.
func (e *Engine) execute(requireInit bool, fn func(c *call) error) ([]*events.Record, uint64, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if requireInit && e.genesisID == (common.Hash{}) {
		return nil, 0, ErrNotInitialized
	}

	var buf events.Buffer
	c := e.newCall(&buf)

	chk := c.state.NewCheckpoint()
	defer func() {
		if r := recover(); r != nil {
			c.state.RevertTo(chk)
			logger.Error("call aborted", "err", r)
			panic(r)
		}
	}()

	if err := fn(c); err != nil {
		c.state.RevertTo(chk)
		return nil, 0, err
	}

	seq, err := c.state.GetSequence()
	if err != nil {
		return nil, 0, err
	}
	seq++
	if err := c.state.SetSequence(seq); err != nil {
		return nil, 0, err
	}
	if err := c.state.Stage().Commit(); err != nil {
		return nil, 0, errors.WithMessage(err, "commit")
	}
	return buf.Records(seq, c.now), seq, nil
}

// emitInOrder emits the records of call seq once those of every earlier call are out.
func (e *Engine) emitInOrder(op string, seq uint64, records []*events.Record) {
	e.emitMu.Lock()
	for e.nextEmit != seq {
		e.emitCond.Wait()
	}
	e.emitMu.Unlock()

	defer func() {
		e.emitMu.Lock()
		e.nextEmit++
		e.emitMu.Unlock()
		e.emitCond.Broadcast()
	}()

	if len(records) > 0 {
		if err := e.emitter.Emit(records); err != nil {
			logger.Warn("failed to emit events", "op", op, "err", err)
		}
	}
}

// mutate runs a state changing operation and delivers its events.
func (e *Engine) mutate(op string, requireInit bool, fn func(c *call) error) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if reverts.IsRevertErr(err) {
				outcome = "revert"
			}
		}
		metricCallCount().AddWithLabel(1, map[string]string{"op": op, "outcome": outcome})
		metrics.ObserveSince(metricCallDuration(), start, time.Microsecond, map[string]string{"op": op})
	}()

	records, seq, err := e.execute(requireInit, fn)
	if err != nil {
		if !reverts.IsRevertErr(err) {
			logger.Warn("call failed", "op", op, "err", err)
		}
		return err
	}

	// delivered outside the engine lock, subscribers may read back
	e.emitInOrder(op, seq, records)
	return nil
}

// view runs a read only operation.
func (e *Engine) view(fn func(c *call) error) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.genesisID == (common.Hash{}) {
		return ErrNotInitialized
	}
	return fn(e.newCall(nil))
}

// Initialize seeds token info, the owner's supply and extra allocations.
func (e *Engine) Initialize(gen *genesis.Genesis) error {
	if err := gen.Validate(); err != nil {
		return err
	}
	id := gen.ID()
	err := e.mutate("initialize", false, func(c *call) error {
		existing, err := c.state.GetGenesisID()
		if err != nil {
			return err
		}
		if existing != (common.Hash{}) {
			return ErrAlreadyInitialized
		}
		if err := c.state.SetGenesisID(id); err != nil {
			return err
		}
		if err := c.ledger.Initialize(gen.Info, gen.Owner, gen.Supply); err != nil {
			return err
		}
		for _, alloc := range gen.Allocs {
			if err := c.ledger.Mint(alloc.Address, alloc.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.lock.Lock()
	e.genesisID = id
	e.lock.Unlock()

	logger.Info("ledger initialized", "genesis", id, "name", gen.Info.Name, "symbol", gen.Info.Symbol, "supply", gen.Supply)
	return nil
}

// GenesisID returns the id of the genesis, zero before initialization.
func (e *Engine) GenesisID() common.Hash {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.genesisID
}

// Now returns the time the next call would see.
func (e *Engine) Now() uint64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	t := e.clock.Now()
	if t < e.lastNow {
		return e.lastNow
	}
	return t
}

// Mint credits amount to to.
func (e *Engine) Mint(to token.Address, amount *uint256.Int) error {
	return e.mutate("mint", true, func(c *call) error {
		if err := c.ledger.Mint(to, amount); err != nil {
			return err
		}
		return e.updateSupplyGauge(c)
	})
}

// Burn debits amount from from.
func (e *Engine) Burn(from token.Address, amount *uint256.Int) error {
	return e.mutate("burn", true, func(c *call) error {
		if err := c.ledger.Burn(from, amount); err != nil {
			return err
		}
		return e.updateSupplyGauge(c)
	})
}

// Transfer moves amount from caller to to.
func (e *Engine) Transfer(caller, to token.Address, amount *uint256.Int) error {
	return e.mutate("transfer", true, func(c *call) error {
		return c.ledger.Transfer(caller, to, amount)
	})
}

// Approve sets the allowance of spender over caller's balance.
func (e *Engine) Approve(caller, spender token.Address, amount *uint256.Int) error {
	return e.mutate("approve", true, func(c *call) error {
		return c.ledger.Approve(caller, spender, amount)
	})
}

// TransferFrom moves amount from owner to to using caller's allowance.
func (e *Engine) TransferFrom(caller, owner, to token.Address, amount *uint256.Int) error {
	return e.mutate("transferFrom", true, func(c *call) error {
		return c.ledger.TransferFrom(caller, owner, to, amount)
	})
}

// Stake locks amount of caller's balance and returns the position of the new stake.
func (e *Engine) Stake(caller token.Address, amount *uint256.Int) (uint64, error) {
	var position uint64
	err := e.mutate("stake", true, func(c *call) error {
		pos, err := c.staker.Stake(caller, amount, c.now)
		if err != nil {
			return err
		}
		position = pos

		count, err := c.staker.StakeholderCount()
		if err != nil {
			return err
		}
		metricStakeholderCount().Set(int64(count))
		return e.updateSupplyGauge(c)
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

// WithdrawStake withdraws amount from caller's stake at position and returns the reward paid.
func (e *Engine) WithdrawStake(caller token.Address, amount *uint256.Int, position uint64) (*uint256.Int, error) {
	var reward *uint256.Int
	err := e.mutate("withdrawStake", true, func(c *call) error {
		r, err := c.staker.WithdrawStake(caller, amount, position, c.now)
		if err != nil {
			return err
		}
		reward = r
		return e.updateSupplyGauge(c)
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// HasStake returns the stake summary of addr at the current time.
func (e *Engine) HasStake(addr token.Address) (summary *staker.Summary, err error) {
	err = e.view(func(c *call) error {
		summary, err = c.staker.HasStake(addr, c.now)
		return err
	})
	return
}

// BalanceOf returns the balance of addr.
func (e *Engine) BalanceOf(addr token.Address) (bal *uint256.Int, err error) {
	err = e.view(func(c *call) error {
		bal, err = c.ledger.BalanceOf(addr)
		return err
	})
	return
}

// TotalSupply returns the total supply.
func (e *Engine) TotalSupply() (supply *uint256.Int, err error) {
	err = e.view(func(c *call) error {
		supply, err = c.ledger.TotalSupply()
		return err
	})
	return
}

// Allowance returns the allowance of spender over owner's balance.
func (e *Engine) Allowance(owner, spender token.Address) (allowance *uint256.Int, err error) {
	err = e.view(func(c *call) error {
		allowance, err = c.ledger.Allowance(owner, spender)
		return err
	})
	return
}

// TokenInfo returns name, symbol and decimals.
func (e *Engine) TokenInfo() (info token.Info, err error) {
	err = e.view(func(c *call) error {
		info, err = c.ledger.TokenInfo()
		return err
	})
	return
}

// Nonce returns the nonce the next signed request of addr must carry.
func (e *Engine) Nonce(addr token.Address) (nonce uint64, err error) {
	err = e.view(func(c *call) error {
		nonce, err = c.state.GetNonce(addr)
		return err
	})
	return
}

// UseNonce consumes nonce of addr, which must be its current one.
// It commits on its own, so a nonce stays used whatever the outcome of the
// call it authorized. No records are emitted and the sequence is untouched.
func (e *Engine) UseNonce(addr token.Address, nonce uint64) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.genesisID == (common.Hash{}) {
		return ErrNotInitialized
	}
	st := e.stater.NewState()
	current, err := st.GetNonce(addr)
	if err != nil {
		return err
	}
	if nonce != current {
		return errors.Wrapf(ErrNonceMismatch, "want %d, got %d", current, nonce)
	}
	if err := st.SetNonce(addr, current+1); err != nil {
		return err
	}
	return errors.WithMessage(st.Stage().Commit(), "commit")
}

// Sequence returns the number of committed calls.
func (e *Engine) Sequence() (seq uint64, err error) {
	err = e.view(func(c *call) error {
		seq, err = c.state.GetSequence()
		return err
	})
	return
}

func (e *Engine) updateSupplyGauge(c *call) error {
	supply, err := c.ledger.TotalSupply()
	if err != nil {
		return err
	}
	if supply.IsUint64() && supply.Uint64() <= 1<<63-1 {
		metricTotalSupply().Set(int64(supply.Uint64()))
	}
	return nil
}
