// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

const hour = uint64(3600)

var (
	owner = token.BytesToAddress([]byte("owner"))
	acc1  = token.BytesToAddress([]byte("acc1"))
	acc2  = token.BytesToAddress([]byte("acc2"))
	acc3  = token.BytesToAddress([]byte("acc3"))
)

type fixture struct {
	st     *state.State
	ledger *ledger.Ledger
	staker *Staker
	buf    *events.Buffer
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	buf := &events.Buffer{}
	l := ledger.New(st, buf)
	require.NoError(t, l.Initialize(token.Info{Name: "IkmToken", Symbol: "DVTK", Decimals: 18}, owner, uint256.NewInt(5000000)))
	return &fixture{st, l, New(st, l, buf), buf}
}

func (f *fixture) balance(t *testing.T, addr token.Address) uint64 {
	bal, err := f.ledger.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Uint64()
}

func (f *fixture) supply(t *testing.T) uint64 {
	supply, err := f.ledger.TotalSupply()
	require.NoError(t, err)
	return supply.Uint64()
}

func (f *fixture) lastStaked(t *testing.T) *events.Staked {
	records := f.buf.Records(0, 0)
	require.NotEmpty(t, records)
	ev, ok := records[len(records)-1].Event.(*events.Staked)
	require.True(t, ok)
	return ev
}

func amount(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func TestStake(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.Mint(acc1, amount(1000)))

	pos, err := f.staker.Stake(owner, amount(100), 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	assert.Equal(t, uint64(1), f.lastStaked(t).Index)
	assert.Equal(t, uint64(100), f.lastStaked(t).Amount.Uint64())

	pos, err = f.staker.Stake(owner, amount(100), 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
	assert.Equal(t, uint64(1), f.lastStaked(t).Index, "index is kept")

	pos, err = f.staker.Stake(acc1, amount(100), 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	assert.Equal(t, uint64(2), f.lastStaked(t).Index)
	assert.Equal(t, uint64(1000), f.lastStaked(t).Timestamp)

	assert.Equal(t, uint64(5000000-200), f.balance(t, owner))
	assert.Equal(t, uint64(900), f.balance(t, acc1))
	assert.Equal(t, uint64(5001000-300), f.supply(t), "staked value is burnt")

	count, _ := f.staker.StakeholderCount()
	assert.Equal(t, uint64(2), count)

	summary, err := f.staker.HasStake(owner, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), summary.Index)
	assert.Equal(t, uint64(200), summary.TotalAmount.Uint64())
	assert.Len(t, summary.Stakes, 2)
}

func TestStakeRejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.staker.Stake(acc2, amount(1000000000), 0)
	assert.EqualError(t, err, ReasonStakeExceedsBalance)
	assert.ErrorIs(t, err, reverts.InsufficientBalance)

	_, err = f.staker.Stake(owner, new(uint256.Int), 0)
	assert.EqualError(t, err, ReasonStakeNothing)
	assert.ErrorIs(t, err, reverts.InvalidAmount)

	summary, err := f.staker.HasStake(acc2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), summary.Index, "a rejected stake assigns no index")
	assert.Empty(t, summary.Stakes)
}

func TestWithdrawStake(t *testing.T) {
	f := newFixture(t)
	now := uint64(1000)

	_, err := f.staker.Stake(owner, amount(100), now)
	require.NoError(t, err)
	_, err = f.staker.Stake(owner, amount(100), now)
	require.NoError(t, err)

	_, err = f.staker.WithdrawStake(owner, amount(200), 0, now)
	assert.EqualError(t, err, ReasonExcessiveWithdrawal)
	assert.ErrorIs(t, err, reverts.ExcessiveWithdrawal)

	reward, err := f.staker.WithdrawStake(owner, amount(50), 0, now)
	require.NoError(t, err)
	assert.True(t, reward.IsZero())

	summary, _ := f.staker.HasStake(owner, now)
	assert.Equal(t, uint64(150), summary.TotalAmount.Uint64())
	assert.Equal(t, uint64(50), summary.Stakes[0].Amount.Uint64())

	// emptied slot keeps its position, siblings are untouched
	_, err = f.staker.WithdrawStake(owner, amount(50), 0, now)
	require.NoError(t, err)
	summary, _ = f.staker.HasStake(owner, now)
	require.Len(t, summary.Stakes, 2)
	assert.True(t, summary.Stakes[0].IsEmpty())
	assert.Equal(t, token.Address{}, summary.Stakes[0].Owner)
	assert.Equal(t, uint64(1), summary.Stakes[1].Position)
	assert.Equal(t, uint64(100), summary.Stakes[1].Amount.Uint64())
	assert.Equal(t, uint64(100), summary.TotalAmount.Uint64())

	// the emptied slot is gone for good
	_, err = f.staker.WithdrawStake(owner, new(uint256.Int), 0, now)
	assert.EqualError(t, err, ReasonNoSuchStake)
	assert.ErrorIs(t, err, reverts.NoSuchStake)
	_, err = f.staker.WithdrawStake(owner, amount(1), 2, now)
	assert.ErrorIs(t, err, reverts.NoSuchStake)
	_, err = f.staker.WithdrawStake(acc1, amount(1), 1, now)
	assert.ErrorIs(t, err, reverts.NoSuchStake, "foreign stake")

	// new stakes append
	pos, err := f.staker.Stake(owner, amount(10), now)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), pos)

	assert.Equal(t, uint64(5000000-110), f.balance(t, owner))
	assert.Equal(t, uint64(5000000-110), f.supply(t))
}

func TestClaimable(t *testing.T) {
	f := newFixture(t)
	now := uint64(1000)

	_, err := f.staker.Stake(owner, amount(100), now)
	require.NoError(t, err)

	now += 20 * hour
	summary, _ := f.staker.HasStake(owner, now)
	assert.Equal(t, uint64(2), summary.Stakes[0].Claimable.Uint64())

	_, err = f.staker.Stake(owner, amount(1000), now)
	require.NoError(t, err)
	now += 20 * hour

	summary, _ = f.staker.HasStake(owner, now)
	assert.Equal(t, uint64(4), summary.Stakes[0].Claimable.Uint64())
	assert.Equal(t, uint64(20), summary.Stakes[1].Claimable.Uint64())

	// projection is idempotent
	again, _ := f.staker.HasStake(owner, now)
	assert.Equal(t, summary, again)

	// partial hours earn nothing
	summary, _ = f.staker.HasStake(owner, now+hour-1)
	assert.Equal(t, uint64(20), summary.Stakes[1].Claimable.Uint64())

	// a clock behind the stake yields nothing
	summary, _ = f.staker.HasStake(owner, 0)
	assert.True(t, summary.Stakes[0].Claimable.IsZero())
}

func TestRewardPaidOnWithdrawal(t *testing.T) {
	f := newFixture(t)
	now := uint64(1000)
	require.NoError(t, f.ledger.Mint(acc3, amount(1000)))

	_, err := f.staker.Stake(acc3, amount(200), now)
	require.NoError(t, err)
	now += 20 * hour

	summary, _ := f.staker.HasStake(acc3, now)
	claimable := summary.Stakes[0].Claimable.Uint64()
	assert.Equal(t, uint64(4), claimable)

	supplyBefore := f.supply(t)
	reward, err := f.staker.WithdrawStake(acc3, amount(100), 0, now)
	require.NoError(t, err)
	assert.Equal(t, claimable, reward.Uint64(), "reward covers the whole stake")
	assert.Equal(t, uint64(1000-200+100+4), f.balance(t, acc3))
	assert.Equal(t, supplyBefore+104, f.supply(t))

	// the reward clock was reset
	reward, err = f.staker.WithdrawStake(acc3, amount(100), 0, now)
	require.NoError(t, err)
	assert.True(t, reward.IsZero())
	assert.Equal(t, uint64(1000-200+100+4+100), f.balance(t, acc3))

	records := f.buf.Records(0, 0)
	unstaked, ok := records[len(records)-1].Event.(*events.Unstaked)
	require.True(t, ok)
	assert.Equal(t, uint64(100), unstaked.Amount.Uint64())
	assert.Equal(t, now, unstaked.Timestamp)
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)

	before := f.balance(t, owner)
	pos, err := f.staker.Stake(owner, amount(12345), 50)
	require.NoError(t, err)
	reward, err := f.staker.WithdrawStake(owner, amount(12345), pos, 50)
	require.NoError(t, err)
	assert.True(t, reward.IsZero())
	assert.Equal(t, before, f.balance(t, owner))
}
