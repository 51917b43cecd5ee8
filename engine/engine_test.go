// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/token"
)

const hour = uint64(3600)

var (
	owner = genesis.DevAccounts()[0].Address
	acc1  = genesis.DevAccounts()[1].Address
	acc2  = genesis.DevAccounts()[2].Address
)

type recorder struct {
	mu      sync.Mutex
	records []*events.Record
	onEmit  func([]*events.Record)
}

func (r *recorder) Emit(records []*events.Record) error {
	r.mu.Lock()
	r.records = append(r.records, records...)
	r.mu.Unlock()
	if r.onEmit != nil {
		r.onEmit(records)
	}
	return nil
}

func (r *recorder) all() []*events.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.Record(nil), r.records...)
}

func newEngine(t *testing.T) (*Engine, *clock.Manual, *recorder, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewManual(genesis.NewDevnet().LaunchTime)
	rec := &recorder{}
	eng, err := New(db, Options{Clock: clk, Emitter: rec, CacheSize: 256})
	require.NoError(t, err)
	require.NoError(t, eng.Initialize(genesis.NewDevnet()))
	return eng, clk, rec, db
}

func snapshot(t *testing.T, store kv.Store) map[string]string {
	it := store.NewIterator(kv.Range{})
	defer it.Release()
	m := make(map[string]string)
	for it.Next() {
		m[string(it.Key())] = string(it.Value())
	}
	require.NoError(t, it.Error())
	return m
}

func balance(t *testing.T, eng *Engine, addr token.Address) uint64 {
	bal, err := eng.BalanceOf(addr)
	require.NoError(t, err)
	return bal.Uint64()
}

func TestNotInitialized(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	eng, err := New(db, Options{})
	require.NoError(t, err)

	_, err = eng.BalanceOf(owner)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, eng.Transfer(owner, acc1, uint256.NewInt(1)), ErrNotInitialized)
	_, err = eng.Stake(owner, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, eng.Initialize(genesis.NewDevnet()))
	assert.ErrorIs(t, eng.Initialize(genesis.NewDevnet()), ErrAlreadyInitialized)

	info, err := eng.TokenInfo()
	require.NoError(t, err)
	assert.Equal(t, "DVTK", info.Symbol)
	assert.Equal(t, genesis.NewDevnet().ID(), eng.GenesisID())
}

func TestInitializeAllocs(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := genesis.NewDevnet()
	gen.Allocs = []genesis.Alloc{{Address: acc1, Amount: uint256.NewInt(1000)}}

	rec := &recorder{}
	eng, err := New(db, Options{Emitter: rec})
	require.NoError(t, err)
	require.NoError(t, eng.Initialize(gen))

	assert.Equal(t, uint64(1000), balance(t, eng, acc1))
	supply, _ := eng.TotalSupply()
	assert.Equal(t, uint64(genesis.DevSupply+1000), supply.Uint64())
	assert.Len(t, rec.all(), 2)

	gen.Allocs[0].Address = token.Address{}
	assert.Error(t, eng.Initialize(gen))
}

func TestFailedCallLeavesStoreUntouched(t *testing.T) {
	eng, _, rec, db := newEngine(t)

	require.NoError(t, eng.Transfer(owner, acc1, uint256.NewInt(100)))
	before := snapshot(t, db)
	emitted := len(rec.all())
	seq, _ := eng.Sequence()

	err := eng.TransferFrom(acc2, acc1, acc2, uint256.NewInt(1))
	assert.ErrorIs(t, err, reverts.InsufficientAllowance)
	_, err = eng.Stake(acc1, uint256.NewInt(101))
	assert.ErrorIs(t, err, reverts.InsufficientBalance)
	_, err = eng.WithdrawStake(acc1, uint256.NewInt(1), 0)
	assert.ErrorIs(t, err, reverts.NoSuchStake)
	assert.ErrorIs(t, eng.Mint(token.Address{}, uint256.NewInt(1)), reverts.InvalidRecipient)

	// overflow aborts the call, the engine stays usable
	assert.Panics(t, func() {
		_ = eng.Mint(acc2, new(uint256.Int).SetAllOne())
	})

	assert.Equal(t, before, snapshot(t, db))
	assert.Len(t, rec.all(), emitted, "failed calls emit nothing")
	seq2, _ := eng.Sequence()
	assert.Equal(t, seq, seq2)

	require.NoError(t, eng.Transfer(acc1, acc2, uint256.NewInt(1)))
}

func TestStakingScenario(t *testing.T) {
	eng, clk, rec, _ := newEngine(t)
	require.NoError(t, eng.Mint(acc1, uint256.NewInt(1000)))

	pos, err := eng.Stake(owner, uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	pos, err = eng.Stake(owner, uint256.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
	_, err = eng.Stake(acc1, uint256.NewInt(100))
	require.NoError(t, err)

	var indexes []uint64
	for _, r := range rec.all() {
		if ev, ok := r.Event.(*events.Staked); ok {
			indexes = append(indexes, ev.Index)
			assert.Equal(t, clk.Now(), ev.Timestamp)
		}
	}
	assert.Equal(t, []uint64{1, 1, 2}, indexes)

	_, err = eng.WithdrawStake(owner, uint256.NewInt(50), 0)
	require.NoError(t, err)
	_, err = eng.WithdrawStake(owner, uint256.NewInt(50), 0)
	require.NoError(t, err)

	clk.Advance(20 * hour)
	summary, err := eng.HasStake(owner)
	require.NoError(t, err)
	assert.True(t, summary.Stakes[0].IsEmpty())
	assert.Equal(t, uint64(2), summary.Stakes[1].Claimable.Uint64())

	_, err = eng.Stake(owner, uint256.NewInt(1000))
	require.NoError(t, err)
	clk.Advance(20 * hour)

	summary, _ = eng.HasStake(owner)
	assert.Equal(t, uint64(4), summary.Stakes[1].Claimable.Uint64())
	assert.Equal(t, uint64(20), summary.Stakes[2].Claimable.Uint64())
	assert.Equal(t, uint64(1100), summary.TotalAmount.Uint64())

	before := balance(t, eng, owner)
	reward, err := eng.WithdrawStake(owner, uint256.NewInt(1000), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), reward.Uint64())
	assert.Equal(t, before+1020, balance(t, eng, owner))
}

func TestRecordsOrdered(t *testing.T) {
	eng, _, rec, _ := newEngine(t)

	require.NoError(t, eng.Approve(owner, acc1, uint256.NewInt(10)))
	require.NoError(t, eng.TransferFrom(acc1, owner, acc2, uint256.NewInt(10)))
	_, err := eng.Stake(acc2, uint256.NewInt(10))
	require.NoError(t, err)

	records := rec.all()
	// initialize, approve, transferFrom, stake (burn + staked)
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		assert.True(t, prev.Seq < cur.Seq || (prev.Seq == cur.Seq && prev.Index < cur.Index))
	}
	assert.Equal(t, events.TypeApproval, records[1].Event.EventType())
	assert.Equal(t, events.TypeTransfer, records[3].Event.EventType())
	assert.Equal(t, events.TypeStaked, records[4].Event.EventType())
	assert.Equal(t, records[3].Seq, records[4].Seq)
}

func TestConcurrentCallsEmitInCommitOrder(t *testing.T) {
	eng, _, rec, _ := newEngine(t)
	// reading back while other calls wait for their turn must not block
	rec.onEmit = func([]*events.Record) {
		_, err := eng.BalanceOf(acc1)
		assert.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				assert.NoError(t, eng.Transfer(owner, acc1, uint256.NewInt(1)))
			}
		}()
	}
	wg.Wait()

	records := rec.all()
	require.Len(t, records, 81)
	for i := 1; i < len(records); i++ {
		assert.Equal(t, records[i-1].Seq+1, records[i].Seq, "record %d", i)
	}
	assert.Equal(t, uint64(80), balance(t, eng, acc1))
}

func TestUseNonce(t *testing.T) {
	eng, _, rec, db := newEngine(t)
	seq, err := eng.Sequence()
	require.NoError(t, err)
	emitted := len(rec.all())

	nonce, err := eng.Nonce(acc1)
	require.NoError(t, err)
	assert.Zero(t, nonce)

	require.NoError(t, eng.UseNonce(acc1, 0))
	require.NoError(t, eng.UseNonce(acc1, 1))

	err = eng.UseNonce(acc1, 1)
	assert.ErrorIs(t, err, ErrNonceMismatch)
	assert.ErrorIs(t, eng.UseNonce(acc1, 5), ErrNonceMismatch)
	assert.ErrorIs(t, eng.UseNonce(acc2, 1), ErrNonceMismatch)

	nonce, err = eng.Nonce(acc1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)

	after, err := eng.Sequence()
	require.NoError(t, err)
	assert.Equal(t, seq, after)
	assert.Len(t, rec.all(), emitted)

	reopened, err := New(db, Options{})
	require.NoError(t, err)
	nonce, err = reopened.Nonce(acc1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)

	fresh, err := lvldb.NewMem()
	require.NoError(t, err)
	defer fresh.Close()
	uninit, err := New(fresh, Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, uninit.UseNonce(acc1, 0), ErrNotInitialized)
}

func TestReentrantSubscriber(t *testing.T) {
	eng, _, rec, _ := newEngine(t)

	var observed []uint64
	rec.onEmit = func(records []*events.Record) {
		for _, r := range records {
			if ev, ok := r.Event.(*events.Staked); ok {
				// the call has committed, reading back must not block
				summary, err := eng.HasStake(ev.Staker)
				require.NoError(t, err)
				observed = append(observed, summary.TotalAmount.Uint64())
			}
		}
	}

	_, err := eng.Stake(owner, uint256.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, observed)
}

func TestClockRegression(t *testing.T) {
	eng, clk, rec, _ := newEngine(t)

	start := clk.Now()
	clk.Advance(100)
	_, err := eng.Stake(owner, uint256.NewInt(1))
	require.NoError(t, err)

	clk.Set(start)
	assert.Equal(t, start+100, eng.Now())
	_, err = eng.Stake(owner, uint256.NewInt(1))
	require.NoError(t, err)

	records := rec.all()
	last := records[len(records)-1]
	assert.Equal(t, start+100, last.Time)
	assert.Equal(t, start+100, last.Event.(*events.Staked).Timestamp)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.db")

	db, err := lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	eng, err := New(db, Options{Clock: clock.NewManual(0)})
	require.NoError(t, err)
	require.NoError(t, eng.Initialize(genesis.NewDevnet()))
	_, err = eng.Stake(owner, uint256.NewInt(100))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	defer db.Close()
	eng, err = New(db, Options{Clock: clock.NewManual(0)})
	require.NoError(t, err)

	assert.Equal(t, genesis.NewDevnet().ID(), eng.GenesisID())
	assert.Equal(t, uint64(genesis.DevSupply-100), balance(t, eng, owner))
	summary, err := eng.HasStake(owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), summary.Index)
	assert.Equal(t, uint64(100), summary.TotalAmount.Uint64())
	seq, _ := eng.Sequence()
	assert.Equal(t, uint64(2), seq)
}

type fuzzOp struct {
	Kind    uint8
	From    uint8
	To      uint8
	Amount  uint16
	Advance uint16
}

func TestRandomOperationsKeepSupply(t *testing.T) {
	eng, clk, _, _ := newEngine(t)
	accounts := make([]token.Address, 0, 5)
	for _, acc := range genesis.DevAccounts() {
		accounts = append(accounts, acc.Address)
	}

	var ops []fuzzOp
	fuzz.NewWithSeed(42).NilChance(0).NumElements(300, 300).Fuzz(&ops)

	for _, op := range ops {
		from := accounts[int(op.From)%len(accounts)]
		to := accounts[int(op.To)%len(accounts)]
		amount := uint256.NewInt(uint64(op.Amount))
		clk.Advance(uint64(op.Advance))

		var err error
		switch op.Kind % 7 {
		case 0:
			err = eng.Mint(to, amount)
		case 1:
			err = eng.Burn(from, amount)
		case 2:
			err = eng.Transfer(from, to, amount)
		case 3:
			err = eng.Approve(from, to, amount)
		case 4:
			err = eng.TransferFrom(to, from, to, amount)
		case 5:
			_, err = eng.Stake(from, amount)
		case 6:
			_, err = eng.WithdrawStake(from, amount, uint64(op.To%4))
		}
		if err != nil {
			require.True(t, reverts.IsRevertErr(err), "unexpected error %v", err)
		}

		sum := new(uint256.Int)
		for _, acc := range accounts {
			bal, err := eng.BalanceOf(acc)
			require.NoError(t, err)
			sum.Add(sum, bal)
		}
		supply, err := eng.TotalSupply()
		require.NoError(t, err)
		require.Equal(t, supply, sum)
	}
}
