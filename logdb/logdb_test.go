// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/token"
)

var (
	alice = token.BytesToAddress([]byte("alice"))
	bob   = token.BytesToAddress([]byte("bob"))
	carol = token.BytesToAddress([]byte("carol"))
)

// newHistory emits ten calls: seq 1 mints to alice, seqs 2..9 alternate transfers
// alice->bob and bob->carol, seq 10 stakes and unstakes for alice.
func newHistory(t *testing.T, db *logdb.LogDB) {
	var records []*events.Record
	records = append(records, &events.Record{Seq: 1, Time: 100, Event: &events.Transfer{To: alice, Amount: uint256.NewInt(1000)}})
	for seq := uint64(2); seq < 10; seq++ {
		from, to := alice, bob
		if seq%2 == 1 {
			from, to = bob, carol
		}
		records = append(records, &events.Record{
			Seq:   seq,
			Time:  100 + seq*10,
			Event: &events.Transfer{From: from, To: to, Amount: uint256.NewInt(seq)},
		})
	}
	records = append(records,
		&events.Record{Seq: 10, Index: 0, Time: 200, Event: &events.Approval{Owner: alice, Spender: bob, Amount: uint256.NewInt(5)}},
		&events.Record{Seq: 10, Index: 1, Time: 200, Event: &events.Transfer{From: alice, Amount: uint256.NewInt(50)}},
		&events.Record{Seq: 10, Index: 2, Time: 200, Event: &events.Staked{Staker: alice, Amount: uint256.NewInt(50), Index: 1, Timestamp: 200}},
		&events.Record{Seq: 11, Index: 0, Time: 72200, Event: &events.Unstaked{Staker: alice, Amount: uint256.NewInt(50), Reward: uint256.NewInt(1), Timestamp: 72200}},
	)
	require.NoError(t, db.Emit(records))
}

func TestEmitAndFilterTransfers(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	newHistory(t, db)
	ctx := context.Background()

	all, err := db.FilterTransfers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.True(t, all[0].Sender.IsZero())
	assert.Equal(t, alice, all[0].Recipient)
	assert.Equal(t, uint64(1000), all[0].Amount.Uint64())
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Seq, all[i].Seq)
	}

	// sender alice
	res, err := db.FilterTransfers(ctx, &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{{Sender: &alice}},
	})
	require.NoError(t, err)
	assert.Len(t, res, 5)

	// alice->bob or anything to carol
	res, err = db.FilterTransfers(ctx, &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{
			{Sender: &alice, Recipient: &bob},
			{Recipient: &carol},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res, 8)

	// seq range with desc order and paging
	res, err = db.FilterTransfers(ctx, &logdb.TransferFilter{
		Range:   &logdb.Range{Unit: logdb.Seq, From: 2, To: 9},
		Order:   logdb.DESC,
		Options: &logdb.Options{Offset: 1, Limit: 3},
	})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []uint64{8, 7, 6}, []uint64{res[0].Seq, res[1].Seq, res[2].Seq})

	// open ended time range
	res, err = db.FilterTransfers(ctx, &logdb.TransferFilter{
		Range: &logdb.Range{Unit: logdb.Time, From: 195},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, res[0].Recipient.IsZero(), "burn side of the stake")
	assert.Equal(t, uint32(1), res[0].Index)
}

func TestFilterStakesAndApprovals(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	newHistory(t, db)
	ctx := context.Background()

	stakes, err := db.FilterStakes(ctx, &logdb.StakeFilter{Staker: &alice})
	require.NoError(t, err)
	require.Len(t, stakes, 2)
	assert.Equal(t, logdb.Staked, stakes[0].Action)
	assert.Equal(t, uint64(1), stakes[0].StakeholderIndex)
	assert.True(t, stakes[0].Reward.IsZero())
	assert.Equal(t, logdb.Unstaked, stakes[1].Action)
	assert.Equal(t, uint64(1), stakes[1].Reward.Uint64())
	assert.Equal(t, uint64(72200), stakes[1].Timestamp)

	stakes, err = db.FilterStakes(ctx, &logdb.StakeFilter{Action: logdb.Unstaked})
	require.NoError(t, err)
	assert.Len(t, stakes, 1)

	stakes, err = db.FilterStakes(ctx, &logdb.StakeFilter{Staker: &bob})
	require.NoError(t, err)
	assert.Empty(t, stakes)

	approvals, err := db.FilterApprovals(ctx, &logdb.ApprovalFilter{Owner: &alice, Spender: &bob})
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, uint64(5), approvals[0].Amount.Uint64())

	seq, err := db.NewestSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), seq)
}

func TestEmitIsIdempotent(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	seq, err := db.NewestSeq(context.Background())
	require.NoError(t, err)
	assert.Zero(t, seq)

	rec := &events.Record{Seq: 1, Event: &events.Transfer{From: alice, To: bob, Amount: uint256.NewInt(1)}}
	require.NoError(t, db.Emit([]*events.Record{rec}))
	require.NoError(t, db.Emit([]*events.Record{rec}))
	require.NoError(t, db.Emit(nil))

	res, err := db.FilterTransfers(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestPersistedLogDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")

	db, err := logdb.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	newHistory(t, db)
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()

	seq, err := db.NewestSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(11), seq)
}

func TestCanceledQuery(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	newHistory(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.FilterTransfers(ctx, &logdb.TransferFilter{})
	assert.Error(t, err)
}
