// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/token"
)

var (
	owner = genesis.DevAccounts()[0].Address
	acc1  = genesis.DevAccounts()[1].Address
	acc2  = genesis.DevAccounts()[2].Address
)

func initSubscriptionsServer(t *testing.T) (*httptest.Server, *engine.Engine, *Subscriptions) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	feed := &events.Feed{}
	gen := genesis.NewDevnet()
	eng, err := engine.New(db, engine.Options{Clock: clock.NewManual(gen.LaunchTime), Emitter: feed})
	require.NoError(t, err)
	require.NoError(t, eng.Initialize(gen))

	subs := New(feed, []string{"*"}, 100)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		subs.Close()
		feed.Close()
	})
	return ts, eng, subs
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/event", RawQuery: query}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) *EventMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg EventMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return &msg
}

func TestSubscribeAll(t *testing.T) {
	ts, eng, _ := initSubscriptionsServer(t)
	conn := dial(t, ts, "")

	require.NoError(t, eng.Transfer(owner, acc1, uint256.NewInt(10)))
	require.NoError(t, eng.Approve(owner, acc1, uint256.NewInt(3)))

	msg := readMessage(t, conn)
	assert.Equal(t, events.TypeTransfer, msg.Type)
	assert.Equal(t, owner, *msg.From)
	assert.Equal(t, acc1, *msg.To)
	assert.Nil(t, msg.Staker)

	msg = readMessage(t, conn)
	assert.Equal(t, events.TypeApproval, msg.Type)
	assert.Equal(t, acc1, *msg.Spender)
}

func TestSubscribeFiltered(t *testing.T) {
	ts, eng, _ := initSubscriptionsServer(t)
	conn := dial(t, ts, "type=staked&address="+owner.String())
	other := dial(t, ts, "address="+acc2.String())

	require.NoError(t, eng.Transfer(owner, acc1, uint256.NewInt(10)))
	_, err := eng.Stake(owner, uint256.NewInt(1000))
	require.NoError(t, err)
	require.NoError(t, eng.Transfer(owner, acc2, uint256.NewInt(1)))

	msg := readMessage(t, conn)
	assert.Equal(t, events.TypeStaked, msg.Type)
	assert.Equal(t, owner, *msg.Staker)
	require.NotNil(t, msg.Position)
	assert.Equal(t, uint64(0), *msg.Position)
	require.NotNil(t, msg.StakeholderIndex)
	assert.Equal(t, uint64(1), *msg.StakeholderIndex)

	msg = readMessage(t, other)
	assert.Equal(t, events.TypeTransfer, msg.Type)
	assert.Equal(t, acc2, *msg.To)
}

func TestSubscribeBadFilter(t *testing.T) {
	ts, _, _ := initSubscriptionsServer(t)

	for _, query := range []string{"type=minted", "address=0x01"} {
		res, err := http.Get(ts.URL + "/subscriptions/event?" + query) // #nosec
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, query)
	}
}

func TestCloseDisconnects(t *testing.T) {
	ts, _, subs := initSubscriptionsServer(t)
	conn := dial(t, ts, "")

	subs.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
}

func TestEventFilterMatch(t *testing.T) {
	rec := func(ev events.Event) *events.Record { return &events.Record{Event: ev} }
	transfer := rec(&events.Transfer{From: owner, To: acc1, Amount: uint256.NewInt(1)})
	approval := rec(&events.Approval{Owner: owner, Spender: acc2, Amount: uint256.NewInt(1)})
	unstaked := rec(&events.Unstaked{Staker: acc1, Amount: uint256.NewInt(1), Reward: new(uint256.Int)})

	addr := func(a token.Address) *token.Address { return &a }

	tests := []struct {
		filter EventFilter
		rec    *events.Record
		want   bool
	}{
		{EventFilter{}, transfer, true},
		{EventFilter{Type: events.TypeApproval}, transfer, false},
		{EventFilter{Address: addr(acc1)}, transfer, true},
		{EventFilter{Address: addr(acc2)}, transfer, false},
		{EventFilter{Address: addr(acc2)}, approval, true},
		{EventFilter{Type: events.TypeUnstaked, Address: addr(acc1)}, unstaked, true},
		{EventFilter{Address: addr(owner)}, unstaked, false},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.want, tt.filter.match(tt.rec), "case %d", i)
	}
}

func TestMessageCache(t *testing.T) {
	cache := newMessageCache(10)

	calls := 0
	create := func() ([]byte, error) {
		calls++
		return []byte("msg"), nil
	}
	msg, added, err := cache.GetOrAdd(1, 0, create)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []byte("msg"), msg)

	_, added, err = cache.GetOrAdd(1, 0, create)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, calls)

	_, added, _ = cache.GetOrAdd(1, 1, create)
	assert.True(t, added)

	_, _, err = cache.GetOrAdd(2, 0, func() ([]byte, error) { return nil, errors.New("encode") })
	assert.EqualError(t, err, "encode")
	_, added, err = cache.GetOrAdd(2, 0, create)
	require.NoError(t, err)
	assert.True(t, added, "failed encodings are not cached")
}
