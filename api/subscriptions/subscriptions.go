// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10

	// records buffered per connection
	subscriberBuffer = 256

	closeTimeout = 5 * time.Second
)

type Subscriptions struct {
	feed     *events.Feed
	upgrader *websocket.Upgrader
	cache    *messageCache
	done     chan struct{}
	doneOnce sync.Once
	goes     co.Goes
}

func New(feed *events.Feed, allowedOrigins []string, cacheSize uint32) *Subscriptions {
	return &Subscriptions{
		feed: feed,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		cache: newMessageCache(cacheSize),
		done:  make(chan struct{}),
	}
}

func parseEventFilter(req *http.Request) (*EventFilter, error) {
	query := req.URL.Query()
	filter := &EventFilter{Type: strings.ToLower(query.Get("type"))}
	switch filter.Type {
	case "", events.TypeTransfer, events.TypeApproval, events.TypeStaked, events.TypeUnstaked:
	default:
		return nil, errors.Errorf("type: unsupported %q", filter.Type)
	}
	if s := query.Get("address"); s != "" {
		addr, err := token.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "address")
		}
		filter.Address = &addr
	}
	return filter, nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req)
	if err != nil {
		return utils.BadRequest(err)
	}

	// subscribe before the handshake completes so no record after it is missed
	ch := make(chan *events.Record, subscriberBuffer)
	sub := s.feed.Subscribe(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		sub.Unsubscribe()
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.goes.Go(func() {
		defer conn.Close()
		defer sub.Unsubscribe()

		closed := make(chan struct{})
		// read and discard so that pongs and close frames are processed
		s.goes.Go(func() {
			defer close(closed)
			conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					logger.Debug("websocket read", "err", err)
					return
				}
			}
		})

		if err := s.pipe(conn, filter, ch, sub, closed); err != nil {
			logger.Debug("websocket pipe", "err", err)
			msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	})
	return nil
}

// pipe forwards matching records to conn until the peer leaves or the service closes.
func (s *Subscriptions) pipe(conn *websocket.Conn, filter *EventFilter, ch <-chan *events.Record, sub event.Subscription, closed <-chan struct{}) error {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case err := <-sub.Err():
			// nil once the feed is closed
			return err
		case rec := <-ch:
			if !filter.match(rec) {
				continue
			}
			msg, _, err := s.cache.GetOrAdd(rec.Seq, rec.Index, func() ([]byte, error) {
				return json.Marshal(convertRecord(rec))
			})
			if err != nil {
				return err
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close stops all connections and waits for their goroutines.
func (s *Subscriptions) Close() {
	s.doneOnce.Do(func() { close(s.done) })
	if !s.goes.WaitTimeout(closeTimeout) {
		logger.Warn("subscriptions still running after close", "count", s.goes.Running())
		s.goes.Wait()
	}
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
