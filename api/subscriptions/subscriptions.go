// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed ledger events over websocket.
package subscriptions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/tierpool/api/events"
	"github.com/vechain/tierpool/api/utils"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/logdb"
	"github.com/vechain/tierpool/node"
	"github.com/vechain/tierpool/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	queueSize  = 256
)

type Subscriptions struct {
	node     *node.Node
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the websocket endpoint. An origin is accepted when it is listed
// in allowedOrigins, or when allowedOrigins contains "*".
func New(n *node.Node, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		node: n,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// filter selects events by query parameters kind (repeatable), account and pool.
type filter struct {
	kinds   map[string]bool
	account *thor.Address
	pool    *uint64
}

func parseFilter(q url.Values) (*filter, error) {
	f := &filter{kinds: make(map[string]bool)}
	for _, k := range q["kind"] {
		f.kinds[k] = true
	}
	if s := q.Get("account"); s != "" {
		acc, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "account")
		}
		f.account = &acc
	}
	if s := q.Get("pool"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "pool")
		}
		f.pool = &id
	}
	return f, nil
}

func (f *filter) match(ev *logdb.Event) bool {
	if len(f.kinds) > 0 && !f.kinds[ev.Kind] {
		return false
	}
	if f.account != nil && *f.account != ev.Account {
		return false
	}
	if f.pool != nil {
		inPool := ev.Pool != nil && *ev.Pool == *f.pool
		inTarget := ev.Target != nil && *ev.Target == *f.pool
		if !inPool && !inTarget {
			return false
		}
	}
	return true
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	f, err := parseFilter(req.URL.Query())
	if err != nil {
		return utils.BadRequest(err)
	}
	// subscribe before the handshake completes so no event after it is missed
	ch := make(chan []*logdb.Event, 16)
	sub := s.node.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	if err := s.pipe(req.Context(), conn, f, ch, sub); err != nil {
		logger.Debug("subscription closed", "remote", req.RemoteAddr, "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, f *filter, ch <-chan []*logdb.Event, sub event.Subscription) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the feed blocks on slow subscribers, so events are queued here and the
	// subscription is dropped once the queue is full
	queue := make(chan []*logdb.Event, queueSize)
	overflow := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evs := <-ch:
				select {
				case queue <- evs:
				default:
					sub.Unsubscribe()
					close(overflow)
					return
				}
			}
		}
	}()

	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return closeConn(conn, websocket.CloseGoingAway, "")
		case <-closed:
			return nil
		case <-overflow:
			return closeConn(conn, websocket.ClosePolicyViolation, "too slow")
		case err := <-sub.Err():
			return err
		case evs := <-queue:
			for _, ev := range evs {
				if !f.match(ev) {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(events.ConvertEvent(ev)); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func closeConn(conn *websocket.Conn, code int, text string) error {
	msg := websocket.FormatCloseMessage(code, text)
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// Close ends every open subscription and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
