// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node hosts a ledger over persistent storage. Calls are serialized,
// each successful call is committed in one batch and its events are stored
// and broadcast.
package node

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/builtin/tierpool"
	"github.com/vechain/tierpool/builtin/tierpool/deposit"
	"github.com/vechain/tierpool/builtin/tierpool/participant"
	"github.com/vechain/tierpool/builtin/tierpool/pool"
	"github.com/vechain/tierpool/builtin/token"
	"github.com/vechain/tierpool/co"
	"github.com/vechain/tierpool/genesis"
	"github.com/vechain/tierpool/kv"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/logdb"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

var logger = log.WithContext("pkg", "node")

// Well known accounts of the hosted contracts.
var (
	LedgerAddress    = thor.BytesToAddress([]byte("tierpool"))
	BaseTokenAddress = thor.BytesToAddress([]byte("base-token"))
	LPTokenAddress   = thor.BytesToAddress([]byte("lp-token"))

	metaAddress = thor.BytesToAddress([]byte("node-meta"))
	slotClock   = solidity.Slot("last-time")
)

type Options struct {
	CacheSize int
	// Clock returns the wall clock, time.Now when nil.
	Clock func() time.Time
}

// Node owns the ledger and everything it is persisted to.
type Node struct {
	mu     sync.Mutex
	state  *state.State
	base   *token.Token
	lp     *token.Token
	engine *tierpool.Engine
	logDB  *logdb.LogDB
	clock  func() time.Time
	last   *solidity.Raw[uint64]

	feed  event.Feed
	scope event.SubscriptionScope
	goes  co.Goes
}

// New opens the ledger stored in db, seeding it with gen on first use.
func New(db kv.Store, logDB *logdb.LogDB, gen *genesis.Config, opts Options) (*Node, error) {
	st, err := state.New(db, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	base := token.New(BaseTokenAddress, "BASE", st)
	lp := token.New(LPTokenAddress, "LP", st)
	n := &Node{
		state:  st,
		base:   base,
		lp:     lp,
		engine: tierpool.New(LedgerAddress, st, base, lp),
		logDB:  logDB,
		clock:  clock,
		last:   solidity.NewRaw[uint64](solidity.NewContext(metaAddress, st), slotClock),
	}

	applied, err := gen.Apply(genesis.Target{State: st, Engine: n.engine, Base: base, LP: lp})
	if err != nil {
		n.discard()
		return nil, errors.WithMessage(err, "apply genesis")
	}
	if applied {
		if err := n.commit(0); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Close stops background loops and ends every subscription.
func (n *Node) Close() {
	n.scope.Close()
	n.goes.Wait()
}

// now returns the ledger time, which never goes backward.
func (n *Node) now() (uint64, error) {
	last, err := n.last.Get()
	if err != nil {
		return 0, err
	}
	return max(uint64(n.clock().Unix()), last), nil
}

// call runs op at the current ledger time and commits its effects.
func (n *Node) call(op func(now uint64) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	now, err := n.now()
	if err != nil {
		return err
	}
	if err := op(now); err != nil {
		n.discard()
		return err
	}
	return n.commit(now)
}

// discard drops uncommitted state together with the events it produced.
func (n *Node) discard() {
	n.state.Discard()
	n.engine.TakeEvents()
}

func (n *Node) commit(now uint64) error {
	if err := n.last.Upsert(now); err != nil {
		n.discard()
		return err
	}
	if err := n.state.Commit(); err != nil {
		n.discard()
		return errors.WithMessage(err, "commit state")
	}

	events := convertEvents(n.engine.TakeEvents())
	if err := n.logDB.Write(events); err != nil {
		// ledger state is already durable
		logger.Error("failed to store events", "count", len(events), "err", err)
	}
	n.observe(events)
	if len(events) > 0 {
		n.feed.Send(events)
	}
	return nil
}

func convertEvents(evs []*tierpool.Event) []*logdb.Event {
	out := make([]*logdb.Event, 0, len(evs))
	for _, ev := range evs {
		out = append(out, &logdb.Event{
			Kind:    string(ev.Kind),
			Account: ev.Account,
			Pool:    ev.Pool,
			Target:  ev.Target,
			Amount:  ev.Amount,
			Extra:   ev.Extra,
			Time:    ev.Time,
		})
	}
	return out
}

// SubscribeEvents delivers the events of every committed call.
func (n *Node) SubscribeEvents(ch chan []*logdb.Event) event.Subscription {
	return n.scope.Track(n.feed.Subscribe(ch))
}

func (n *Node) LogDB() *logdb.LogDB {
	return n.logDB
}

// Keep runs UpdateAllPools every interval until ctx is done.
func (n *Node) Keep(ctx context.Context, interval time.Duration) {
	n.goes.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := n.UpdateAllPools(); err != nil {
					logger.Warn("failed to update pools", "err", err)
				}
			}
		}
	})
}

//
// Entry points
//

func (n *Node) AddPool(caller thor.Address, farming bool, name string, lock, penaltyRate uint64) (id uint64, err error) {
	err = n.call(func(now uint64) error {
		id, err = n.engine.AddPool(caller, farming, name, lock, penaltyRate, now)
		return err
	})
	return
}

func (n *Node) Deposit(caller thor.Address, id uint64, amount *big.Int) error {
	return n.call(func(now uint64) error { return n.engine.Deposit(caller, id, amount, now) })
}

func (n *Node) Withdraw(caller thor.Address, id uint64) error {
	return n.call(func(now uint64) error { return n.engine.Withdraw(caller, id, now) })
}

func (n *Node) WithdrawOverTime(caller thor.Address, id uint64) error {
	return n.call(func(now uint64) error { return n.engine.WithdrawOverTime(caller, id, now) })
}

func (n *Node) Claim(caller thor.Address) error {
	return n.call(func(now uint64) error { return n.engine.Claim(caller, now) })
}

func (n *Node) ExternalReward(caller thor.Address, amount *big.Int) error {
	return n.call(func(now uint64) error { return n.engine.ExternalReward(caller, amount, now) })
}

func (n *Node) UpdatePool(id uint64) error {
	return n.call(func(now uint64) error { return n.engine.UpdatePool(id, now) })
}

func (n *Node) UpdateAllPools() error {
	return n.call(func(now uint64) error { return n.engine.UpdateAllPools(now) })
}

//
// Getters
//

// View runs fn with exclusive read access to the ledger.
func (n *Node) View(fn func(v *View) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fn(&View{n})
}

// View reads committed ledger state. It is only valid inside Node.View.
type View struct {
	n *Node
}

func (v *View) Now() (uint64, error) { return v.n.now() }

func (v *View) Owner() (thor.Address, error) { return v.n.engine.Owner() }

func (v *View) DevAccount() (thor.Address, error) { return v.n.engine.DevAccount() }

func (v *View) PoolCount() (uint64, error) { return v.n.engine.PoolCount() }

func (v *View) Pool(id uint64) (*pool.Pool, error) { return v.n.engine.Pool(id) }

func (v *View) Balance(id uint64, acc thor.Address) (*participant.Balance, error) {
	return v.n.engine.Balance(id, acc)
}

func (v *View) DepositAt(id, index uint64) (*deposit.Deposit, error) {
	return v.n.engine.DepositAt(id, index)
}

func (v *View) Participants(id uint64) ([]thor.Address, error) { return v.n.engine.Participants(id) }

// TokenBalances returns the base and LP token balances of acc.
func (v *View) TokenBalances(acc thor.Address) (base, lp *big.Int, err error) {
	if base, err = v.n.base.BalanceOf(acc); err != nil {
		return nil, nil, err
	}
	if lp, err = v.n.lp.BalanceOf(acc); err != nil {
		return nil, nil, err
	}
	return base, lp, nil
}
