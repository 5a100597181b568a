// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tierpool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/reverts"
	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/builtin/tierpool/deposit"
	"github.com/vechain/tierpool/builtin/tierpool/participant"
	"github.com/vechain/tierpool/builtin/tierpool/pool"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

var (
	logger = log.WithContext("pkg", "tierpool")

	slotOwner = solidity.Slot("owner")
	slotDev   = solidity.Slot("dev-account")

	ErrInvalidAmount  = reverts.New("amount must be positive")
	ErrInvalidAccount = reverts.New("invalid account")
	ErrNoBalance      = reverts.New("nothing to withdraw")
	ErrNotOwner       = reverts.New("caller is not the owner")
	ErrReentrant      = reverts.New("reentrant call")
	ErrInvalidPool    = pool.ErrInvalidPool
	ErrInvalidTier    = pool.ErrInvalidTier
)

func isRevert(err error) bool {
	return reverts.IsRevertErr(err)
}

// TokenPort moves tokens between accounts. A failed transfer must leave balances untouched.
type TokenPort interface {
	Transfer(from, to thor.Address, amount *big.Int) error
}

// Engine is the tiered deposit ledger. Custody of both tokens is held at the
// engine address. Each entry point runs inside a state checkpoint and leaves
// no effect when it fails.
//
// Engine is not safe for concurrent use.
type Engine struct {
	addr  thor.Address
	state *state.State
	base  TokenPort
	lp    TokenPort

	owner *solidity.Address
	dev   *solidity.Address

	pools        *pool.Service
	deposits     *deposit.Service
	participants *participant.Service

	events  []*Event
	entered bool
}

// New create a new instance. base is the reward and staking token, lp the farming token.
func New(addr thor.Address, st *state.State, base, lp TokenPort) *Engine {
	sctx := solidity.NewContext(addr, st)
	return &Engine{
		addr:         addr,
		state:        st,
		base:         base,
		lp:           lp,
		owner:        solidity.NewAddress(sctx, slotOwner),
		dev:          solidity.NewAddress(sctx, slotDev),
		pools:        pool.New(sctx),
		deposits:     deposit.New(sctx),
		participants: participant.New(sctx),
	}
}

// Initialize sets the owner allowed to add pools and the account receiving the dev share.
func (e *Engine) Initialize(owner, dev thor.Address) error {
	if owner.IsZero() || dev.IsZero() {
		return ErrInvalidAccount
	}
	e.owner.Set(owner)
	e.dev.Set(dev)
	return nil
}

//
// Getters - no state change
//

func (e *Engine) Address() thor.Address { return e.addr }

func (e *Engine) Owner() (thor.Address, error) { return e.owner.Get() }

func (e *Engine) DevAccount() (thor.Address, error) { return e.dev.Get() }

// PoolCount returns the number of pools, ids are [0, PoolCount).
func (e *Engine) PoolCount() (uint64, error) {
	return e.pools.Count()
}

func (e *Engine) Pool(id uint64) (*pool.Pool, error) {
	return e.pools.Get(id)
}

func (e *Engine) Balance(id uint64, account thor.Address) (*participant.Balance, error) {
	if _, err := e.pools.Get(id); err != nil {
		return nil, err
	}
	return e.participants.Balance(id, account)
}

// DepositAt returns a deposit record, nil once it has left the pool.
func (e *Engine) DepositAt(id, index uint64) (*deposit.Deposit, error) {
	if _, err := e.pools.Get(id); err != nil {
		return nil, err
	}
	return e.deposits.Get(id, index)
}

func (e *Engine) Participants(id uint64) ([]thor.Address, error) {
	if _, err := e.pools.Get(id); err != nil {
		return nil, err
	}
	return e.participants.Participants(id)
}

//
// Entry points
//

// exec runs fn as one atomic entry point.
func (e *Engine) exec(op string, fn func() error) (err error) {
	defer func() { observeCall(op, err) }()

	if e.entered {
		return ErrReentrant
	}
	e.entered = true
	defer func() { e.entered = false }()

	rev := e.state.NewCheckpoint()
	mark := len(e.events)
	if err = fn(); err != nil {
		e.state.RevertTo(rev)
		e.events = e.events[:mark]
		if isRevert(err) {
			logger.Debug("call reverted", "op", op, "reason", err)
		} else {
			logger.Warn("call failed", "op", op, "err", err)
		}
		return err
	}
	return nil
}

// AddPool appends a tier to the farming or staking track. Owner only.
func (e *Engine) AddPool(caller thor.Address, farming bool, name string, lock, penaltyRate uint64, now uint64) (id uint64, err error) {
	err = e.exec("add_pool", func() error {
		owner, err := e.owner.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get owner")
		}
		if caller.IsZero() || caller != owner {
			return ErrNotOwner
		}
		var p *pool.Pool
		if id, p, err = e.pools.Add(farming, name, lock, penaltyRate); err != nil {
			return err
		}
		logger.Info("pool added", "pid", id, "name", name, "farming", farming, "lock", lock, "rate", penaltyRate)
		e.emit(&Event{Kind: EventPoolAdded, Account: caller, Pool: pid(id), Target: p.FasterPool, Amount: new(big.Int), Time: now})
		return nil
	})
	return
}

// UpdatePool moves due deposits of one pool to its faster pool, or to over-time on the terminal tier.
func (e *Engine) UpdatePool(id uint64, now uint64) error {
	return e.exec("update_pool", func() error {
		return e.updatePool(id, now)
	})
}

// UpdateAllPools runs UpdatePool on every pool, slowest tiers first.
func (e *Engine) UpdateAllPools(now uint64) error {
	return e.exec("update_all_pools", func() error {
		return e.updateAllPools(now)
	})
}

// Deposit locks amount of the pool's track token for the caller.
func (e *Engine) Deposit(caller thor.Address, id uint64, amount *big.Int, now uint64) error {
	return e.exec("deposit", func() error {
		return e.deposit(caller, id, amount, now)
	})
}

// Withdraw pays out the caller's whole position in a pool, charging the
// early withdrawal penalty on the active part. Pending rewards are claimed first.
func (e *Engine) Withdraw(caller thor.Address, id uint64, now uint64) error {
	return e.exec("withdraw", func() error {
		return e.withdraw(caller, id, now)
	})
}

// WithdrawOverTime pays out the caller's matured stake of a pool without penalty.
func (e *Engine) WithdrawOverTime(caller thor.Address, id uint64, now uint64) error {
	return e.exec("withdraw_over_time", func() error {
		return e.withdrawOverTime(caller, id, now)
	})
}

// Claim pays every pending reward of the caller, across all pools.
func (e *Engine) Claim(caller thor.Address, now uint64) error {
	return e.exec("claim", func() error {
		if caller.IsZero() {
			return ErrInvalidAccount
		}
		return e.claim(caller, now)
	})
}

// ExternalReward takes amount of the base token from caller and shares it
// between farming, staking and the dev account.
func (e *Engine) ExternalReward(caller thor.Address, amount *big.Int, now uint64) error {
	return e.exec("external_reward", func() error {
		return e.externalReward(caller, amount, now)
	})
}

//
// internals
//

func (e *Engine) token(farming bool) TokenPort {
	if farming {
		return e.lp
	}
	return e.base
}

func (e *Engine) deposit(caller thor.Address, id uint64, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if caller.IsZero() {
		return ErrInvalidAccount
	}
	if err := e.updatePool(id, now); err != nil {
		return err
	}
	p, err := e.pools.Get(id)
	if err != nil {
		return err
	}

	added, err := e.participants.Register(id, caller)
	if err != nil {
		return err
	}
	if added {
		p.TotalUsers++
	}

	if err := e.token(p.Farming).Transfer(caller, e.addr, amount); err != nil {
		return errors.WithMessage(err, "deposit transfer")
	}

	d := &deposit.Deposit{
		Account:      caller,
		StartTime:    now,
		MaturityTime: now + p.LockDuration,
		Amount:       new(big.Int).Set(amount),
		Active:       true,
	}
	if err := e.deposits.Insert(id, p.DepositCount, d); err != nil {
		return err
	}
	p.DepositCount++
	p.ActiveDeposits++
	p.ActiveAmount.Add(p.ActiveAmount, amount)
	p.TotalAmount.Add(p.TotalAmount, amount)

	b, err := e.participants.Balance(id, caller)
	if err != nil {
		return err
	}
	b.ActiveAmount.Add(b.ActiveAmount, amount)
	b.TotalAmount.Add(b.TotalAmount, amount)
	if err := e.participants.SetBalance(id, caller, b); err != nil {
		return err
	}

	parked := p.PendingPenaltyReward
	p.PendingPenaltyReward = new(big.Int)
	if err := e.savePool(id, p); err != nil {
		return err
	}

	logger.Debug("deposit", "pid", id, "account", caller, "amount", amount, "maturity", d.MaturityTime)
	e.emit(&Event{Kind: EventDeposit, Account: caller, Pool: pid(id), Amount: new(big.Int).Set(amount), Time: now})

	if parked.Sign() > 0 {
		return e.ewfReward(id, parked, now)
	}
	return nil
}

func (e *Engine) withdraw(caller thor.Address, id uint64, now uint64) error {
	if caller.IsZero() {
		return ErrInvalidAccount
	}
	if _, err := e.pools.Get(id); err != nil {
		return err
	}
	// rewards earned up to now are paid before the position is zeroed
	if err := e.claim(caller, now); err != nil {
		return err
	}

	p, err := e.pools.Get(id)
	if err != nil {
		return err
	}
	b, err := e.participants.Balance(id, caller)
	if err != nil {
		return err
	}
	if b.TotalAmount.Sign() <= 0 {
		return ErrNoBalance
	}

	penalty := p.Penalty(b.ActiveAmount)
	payout := new(big.Int).Sub(b.TotalAmount, penalty)

	for i := p.MaturityCursor; i < p.DepositCount; i++ {
		d, err := e.deposits.Get(id, i)
		if err != nil {
			return err
		}
		if d == nil || !d.Active || d.Account != caller {
			continue
		}
		e.deposits.Clear(id, i)
		p.ActiveDeposits--
	}
	p.ActiveAmount.Sub(p.ActiveAmount, b.ActiveAmount)
	p.OverTimeAmount.Sub(p.OverTimeAmount, b.OverTimeAmount)
	p.TotalAmount.Sub(p.TotalAmount, b.TotalAmount)

	if err := e.token(p.Farming).Transfer(e.addr, caller, payout); err != nil {
		return errors.WithMessage(err, "withdraw transfer")
	}

	b.ActiveAmount.SetUint64(0)
	b.OverTimeAmount.SetUint64(0)
	b.TotalAmount.SetUint64(0)
	if err := e.participants.SetBalance(id, caller, b); err != nil {
		return err
	}
	removed, err := e.participants.Tombstone(id, caller)
	if err != nil {
		return err
	}
	if removed {
		p.TotalUsers--
	}
	if err := e.savePool(id, p); err != nil {
		return err
	}

	logger.Debug("withdraw", "pid", id, "account", caller, "payout", payout, "penalty", penalty)
	e.emit(&Event{Kind: EventWithdraw, Account: caller, Pool: pid(id), Amount: payout, Time: now})
	if penalty.Sign() > 0 {
		e.emit(&Event{Kind: EventPenalty, Account: caller, Pool: pid(id), Amount: new(big.Int).Set(penalty), Time: now})
		return e.ewfReward(id, penalty, now)
	}
	return nil
}

func (e *Engine) withdrawOverTime(caller thor.Address, id uint64, now uint64) error {
	if caller.IsZero() {
		return ErrInvalidAccount
	}
	if _, err := e.pools.Get(id); err != nil {
		return err
	}
	if err := e.claim(caller, now); err != nil {
		return err
	}

	p, err := e.pools.Get(id)
	if err != nil {
		return err
	}
	b, err := e.participants.Balance(id, caller)
	if err != nil {
		return err
	}
	if b.OverTimeAmount.Sign() <= 0 {
		return ErrNoBalance
	}

	amount := new(big.Int).Set(b.OverTimeAmount)
	b.OverTimeAmount.SetUint64(0)
	b.TotalAmount.Sub(b.TotalAmount, amount)
	p.OverTimeAmount.Sub(p.OverTimeAmount, amount)
	p.TotalAmount.Sub(p.TotalAmount, amount)

	if err := e.token(p.Farming).Transfer(e.addr, caller, amount); err != nil {
		return errors.WithMessage(err, "withdraw transfer")
	}
	if err := e.participants.SetBalance(id, caller, b); err != nil {
		return err
	}
	if b.TotalAmount.Sign() == 0 {
		removed, err := e.participants.Tombstone(id, caller)
		if err != nil {
			return err
		}
		if removed {
			p.TotalUsers--
		}
	}
	if err := e.savePool(id, p); err != nil {
		return err
	}

	logger.Debug("withdraw matured", "pid", id, "account", caller, "amount", amount)
	e.emit(&Event{Kind: EventWithdrawMatured, Account: caller, Pool: pid(id), Amount: amount, Time: now})
	return nil
}

func (e *Engine) claim(caller thor.Address, now uint64) error {
	if err := e.updateAllPools(now); err != nil {
		return err
	}
	count, err := e.pools.Count()
	if err != nil {
		return err
	}

	base, lp := new(big.Int), new(big.Int)
	for id := count; id > 0; id-- {
		b, err := e.participants.Balance(id-1, caller)
		if err != nil {
			return err
		}
		if !b.HasPending() {
			continue
		}
		base.Add(base, b.PendingReward)
		lp.Add(lp, b.PendingRewardLP)
		b.ClaimedReward.Add(b.ClaimedReward, b.PendingReward)
		b.ClaimedRewardLP.Add(b.ClaimedRewardLP, b.PendingRewardLP)
		b.PendingReward.SetUint64(0)
		b.PendingRewardLP.SetUint64(0)
		if err := e.participants.SetBalance(id-1, caller, b); err != nil {
			return err
		}
	}

	if base.Sign() > 0 {
		if err := e.base.Transfer(e.addr, caller, base); err != nil {
			return errors.WithMessage(err, "claim transfer")
		}
	}
	if lp.Sign() > 0 {
		if err := e.lp.Transfer(e.addr, caller, lp); err != nil {
			return errors.WithMessage(err, "claim transfer")
		}
	}
	if base.Sign() > 0 || lp.Sign() > 0 {
		logger.Debug("claim", "account", caller, "base", base, "lp", lp)
		e.emit(&Event{Kind: EventClaim, Account: caller, Amount: base, Extra: lp, Time: now})
	}
	return nil
}

func (e *Engine) savePool(id uint64, p *pool.Pool) error {
	return e.pools.Update(id, p)
}
