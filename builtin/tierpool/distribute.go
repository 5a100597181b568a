// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tierpool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/tierpool/participant"
	"github.com/vechain/tierpool/builtin/tierpool/reward"
	"github.com/vechain/tierpool/thor"
)

// ewfReward shares a penalty collected in pool id among the pool's active stake.
// It is parked in the pool while nobody holds active stake there, and flushed by the next deposit.
// Rounding dust stays in custody.
func (e *Engine) ewfReward(id uint64, amount *big.Int, now uint64) error {
	p, err := e.pools.Get(id)
	if err != nil {
		return err
	}
	if p.TotalUsers == 0 || p.ActiveAmount.Sign() == 0 {
		p.PendingPenaltyReward.Add(p.PendingPenaltyReward, amount)
		if err := e.savePool(id, p); err != nil {
			return err
		}
		logger.Debug("penalty parked", "pid", id, "amount", amount)
		e.emit(&Event{Kind: EventPenaltyParked, Pool: pid(id), Amount: new(big.Int).Set(amount), Time: now})
		return nil
	}

	return e.distribute(id, amount, p.ActiveAmount, new(big.Int).Set(amount), func(b *participant.Balance, award *big.Int) {
		if p.Farming {
			b.PendingRewardLP.Add(b.PendingRewardLP, award)
		} else {
			b.PendingReward.Add(b.PendingReward, award)
		}
	})
}

// distribute credits every participant of pool id with active stake a share of
// amount proportional to its active stake over whole. Awards are taken out of
// budget and never exceed it, since rounded shares may sum above amount.
func (e *Engine) distribute(id uint64, amount, whole, budget *big.Int, credit func(*participant.Balance, *big.Int)) error {
	accounts, err := e.participants.Participants(id)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		b, err := e.participants.Balance(id, acc)
		if err != nil {
			return err
		}
		if b.ActiveAmount.Sign() <= 0 {
			continue
		}
		award := reward.Share(amount, b.ActiveAmount, whole)
		if award.Cmp(budget) > 0 {
			award.Set(budget)
		}
		if award.Sign() == 0 {
			continue
		}
		budget.Sub(budget, award)
		credit(b, award)
		if err := e.participants.SetBalance(id, acc, b); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) externalReward(caller thor.Address, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if caller.IsZero() {
		return ErrInvalidAccount
	}
	devAccount, err := e.dev.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get dev account")
	}
	if err := e.base.Transfer(caller, e.addr, amount); err != nil {
		return errors.WithMessage(err, "reward transfer")
	}

	farming, staking, dev := reward.Split(amount)

	if err := e.updateAllPools(now); err != nil {
		return err
	}
	count, err := e.pools.Count()
	if err != nil {
		return err
	}

	type track struct {
		share, active *big.Int
		users         uint64
		pools         []uint64
	}
	tracks := map[bool]*track{
		true:  {share: farming, active: new(big.Int)},
		false: {share: staking, active: new(big.Int)},
	}
	for id := uint64(0); id < count; id++ {
		p, err := e.pools.Get(id)
		if err != nil {
			return err
		}
		t := tracks[p.Farming]
		t.active.Add(t.active, p.ActiveAmount)
		t.users += p.TotalUsers
		if p.ActiveAmount.Sign() > 0 {
			t.pools = append(t.pools, id)
		}
	}

	for _, t := range tracks {
		if t.users == 0 || t.active.Sign() == 0 {
			dev.Add(dev, t.share)
			continue
		}
		budget := new(big.Int).Set(t.share)
		for _, id := range t.pools {
			err := e.distribute(id, t.share, t.active, budget, func(b *participant.Balance, award *big.Int) {
				b.PendingReward.Add(b.PendingReward, award)
			})
			if err != nil {
				return err
			}
		}
	}

	if dev.Sign() > 0 {
		if err := e.base.Transfer(e.addr, devAccount, dev); err != nil {
			return errors.WithMessage(err, "dev transfer")
		}
	}

	logger.Debug("external reward", "caller", caller, "amount", amount, "farming", farming, "staking", staking, "dev", dev)
	e.emit(&Event{Kind: EventExternalReward, Account: caller, Amount: new(big.Int).Set(amount), Extra: dev, Time: now})
	return nil
}
