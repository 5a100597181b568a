// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tierpool

import (
	"math/big"

	"github.com/vechain/tierpool/builtin/tierpool/deposit"
	"github.com/vechain/tierpool/builtin/tierpool/pool"
)

// updateAllPools updates pools by descending id. A faster pool always has a
// lower id, so a deposit migrated in this pass is examined again by its new pool.
func (e *Engine) updateAllPools(now uint64) error {
	count, err := e.pools.Count()
	if err != nil {
		return err
	}
	for id := count; id > 0; id-- {
		if err := e.updatePool(id-1, now); err != nil {
			return err
		}
	}
	return nil
}

// updatePool scans deposits from the maturity cursor. A deposit leaves the pool
// once its remaining lock fits in the faster pool (migration), or once it has
// matured in the terminal tier (over-time). The scan stops at the first active
// deposit that has to stay, and the cursor never moves backward.
func (e *Engine) updatePool(id uint64, now uint64) error {
	p, err := e.pools.Get(id)
	if err != nil {
		return err
	}

	start := p.MaturityCursor
	for i := p.MaturityCursor; i < p.DepositCount; i++ {
		d, err := e.deposits.Get(id, i)
		if err != nil {
			return err
		}
		if d == nil || !d.Active {
			p.MaturityCursor = i + 1
			continue
		}
		if p.FasterPoolTime < d.Remaining(now) {
			break
		}

		e.deposits.Clear(id, i)
		p.ActiveDeposits--
		p.ActiveAmount.Sub(p.ActiveAmount, d.Amount)
		p.MaturityCursor = i + 1

		if p.IsTerminal() {
			err = e.mature(id, p, d, now)
		} else {
			err = e.migrate(id, p, d, now)
		}
		if err != nil {
			return err
		}
	}

	if p.MaturityCursor == start {
		return nil
	}
	return e.savePool(id, p)
}

// mature turns an active deposit of the terminal tier into over-time stake.
// p.ActiveAmount has already been reduced.
func (e *Engine) mature(id uint64, p *pool.Pool, d *deposit.Deposit, now uint64) error {
	p.OverTimeAmount.Add(p.OverTimeAmount, d.Amount)

	b, err := e.participants.Balance(id, d.Account)
	if err != nil {
		return err
	}
	b.ActiveAmount.Sub(b.ActiveAmount, d.Amount)
	b.OverTimeAmount.Add(b.OverTimeAmount, d.Amount)
	if err := e.participants.SetBalance(id, d.Account, b); err != nil {
		return err
	}

	logger.Debug("deposit matured", "pid", id, "account", d.Account, "amount", d.Amount)
	e.emit(&Event{Kind: EventMature, Account: d.Account, Pool: pid(id), Amount: new(big.Int).Set(d.Amount), Time: now})
	return nil
}

// migrate moves a deposit, and every pending reward of its owner, to the faster pool.
// p.ActiveAmount has already been reduced.
func (e *Engine) migrate(id uint64, p *pool.Pool, d *deposit.Deposit, now uint64) error {
	to := *p.FasterPool
	p.TotalAmount.Sub(p.TotalAmount, d.Amount)

	src, err := e.participants.Balance(id, d.Account)
	if err != nil {
		return err
	}
	src.ActiveAmount.Sub(src.ActiveAmount, d.Amount)
	src.TotalAmount.Sub(src.TotalAmount, d.Amount)
	reward, rewardLP := src.PendingReward, src.PendingRewardLP
	src.PendingReward, src.PendingRewardLP = new(big.Int), new(big.Int)
	if err := e.participants.SetBalance(id, d.Account, src); err != nil {
		return err
	}
	if src.TotalAmount.Sign() == 0 {
		removed, err := e.participants.Tombstone(id, d.Account)
		if err != nil {
			return err
		}
		if removed {
			p.TotalUsers--
		}
	}

	dst, err := e.pools.Get(to)
	if err != nil {
		return err
	}
	moved := &deposit.Deposit{
		Account:      d.Account,
		StartTime:    d.StartTime,
		MaturityTime: d.MaturityTime,
		Amount:       d.Amount,
		Active:       true,
	}
	if err := e.deposits.Insert(to, dst.DepositCount, moved); err != nil {
		return err
	}
	dst.DepositCount++
	dst.ActiveDeposits++
	dst.ActiveAmount.Add(dst.ActiveAmount, d.Amount)
	dst.TotalAmount.Add(dst.TotalAmount, d.Amount)

	added, err := e.participants.Register(to, d.Account)
	if err != nil {
		return err
	}
	if added {
		dst.TotalUsers++
	}
	if err := e.savePool(to, dst); err != nil {
		return err
	}

	b, err := e.participants.Balance(to, d.Account)
	if err != nil {
		return err
	}
	b.ActiveAmount.Add(b.ActiveAmount, d.Amount)
	b.TotalAmount.Add(b.TotalAmount, d.Amount)
	b.PendingReward.Add(b.PendingReward, reward)
	b.PendingRewardLP.Add(b.PendingRewardLP, rewardLP)
	if err := e.participants.SetBalance(to, d.Account, b); err != nil {
		return err
	}

	logger.Debug("deposit migrated", "from", id, "to", to, "account", d.Account, "amount", d.Amount)
	e.emit(&Event{Kind: EventMigrate, Account: d.Account, Pool: pid(id), Target: pid(to), Amount: new(big.Int).Set(d.Amount), Time: now})
	return nil
}
