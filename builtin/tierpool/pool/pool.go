// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/binary"
	"math/big"
)

// PenaltyDenominator is the denominator of Pool.PenaltyRate.
const PenaltyDenominator = 10000

// Key addresses per-pool storage.
type Key uint64

func (k Key) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// Pool is one maturity tier of a track. Amounts are in the track's staked token.
type Pool struct {
	Farming      bool   // true: stakes the LP token, false: stakes the base token
	Name         string
	LockDuration uint64 // seconds
	PenaltyRate  uint64 // early withdrawal penalty over PenaltyDenominator

	TotalUsers     uint64
	ActiveAmount   *big.Int
	OverTimeAmount *big.Int
	TotalAmount    *big.Int // ActiveAmount + OverTimeAmount

	ActiveDeposits uint64
	DepositCount   uint64 // next deposit index, indexes are never reused
	MaturityCursor uint64 // deposits below the cursor have all left the pool

	FasterPoolTime uint64  // lock duration of FasterPool, 0 for the terminal tier
	FasterPool     *uint64 // next shorter tier of the same track, nil for the terminal tier

	PendingPenaltyReward *big.Int // penalties parked while no one holds active stake
}

func newPool(farming bool, name string, lock, rate uint64) *Pool {
	return &Pool{
		Farming:              farming,
		Name:                 name,
		LockDuration:         lock,
		PenaltyRate:          rate,
		ActiveAmount:         new(big.Int),
		OverTimeAmount:       new(big.Int),
		TotalAmount:          new(big.Int),
		PendingPenaltyReward: new(big.Int),
	}
}

// IsTerminal reports whether deposits in the pool mature instead of migrating.
func (p *Pool) IsTerminal() bool {
	return p.FasterPool == nil
}

// Penalty returns the early withdrawal penalty charged on amount.
func (p *Pool) Penalty(amount *big.Int) *big.Int {
	penalty := new(big.Int).Mul(amount, new(big.Int).SetUint64(p.PenaltyRate))
	return penalty.Quo(penalty, big.NewInt(PenaltyDenominator))
}

// Clone returns a deep copy.
func (p *Pool) Clone() *Pool {
	c := *p
	c.ActiveAmount = new(big.Int).Set(p.ActiveAmount)
	c.OverTimeAmount = new(big.Int).Set(p.OverTimeAmount)
	c.TotalAmount = new(big.Int).Set(p.TotalAmount)
	c.PendingPenaltyReward = new(big.Int).Set(p.PendingPenaltyReward)
	if p.FasterPool != nil {
		faster := *p.FasterPool
		c.FasterPool = &faster
	}
	return &c
}

// entry is the stored form of a Pool. RLP encodes a pointer to 0 like a nil
// pointer, so the faster pool link is stored with an explicit presence flag.
type entry struct {
	Farming        bool
	Name           string
	LockDuration   uint64
	PenaltyRate    uint64
	TotalUsers     uint64
	ActiveAmount   *big.Int
	OverTimeAmount *big.Int
	TotalAmount    *big.Int
	ActiveDeposits uint64
	DepositCount   uint64
	MaturityCursor uint64
	FasterPoolTime uint64
	HasFasterPool  bool
	FasterPool     uint64

	PendingPenaltyReward *big.Int
}

func toEntry(p *Pool) *entry {
	e := &entry{
		Farming:              p.Farming,
		Name:                 p.Name,
		LockDuration:         p.LockDuration,
		PenaltyRate:          p.PenaltyRate,
		TotalUsers:           p.TotalUsers,
		ActiveAmount:         p.ActiveAmount,
		OverTimeAmount:       p.OverTimeAmount,
		TotalAmount:          p.TotalAmount,
		ActiveDeposits:       p.ActiveDeposits,
		DepositCount:         p.DepositCount,
		MaturityCursor:       p.MaturityCursor,
		FasterPoolTime:       p.FasterPoolTime,
		PendingPenaltyReward: p.PendingPenaltyReward,
	}
	if p.FasterPool != nil {
		e.HasFasterPool = true
		e.FasterPool = *p.FasterPool
	}
	return e
}

func (e *entry) pool() *Pool {
	p := &Pool{
		Farming:              e.Farming,
		Name:                 e.Name,
		LockDuration:         e.LockDuration,
		PenaltyRate:          e.PenaltyRate,
		TotalUsers:           e.TotalUsers,
		ActiveAmount:         e.ActiveAmount,
		OverTimeAmount:       e.OverTimeAmount,
		TotalAmount:          e.TotalAmount,
		ActiveDeposits:       e.ActiveDeposits,
		DepositCount:         e.DepositCount,
		MaturityCursor:       e.MaturityCursor,
		FasterPoolTime:       e.FasterPoolTime,
		PendingPenaltyReward: e.PendingPenaltyReward,
	}
	if e.HasFasterPool {
		faster := e.FasterPool
		p.FasterPool = &faster
	}
	return p
}

// Head is the longest-lock pool of a track.
type Head struct {
	ID   uint64
	Lock uint64
}
