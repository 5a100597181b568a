// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tierpool/builtin/tierpool/deposit"
	"github.com/vechain/tierpool/builtin/tierpool/participant"
	"github.com/vechain/tierpool/builtin/tierpool/pool"
	"github.com/vechain/tierpool/thor"
)

type Pool struct {
	ID                   uint64                `json:"id"`
	Name                 string                `json:"name"`
	Farming              bool                  `json:"farming"`
	LockDuration         uint64                `json:"lockDuration"`
	PenaltyRate          uint64                `json:"penaltyRate"`
	TotalUsers           uint64                `json:"totalUsers"`
	ActiveAmount         *math.HexOrDecimal256 `json:"activeAmount"`
	OverTimeAmount       *math.HexOrDecimal256 `json:"overTimeAmount"`
	TotalAmount          *math.HexOrDecimal256 `json:"totalAmount"`
	ActiveDeposits       uint64                `json:"activeDeposits"`
	DepositCount         uint64                `json:"depositCount"`
	MaturityCursor       uint64                `json:"maturityCursor"`
	FasterPool           *uint64               `json:"fasterPool"`
	FasterPoolTime       uint64                `json:"fasterPoolTime"`
	PendingPenaltyReward *math.HexOrDecimal256 `json:"pendingPenaltyReward"`
}

func hex(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func convertPool(id uint64, p *pool.Pool) *Pool {
	return &Pool{
		ID:                   id,
		Name:                 p.Name,
		Farming:              p.Farming,
		LockDuration:         p.LockDuration,
		PenaltyRate:          p.PenaltyRate,
		TotalUsers:           p.TotalUsers,
		ActiveAmount:         hex(p.ActiveAmount),
		OverTimeAmount:       hex(p.OverTimeAmount),
		TotalAmount:          hex(p.TotalAmount),
		ActiveDeposits:       p.ActiveDeposits,
		DepositCount:         p.DepositCount,
		MaturityCursor:       p.MaturityCursor,
		FasterPool:           p.FasterPool,
		FasterPoolTime:       p.FasterPoolTime,
		PendingPenaltyReward: hex(p.PendingPenaltyReward),
	}
}

type Balance struct {
	ActiveAmount    *math.HexOrDecimal256 `json:"activeAmount"`
	OverTimeAmount  *math.HexOrDecimal256 `json:"overTimeAmount"`
	TotalAmount     *math.HexOrDecimal256 `json:"totalAmount"`
	PendingReward   *math.HexOrDecimal256 `json:"pendingReward"`
	PendingRewardLP *math.HexOrDecimal256 `json:"pendingRewardLP"`
	ClaimedReward   *math.HexOrDecimal256 `json:"claimedReward"`
	ClaimedRewardLP *math.HexOrDecimal256 `json:"claimedRewardLP"`
}

func ConvertBalance(b *participant.Balance) *Balance {
	return &Balance{
		ActiveAmount:    hex(b.ActiveAmount),
		OverTimeAmount:  hex(b.OverTimeAmount),
		TotalAmount:     hex(b.TotalAmount),
		PendingReward:   hex(b.PendingReward),
		PendingRewardLP: hex(b.PendingRewardLP),
		ClaimedReward:   hex(b.ClaimedReward),
		ClaimedRewardLP: hex(b.ClaimedRewardLP),
	}
}

type Deposit struct {
	Account      thor.Address          `json:"account"`
	StartTime    uint64                `json:"startTime"`
	MaturityTime uint64                `json:"maturityTime"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	Active       bool                  `json:"active"`
}

func convertDeposit(d *deposit.Deposit) *Deposit {
	return &Deposit{
		Account:      d.Account,
		StartTime:    d.StartTime,
		MaturityTime: d.MaturityTime,
		Amount:       hex(d.Amount),
		Active:       d.Active,
	}
}

// AddPool is the body of a pool creation request.
type AddPool struct {
	Caller      thor.Address `json:"caller"`
	Farming     bool         `json:"farming"`
	Name        string       `json:"name"`
	Lock        uint64       `json:"lock"`
	PenaltyRate uint64       `json:"penaltyRate"`
}

// Call is the body of a request acting on behalf of caller.
type Call struct {
	Caller thor.Address          `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount,omitempty"`
}

func (c *Call) AmountBig() *big.Int {
	if c.Amount == nil {
		return nil
	}
	return (*big.Int)(c.Amount)
}
