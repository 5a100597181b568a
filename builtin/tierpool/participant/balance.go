// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"math/big"
)

// Balance is a participant's position in one pool.
// Stake amounts are in the pool's staked token, PendingReward and ClaimedReward
// in the base token, the LP variants in the LP token.
type Balance struct {
	ActiveAmount    *big.Int
	OverTimeAmount  *big.Int
	TotalAmount     *big.Int // ActiveAmount + OverTimeAmount
	PendingReward   *big.Int
	PendingRewardLP *big.Int
	ClaimedReward   *big.Int
	ClaimedRewardLP *big.Int
}

func newBalance() *Balance {
	return &Balance{
		ActiveAmount:    new(big.Int),
		OverTimeAmount:  new(big.Int),
		TotalAmount:     new(big.Int),
		PendingReward:   new(big.Int),
		PendingRewardLP: new(big.Int),
		ClaimedReward:   new(big.Int),
		ClaimedRewardLP: new(big.Int),
	}
}

// HasPending reports whether any reward is waiting to be claimed.
func (b *Balance) HasPending() bool {
	return b.PendingReward.Sign() > 0 || b.PendingRewardLP.Sign() > 0
}

// IsEmpty reports whether the balance carries nothing worth storing.
func (b *Balance) IsEmpty() bool {
	for _, v := range []*big.Int{
		b.ActiveAmount, b.OverTimeAmount, b.TotalAmount,
		b.PendingReward, b.PendingRewardLP, b.ClaimedReward, b.ClaimedRewardLP,
	} {
		if v.Sign() != 0 {
			return false
		}
	}
	return true
}
