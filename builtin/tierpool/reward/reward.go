// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
)

// SharePrecision is the precision of pro-rata shares, in decimal digits.
// A share of 10^SharePrecision is the whole amount.
const SharePrecision = 4

// External reward split, in percent. The dev account receives the remainder.
const (
	FarmingPercent = 55
	StakingPercent = 40
)

var (
	big10      = big.NewInt(10)
	big100     = big.NewInt(100)
	shareScale = new(big.Int).Exp(big10, big.NewInt(SharePrecision), nil)
)

// Percent returns num/den scaled by 10^precision, rounded half up.
// A zero den yields zero.
func Percent(num, den *big.Int, precision uint) *big.Int {
	if den.Sign() == 0 {
		return new(big.Int)
	}
	scale := new(big.Int).Exp(big10, new(big.Int).SetUint64(uint64(precision)+1), nil)
	v := new(big.Int).Mul(num, scale)
	v.Quo(v, den)
	v.Add(v, big.NewInt(5))
	return v.Quo(v, big10)
}

// Share returns the part of amount owed to a holder of part out of whole.
func Share(amount, part, whole *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, Percent(part, whole, SharePrecision))
	return v.Quo(v, shareScale)
}

// Split divides an external reward into the farming, staking and dev shares.
// The three always sum to amount.
func Split(amount *big.Int) (farming, staking, dev *big.Int) {
	farming = new(big.Int).Mul(amount, big.NewInt(FarmingPercent))
	farming.Quo(farming, big100)
	staking = new(big.Int).Mul(amount, big.NewInt(StakingPercent))
	staking.Quo(staking, big100)
	dev = new(big.Int).Sub(amount, farming)
	dev.Sub(dev, staking)
	return
}
