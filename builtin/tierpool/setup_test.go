// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tierpool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/builtin/token"
	"github.com/vechain/tierpool/lvldb"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

var (
	engineAddr = thor.BytesToAddress([]byte("tierpool"))
	baseAddr   = thor.BytesToAddress([]byte("base-token"))
	lpAddr     = thor.BytesToAddress([]byte("lp-token"))
	owner      = thor.BytesToAddress([]byte("owner"))
	devAcc     = thor.BytesToAddress([]byte("dev"))
	alice      = thor.BytesToAddress([]byte("alice"))
	bob        = thor.BytesToAddress([]byte("bob"))
	carol      = thor.BytesToAddress([]byte("carol"))
)

type testLedger struct {
	engine *Engine
	state  *state.State
	base   *token.Token
	lp     *token.Token
}

// newLedger creates an engine with funded accounts and no pools.
func newLedger(t *testing.T) *testLedger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st, err := state.New(db, 256)
	require.NoError(t, err)

	base := token.New(baseAddr, "BASE", st)
	lp := token.New(lpAddr, "LP", st)
	engine := New(engineAddr, st, base, lp)
	require.NoError(t, engine.Initialize(owner, devAcc))

	for _, acc := range []thor.Address{alice, bob, carol, owner} {
		require.NoError(t, base.Mint(acc, big.NewInt(1_000_000)))
		require.NoError(t, lp.Mint(acc, big.NewInt(1_000_000)))
	}
	return &testLedger{engine: engine, state: st, base: base, lp: lp}
}

func (l *testLedger) addPool(t *testing.T, farming bool, lock, rate uint64) uint64 {
	id, err := l.engine.AddPool(owner, farming, "pool", lock, rate, 0)
	require.NoError(t, err)
	return id
}

func (l *testLedger) balanceOf(t *testing.T, tok *token.Token, acc thor.Address) int64 {
	bal, err := tok.BalanceOf(acc)
	require.NoError(t, err)
	return bal.Int64()
}

func (l *testLedger) position(t *testing.T, id uint64, acc thor.Address) (active, overTime, pending, pendingLP int64) {
	b, err := l.engine.Balance(id, acc)
	require.NoError(t, err)
	return b.ActiveAmount.Int64(), b.OverTimeAmount.Int64(), b.PendingReward.Int64(), b.PendingRewardLP.Int64()
}

// assertConservation checks that custody covers every staked amount and unclaimed reward,
// and that pool aggregates agree with deposits and balances.
func (l *testLedger) assertConservation(t *testing.T) {
	count, err := l.engine.PoolCount()
	require.NoError(t, err)

	owedBase, owedLP := new(big.Int), new(big.Int)
	for id := uint64(0); id < count; id++ {
		p, err := l.engine.Pool(id)
		require.NoError(t, err)

		assert.Equal(t, 0, new(big.Int).Add(p.ActiveAmount, p.OverTimeAmount).Cmp(p.TotalAmount), "pool %d total", id)

		activeSum, activeCount := new(big.Int), uint64(0)
		for i := p.MaturityCursor; i < p.DepositCount; i++ {
			d, err := l.engine.DepositAt(id, i)
			require.NoError(t, err)
			if d != nil && d.Active {
				activeSum.Add(activeSum, d.Amount)
				activeCount++
			}
		}
		assert.Equal(t, 0, activeSum.Cmp(p.ActiveAmount), "pool %d active deposits", id)
		assert.Equal(t, activeCount, p.ActiveDeposits, "pool %d active count", id)

		accounts, err := l.engine.Participants(id)
		require.NoError(t, err)
		assert.Equal(t, p.TotalUsers, uint64(len(accounts)), "pool %d users", id)

		totalSum := new(big.Int)
		for _, acc := range accounts {
			b, err := l.engine.Balance(id, acc)
			require.NoError(t, err)
			assert.Equal(t, 0, new(big.Int).Add(b.ActiveAmount, b.OverTimeAmount).Cmp(b.TotalAmount))
			totalSum.Add(totalSum, b.TotalAmount)
		}
		for _, acc := range []thor.Address{alice, bob, carol, owner} {
			b, err := l.engine.Balance(id, acc)
			require.NoError(t, err)
			owedBase.Add(owedBase, b.PendingReward)
			owedLP.Add(owedLP, b.PendingRewardLP)
		}
		assert.Equal(t, 0, totalSum.Cmp(p.TotalAmount), "pool %d balances", id)

		if p.Farming {
			owedLP.Add(owedLP, p.TotalAmount)
			owedLP.Add(owedLP, p.PendingPenaltyReward)
		} else {
			owedBase.Add(owedBase, p.TotalAmount)
			owedBase.Add(owedBase, p.PendingPenaltyReward)
		}
	}

	custodyBase, err := l.base.BalanceOf(engineAddr)
	require.NoError(t, err)
	custodyLP, err := l.lp.BalanceOf(engineAddr)
	require.NoError(t, err)
	assert.True(t, custodyBase.Cmp(owedBase) >= 0, "base custody %v < owed %v", custodyBase, owedBase)
	assert.True(t, custodyLP.Cmp(owedLP) >= 0, "lp custody %v < owed %v", custodyLP, owedLP)
}

// hookToken wraps a token and runs hook before every transfer.
type hookToken struct {
	*token.Token
	hook func() error
}

func (h *hookToken) Transfer(from, to thor.Address, amount *big.Int) error {
	if h.hook != nil {
		if err := h.hook(); err != nil {
			return err
		}
	}
	return h.Token.Transfer(from, to, amount)
}
