// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/builtin/tierpool"
	"github.com/vechain/tierpool/builtin/token"
	"github.com/vechain/tierpool/lvldb"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

var (
	owner = thor.BytesToAddress([]byte("owner"))
	dev   = thor.BytesToAddress([]byte("dev"))
	alice = thor.BytesToAddress([]byte("alice"))
)

func newTarget(t *testing.T) Target {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st, err := state.New(db, 16)
	require.NoError(t, err)

	base := token.New(thor.BytesToAddress([]byte("base")), "BASE", st)
	lp := token.New(thor.BytesToAddress([]byte("lp")), "LP", st)
	return Target{
		State:  st,
		Engine: tierpool.New(thor.BytesToAddress([]byte("ledger")), st, base, lp),
		Base:   base,
		LP:     lp,
	}
}

func TestDefault(t *testing.T) {
	cfg := Default(owner, dev)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Pools, 10)

	target := newTarget(t)
	applied, err := cfg.Apply(target)
	require.NoError(t, err)
	assert.True(t, applied)

	count, err := target.Engine.PoolCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), count)

	for id := uint64(0); id < count; id++ {
		p, err := target.Engine.Pool(id)
		require.NoError(t, err)
		assert.Equal(t, id < 5, p.Farming)
		assert.Equal(t, DefaultLocks[id%5], p.LockDuration)
		assert.Equal(t, DefaultRates[id%5], p.PenaltyRate)
		assert.Equal(t, id%5 == 0, p.IsTerminal())
	}

	applied, err = cfg.Apply(target)
	require.NoError(t, err)
	assert.False(t, applied, "applied once")
	count, err = target.Engine.PoolCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), count)
}

const sample = `
owner: "%s"
dev: "%s"
pools:
  - name: fast
    lock: 60
    penaltyRate: 50
  - name: slow
    lock: 120
    penaltyRate: 80
  - name: lp
    farming: true
    lock: 60
    penaltyRate: 50
accounts:
  - address: "%s"
    base: "1000"
    lp: "0x10"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	data := []byte(fmt.Sprintf(sample, owner, dev, alice))
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Pools, 3)

	target := newTarget(t)
	_, err = cfg.Apply(target)
	require.NoError(t, err)

	bal, err := target.Base.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal.Int64())
	bal, err = target.LP.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(16), bal.Int64())

	slow, err := target.Engine.Pool(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), *slow.FasterPool)
	lp, err := target.Engine.Pool(2)
	require.NoError(t, err)
	assert.True(t, lp.IsTerminal())

	got, err := target.Engine.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing owner", Config{Dev: dev.String()}},
		{"bad amount", Config{Owner: owner.String(), Dev: dev.String(), Accounts: []Account{{Address: alice.String(), Base: "-1"}}}},
		{"bad address", Config{Owner: owner.String(), Dev: dev.String(), Accounts: []Account{{Address: "0x12"}}}},
		{"zero lock", Config{Owner: owner.String(), Dev: dev.String(), Pools: []Pool{{Name: "a"}}}},
		{"rate too high", Config{Owner: owner.String(), Dev: dev.String(), Pools: []Pool{{Name: "a", Lock: 1, PenaltyRate: 10001}}}},
		{"lock not increasing", Config{Owner: owner.String(), Dev: dev.String(), Pools: []Pool{{Name: "a", Lock: 10}, {Name: "b", Lock: 10}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}

	_, err := Parse([]byte("owner: [1"))
	assert.Error(t, err)
}
