// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/lvldb"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st, err := state.New(db, 16)
	require.NoError(t, err)
	svc := New(solidity.NewContext(thor.BytesToAddress([]byte("tierpool")), st))

	alice := thor.BytesToAddress([]byte("alice"))
	d := &Deposit{Account: alice, StartTime: 100, MaturityTime: 400, Amount: big.NewInt(1000), Active: true}
	require.NoError(t, svc.Insert(1, 0, d))

	got, err := svc.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, alice, got.Account)
	assert.Equal(t, uint64(400), got.MaturityTime)
	assert.Equal(t, big.NewInt(1000), got.Amount)
	assert.True(t, got.Active)

	other, err := svc.Get(0, 1)
	require.NoError(t, err)
	assert.Nil(t, other, "(pool, index) keys do not collide")

	svc.Clear(1, 0)
	got, err = svc.Get(1, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemaining(t *testing.T) {
	d := &Deposit{MaturityTime: 300}
	tests := []struct {
		now, want uint64
	}{
		{0, 300},
		{150, 150},
		{300, 0},
		{301, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Remaining(tt.now), "now %d", tt.now)
	}
}
