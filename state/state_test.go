// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/lvldb"
	"github.com/vechain/tierpool/thor"
)

func newState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := New(db, 16)
	require.NoError(t, err)
	return st, db
}

func M(a ...any) []any {
	return a
}

func TestStorage(t *testing.T) {
	st, _ := newState(t)

	addr := thor.BytesToAddress([]byte("acc"))
	key := thor.BytesToBytes32([]byte("key"))
	value := thor.BytesToBytes32([]byte("value"))

	assert.Equal(t, M(thor.Bytes32{}, nil), M(st.GetStorage(addr, key)))

	st.SetStorage(addr, key, value)
	assert.Equal(t, M(value, nil), M(st.GetStorage(addr, key)))

	st.SetStorage(addr, key, thor.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStructuredStorage(t *testing.T) {
	st, _ := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	key := thor.BytesToBytes32([]byte("list"))

	type pair struct{ A, B uint64 }
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&pair{1, 2})
	}))

	var got pair
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, pair{1, 2}, got)

	raw, _ := st.GetRawStorage(addr, key)
	assert.Equal(t, M(thor.Blake2b(raw), nil), M(st.GetStorage(addr, key)))

	boom := errors.New("boom")
	err := st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	err = st.DecodeStorage(addr, key, func([]byte) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestCheckpoint(t *testing.T) {
	st, _ := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	key := thor.BytesToBytes32([]byte("key"))

	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{1}))

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{2}))
	inner := st.NewCheckpoint()
	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{3}))

	st.RevertTo(inner)
	assert.Equal(t, M(thor.BytesToBytes32([]byte{2}), nil), M(st.GetStorage(addr, key)))

	st.RevertTo(rev)
	assert.Equal(t, M(thor.BytesToBytes32([]byte{1}), nil), M(st.GetStorage(addr, key)))

	// base level survives any revert
	st.RevertTo(0)
	assert.Equal(t, M(thor.BytesToBytes32([]byte{1}), nil), M(st.GetStorage(addr, key)))
}

func TestCommit(t *testing.T) {
	st, db := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	k1 := thor.BytesToBytes32([]byte("k1"))
	k2 := thor.BytesToBytes32([]byte("k2"))

	require.NoError(t, st.Commit(), "empty commit")

	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{1}))
	st.SetStorage(addr, k2, thor.BytesToBytes32([]byte{2}))
	assert.Equal(t, 2, st.Dirty())
	require.NoError(t, st.Commit())
	assert.Equal(t, 0, st.Dirty())

	// a fresh state over the same store sees committed values
	st2, err := New(db, 16)
	require.NoError(t, err)
	assert.Equal(t, M(thor.BytesToBytes32([]byte{1}), nil), M(st2.GetStorage(addr, k1)))

	st.SetStorage(addr, k1, thor.Bytes32{})
	require.NoError(t, st.Commit())
	has, err := db.Has(storageKey{addr, k1}.dbKey())
	require.NoError(t, err)
	assert.False(t, has, "zero value deletes the key")

	st.SetStorage(addr, k2, thor.BytesToBytes32([]byte{9}))
	st.Discard()
	assert.Equal(t, M(thor.BytesToBytes32([]byte{2}), nil), M(st.GetStorage(addr, k2)))
}

func TestLoadError(t *testing.T) {
	st, db := newState(t)
	require.NoError(t, db.Close())

	_, err := st.GetStorage(thor.Address{}, thor.Bytes32{})
	var serr *Error
	assert.True(t, errors.As(err, &serr))
}
