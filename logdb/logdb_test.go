// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tierpool/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func pid(id uint64) *uint64 { return &id }

func sampleEvents() []*Event {
	return []*Event{
		{Kind: "Deposit", Account: alice, Pool: pid(1), Amount: big.NewInt(1000), Time: 10},
		{Kind: "Deposit", Account: bob, Pool: pid(0), Amount: big.NewInt(500), Time: 20},
		{Kind: "Migrate", Account: alice, Pool: pid(1), Target: pid(0), Amount: big.NewInt(1000), Time: 30},
		{Kind: "Claim", Account: bob, Amount: big.NewInt(7), Extra: big.NewInt(3), Time: 40},
		{Kind: "ExternalReward", Account: bob, Amount: big.NewInt(100), Extra: big.NewInt(5), Time: 50},
	}
}

func newDB(t *testing.T) *LogDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Write(sampleEvents()))
	return db
}

func seqs(events []*Event) []uint64 {
	out := make([]uint64, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Seq)
	}
	return out
}

func TestWriteAssignsSeq(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	events := sampleEvents()
	require.NoError(t, db.Write(events))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, seqs(events))

	last, err := db.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), last)

	require.NoError(t, db.Write(nil))
	assert.NotEmpty(t, db.DriverVersion())
}

func TestFilterEvents(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "Migrate", all[2].Kind)
	assert.Equal(t, uint64(1), *all[2].Pool)
	assert.Equal(t, uint64(0), *all[2].Target)
	assert.Nil(t, all[0].Target)
	assert.Nil(t, all[3].Pool)
	assert.Equal(t, int64(3), all[3].Extra.Int64())
	assert.Equal(t, alice, all[0].Account)

	tests := []struct {
		name   string
		filter *EventFilter
		want   []uint64
	}{
		{"empty", &EventFilter{}, []uint64{1, 2, 3, 4, 5}},
		{"range", &EventFilter{Range: &Range{From: 20, To: 40}}, []uint64{2, 3, 4}},
		{"open range", &EventFilter{Range: &Range{From: 40}}, []uint64{4, 5}},
		{"account", &EventFilter{Accounts: []thor.Address{alice}}, []uint64{1, 3}},
		{"pool includes migration target", &EventFilter{Pools: []uint64{0}}, []uint64{2, 3}},
		{"kinds", &EventFilter{Kinds: []string{"Claim", "ExternalReward"}}, []uint64{4, 5}},
		{"combined", &EventFilter{Accounts: []thor.Address{bob}, Kinds: []string{"Deposit"}}, []uint64{2}},
		{"desc", &EventFilter{Order: DESC}, []uint64{5, 4, 3, 2, 1}},
		{"paging", &EventFilter{Order: DESC, Options: &Options{Offset: 1, Limit: 2}}, []uint64{4, 3}},
		{"no match", &EventFilter{Kinds: []string{"Penalty"}}, []uint64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FilterEvents(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seqs(got))
		})
	}
}

func TestFilterCanceled(t *testing.T) {
	db := newDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.FilterEvents(ctx, &EventFilter{})
	assert.Error(t, err)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(sampleEvents()))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	last, err := db.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), last)
}
