// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	src := map[string]string{"foo": "bar"}
	sm := New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	assert.Equal(t, 0, sm.Depth())
	assert.Panics(t, func() { sm.Put("k", "v") }, "put on empty stack")

	tests := []struct {
		f      func()
		depth  int
		values map[string][]any
	}{
		{func() {}, 0, map[string][]any{"foo": M("bar", true, nil), "x": M("", false, nil)}},
		{func() { sm.Push(); sm.Put("foo", "baz") }, 1, map[string][]any{"foo": M("baz", true, nil)}},
		{func() { sm.Push(); sm.Put("x", "1"); sm.Put("x", "2") }, 2, map[string][]any{"x": M("2", true, nil)}},
		{func() { sm.Pop() }, 1, map[string][]any{"x": M("", false, nil), "foo": M("baz", true, nil)}},
		{func() { sm.Push(); sm.Push(); sm.Put("foo", "qux"); sm.PopTo(1) }, 1, map[string][]any{"foo": M("baz", true, nil)}},
		{func() { sm.PopTo(0) }, 0, map[string][]any{"foo": M("bar", true, nil)}},
	}

	for _, tt := range tests {
		tt.f()
		assert.Equal(t, tt.depth, sm.Depth())
		for k, want := range tt.values {
			v, ok, err := sm.Get(k)
			assert.Equal(t, want, M(v, ok, err), k)
		}
	}
}

func TestJournal(t *testing.T) {
	sm := New(func(string) (int, bool, error) { return 0, false, nil })
	sm.Push()
	sm.Put("a", 1)
	sm.Push()
	sm.Put("b", 2)
	sm.Put("a", 3)

	assert.Equal(t, []JournalEntry[string, int]{{"a", 1}, {"b", 2}, {"a", 3}}, sm.Journal())

	sm.Pop()
	assert.Equal(t, []JournalEntry[string, int]{{"a", 1}}, sm.Journal())
}

func TestSourceError(t *testing.T) {
	boom := errors.New("boom")
	sm := New(func(string) (int, bool, error) { return 0, false, boom })
	_, _, err := sm.Get("a")
	assert.ErrorIs(t, err, boom)

	sm.Push()
	sm.Put("a", 1)
	v, ok, err := sm.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
