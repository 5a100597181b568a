// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tierpool/cache"
	"github.com/vechain/tierpool/kv"
	"github.com/vechain/tierpool/stackedmap"
	"github.com/vechain/tierpool/thor"
)

// storagePrefix prefixes every storage key in the underlying store.
const storagePrefix = "s"

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(storagePrefix)+thor.AddressLength+32)
	b = append(b, storagePrefix...)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State is the contract storage of all accounts, kept as pending revisions
// over a key-value store. Changes reach the store only on Commit.
type State struct {
	db    kv.Store
	cache *cache.LRU[storageKey, rlp.RawValue]
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object. cacheSize bounds the committed read cache.
func New(db kv.Store, cacheSize int) (*State, error) {
	c, err := cache.NewLRU[storageKey, rlp.RawValue](max(cacheSize, 1))
	if err != nil {
		return nil, err
	}
	s := &State{db: db, cache: c}
	s.reset()
	return s, nil
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
}

func (s *State) load(k storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(k, func(k storageKey) (rlp.RawValue, error) {
		data, err := s.db.Get(k.dbKey())
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, identified by its hash
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw. Empty raw clears the slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	// the base level holds uncommitted changes made outside any checkpoint
	s.sm.PopTo(max(revision, 1))
}

// Dirty returns the number of pending writes.
func (s *State) Dirty() int {
	return len(s.sm.Journal())
}

// Commit writes all pending changes to the store in one batch and
// discards the revision stack.
func (s *State) Commit() error {
	journal := s.sm.Journal()
	if len(journal) == 0 {
		return nil
	}

	final := make(map[storageKey]rlp.RawValue, len(journal))
	for _, e := range journal {
		final[e.Key] = e.Value
	}

	batch := s.db.NewBatch()
	for k, v := range final {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.dbKey())
		} else {
			err = batch.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for k, v := range final {
		s.cache.Add(k, v)
	}
	s.reset()
	return nil
}

// Discard drops all pending changes.
func (s *State) Discard() {
	s.reset()
}
