// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/thor"
)

var (
	slotBalances = solidity.Slot("participant-balances")
	slotIndex    = solidity.Slot("participant-index")
	slotSlots    = solidity.Slot("participant-slots")
	slotFree     = solidity.Slot("participant-free")
	slotSizes    = solidity.Slot("participant-sizes")
)

type accountKey struct {
	pool    uint64
	account thor.Address
}

func (k accountKey) Bytes() []byte {
	b := make([]byte, 8, 8+thor.AddressLength)
	binary.BigEndian.PutUint64(b, k.pool)
	return append(b, k.account[:]...)
}

type slotKey struct {
	pool uint64
	slot uint64
}

func (k slotKey) Bytes() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], k.pool)
	binary.BigEndian.PutUint64(b[8:], k.slot)
	return b[:]
}

type poolKey uint64

func (k poolKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

type slotRef struct {
	Slot uint64
}

type sizes struct {
	Slots uint64 // slots ever allocated, live or tombstoned
	Free  uint64 // length of the free-list
	Live  uint64
}

// Service keeps participant balances and, per pool, the registry of accounts
// holding a balance there. Registry slots are dense; a tombstoned slot goes on
// a free-list and is handed to the next registration.
type Service struct {
	balances *solidity.Mapping[accountKey, *Balance]
	index    *solidity.Mapping[accountKey, *slotRef]
	slots    *solidity.Mapping[slotKey, thor.Address]
	free     *solidity.Mapping[slotKey, uint64]
	sizes    *solidity.Mapping[poolKey, *sizes]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		balances: solidity.NewMapping[accountKey, *Balance](sctx, slotBalances),
		index:    solidity.NewMapping[accountKey, *slotRef](sctx, slotIndex),
		slots:    solidity.NewMapping[slotKey, thor.Address](sctx, slotSlots),
		free:     solidity.NewMapping[slotKey, uint64](sctx, slotFree),
		sizes:    solidity.NewMapping[poolKey, *sizes](sctx, slotSizes),
	}
}

// Balance returns the account's balance in the pool, all zero if it has none.
func (s *Service) Balance(pool uint64, account thor.Address) (*Balance, error) {
	b, err := s.balances.Get(accountKey{pool, account})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	if b == nil {
		return newBalance(), nil
	}
	return b, nil
}

func (s *Service) SetBalance(pool uint64, account thor.Address, b *Balance) error {
	key := accountKey{pool, account}
	if b.IsEmpty() {
		s.balances.Delete(key)
		return nil
	}
	if err := s.balances.Update(key, b); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

func (s *Service) getSizes(pool uint64) (*sizes, error) {
	sz, err := s.sizes.Get(poolKey(pool))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get registry size")
	}
	if sz == nil {
		return &sizes{}, nil
	}
	return sz, nil
}

// IsRegistered reports whether the account holds a live registry slot in the pool.
func (s *Service) IsRegistered(pool uint64, account thor.Address) (bool, error) {
	ref, err := s.index.Get(accountKey{pool, account})
	if err != nil {
		return false, errors.Wrap(err, "failed to get registry index")
	}
	return ref != nil, nil
}

// Register adds the account to the pool registry.
// It returns false if the account was already registered.
func (s *Service) Register(pool uint64, account thor.Address) (bool, error) {
	registered, err := s.IsRegistered(pool, account)
	if err != nil || registered {
		return false, err
	}
	sz, err := s.getSizes(pool)
	if err != nil {
		return false, err
	}

	var slot uint64
	if sz.Free > 0 {
		sz.Free--
		if slot, err = s.free.Get(slotKey{pool, sz.Free}); err != nil {
			return false, errors.Wrap(err, "failed to pop free slot")
		}
		s.free.Delete(slotKey{pool, sz.Free})
	} else {
		slot = sz.Slots
		sz.Slots++
	}
	sz.Live++

	if err := s.slots.Insert(slotKey{pool, slot}, account); err != nil {
		return false, errors.Wrap(err, "failed to set registry slot")
	}
	if err := s.index.Insert(accountKey{pool, account}, &slotRef{Slot: slot}); err != nil {
		return false, errors.Wrap(err, "failed to set registry index")
	}
	if err := s.sizes.Update(poolKey(pool), sz); err != nil {
		return false, errors.Wrap(err, "failed to set registry size")
	}
	return true, nil
}

// Tombstone removes the account from the pool registry.
// It returns false if the account was not registered.
func (s *Service) Tombstone(pool uint64, account thor.Address) (bool, error) {
	ref, err := s.index.Get(accountKey{pool, account})
	if err != nil {
		return false, errors.Wrap(err, "failed to get registry index")
	}
	if ref == nil {
		return false, nil
	}
	sz, err := s.getSizes(pool)
	if err != nil {
		return false, err
	}

	s.slots.Delete(slotKey{pool, ref.Slot})
	s.index.Delete(accountKey{pool, account})
	if err := s.free.Insert(slotKey{pool, sz.Free}, ref.Slot); err != nil {
		return false, errors.Wrap(err, "failed to push free slot")
	}
	sz.Free++
	sz.Live--
	if err := s.sizes.Update(poolKey(pool), sz); err != nil {
		return false, errors.Wrap(err, "failed to set registry size")
	}
	return true, nil
}

// Participants lists the live accounts of the pool in slot order.
func (s *Service) Participants(pool uint64) ([]thor.Address, error) {
	sz, err := s.getSizes(pool)
	if err != nil {
		return nil, err
	}
	out := make([]thor.Address, 0, sz.Live)
	for i := uint64(0); i < sz.Slots; i++ {
		exists, err := s.slots.Exists(slotKey{pool, i})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get registry slot")
		}
		if !exists {
			continue
		}
		account, err := s.slots.Get(slotKey{pool, i})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get registry slot")
		}
		out = append(out, account)
	}
	return out, nil
}

// Count returns the number of live registry entries of the pool.
func (s *Service) Count(pool uint64) (uint64, error) {
	sz, err := s.getSizes(pool)
	if err != nil {
		return 0, err
	}
	return sz.Live, nil
}
