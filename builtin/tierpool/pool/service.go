// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/reverts"
	"github.com/vechain/tierpool/builtin/solidity"
)

var (
	slotPools = solidity.Slot("pools")
	slotCount = solidity.Slot("pools-count")
	slotHeads = solidity.Slot("pools-track-head")

	ErrInvalidPool = reverts.New("pool does not exist")
	ErrInvalidTier = reverts.New("invalid tier configuration")
)

type track bool

func (t track) Bytes() []byte {
	if t {
		return []byte{1}
	}
	return []byte{0}
}

// Service is the append-only pool registry. It also tracks, per track, the
// longest-lock pool so that a new tier links to it as its faster pool.
type Service struct {
	pools *solidity.Mapping[Key, *entry]
	count *solidity.Raw[uint64]
	heads *solidity.Mapping[track, *Head]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		pools: solidity.NewMapping[Key, *entry](sctx, slotPools),
		count: solidity.NewRaw[uint64](sctx, slotCount),
		heads: solidity.NewMapping[track, *Head](sctx, slotHeads),
	}
}

// Count returns the number of registered pools. Pool ids are [0, Count).
func (s *Service) Count() (uint64, error) {
	n, err := s.count.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pool count")
	}
	return n, nil
}

// Get returns the pool, or ErrInvalidPool if id is not registered.
func (s *Service) Get(id uint64) (*Pool, error) {
	e, err := s.pools.Get(Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if e == nil {
		return nil, ErrInvalidPool
	}
	return e.pool(), nil
}

func (s *Service) Update(id uint64, p *Pool) error {
	if err := s.pools.Update(Key(id), toEntry(p)); err != nil {
		return errors.Wrap(err, "failed to set pool")
	}
	return nil
}

// Head returns the longest-lock pool of the track, nil if the track is empty.
func (s *Service) Head(farming bool) (*Head, error) {
	h, err := s.heads.Get(track(farming))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get track head")
	}
	return h, nil
}

// Add appends a tier to a track. The lock must exceed every lock already in the track,
// so a faster pool always has a lower id than the pools that migrate into it.
func (s *Service) Add(farming bool, name string, lock, rate uint64) (uint64, *Pool, error) {
	if lock == 0 || rate > PenaltyDenominator {
		return 0, nil, ErrInvalidTier
	}
	head, err := s.Head(farming)
	if err != nil {
		return 0, nil, err
	}

	p := newPool(farming, name, lock, rate)
	if head != nil {
		if lock <= head.Lock {
			return 0, nil, ErrInvalidTier
		}
		faster := head.ID
		p.FasterPool = &faster
		p.FasterPoolTime = head.Lock
	}

	id, err := s.Count()
	if err != nil {
		return 0, nil, err
	}
	if err := s.pools.Insert(Key(id), toEntry(p)); err != nil {
		return 0, nil, errors.Wrap(err, "failed to add pool")
	}
	if err := s.count.Upsert(id + 1); err != nil {
		return 0, nil, errors.Wrap(err, "failed to set pool count")
	}
	if err := s.heads.Update(track(farming), &Head{ID: id, Lock: lock}); err != nil {
		return 0, nil, errors.Wrap(err, "failed to set track head")
	}
	return id, p, nil
}
