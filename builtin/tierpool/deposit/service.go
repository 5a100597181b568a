// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/thor"
)

var slotDeposits = solidity.Slot("deposits")

// Deposit is a single lock of tokens inside a pool.
type Deposit struct {
	Account      thor.Address
	StartTime    uint64
	MaturityTime uint64 // StartTime + lock duration of the pool it was made in
	Amount       *big.Int
	Active       bool
}

// Remaining returns the time left until maturity, zero once matured.
func (d *Deposit) Remaining(now uint64) uint64 {
	if d.MaturityTime > now {
		return d.MaturityTime - now
	}
	return 0
}

type key struct {
	pool  uint64
	index uint64
}

func (k key) Bytes() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], k.pool)
	binary.BigEndian.PutUint64(b[8:], k.index)
	return b[:]
}

// Service is the per-pool deposit ledger, addressed by (pool, index).
type Service struct {
	deposits *solidity.Mapping[key, *Deposit]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		deposits: solidity.NewMapping[key, *Deposit](sctx, slotDeposits),
	}
}

// Get returns the deposit, nil once it has been cleared or was never made.
func (s *Service) Get(pool, index uint64) (*Deposit, error) {
	d, err := s.deposits.Get(key{pool, index})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deposit")
	}
	return d, nil
}

func (s *Service) Insert(pool, index uint64, d *Deposit) error {
	if err := s.deposits.Insert(key{pool, index}, d); err != nil {
		return errors.Wrap(err, "failed to set deposit")
	}
	return nil
}

// Clear removes a migrated, matured or withdrawn deposit.
func (s *Service) Clear(pool, index uint64) {
	s.deposits.Delete(key{pool, index})
}
