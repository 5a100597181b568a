// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/tierpool/thor"
)

// Event is a stored ledger notification. Seq is assigned on write and
// orders events by commit.
type Event struct {
	Seq     uint64
	Kind    string
	Account thor.Address
	Pool    *uint64
	Target  *uint64
	Amount  *big.Int
	Extra   *big.Int
	Time    uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds event time, both ends included. A To below From leaves the range open ended.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter selects events matching all set fields.
// Within Accounts, Pools and Kinds any listed value matches.
type EventFilter struct {
	Range    *Range
	Accounts []thor.Address
	Pools    []uint64
	Kinds    []string
	Order    Order
	Options  *Options
}
