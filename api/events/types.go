// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tierpool/logdb"
	"github.com/vechain/tierpool/thor"
)

type Event struct {
	Seq     uint64                `json:"seq"`
	Kind    string                `json:"kind"`
	Account thor.Address          `json:"account"`
	Pool    *uint64               `json:"pool,omitempty"`
	Target  *uint64               `json:"target,omitempty"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Extra   *math.HexOrDecimal256 `json:"extra,omitempty"`
	Time    uint64                `json:"time"`
}

func ConvertEvent(ev *logdb.Event) *Event {
	out := &Event{
		Seq:     ev.Seq,
		Kind:    ev.Kind,
		Account: ev.Account,
		Pool:    ev.Pool,
		Target:  ev.Target,
		Time:    ev.Time,
	}
	if ev.Amount != nil {
		out.Amount = (*math.HexOrDecimal256)(new(big.Int).Set(ev.Amount))
	}
	if ev.Extra != nil {
		out.Extra = (*math.HexOrDecimal256)(new(big.Int).Set(ev.Extra))
	}
	return out
}

type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter is the body of an event query.
type EventFilter struct {
	Range    *Range         `json:"range"`
	Accounts []thor.Address `json:"accounts"`
	Pools    []uint64       `json:"pools"`
	Kinds    []string       `json:"kinds"`
	Order    logdb.Order    `json:"order"`
	Options  *Options       `json:"options"`
}

func convertFilter(f *EventFilter, limit uint64) (*logdb.EventFilter, error) {
	if f.Order != "" && f.Order != logdb.ASC && f.Order != logdb.DESC {
		return nil, fmt.Errorf("order: invalid value %q", f.Order)
	}
	out := &logdb.EventFilter{
		Accounts: f.Accounts,
		Pools:    f.Pools,
		Kinds:    f.Kinds,
		Order:    f.Order,
		Options:  &logdb.Options{Limit: limit},
	}
	if f.Range != nil {
		out.Range = &logdb.Range{From: f.Range.From, To: f.Range.To}
	}
	if f.Options != nil {
		if f.Options.Limit > limit {
			return nil, fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
		}
		out.Options.Offset = f.Options.Offset
		if f.Options.Limit > 0 {
			out.Options.Limit = f.Options.Limit
		}
	}
	return out, nil
}
