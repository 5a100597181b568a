// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tierpool

import (
	"math/big"

	"github.com/vechain/tierpool/thor"
)

// EventKind names a ledger notification.
type EventKind string

const (
	EventPoolAdded       EventKind = "PoolAdded"
	EventDeposit         EventKind = "Deposit"
	EventClaim           EventKind = "Claim"
	EventPenalty         EventKind = "Penalty"
	EventWithdraw        EventKind = "Withdraw"
	EventWithdrawMatured EventKind = "WithdrawMatured"
	EventMigrate         EventKind = "Migrate"
	EventMature          EventKind = "Mature"
	EventPenaltyParked   EventKind = "PenaltyParked"
	EventExternalReward  EventKind = "ExternalReward"
)

// Event is emitted by a successful entry point.
//
//   - Deposit, Withdraw, WithdrawMatured, Penalty, Mature: Amount in the pool's staked token.
//   - Migrate: Amount moved from Pool to Target.
//   - Claim: Amount in base token, Extra in LP token.
//   - ExternalReward: Amount injected, Extra paid to the dev account.
//   - PenaltyParked: Amount held back in Pool until someone has active stake.
type Event struct {
	Kind    EventKind
	Account thor.Address
	Pool    *uint64
	Target  *uint64
	Amount  *big.Int
	Extra   *big.Int
	Time    uint64
}

func (e *Engine) emit(ev *Event) {
	e.events = append(e.events, ev)
}

// TakeEvents returns the events of successful entry points since the last call.
// Events of failed entry points are never recorded.
func (e *Engine) TakeEvents() []*Event {
	evs := e.events
	e.events = nil
	return evs
}

func pid(id uint64) *uint64 {
	return &id
}
