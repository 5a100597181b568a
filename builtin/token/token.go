// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a fungible token ledger kept in contract storage.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tierpool/builtin/reverts"
	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

var (
	slotBalances = solidity.Slot("balances")
	slotSupply   = solidity.Slot("total-supply")

	ErrInsufficientBalance = reverts.New("insufficient balance")
	ErrInvalidAmount       = reverts.New("invalid amount")
)

// Token is a balance ledger identified by its address.
type Token struct {
	addr     thor.Address
	symbol   string
	balances *solidity.Mapping[thor.Address, *big.Int]
	supply   *solidity.Uint256
}

func New(addr thor.Address, symbol string, st *state.State) *Token {
	sctx := solidity.NewContext(addr, st)
	return &Token{
		addr:     addr,
		symbol:   symbol,
		balances: solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		supply:   solidity.NewUint256(sctx, slotSupply),
	}
}

func (t *Token) Address() thor.Address { return t.addr }

func (t *Token) Symbol() string { return t.symbol }

// BalanceOf returns the balance of addr, zero if it never held the token.
func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s balance", t.symbol)
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

// Mint credits amount to addr and grows the supply.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := t.credit(to, amount); err != nil {
		return err
	}
	return t.supply.Add(amount)
}

// Transfer moves amount from one account to another.
// It fails without effect when from holds less than amount.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	bal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.setBalance(from, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	return t.credit(to, amount)
}

func (t *Token) credit(addr thor.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	return t.setBalance(addr, new(big.Int).Add(bal, amount))
}

func (t *Token) setBalance(addr thor.Address, bal *big.Int) error {
	if bal.Sign() == 0 {
		t.balances.Delete(addr)
		return nil
	}
	if err := t.balances.Update(addr, bal); err != nil {
		return errors.Wrapf(err, "failed to set %s balance", t.symbol)
	}
	return nil
}
