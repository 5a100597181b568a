// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/tierpool/api/pools"
	"github.com/vechain/tierpool/api/utils"
	"github.com/vechain/tierpool/node"
)

// Position is the balance of an account in one pool.
type Position struct {
	Pool    uint64         `json:"pool"`
	Balance *pools.Balance `json:"balance"`
}

// Account for marshal account
type Account struct {
	Base      *math.HexOrDecimal256 `json:"base"`
	LP        *math.HexOrDecimal256 `json:"lp"`
	Positions []*Position           `json:"positions"`
}

type Accounts struct {
	node *node.Node
}

func New(n *node.Node) *Accounts {
	return &Accounts{n}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.PathAddress(req, "address")
	if err != nil {
		return err
	}

	acc := &Account{Positions: []*Position{}}
	err = a.node.View(func(v *node.View) error {
		base, lp, err := v.TokenBalances(addr)
		if err != nil {
			return err
		}
		acc.Base = (*math.HexOrDecimal256)(base)
		acc.LP = (*math.HexOrDecimal256)(lp)

		count, err := v.PoolCount()
		if err != nil {
			return err
		}
		for id := uint64(0); id < count; id++ {
			b, err := v.Balance(id, addr)
			if err != nil {
				return err
			}
			if b.IsEmpty() {
				continue
			}
			acc.Positions = append(acc.Positions, &Position{Pool: id, Balance: pools.ConvertBalance(b)})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
