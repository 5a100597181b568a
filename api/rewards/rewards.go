// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards serves reward claims and external reward injection.
package rewards

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tierpool/api/utils"
	"github.com/vechain/tierpool/node"
	"github.com/vechain/tierpool/thor"
)

type Claim struct {
	Caller thor.Address `json:"caller"`
}

type Reward struct {
	Caller thor.Address          `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Rewards struct {
	node *node.Node
}

func New(n *node.Node) *Rewards {
	return &Rewards{n}
}

func (r *Rewards) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body Claim
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := r.node.Claim(body.Caller); err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (r *Rewards) handleReward(w http.ResponseWriter, req *http.Request) error {
	var body Reward
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("amount: required"))
	}
	if err := r.node.ExternalReward(body.Caller, (*big.Int)(body.Amount)); err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

// Mount registers /claims and /rewards on root.
func (r *Rewards) Mount(root *mux.Router) {
	root.Path("/claims").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleClaim))
	root.Path("/rewards").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleReward))
}
