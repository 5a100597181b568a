// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tierpool/api/utils"
	"github.com/vechain/tierpool/node"
	"github.com/vechain/tierpool/thor"
)

type Pools struct {
	node *node.Node
}

func New(n *node.Node) *Pools {
	return &Pools{n}
}

func (p *Pools) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	var list []*Pool
	err := p.node.View(func(v *node.View) error {
		count, err := v.PoolCount()
		if err != nil {
			return err
		}
		list = make([]*Pool, 0, count)
		for id := uint64(0); id < count; id++ {
			pl, err := v.Pool(id)
			if err != nil {
				return err
			}
			list = append(list, convertPool(id, pl))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint64(req, "pid")
	if err != nil {
		return err
	}
	var out *Pool
	err = p.node.View(func(v *node.View) error {
		pl, err := v.Pool(id)
		if err != nil {
			return err
		}
		out = convertPool(id, pl)
		return nil
	})
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, out)
}

func (p *Pools) handleGetParticipants(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint64(req, "pid")
	if err != nil {
		return err
	}
	var accounts []thor.Address
	if err := p.node.View(func(v *node.View) error {
		accounts, err = v.Participants(id)
		return err
	}); err != nil {
		return utils.CallError(err)
	}
	if accounts == nil {
		accounts = []thor.Address{}
	}
	return utils.WriteJSON(w, accounts)
}

func (p *Pools) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint64(req, "pid")
	if err != nil {
		return err
	}
	acc, err := utils.PathAddress(req, "account")
	if err != nil {
		return err
	}
	var out *Balance
	if err := p.node.View(func(v *node.View) error {
		b, err := v.Balance(id, acc)
		if err != nil {
			return err
		}
		out = ConvertBalance(b)
		return nil
	}); err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, out)
}

func (p *Pools) handleGetDeposit(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint64(req, "pid")
	if err != nil {
		return err
	}
	index, err := utils.PathUint64(req, "index")
	if err != nil {
		return err
	}
	var out *Deposit
	if err := p.node.View(func(v *node.View) error {
		d, err := v.DepositAt(id, index)
		if err != nil {
			return err
		}
		if d != nil {
			out = convertDeposit(d)
		}
		return nil
	}); err != nil {
		return utils.CallError(err)
	}
	if out == nil {
		return utils.NotFound(errors.New("deposit not found"))
	}
	return utils.WriteJSON(w, out)
}

func (p *Pools) handleAddPool(w http.ResponseWriter, req *http.Request) error {
	var body AddPool
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	id, err := p.node.AddPool(body.Caller, body.Farming, body.Name, body.Lock, body.PenaltyRate)
	if err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{"id": id})
}

// handleCall decodes a Call body and runs op with the pool id from the path.
func (p *Pools) handleCall(op func(id uint64, c *Call) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		id, err := utils.PathUint64(req, "pid")
		if err != nil {
			return err
		}
		var body Call
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		if err := op(id, &body); err != nil {
			return utils.CallError(err)
		}
		return utils.WriteJSON(w, utils.M{"ok": true})
	}
}

func (p *Pools) handleUpdateAll(w http.ResponseWriter, _ *http.Request) error {
	if err := p.node.UpdateAllPools(); err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) handleUpdate(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint64(req, "pid")
	if err != nil {
		return err
	}
	if err := p.node.UpdatePool(id); err != nil {
		return utils.CallError(err)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleAddPool))
	sub.Path("/update").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleUpdateAll))
	sub.Path("/{pid:[0-9]+}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{pid:[0-9]+}/participants").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetParticipants))
	sub.Path("/{pid:[0-9]+}/participants/{account}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetBalance))
	sub.Path("/{pid:[0-9]+}/deposits/{index:[0-9]+}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetDeposit))
	sub.Path("/{pid:[0-9]+}/update").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(p.handleUpdate))
	sub.Path("/{pid:[0-9]+}/deposits").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(
		p.handleCall(func(id uint64, c *Call) error { return p.node.Deposit(c.Caller, id, c.AmountBig()) })))
	sub.Path("/{pid:[0-9]+}/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(
		p.handleCall(func(id uint64, c *Call) error { return p.node.Withdraw(c.Caller, id) })))
	sub.Path("/{pid:[0-9]+}/withdraw-matured").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(
		p.handleCall(func(id uint64, c *Call) error { return p.node.WithdrawOverTime(c.Caller, id) })))
}
