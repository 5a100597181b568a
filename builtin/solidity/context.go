// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

// Context binds storage wrappers to the account that owns the slots.
type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{address: address, state: state}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() thor.Address {
	return c.address
}

// Slot derives a storage slot from a name.
func Slot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}
