// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

// Context binds a contract address to the world state. All records of one
// protocol component share a context, so their slots are namespaced by the
// component's address.
type Context struct {
	address undine.Address
	state   *state.State
}

func NewContext(address undine.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() undine.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
