// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/undinefi/undine/undine"
)

// Address is a wrapper for storage and retrieval of an address, similar to
// storing an address in a smart contract.
type Address struct {
	context *Context
	pos     undine.Bytes32
}

func NewAddress(context *Context, slot undine.Bytes32) *Address {
	return &Address{context: context, pos: slot}
}

func (a *Address) Get() (undine.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return undine.Address{}, err
	}
	return undine.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *undine.Address) {
	var storage undine.Bytes32
	if addr != nil {
		storage = undine.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
