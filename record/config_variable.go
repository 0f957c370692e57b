// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"

	"github.com/undinefi/undine/undine"
)

// ConfigVariable is a uint32 tunable with a compiled-in default that a
// non-zero storage word at its named slot overrides. The storage read
// happens once; later reads return the resolved value.
type ConfigVariable struct {
	slot     undine.Bytes32
	name     string
	value    uint32
	resolved bool
}

func NewConfigVariable(name string, defaultValue uint32) *ConfigVariable {
	return &ConfigVariable{
		slot:  undine.BytesToBytes32([]byte(name)),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Name() string { return c.name }

func (c *ConfigVariable) Slot() undine.Bytes32 { return c.slot }

// Get returns the resolved value, or the default when no resolution
// has happened yet.
func (c *ConfigVariable) Get() uint32 { return c.value }

// Resolve reads the override slot from ctx and fixes the value.
// A zero or unreadable slot keeps the default.
func (c *ConfigVariable) Resolve(ctx *Context) {
	if c.resolved {
		return
	}
	stored, err := ctx.state.GetStorage(ctx.address, c.slot)
	if err != nil {
		log.Warn("failed to read config value", "slot", c.name, "error", err)
		return
	}
	c.resolved = true

	if v := new(big.Int).SetBytes(stored.Bytes()).Uint64(); v != 0 {
		c.value = uint32(v)
		log.Debug("config value overridden from storage", "slot", c.name, "value", c.value)
	} else {
		log.Debug("config value using default", "slot", c.name, "value", c.value)
	}
}

// Value resolves against ctx and returns the result.
func (c *ConfigVariable) Value(ctx *Context) uint32 {
	c.Resolve(ctx)
	return c.value
}
