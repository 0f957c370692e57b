// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/undinefi/undine/undine"
)

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	num := NewUint256(ctx, undine.Bytes32{01})

	// test `Set`
	num.Set(big.NewInt(1000))

	// test `Get`
	value, err := num.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), value)

	// test `Add`
	err = num.Add(big.NewInt(500))
	assert.NoError(t, err)

	value, err = num.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), value)

	// test `Sub`
	err = num.Sub(big.NewInt(200))
	assert.NoError(t, err)

	value, err = num.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)
}

func TestUint256_UnsetSlotIsZero(t *testing.T) {
	ctx := newTestContext()
	num := NewUint256(ctx, undine.Bytes32{02})

	value, err := num.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(0), value)
}
