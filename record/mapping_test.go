// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undinefi/undine/lvldb"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/test/datagen"
	"github.com/undinefi/undine/undine"
)

type TestStruct struct {
	Field1 uint64
	Field2 uint64
	Addr1  undine.Address
	Bytes1 undine.Bytes32
}

// newTestContext returns a fresh Context backed by an in-memory store.
func newTestContext() *Context {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	return NewContext(undine.Address{1}, st)
}

// SetupMapping returns a new Mapping keyed by Bytes32.
func SetupMapping[V any]() *Mapping[undine.Bytes32, V] {
	ctx := newTestContext()
	return NewMapping[undine.Bytes32, V](ctx, undine.Bytes32{1})
}

func newRandomStruct() *TestStruct {
	return &TestStruct{
		Field1: 100,
		Field2: 200,
		Addr1:  datagen.RandAddress(),
		Bytes1: datagen.RandomHash(),
	}
}

func TestMapping_SetGet_StructPointer(t *testing.T) {
	mapping := SetupMapping[*TestStruct]()
	key := datagen.RandomHash()
	value := newRandomStruct()

	t.Run("set then get returns stored value", func(t *testing.T) {
		require.NoError(t, mapping.Set(key, value))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("set nil pointer clears storage and returns nil", func(t *testing.T) {
		require.NoError(t, mapping.Set(key, nil))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get missing key returns nil", func(t *testing.T) {
		got, err := mapping.Get(datagen.RandomHash())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("overwrite existing value", func(t *testing.T) {
		require.NoError(t, mapping.Set(key, value))
		next := newRandomStruct()
		require.NoError(t, mapping.Set(key, next))

		got, err := mapping.Get(key)
		require.NoError(t, err)
		assert.Equal(t, next, got)
	})
}

func TestMapping_SetGet_AddressValue(t *testing.T) {
	mapping := SetupMapping[undine.Address]()
	key := datagen.RandomHash()
	addr := datagen.RandAddress()

	require.NoError(t, mapping.Set(key, addr))

	got, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	got, err = mapping.Get(datagen.RandomHash())
	require.NoError(t, err)
	assert.Equal(t, undine.Address{}, got)
}

func TestMapping_SetGet_Uint64Value(t *testing.T) {
	mapping := SetupMapping[uint64]()
	key := datagen.RandomHash()

	require.NoError(t, mapping.Set(key, uint64(42)))

	got, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	require.NoError(t, mapping.Set(key, uint64(0)))
	got, err = mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestMapping_DistinctBasePositions(t *testing.T) {
	ctx := newTestContext()
	m1 := NewMapping[undine.Bytes32, uint64](ctx, undine.BytesToBytes32([]byte("one")))
	m2 := NewMapping[undine.Bytes32, uint64](ctx, undine.BytesToBytes32([]byte("two")))

	key := datagen.RandomHash()
	require.NoError(t, m1.Set(key, 7))

	got, err := m2.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got, "base positions must not collide")
}

func TestMappingGetSet_ErrorReturnsZeroAndErr(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := state.New(db)

	contract := undine.BytesToAddress([]byte("map"))
	ctx := NewContext(contract, st)

	basePos := undine.BytesToBytes32([]byte("base"))
	m := NewMapping[undine.Address, undine.Address](ctx, basePos)

	key := undine.BytesToAddress([]byte("k"))
	slot := undine.Blake2b(key.Bytes(), basePos.Bytes())

	st.SetRawStorage(contract, slot, rlp.RawValue{0xFF})

	val, err := m.Get(key)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if val != (undine.Address{}) {
		t.Fatalf("expected zero value, got %v", val)
	}

	m2 := NewMapping[undine.Address, chan int](ctx, basePos)
	value := make(chan int)

	err = m2.Set(key, value)
	if err == nil {
		t.Fatalf("expected encode error, got nil")
	}
}
