// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undinefi/undine/gindex"
	"github.com/undinefi/undine/test/datagen"
)

func TestPack(t *testing.T) {
	chunks := Pack(nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, [32]byte{}, chunks[0])

	chunks = Pack(make([]byte, 33))
	assert.Len(t, chunks, 2)

	data := []byte{1, 2, 3}
	chunks = Pack(data)
	require.Len(t, chunks, 1)
	assert.Equal(t, byte(1), chunks[0][0])
	assert.Equal(t, byte(0), chunks[0][3], "tail is zero padded")
}

func TestMerkleize(t *testing.T) {
	a := datagen.RandomHash()
	b := datagen.RandomHash()

	t.Run("single chunk is its own root", func(t *testing.T) {
		root := Merkleize([][32]byte{[32]byte(a)}, 1)
		assert.Equal(t, [32]byte(a), root)
	})

	t.Run("two chunks hash pairwise", func(t *testing.T) {
		root := Merkleize([][32]byte{[32]byte(a), [32]byte(b)}, 2)
		assert.Equal(t, Hash([32]byte(a), [32]byte(b)), root)
	})

	t.Run("padding with zero chunks", func(t *testing.T) {
		root := Merkleize([][32]byte{[32]byte(a)}, 4)
		zero := [32]byte{}
		expected := Hash(Hash([32]byte(a), zero), Hash(zero, zero))
		assert.Equal(t, expected, root)
	})

	t.Run("large limit folds zero subtrees", func(t *testing.T) {
		// a list tree with limit 2^24 must not materialize the full layer
		root := Merkleize([][32]byte{[32]byte(a)}, 1<<24)
		assert.NotEqual(t, [32]byte{}, root)
	})

	t.Run("empty chunks yield the zero subtree root", func(t *testing.T) {
		zero := [32]byte{}
		assert.Equal(t, Hash(zero, zero), Merkleize(nil, 2))
	})
}

func TestMixInLength(t *testing.T) {
	root := datagen.RandomHash()
	mixed := MixInLength([32]byte(root), 5)

	var lengthChunk [32]byte
	lengthChunk[0] = 5
	assert.Equal(t, Hash([32]byte(root), lengthChunk), mixed)
}

func TestLeafRoots(t *testing.T) {
	assert.Equal(t, [32]byte{}, BoolRoot(false))
	assert.Equal(t, [32]byte{1}, BoolRoot(true))

	u := Uint64Root(0x0102)
	assert.Equal(t, byte(0x02), u[0], "little endian")
	assert.Equal(t, byte(0x01), u[1])

	pk := datagen.RandPubkey()
	var first, second [32]byte
	copy(first[:], pk[:32])
	copy(second[:], pk[32:])
	assert.Equal(t, Hash(first, second), PubkeyRoot(pk))
}

// buildTree returns all nodes of a complete binary tree over the given
// leaves, indexed by generalized index.
func buildTree(leaves [][32]byte) map[uint64][32]byte {
	n := uint64(len(leaves))
	nodes := make(map[uint64][32]byte)
	for i, leaf := range leaves {
		nodes[n+uint64(i)] = leaf
	}
	for i := n - 1; i >= 1; i-- {
		nodes[i] = Hash(nodes[2*i], nodes[2*i+1])
	}
	return nodes
}

// branchFor collects the sibling path for the given leaf gindex, leaf first.
func branchFor(nodes map[uint64][32]byte, gi uint64) [][32]byte {
	var branch [][32]byte
	for i := gi; i > 1; i >>= 1 {
		branch = append(branch, nodes[i^1])
	}
	return branch
}

func TestVerifyProof(t *testing.T) {
	leaves := make([][32]byte, 8)
	for i := range leaves {
		leaves[i] = [32]byte(datagen.RandomHash())
	}
	nodes := buildTree(leaves)
	root := nodes[1]

	t.Run("every leaf verifies", func(t *testing.T) {
		for i := range leaves {
			gi := uint64(8 + i)
			branch := branchFor(nodes, gi)
			err := VerifyProof(branch, root, leaves[i], gindex.New(gi, 3))
			require.NoError(t, err, "leaf %d", i)
		}
	})

	t.Run("inner node verifies with shorter branch", func(t *testing.T) {
		branch := branchFor(nodes, 5)
		err := VerifyProof(branch, root, nodes[5], gindex.New(5, 2))
		require.NoError(t, err)
	})

	t.Run("single flipped byte fails", func(t *testing.T) {
		branch := branchFor(nodes, 9)
		leaf := leaves[1]
		leaf[7] ^= 0x01
		err := VerifyProof(branch, root, leaf, gindex.New(9, 3))
		assert.ErrorIs(t, err, ErrProofMismatch)
	})

	t.Run("flipped branch node fails", func(t *testing.T) {
		branch := branchFor(nodes, 9)
		branch[1][0] ^= 0x01
		err := VerifyProof(branch, root, leaves[1], gindex.New(9, 3))
		assert.ErrorIs(t, err, ErrProofMismatch)
	})

	t.Run("wrong gindex fails", func(t *testing.T) {
		branch := branchFor(nodes, 9)
		err := VerifyProof(branch, root, leaves[1], gindex.New(10, 3))
		assert.ErrorIs(t, err, ErrProofMismatch)
	})

	t.Run("branch length must match depth", func(t *testing.T) {
		branch := branchFor(nodes, 9)
		err := VerifyProof(branch[:2], root, leaves[1], gindex.New(9, 3))
		assert.ErrorIs(t, err, ErrBranchLength)

		err = VerifyProof(branch, root, leaves[1], gindex.New(5, 2))
		assert.ErrorIs(t, err, ErrBranchLength)
	})
}
