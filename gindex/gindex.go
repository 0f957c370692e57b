// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gindex implements generalized-index arithmetic over SSZ Merkle
// trees. A generalized index addresses a node in a binary tree: the root is
// 1 and the children of node i are 2i and 2i+1. Indices of sibling subtrees
// compose by concatenation, which is how a proof path through nested
// containers is assembled.
package gindex

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var ErrIndexOutOfRange = errors.New("gindex: index out of range")

// GIndex is a generalized index paired with the log2 width of the tree level
// it sits on. The width is carried so that horizontal shifts within one level
// can be bounds-checked.
type GIndex struct {
	index uint256.Int
	pow   uint8
}

// New returns the generalized index for a node addressed by a uint64 index.
func New(index uint64, pow uint8) GIndex {
	var g GIndex
	g.index.SetUint64(index)
	g.pow = pow
	return g
}

// Pack wraps an arbitrary-width index. The index must be non-zero and fit in
// 248 bits so concatenation headroom remains.
func Pack(index *uint256.Int, pow uint8) (GIndex, error) {
	if index.IsZero() || index.BitLen() > 248 {
		return GIndex{}, ErrIndexOutOfRange
	}
	var g GIndex
	g.index.Set(index)
	g.pow = pow
	return g, nil
}

func (g GIndex) Index() *uint256.Int {
	return new(uint256.Int).Set(&g.index)
}

func (g GIndex) Pow() uint8 {
	return g.pow
}

// Width returns the number of nodes on the tree level, 2^pow.
func (g GIndex) Width() *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), uint(g.pow))
}

func (g GIndex) IsZero() bool {
	return g.index.IsZero()
}

func (g GIndex) String() string {
	return fmt.Sprintf("gindex(%s, %d)", g.index.Dec(), g.pow)
}

// fls returns the position of the most significant set bit, counting from 0.
// fls(0b1011) == 3. The result for zero input is guarded by callers.
func fls(v *uint256.Int) uint {
	return uint(v.BitLen() - 1)
}

// Concat descends from the node addressed by g into the subtree whose local
// generalized index is rhs, yielding the absolute index of that descendant.
func Concat(lhs, rhs GIndex) (GIndex, error) {
	if lhs.index.IsZero() || rhs.index.IsZero() {
		return GIndex{}, ErrIndexOutOfRange
	}

	lhsMSb := fls(&lhs.index)
	rhsMSb := fls(&rhs.index)
	if lhsMSb+1+rhsMSb > 248 {
		return GIndex{}, ErrIndexOutOfRange
	}

	// strip the leading bit of rhs and graft the remainder under lhs
	rest := new(uint256.Int).Xor(&rhs.index, new(uint256.Int).Lsh(uint256.NewInt(1), rhsMSb))
	idx := new(uint256.Int).Lsh(&lhs.index, rhsMSb)
	idx.Or(idx, rest)

	return Pack(idx, rhs.pow)
}

// Shr moves n nodes to the right within the same tree level.
func (g GIndex) Shr(n uint64) (GIndex, error) {
	if g.index.IsZero() {
		return GIndex{}, ErrIndexOutOfRange
	}
	offset := new(uint256.Int).Mod(&g.index, g.Width())
	bound := new(uint256.Int).AddUint64(offset, n)
	if bound.Cmp(g.Width()) >= 0 {
		return GIndex{}, ErrIndexOutOfRange
	}
	idx := new(uint256.Int).AddUint64(&g.index, n)
	return Pack(idx, g.pow)
}

// Shl moves n nodes to the left within the same tree level.
func (g GIndex) Shl(n uint64) (GIndex, error) {
	if g.index.IsZero() {
		return GIndex{}, ErrIndexOutOfRange
	}
	offset := new(uint256.Int).Mod(&g.index, g.Width())
	if offset.CmpUint64(n) < 0 {
		return GIndex{}, ErrIndexOutOfRange
	}
	idx := new(uint256.Int).SubUint64(&g.index, n)
	return Pack(idx, g.pow)
}

// IsParentOf reports whether g is an ancestor of child, i.e. child's index
// reaches g by repeated halving.
func (g GIndex) IsParentOf(child GIndex) bool {
	if g.index.IsZero() || child.index.IsZero() {
		return false
	}
	if g.index.Cmp(&child.index) >= 0 {
		return false
	}
	cur := new(uint256.Int).Set(&child.index)
	for !cur.IsZero() {
		if cur.Eq(&g.index) {
			return true
		}
		cur.Rsh(cur, 1)
	}
	return false
}
