// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package merkle

import (
	"github.com/pkg/errors"

	"github.com/undinefi/undine/gindex"
)

var (
	ErrBranchLength  = errors.New("merkle: branch length does not match gindex depth")
	ErrProofMismatch = errors.New("merkle: proof does not verify against root")
)

// VerifyProof checks that leaf sits at the generalized index gi under root.
// The branch carries one sibling per level, ordered leaf-first. Each low bit
// of the index selects whether the running node is the right or the left
// input at that level.
func VerifyProof(branch [][32]byte, root, leaf [32]byte, gi gindex.GIndex) error {
	idx := gi.Index()
	depth := idx.BitLen() - 1
	if depth < 0 || len(branch) != depth {
		return ErrBranchLength
	}

	node := leaf
	for _, sibling := range branch {
		if idx.Uint64()&1 == 1 {
			node = Hash(sibling, node)
		} else {
			node = Hash(node, sibling)
		}
		idx.Rsh(idx, 1)
	}

	if node != root {
		return ErrProofMismatch
	}
	return nil
}
