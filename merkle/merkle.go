// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package merkle implements SSZ merkleization and inclusion-proof
// verification against beacon-state roots.
package merkle

import (
	"encoding/binary"

	sha256 "github.com/minio/sha256-simd"
)

// BytesPerChunk is the number of bytes in each leaf chunk for merkleization.
const BytesPerChunk = 32

// Hash combines two 32-byte nodes using SHA-256.
func Hash(a, b [32]byte) [32]byte {
	var combined [64]byte
	copy(combined[:32], a[:])
	copy(combined[32:], b[:])
	return sha256.Sum256(combined[:])
}

// zeroHashes returns a cache of zero subtree roots per level.
// zeroHashes[0] is the zero chunk, zeroHashes[i] = Hash(zeroHashes[i-1], zeroHashes[i-1]).
func zeroHashes(depth int) [][32]byte {
	hashes := make([][32]byte, depth+1)
	for i := 1; i <= depth; i++ {
		hashes[i] = Hash(hashes[i-1], hashes[i-1])
	}
	return hashes
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Pack splits SSZ serialized bytes into 32-byte chunks, right-padding the
// last chunk with zeros.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	numChunks := (len(serialized) + BytesPerChunk - 1) / BytesPerChunk
	chunks := make([][32]byte, numChunks)
	for i := range numChunks {
		start := i * BytesPerChunk
		end := min(start+BytesPerChunk, len(serialized))
		copy(chunks[i][:], serialized[start:end])
	}
	return chunks
}

// Merkleize computes the root of the chunks padded with zero subtrees to the
// given limit. A zero limit means the next power of two of the chunk count.
// Only the occupied part of the tree is materialized, so large list limits
// cost one extra hash per level rather than a full layer.
func Merkleize(chunks [][32]byte, limit int) [32]byte {
	count := len(chunks)
	if limit < count {
		limit = count
	}
	limit = nextPowerOfTwo(limit)
	depth := depthOf(limit)
	zeros := zeroHashes(depth)

	if count == 0 {
		return zeros[depth]
	}

	width := nextPowerOfTwo(count)
	layer := make([][32]byte, width)
	copy(layer, chunks)

	d := 0
	for len(layer) > 1 {
		next := make([][32]byte, len(layer)/2)
		for i := range next {
			next[i] = Hash(layer[2*i], layer[2*i+1])
		}
		layer = next
		d++
	}

	// fold the empty right-hand subtrees up to the limit depth
	root := layer[0]
	for ; d < depth; d++ {
		root = Hash(root, zeros[d])
	}
	return root
}

func depthOf(limit int) int {
	depth := 0
	for 1<<uint(depth) < limit {
		depth++
	}
	return depth
}

// MixInLength mixes a list's element-tree root with its length, per the SSZ
// hash tree root of variable-size lists.
func MixInLength(root [32]byte, length uint64) [32]byte {
	var lengthChunk [32]byte
	binary.LittleEndian.PutUint64(lengthChunk[:8], length)
	return Hash(root, lengthChunk)
}

// Uint64Root returns the hash tree root of a uint64.
func Uint64Root(v uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], v)
	return chunk
}

// BoolRoot returns the hash tree root of a boolean.
func BoolRoot(v bool) [32]byte {
	var chunk [32]byte
	if v {
		chunk[0] = 1
	}
	return chunk
}

// PubkeyRoot returns the hash tree root of a 48-byte BLS public key, a
// two-chunk vector with the second chunk zero-padded.
func PubkeyRoot(pubkey [48]byte) [32]byte {
	var first, second [32]byte
	copy(first[:], pubkey[:32])
	copy(second[:], pubkey[32:])
	return Hash(first, second)
}
