// Copyright (c) 2025 The Undine developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/undinefi/undine/undine"
)

func RandomHash() undine.Bytes32 {
	var b32 undine.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() (addr undine.Address) {
	rand.Read(addr[:])
	return
}

func RandPubkey() (pk [48]byte) {
	rand.Read(pk[:])
	return
}
