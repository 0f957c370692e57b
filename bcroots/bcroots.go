// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bcroots reads parent beacon block roots from the EIP-4788 system
// contract's ring buffer. Roots are never cached by callers; every proof
// verification reads the buffer again so a reorged root cannot be replayed.
package bcroots

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/undinefi/undine/record"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

// ErrRootNotFound means the buffer holds no root for the requested
// timestamp, either because it was never written or because it has been
// overwritten after the retention window passed.
var ErrRootNotFound = errors.New("bcroots: root not found")

// BeaconRoots reads and writes the EIP-4788 ring buffer. Slot i of the
// buffer holds the timestamp, slot i+bufferLength the corresponding root.
// The buffer length defaults to the mainnet value and can be overridden
// per network by a storage word at the system contract's address.
type BeaconRoots struct {
	state  *state.State
	ctx    *record.Context
	bufLen *record.ConfigVariable
}

func New(st *state.State) *BeaconRoots {
	return &BeaconRoots{
		state:  st,
		ctx:    record.NewContext(undine.BeaconRootsAddress, st),
		bufLen: record.NewConfigVariable("beacon-roots-buffer-length", uint32(undine.BeaconRootsHistoryBufferLength)),
	}
}

func (b *BeaconRoots) bufferLength() uint64 {
	return uint64(b.bufLen.Value(b.ctx))
}

func slotKey(n uint64) undine.Bytes32 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return undine.BytesToBytes32(buf[:])
}

// GetParentBlockRoot returns the parent beacon block root exposed at the
// given child block timestamp.
func (b *BeaconRoots) GetParentBlockRoot(childTimestamp uint64) (undine.Bytes32, error) {
	length := b.bufferLength()
	idx := childTimestamp % length

	stored, err := b.state.GetStorage(undine.BeaconRootsAddress, slotKey(idx))
	if err != nil {
		return undine.Bytes32{}, err
	}
	if binary.BigEndian.Uint64(stored[24:]) != childTimestamp {
		return undine.Bytes32{}, errors.Wrapf(ErrRootNotFound, "timestamp %d", childTimestamp)
	}

	root, err := b.state.GetStorage(undine.BeaconRootsAddress, slotKey(idx+length))
	if err != nil {
		return undine.Bytes32{}, err
	}
	return root, nil
}

// StoreRoot records a parent root under the child block timestamp,
// mirroring the system call performed at block processing time.
func (b *BeaconRoots) StoreRoot(childTimestamp uint64, root undine.Bytes32) {
	length := b.bufferLength()
	idx := childTimestamp % length

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], childTimestamp)
	b.state.SetStorage(undine.BeaconRootsAddress, slotKey(idx), undine.BytesToBytes32(ts[:]))
	b.state.SetStorage(undine.BeaconRootsAddress, slotKey(idx+length), root)
}
