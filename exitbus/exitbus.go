// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package exitbus carries validator exit requests between the protocol and
// node operators. Requests travel in a packed 64-byte wire form and their
// delivery moments are recorded so that late exits can be proven against
// them.
package exitbus

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// PackedLength is the wire size of one exit request.
const PackedLength = 64

const (
	maxModuleID       = 1<<24 - 1
	maxNodeOperatorID = 1<<40 - 1
)

var (
	ErrInvalidLength = errors.New("exitbus: packed data is not a multiple of 64 bytes")
	ErrIDRange       = errors.New("exitbus: identifier exceeds packed field width")
)

// ExitRequest asks one validator of a staking module's node operator to
// exit. ModuleID is 24 bits wide on the wire, NodeOperatorID 40 bits.
type ExitRequest struct {
	ModuleID       uint32
	NodeOperatorID uint64
	ValidatorIndex uint64
	Pubkey         [48]byte
}

// Encode packs the request as pubkey(48) | moduleId(3) | nodeOpId(5) |
// validatorIndex(8), identifiers little-endian.
func (r *ExitRequest) Encode() ([PackedLength]byte, error) {
	var out [PackedLength]byte
	if r.ModuleID > maxModuleID {
		return out, errors.Wrap(ErrIDRange, "module id")
	}
	if r.NodeOperatorID > maxNodeOperatorID {
		return out, errors.Wrap(ErrIDRange, "node operator id")
	}

	copy(out[:48], r.Pubkey[:])
	out[48] = byte(r.ModuleID)
	out[49] = byte(r.ModuleID >> 8)
	out[50] = byte(r.ModuleID >> 16)
	out[51] = byte(r.NodeOperatorID)
	out[52] = byte(r.NodeOperatorID >> 8)
	out[53] = byte(r.NodeOperatorID >> 16)
	out[54] = byte(r.NodeOperatorID >> 24)
	out[55] = byte(r.NodeOperatorID >> 32)
	binary.LittleEndian.PutUint64(out[56:], r.ValidatorIndex)
	return out, nil
}

// Decode unpacks a single 64-byte request.
func Decode(data [PackedLength]byte) ExitRequest {
	var r ExitRequest
	copy(r.Pubkey[:], data[:48])
	r.ModuleID = uint32(data[48]) | uint32(data[49])<<8 | uint32(data[50])<<16
	r.NodeOperatorID = uint64(data[51]) | uint64(data[52])<<8 | uint64(data[53])<<16 |
		uint64(data[54])<<24 | uint64(data[55])<<32
	r.ValidatorIndex = binary.LittleEndian.Uint64(data[56:])
	return r
}

// EncodeList packs requests back to back.
func EncodeList(requests []ExitRequest) ([]byte, error) {
	out := make([]byte, 0, len(requests)*PackedLength)
	for i := range requests {
		packed, err := requests[i].Encode()
		if err != nil {
			return nil, errors.Wrapf(err, "request %d", i)
		}
		out = append(out, packed[:]...)
	}
	return out, nil
}

// DecodeList unpacks a concatenation of 64-byte requests.
func DecodeList(data []byte) ([]ExitRequest, error) {
	if len(data)%PackedLength != 0 {
		return nil, ErrInvalidLength
	}
	requests := make([]ExitRequest, 0, len(data)/PackedLength)
	for off := 0; off < len(data); off += PackedLength {
		var packed [PackedLength]byte
		copy(packed[:], data[off:off+PackedLength])
		requests = append(requests, Decode(packed))
	}
	return requests, nil
}
