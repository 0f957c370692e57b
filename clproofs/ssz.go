// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clproofs

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/undinefi/undine/merkle"
	"github.com/undinefi/undine/undine"
)

// headerRoot computes the hash tree root of a beacon block header, a
// 5-field container merkleized over 8 chunks.
func headerRoot(h *phase0.BeaconBlockHeader) [32]byte {
	chunks := [][32]byte{
		merkle.Uint64Root(uint64(h.Slot)),
		merkle.Uint64Root(uint64(h.ProposerIndex)),
		h.ParentRoot,
		h.StateRoot,
		h.BodyRoot,
	}
	return merkle.Merkleize(chunks, 1<<blockHeaderTreeDepth)
}

// validatorRoot computes the hash tree root of a validator container. When
// forceExitUnset is set the exit_epoch chunk is replaced with
// FAR_FUTURE_EPOCH, so the resulting root only matches the consensus-layer
// state if the validator has not initiated an exit at the proven slot.
func validatorRoot(v *phase0.Validator, forceExitUnset bool) [32]byte {
	var wc [32]byte
	copy(wc[:], v.WithdrawalCredentials)

	exitEpoch := uint64(v.ExitEpoch)
	if forceExitUnset {
		exitEpoch = undine.FarFutureEpoch
	}

	chunks := [][32]byte{
		merkle.PubkeyRoot(v.PublicKey),
		wc,
		merkle.Uint64Root(uint64(v.EffectiveBalance)),
		merkle.BoolRoot(v.Slashed),
		merkle.Uint64Root(uint64(v.ActivationEligibilityEpoch)),
		merkle.Uint64Root(uint64(v.ActivationEpoch)),
		merkle.Uint64Root(exitEpoch),
		merkle.Uint64Root(uint64(v.WithdrawableEpoch)),
	}
	return merkle.Merkleize(chunks, 1<<validatorTreeDepth)
}
