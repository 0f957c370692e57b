// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clproofs

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/undinefi/undine/gindex"
)

// ProvableBeaconBlockHeader is a beacon block header together with the
// child block timestamp under which its root sits in the EIP-4788 buffer.
// Witnesses are constructed by the caller, verified once and discarded.
type ProvableBeaconBlockHeader struct {
	Header         *phase0.BeaconBlockHeader
	RootsTimestamp uint64
}

// ValidatorWitness proves that a validator with the given pubkey and
// withdrawal credentials occupies ValidatorIndex in the state of the proven
// header. The branch runs from the node covering pubkey and
// withdrawal_credentials all the way to the beacon block root.
type ValidatorWitness struct {
	Proof                 [][32]byte
	Pubkey                phase0.BLSPubKey
	WithdrawalCredentials [32]byte
	ValidatorIndex        phase0.ValidatorIndex
}

// ExitDelayWitness proves the full validator container, with its exit_epoch
// forced to FAR_FUTURE_EPOCH, against the proven header: a successful
// verification shows the validator had still not exited at the header slot.
type ExitDelayWitness struct {
	Proof     [][32]byte
	Validator *phase0.Validator
	Index     phase0.ValidatorIndex
}

// HistoricalHeaderWitness proves an old beacon block header against a
// recent provable one through historical_summaries. The old header's slot
// picks the summary and the position inside its block_roots vector; the
// caller supplies the full generalized index, which is validated to lie
// under the expected summary subtree before use.
type HistoricalHeaderWitness struct {
	OldHeader  *phase0.BeaconBlockHeader
	RootGIndex gindex.GIndex
	Proof      [][32]byte
}
