// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pdg

import (
	"math/big"

	"github.com/undinefi/undine/undine"
)

// Stage is the lifecycle position of a predeposited validator pubkey.
// Records never go back to StageNone, a pubkey is single-use forever.
type Stage uint8

const (
	StageNone Stage = iota
	StageAwaitingProof
	StageProven
	StageDisproven
	StageWithdrawn
)

func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageAwaitingProof:
		return "awaiting-proof"
	case StageProven:
		return "proven"
	case StageDisproven:
		return "disproven"
	case StageWithdrawn:
		return "withdrawn"
	default:
		return "unknown"
	}
}

// ValidatorStatus is the per-pubkey lifecycle record.
type ValidatorStatus struct {
	Stage        Stage
	StakingVault undine.Address
	NodeOperator undine.Address
}

// Bond is a node operator's collateral. Locked never exceeds Total; the
// difference is the unlocked balance available for predeposits or
// withdrawal.
type Bond struct {
	Total  *big.Int
	Locked *big.Int
}

// Unlocked returns Total - Locked.
func (b *Bond) Unlocked() *big.Int {
	return new(big.Int).Sub(b.Total, b.Locked)
}

func newBond() *Bond {
	return &Bond{Total: new(big.Int), Locked: new(big.Int)}
}
