// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package undine

import (
	"math"
	"math/big"
)

// Constants of the protocol.
const (
	// DepositSizeGwei is the effective balance of one consensus-layer deposit.
	DepositSizeGwei uint64 = 32 * 1e9

	// TotalBasisPoints is the denominator of basis-point ratios.
	TotalBasisPoints uint64 = 10_000

	// SlotsPerEpoch number of slots in a consensus-layer epoch.
	SlotsPerEpoch uint64 = 32

	// SecondsPerSlot slot duration in seconds.
	SecondsPerSlot uint64 = 12

	// SlotsPerHistoricalRoot length of the block_roots vector in the beacon state.
	SlotsPerHistoricalRoot uint64 = 8192

	// ShardCommitteePeriodSeconds is the minimum activation-to-voluntary-exit delay,
	// expressed in seconds (256 epochs).
	ShardCommitteePeriodSeconds uint64 = 256 * SlotsPerEpoch * SecondsPerSlot

	// FarFutureEpoch marks a validator field as unset.
	FarFutureEpoch uint64 = math.MaxUint64

	// BeaconRootsHistoryBufferLength is the size of the EIP-4788 ring buffer.
	BeaconRootsHistoryBufferLength uint64 = 8191
)

var (
	// BeaconRootsAddress is the EIP-4788 system contract address.
	BeaconRootsAddress = MustParseAddress("0x000F3df6D732807Ef1319fB7B8bB8522d0Beac02")

	// PoolAddress is the storage placement of the pooled-ether ledger.
	PoolAddress = BytesToAddress([]byte("undine.pool"))

	// GuaranteeAddress is the storage placement of the predeposit guarantee.
	GuaranteeAddress = BytesToAddress([]byte("undine.pdg"))

	// ExitBusAddress is the storage placement of the exit-request delivery log.
	ExitBusAddress = BytesToAddress([]byte("undine.exitbus"))

	// DepositSize is the amount of wei pulled from the buffer per validator deposit.
	DepositSize = new(big.Int).Mul(big.NewInt(32), big.NewInt(1e18))

	// PredepositAmount is the bond collateral locked per predeposited validator.
	PredepositAmount = big.NewInt(1e18)

	// InitialMaxExternalRatioBP is the default cap on externally backed shares.
	InitialMaxExternalRatioBP = big.NewInt(0)
)

// ChainSpec carries the consensus-layer timing parameters the proof layer
// depends on. All values are fixed at construction.
type ChainSpec struct {
	GenesisTime uint64 // unix time of slot 0

	// FirstSupportedSlot is the first slot provable at all; proofs referring to
	// older slots are rejected outright.
	FirstSupportedSlot uint64

	// PivotSlot selects between the previous and current generalized-index
	// sets. Witnesses with Slot < PivotSlot verify against the previous fork's
	// state layout.
	PivotSlot uint64

	// CapellaSlot is where historical_summaries accumulation begins.
	CapellaSlot uint64
}

// SlotStartTime returns the unix time at which the given slot starts.
func (c *ChainSpec) SlotStartTime(slot uint64) uint64 {
	return c.GenesisTime + slot*SecondsPerSlot
}

// EpochStartTime returns the unix time at which the given epoch starts.
func (c *ChainSpec) EpochStartTime(epoch uint64) uint64 {
	return c.GenesisTime + epoch*SlotsPerEpoch*SecondsPerSlot
}

// MainnetSpec is the chain spec of the Ethereum mainnet.
var MainnetSpec = ChainSpec{
	GenesisTime:        1_606_824_023,
	FirstSupportedSlot: 6_209_536,  // capella activation
	PivotSlot:          11_649_024, // electra activation
	CapellaSlot:        6_209_536,
}
