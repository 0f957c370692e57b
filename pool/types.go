// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
)

// BeaconStat is the ledger's view of the consensus-layer side of the pool.
type BeaconStat struct {
	DepositedValidators uint64
	BeaconValidators    uint64
	BeaconBalance       *big.Int
}

// StakeLimitInfo is the full stake-limit view exposed to collaborators.
type StakeLimitInfo struct {
	IsStakingPaused           bool
	IsStakingLimitSet         bool
	CurrentStakeLimit         *big.Int
	MaxStakeLimit             *big.Int
	MaxStakeLimitGrowthBlocks uint32
	PrevStakeLimit            *big.Int
	PrevStakeBlockNumber      uint32
}

// CLStateUpdate carries one oracle report of the consensus-layer snapshot.
type CLStateUpdate struct {
	PostClValidators uint64
	PostClBalance    *big.Int
}

// WithdrawalsReport parameterizes one rewards-and-withdrawals collection
// round.
type WithdrawalsReport struct {
	WithdrawalsToWithdraw        *big.Int
	ElRewardsToWithdraw          *big.Int
	LastWithdrawalIDToFinalize   *big.Int
	SimulatedShareRate           *big.Int
	EtherToLockOnWithdrawalQueue *big.Int
}
