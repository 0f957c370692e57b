// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/undinefi/undine/pool"
)

// Supply is the full breakdown of the pooled-ether books. Amounts are
// decimal wei strings, shares decimal share strings.
type Supply struct {
	TotalPooledEther string `json:"totalPooledEther"`
	TotalShares      string `json:"totalShares"`
	BufferedEther    string `json:"bufferedEther"`
	ExternalEther    string `json:"externalEther"`
	ExternalShares   string `json:"externalShares"`
}

type BeaconStat struct {
	DepositedValidators uint64 `json:"depositedValidators"`
	BeaconValidators    uint64 `json:"beaconValidators"`
	BeaconBalance       string `json:"beaconBalance"`
}

type StakeLimit struct {
	IsStakingPaused           bool   `json:"isStakingPaused"`
	IsStakingLimitSet         bool   `json:"isStakingLimitSet"`
	CurrentStakeLimit         string `json:"currentStakeLimit"`
	MaxStakeLimit             string `json:"maxStakeLimit"`
	MaxStakeLimitGrowthBlocks uint32 `json:"maxStakeLimitGrowthBlocks"`
	PrevStakeLimit            string `json:"prevStakeLimit"`
	PrevStakeBlockNumber      uint32 `json:"prevStakeBlockNumber"`
}

type AccountShares struct {
	Address string `json:"address"`
	Shares  string `json:"shares"`
}

func dec(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func convertStakeLimit(info *pool.StakeLimitInfo) *StakeLimit {
	return &StakeLimit{
		IsStakingPaused:           info.IsStakingPaused,
		IsStakingLimitSet:         info.IsStakingLimitSet,
		CurrentStakeLimit:         dec(info.CurrentStakeLimit),
		MaxStakeLimit:             dec(info.MaxStakeLimit),
		MaxStakeLimitGrowthBlocks: info.MaxStakeLimitGrowthBlocks,
		PrevStakeLimit:            dec(info.PrevStakeLimit),
		PrevStakeBlockNumber:      info.PrevStakeBlockNumber,
	}
}
