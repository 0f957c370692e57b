// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/undinefi/undine/undine"
)

// StakingRouter distributes validator deposits across staking modules.
type StakingRouter interface {
	MaxDepositsCount(moduleID uint32) (uint64, error)
	WithdrawalCredentials() (undine.Bytes32, error)
	Deposit(depositsCount uint64, moduleID uint32, calldata []byte, value *big.Int) error
}

// WithdrawalQueue finalizes withdrawal requests against collected ether.
type WithdrawalQueue interface {
	UnfinalizedEther() (*big.Int, error)
	IsBunkerModeActive() (bool, error)
	Finalize(lastIDToFinalize, shareRate, value *big.Int) error
}

// RewardsVault releases accumulated execution-layer rewards, up to the
// requested maximum, and reports the amount actually swept.
type RewardsVault interface {
	WithdrawRewards(maxAmount *big.Int) (*big.Int, error)
}

// WithdrawalVault releases ether arrived from validator withdrawals.
type WithdrawalVault interface {
	WithdrawWithdrawals(amount *big.Int) error
}
