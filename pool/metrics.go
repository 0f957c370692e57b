// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/undinefi/undine/metrics"
)

var (
	metricsSubmittedEther      = metrics.LazyLoadCounter("pool_submitted_ether_gwei_count")
	metricsDepositedValidators = metrics.LazyLoadCounter("pool_deposited_validators_count")
	metricsExternalShares      = metrics.LazyLoadGauge("pool_external_shares_gauge")
	metricsBufferedEther       = metrics.LazyLoadGauge("pool_buffered_ether_gwei_gauge")
)

// toGwei scales a wei amount down so it fits the int64 meters.
func toGwei(wei *big.Int) int64 {
	return new(big.Int).Div(wei, big.NewInt(1e9)).Int64()
}

// toShares scales a 1e18 fixed-point share count down to whole shares.
func toShares(shares *big.Int) int64 {
	return new(big.Int).Div(shares, big.NewInt(1e18)).Int64()
}
