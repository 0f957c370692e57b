// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undinefi/undine/reverts"
	"github.com/undinefi/undine/undine"
)

// mintableAt10Percent is the exact cap for a 10 ether pool with the
// harness's 1000 bp ratio: (1000 * 10e18) / (10000 - 1000).
var mintableAt10Percent, _ = new(big.Int).SetString("1111111111111111111", 10)

func newExternalHarness(t *testing.T) *poolHarness {
	h := newPoolHarness(t)
	_, err := h.pool.Submit(h.staker, undine.Address{}, eth(10), 1)
	require.NoError(t, err)
	return h
}

func TestMintExternalShares(t *testing.T) {
	t.Run("mints up to the ratio cap", func(t *testing.T) {
		h := newExternalHarness(t)

		require.NoError(t, h.pool.MintExternalShares(h.extMinter, h.extMinter, mintableAt10Percent))

		extShares, err := h.pool.GetExternalShares()
		require.NoError(t, err)
		assert.Equal(t, mintableAt10Percent, extShares)

		// at the internal 1:1 rate the backing ether equals the shares
		extEther, err := h.pool.GetExternalEther()
		require.NoError(t, err)
		assert.Equal(t, mintableAt10Percent, extEther)

		expected := new(big.Int).Add(eth(10), mintableAt10Percent)
		assert.Equal(t, expected, h.totalPooled(t))

		// the cap is saturated, not even one more share fits
		err = h.pool.MintExternalShares(h.extMinter, h.extMinter, big.NewInt(1))
		assert.ErrorIs(t, err, reverts.ErrExtBalanceLimit)
	})

	t.Run("rejects a mint over the cap", func(t *testing.T) {
		h := newExternalHarness(t)
		over := new(big.Int).Add(mintableAt10Percent, big.NewInt(1))
		err := h.pool.MintExternalShares(h.extMinter, h.extMinter, over)
		assert.ErrorIs(t, err, reverts.ErrExtBalanceLimit)
	})

	t.Run("rejects on an empty pool", func(t *testing.T) {
		h := newPoolHarness(t)
		err := h.pool.MintExternalShares(h.extMinter, h.extMinter, big.NewInt(1))
		assert.ErrorIs(t, err, reverts.ErrExtBalanceLimit)
	})

	t.Run("requires the external minter role", func(t *testing.T) {
		h := newExternalHarness(t)
		err := h.pool.MintExternalShares(h.staker, h.staker, big.NewInt(1))
		assert.ErrorIs(t, err, reverts.ErrAuthFailed)
	})

	t.Run("rejects when stopped", func(t *testing.T) {
		h := newExternalHarness(t)
		require.NoError(t, h.pool.Stop(h.admin))
		err := h.pool.MintExternalShares(h.extMinter, h.extMinter, big.NewInt(1))
		assert.ErrorIs(t, err, reverts.ErrStakingPaused)
	})
}

func TestBurnExternalShares(t *testing.T) {
	t.Run("burning everything clears the external books", func(t *testing.T) {
		h := newExternalHarness(t)
		require.NoError(t, h.pool.MintExternalShares(h.extMinter, h.extMinter, mintableAt10Percent))

		require.NoError(t, h.pool.BurnExternalShares(h.extMinter, mintableAt10Percent))

		extShares, err := h.pool.GetExternalShares()
		require.NoError(t, err)
		assert.Equal(t, 0, extShares.Sign())
		extEther, err := h.pool.GetExternalEther()
		require.NoError(t, err)
		assert.Equal(t, 0, extEther.Sign())

		assert.Equal(t, eth(10), h.totalPooled(t))
		total, err := h.pool.GetTotalShares()
		require.NoError(t, err)
		assert.Equal(t, eth(10), total)
	})

	t.Run("cannot burn more than external supply", func(t *testing.T) {
		h := newExternalHarness(t)
		require.NoError(t, h.pool.MintExternalShares(h.extMinter, h.extMinter, big.NewInt(100)))

		err := h.pool.BurnExternalShares(h.extMinter, big.NewInt(101))
		assert.ErrorIs(t, err, reverts.ErrExtSharesTooSmall)
	})

	t.Run("requires the external minter role", func(t *testing.T) {
		h := newExternalHarness(t)
		err := h.pool.BurnExternalShares(h.staker, big.NewInt(1))
		assert.ErrorIs(t, err, reverts.ErrAuthFailed)
	})
}

func TestRebalanceExternalEtherToInternal(t *testing.T) {
	t.Run("moves backing into the buffer at a fixed rate", func(t *testing.T) {
		h := newExternalHarness(t)
		require.NoError(t, h.pool.MintExternalShares(h.extMinter, h.extMinter, mintableAt10Percent))

		sharesBefore, err := h.pool.GetTotalShares()
		require.NoError(t, err)
		totalBefore := h.totalPooled(t)

		require.NoError(t, h.pool.RebalanceExternalEtherToInternal(h.extMinter, eth(1)))

		// supply and total value are untouched, only the backing moved
		sharesAfter, err := h.pool.GetTotalShares()
		require.NoError(t, err)
		assert.Equal(t, sharesBefore, sharesAfter)
		assert.Equal(t, totalBefore, h.totalPooled(t))

		assert.Equal(t, eth(11), h.buffered(t))
		extEther, err := h.pool.GetExternalEther()
		require.NoError(t, err)
		assert.Equal(t, new(big.Int).Sub(mintableAt10Percent, eth(1)), extEther)
	})

	t.Run("cannot move more than the external books hold", func(t *testing.T) {
		h := newExternalHarness(t)
		require.NoError(t, h.pool.MintExternalShares(h.extMinter, h.extMinter, mintableAt10Percent))

		err := h.pool.RebalanceExternalEtherToInternal(h.extMinter, eth(2))
		assert.ErrorIs(t, err, reverts.ErrExtSharesTooSmall)
	})
}

func TestExternalEtherTracksShareRate(t *testing.T) {
	h := newPoolHarness(t)
	_, err := h.pool.Submit(h.staker, undine.Address{}, eth(100), 1)
	require.NoError(t, err)
	require.NoError(t, h.pool.MintExternalShares(h.extMinter, h.extMinter, eth(10)))

	// 11 ether of EL rewards raise the internal rate from 1.00 to 1.11
	require.NoError(t, h.pool.CollectRewardsAndProcessWithdrawals(h.accounting, &WithdrawalsReport{
		ElRewardsToWithdraw: eth(11),
	}))

	// every share rebases, external ones included
	value, err := h.pool.GetPooledEthByShares(eth(100))
	require.NoError(t, err)
	assert.Equal(t, eth(111), value)

	// 10 external shares at the 1.11 rate back 11.1 ether
	extEther, err := h.pool.GetExternalEther()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(111), big.NewInt(1e17)), extEther)

	expectedTotal := new(big.Int).Mul(big.NewInt(1221), big.NewInt(1e17))
	assert.Equal(t, expectedTotal, h.totalPooled(t))
}
