// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undinefi/undine/lvldb"
	"github.com/undinefi/undine/reverts"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/test/datagen"
	"github.com/undinefi/undine/undine"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type fakeRouter struct {
	maxDeposits uint64
	wc          undine.Bytes32
	depositErr  error

	deposits  []uint64
	onDeposit func()
}

func (r *fakeRouter) MaxDepositsCount(moduleID uint32) (uint64, error) { return r.maxDeposits, nil }
func (r *fakeRouter) WithdrawalCredentials() (undine.Bytes32, error)  { return r.wc, nil }
func (r *fakeRouter) Deposit(depositsCount uint64, moduleID uint32, calldata []byte, value *big.Int) error {
	if r.depositErr != nil {
		return r.depositErr
	}
	if r.onDeposit != nil {
		r.onDeposit()
	}
	r.deposits = append(r.deposits, depositsCount)
	return nil
}

type fakeQueue struct {
	bunker      bool
	unfinalized *big.Int

	finalized []struct {
		lastID, shareRate, value *big.Int
	}
}

func (q *fakeQueue) UnfinalizedEther() (*big.Int, error) {
	if q.unfinalized == nil {
		return new(big.Int), nil
	}
	return q.unfinalized, nil
}
func (q *fakeQueue) IsBunkerModeActive() (bool, error) { return q.bunker, nil }
func (q *fakeQueue) Finalize(lastIDToFinalize, shareRate, value *big.Int) error {
	q.finalized = append(q.finalized, struct{ lastID, shareRate, value *big.Int }{lastIDToFinalize, shareRate, value})
	return nil
}

type fakeRewardsVault struct {
	available *big.Int
}

func (v *fakeRewardsVault) WithdrawRewards(maxAmount *big.Int) (*big.Int, error) {
	if v.available == nil || v.available.Cmp(maxAmount) >= 0 {
		return new(big.Int).Set(maxAmount), nil
	}
	return new(big.Int).Set(v.available), nil
}

type fakeWithdrawalVault struct {
	withdrawn []*big.Int
}

func (v *fakeWithdrawalVault) WithdrawWithdrawals(amount *big.Int) error {
	v.withdrawn = append(v.withdrawn, amount)
	return nil
}

type poolHarness struct {
	pool    *Pool
	router  *fakeRouter
	queue   *fakeQueue
	rewards *fakeRewardsVault
	wd      *fakeWithdrawalVault

	admin      undine.Address
	accounting undine.Address
	depositor  undine.Address
	extMinter  undine.Address
	staker     undine.Address
}

func newPoolHarness(t *testing.T) *poolHarness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	h := &poolHarness{
		router:     &fakeRouter{maxDeposits: 100},
		queue:      &fakeQueue{},
		rewards:    &fakeRewardsVault{},
		wd:         &fakeWithdrawalVault{},
		admin:      datagen.RandAddress(),
		accounting: datagen.RandAddress(),
		depositor:  datagen.RandAddress(),
		extMinter:  datagen.RandAddress(),
		staker:     datagen.RandAddress(),
	}
	h.pool = New(datagen.RandAddress(), st, h.router, h.queue, h.rewards, h.wd)
	require.NoError(t, h.pool.Bootstrap(h.admin, h.accounting, h.depositor, h.extMinter, big.NewInt(1000)))
	return h
}

func (h *poolHarness) buffered(t *testing.T) *big.Int {
	v, err := h.pool.GetBufferedEther()
	require.NoError(t, err)
	return v
}

func (h *poolHarness) totalPooled(t *testing.T) *big.Int {
	v, err := h.pool.GetTotalPooledEther()
	require.NoError(t, err)
	return v
}

func TestBootstrap(t *testing.T) {
	h := newPoolHarness(t)

	t.Run("runs only once", func(t *testing.T) {
		err := h.pool.Bootstrap(h.admin, h.accounting, h.depositor, h.extMinter, big.NewInt(1000))
		assert.ErrorIs(t, err, reverts.ErrAuthFailed)
	})

	t.Run("rejects zero admin", func(t *testing.T) {
		db, err := lvldb.NewMem()
		require.NoError(t, err)
		p := New(datagen.RandAddress(), state.New(db), h.router, h.queue, h.rewards, h.wd)
		err = p.Bootstrap(undine.Address{}, h.accounting, h.depositor, h.extMinter, big.NewInt(1000))
		assert.ErrorIs(t, err, reverts.ErrZeroAddress)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("bootstraps share rate one to one", func(t *testing.T) {
		h := newPoolHarness(t)

		minted, err := h.pool.Submit(h.staker, undine.Address{}, eth(10), 1)
		require.NoError(t, err)
		assert.Equal(t, eth(10), minted)
		assert.Equal(t, eth(10), h.buffered(t))
		assert.Equal(t, eth(10), h.totalPooled(t))

		balance, err := h.pool.SharesOf(h.staker)
		require.NoError(t, err)
		assert.Equal(t, eth(10), balance)
	})

	t.Run("second submit mints at unchanged rate", func(t *testing.T) {
		h := newPoolHarness(t)

		first, err := h.pool.Submit(h.staker, undine.Address{}, eth(10), 1)
		require.NoError(t, err)
		second, err := h.pool.Submit(datagen.RandAddress(), undine.Address{}, eth(10), 2)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, eth(20), h.totalPooled(t))

		total, err := h.pool.GetTotalShares()
		require.NoError(t, err)
		assert.Equal(t, eth(20), total)
	})

	t.Run("rejects zero value", func(t *testing.T) {
		h := newPoolHarness(t)
		_, err := h.pool.Submit(h.staker, undine.Address{}, new(big.Int), 1)
		assert.ErrorIs(t, err, reverts.ErrZeroDeposit)
	})

	t.Run("rejects when paused", func(t *testing.T) {
		h := newPoolHarness(t)
		require.NoError(t, h.pool.PauseStaking(h.admin))
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(1), 1)
		assert.ErrorIs(t, err, reverts.ErrStakingPaused)

		require.NoError(t, h.pool.ResumeStaking(h.admin))
		_, err = h.pool.Submit(h.staker, undine.Address{}, eth(1), 1)
		assert.NoError(t, err)
	})

	t.Run("rejects when stopped", func(t *testing.T) {
		h := newPoolHarness(t)
		require.NoError(t, h.pool.Stop(h.admin))
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(1), 1)
		assert.ErrorIs(t, err, reverts.ErrStakingPaused)

		// resume lifts the stop but staking stays paused
		require.NoError(t, h.pool.Resume(h.admin))
		_, err = h.pool.Submit(h.staker, undine.Address{}, eth(1), 1)
		assert.ErrorIs(t, err, reverts.ErrStakingPaused)
	})
}

func TestSubmit_StakeLimit(t *testing.T) {
	h := newPoolHarness(t)
	require.NoError(t, h.pool.SetStakingLimit(h.admin, eth(10), eth(1), 100))

	t.Run("over limit reverts and leaves buffer untouched", func(t *testing.T) {
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(11), 100)
		assert.ErrorIs(t, err, reverts.ErrStakeLimit)
		assert.Equal(t, 0, h.buffered(t).Sign())
	})

	t.Run("consumes the whole bucket", func(t *testing.T) {
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(10), 100)
		require.NoError(t, err)

		_, err = h.pool.Submit(h.staker, undine.Address{}, eth(1), 100)
		assert.ErrorIs(t, err, reverts.ErrStakeLimit)
	})

	t.Run("replenishes linearly", func(t *testing.T) {
		info, err := h.pool.GetStakeLimitFullInfo(105)
		require.NoError(t, err)
		assert.Equal(t, eth(5), info.CurrentStakeLimit)

		_, err = h.pool.Submit(h.staker, undine.Address{}, eth(5), 105)
		require.NoError(t, err)

		_, err = h.pool.Submit(h.staker, undine.Address{}, eth(1), 105)
		assert.ErrorIs(t, err, reverts.ErrStakeLimit)
	})

	t.Run("removing the limit makes staking unlimited", func(t *testing.T) {
		require.NoError(t, h.pool.RemoveStakingLimit(h.admin))
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(1000), 105)
		assert.NoError(t, err)
	})
}

func TestDeposit(t *testing.T) {
	t.Run("requires the deposit role", func(t *testing.T) {
		h := newPoolHarness(t)
		err := h.pool.Deposit(h.admin, 1, 1, nil)
		assert.ErrorIs(t, err, reverts.ErrAuthFailed)
	})

	t.Run("debits ledger before calling the router", func(t *testing.T) {
		h := newPoolHarness(t)
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(100), 1)
		require.NoError(t, err)

		h.router.maxDeposits = 3
		h.router.onDeposit = func() {
			assert.Equal(t, eth(36), h.buffered(t))
		}
		require.NoError(t, h.pool.Deposit(h.depositor, 2, 1, []byte{0x01}))

		assert.Equal(t, []uint64{2}, h.router.deposits)
		assert.Equal(t, eth(36), h.buffered(t))

		stat, err := h.pool.GetBeaconStat()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), stat.DepositedValidators)
		assert.Equal(t, uint64(0), stat.BeaconValidators)

		// in-flight ether counts toward the total
		assert.Equal(t, eth(100), h.totalPooled(t))
	})

	t.Run("router error rolls everything back", func(t *testing.T) {
		h := newPoolHarness(t)
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(100), 1)
		require.NoError(t, err)

		h.router.depositErr = errors.New("router down")
		err = h.pool.Deposit(h.depositor, 2, 1, nil)
		assert.Error(t, err)

		assert.Equal(t, eth(100), h.buffered(t))
		stat, err := h.pool.GetBeaconStat()
		require.NoError(t, err)
		assert.Equal(t, uint64(0), stat.DepositedValidators)
	})

	t.Run("rejects in bunker mode", func(t *testing.T) {
		h := newPoolHarness(t)
		h.queue.bunker = true
		err := h.pool.Deposit(h.depositor, 1, 1, nil)
		assert.ErrorIs(t, err, reverts.ErrCanNotDeposit)
	})

	t.Run("rejects when buffer cannot cover the batch", func(t *testing.T) {
		h := newPoolHarness(t)
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(32), 1)
		require.NoError(t, err)

		err = h.pool.Deposit(h.depositor, 2, 1, nil)
		assert.ErrorIs(t, err, reverts.ErrCanNotDeposit)
	})

	t.Run("zero effective count is a no-op", func(t *testing.T) {
		h := newPoolHarness(t)
		require.NoError(t, h.pool.Deposit(h.depositor, 0, 1, nil))
		assert.Empty(t, h.router.deposits)
	})
}

func TestProcessCLStateUpdate(t *testing.T) {
	setup := func(t *testing.T) *poolHarness {
		h := newPoolHarness(t)
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(64), 1)
		require.NoError(t, err)
		require.NoError(t, h.pool.Deposit(h.depositor, 2, 1, nil))
		return h
	}

	t.Run("moves in-flight ether to the consensus layer", func(t *testing.T) {
		h := setup(t)
		err := h.pool.ProcessCLStateUpdate(h.accounting, &CLStateUpdate{
			PostClValidators: 1,
			PostClBalance:    eth(32),
		})
		require.NoError(t, err)

		stat, err := h.pool.GetBeaconStat()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), stat.BeaconValidators)
		assert.Equal(t, eth(32), stat.BeaconBalance)

		// one validator still in flight, total is conserved
		assert.Equal(t, eth(64), h.totalPooled(t))
	})

	t.Run("rewards grow the total", func(t *testing.T) {
		h := setup(t)
		err := h.pool.ProcessCLStateUpdate(h.accounting, &CLStateUpdate{
			PostClValidators: 2,
			PostClBalance:    eth(65),
		})
		require.NoError(t, err)
		assert.Equal(t, eth(65), h.totalPooled(t))
	})

	t.Run("validator count cannot shrink", func(t *testing.T) {
		h := setup(t)
		require.NoError(t, h.pool.ProcessCLStateUpdate(h.accounting, &CLStateUpdate{
			PostClValidators: 2,
			PostClBalance:    eth(64),
		}))

		err := h.pool.ProcessCLStateUpdate(h.accounting, &CLStateUpdate{
			PostClValidators: 1,
			PostClBalance:    eth(32),
		})
		assert.True(t, reverts.IsAssertErr(err))
	})

	t.Run("cannot report more than deposited", func(t *testing.T) {
		h := setup(t)
		err := h.pool.ProcessCLStateUpdate(h.accounting, &CLStateUpdate{
			PostClValidators: 3,
			PostClBalance:    eth(96),
		})
		assert.True(t, reverts.IsAssertErr(err))
	})

	t.Run("requires the accounting role", func(t *testing.T) {
		h := setup(t)
		err := h.pool.ProcessCLStateUpdate(h.staker, &CLStateUpdate{PostClValidators: 1, PostClBalance: eth(32)})
		assert.ErrorIs(t, err, reverts.ErrAuthFailed)
	})
}

func TestCollectRewardsAndProcessWithdrawals(t *testing.T) {
	h := newPoolHarness(t)
	_, err := h.pool.Submit(h.staker, undine.Address{}, eth(10), 1)
	require.NoError(t, err)

	t.Run("sweeps vaults and finalizes", func(t *testing.T) {
		err := h.pool.CollectRewardsAndProcessWithdrawals(h.accounting, &WithdrawalsReport{
			ElRewardsToWithdraw:          eth(1),
			WithdrawalsToWithdraw:        eth(2),
			LastWithdrawalIDToFinalize:   big.NewInt(7),
			SimulatedShareRate:           eth(1),
			EtherToLockOnWithdrawalQueue: eth(5),
		})
		require.NoError(t, err)

		assert.Equal(t, eth(8), h.buffered(t))
		require.Len(t, h.queue.finalized, 1)
		assert.Equal(t, big.NewInt(7), h.queue.finalized[0].lastID)
		assert.Equal(t, eth(5), h.queue.finalized[0].value)
		require.Len(t, h.wd.withdrawn, 1)
		assert.Equal(t, eth(2), h.wd.withdrawn[0])
	})

	t.Run("cannot lock more than buffered", func(t *testing.T) {
		err := h.pool.CollectRewardsAndProcessWithdrawals(h.accounting, &WithdrawalsReport{
			LastWithdrawalIDToFinalize:   big.NewInt(8),
			SimulatedShareRate:           eth(1),
			EtherToLockOnWithdrawalQueue: eth(100),
		})
		assert.True(t, reverts.IsAssertErr(err))
		assert.Equal(t, eth(8), h.buffered(t))
	})

	t.Run("finalizes a batch that locks no ether", func(t *testing.T) {
		err := h.pool.CollectRewardsAndProcessWithdrawals(h.accounting, &WithdrawalsReport{
			LastWithdrawalIDToFinalize: big.NewInt(9),
			SimulatedShareRate:         eth(1),
		})
		require.NoError(t, err)

		assert.Equal(t, eth(8), h.buffered(t))
		require.Len(t, h.queue.finalized, 2)
		assert.Equal(t, big.NewInt(9), h.queue.finalized[1].lastID)
		assert.Equal(t, 0, h.queue.finalized[1].value.Sign())
	})
}

func TestUnsafeChangeDepositedValidators(t *testing.T) {
	h := newPoolHarness(t)

	require.NoError(t, h.pool.UnsafeChangeDepositedValidators(h.admin, 5))
	stat, err := h.pool.GetBeaconStat()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), stat.DepositedValidators)

	err = h.pool.UnsafeChangeDepositedValidators(h.accounting, 1)
	assert.ErrorIs(t, err, reverts.ErrAuthFailed)
}

func TestShareRateViews(t *testing.T) {
	h := newPoolHarness(t)

	t.Run("empty pool values shares at zero", func(t *testing.T) {
		v, err := h.pool.GetPooledEthByShares(eth(1))
		require.NoError(t, err)
		assert.Equal(t, 0, v.Sign())
	})

	t.Run("rate shifts with rewards", func(t *testing.T) {
		_, err := h.pool.Submit(h.staker, undine.Address{}, eth(64), 1)
		require.NoError(t, err)
		require.NoError(t, h.pool.Deposit(h.depositor, 2, 1, nil))
		require.NoError(t, h.pool.ProcessCLStateUpdate(h.accounting, &CLStateUpdate{
			PostClValidators: 2,
			PostClBalance:    eth(96), // +50%
		}))

		v, err := h.pool.GetPooledEthByShares(eth(2))
		require.NoError(t, err)
		assert.Equal(t, eth(3), v)

		s, err := h.pool.GetSharesByPooledEth(eth(3))
		require.NoError(t, err)
		assert.Equal(t, eth(2), s)
	})
}
