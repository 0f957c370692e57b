// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the pooled-ether accounting ledger: buffered,
// transient, consensus-layer and external balances, the share supply over
// them and the stake-rate admission control. All entry points are atomic;
// on error no partial mutation survives.
package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/undinefi/undine/pool/stakelimit"
	"github.com/undinefi/undine/record"
	"github.com/undinefi/undine/reverts"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

var logger = log.New("pkg", "pool")

// Pool is the ledger façade. One instance wraps one state; entry points are
// serialized by the surrounding execution environment.
type Pool struct {
	storage *storage
	state   *state.State

	router       StakingRouter
	queue        WithdrawalQueue
	rewardsVault RewardsVault
	wdVault      WithdrawalVault
}

func New(addr undine.Address, st *state.State, router StakingRouter, queue WithdrawalQueue, rewardsVault RewardsVault, wdVault WithdrawalVault) *Pool {
	return &Pool{
		storage:      newStorage(addr, st),
		state:        st,
		router:       router,
		queue:        queue,
		rewardsVault: rewardsVault,
		wdVault:      wdVault,
	}
}

// atomically runs fn under a checkpoint; any error rolls every write back.
func (p *Pool) atomically(fn func() error) error {
	checkpoint := p.state.NewCheckpoint()
	if err := fn(); err != nil {
		p.state.RevertTo(checkpoint)
		return err
	}
	return nil
}

// Bootstrap installs the admin and the authorized collaborator callers.
// It can only run once, on a ledger with no admin set.
func (p *Pool) Bootstrap(admin, accountingCaller, depositCaller, externalMinter undine.Address, maxExternalRatioBP *big.Int) error {
	return p.atomically(func() error {
		current, err := p.storage.admin.Get()
		if err != nil {
			return err
		}
		if !current.IsZero() {
			return reverts.ErrAuthFailed
		}
		if admin.IsZero() {
			return reverts.ErrZeroAddress
		}

		p.storage.admin.Set(&admin)
		p.storage.accountingRole.Set(&accountingCaller)
		p.storage.depositRole.Set(&depositCaller)
		p.storage.externalRole.Set(&externalMinter)
		p.storage.maxExternalRatioBP.Set(maxExternalRatioBP)

		logger.Info("ledger bootstrapped", "admin", admin)
		return nil
	})
}

// requireRole compares the caller against a stored authorized address.
// Authorization is always the first check of a privileged entry point.
func (p *Pool) requireRole(role *record.Address, caller undine.Address) error {
	authorized, err := role.Get()
	if err != nil {
		return err
	}
	if caller != authorized || authorized.IsZero() {
		return reverts.ErrAuthFailed
	}
	return nil
}

// Submit stakes ether for the sender, minting shares at the pre-deposit
// share rate. The referral address only surfaces in the log line; it has no
// accounting effect.
func (p *Pool) Submit(sender, referral undine.Address, value *big.Int, blockNumber uint32) (*big.Int, error) {
	var minted *big.Int
	err := p.atomically(func() error {
		if value == nil || value.Sign() <= 0 {
			return reverts.ErrZeroDeposit
		}
		paused, err := p.storage.getFlag(p.storage.stakingPaused)
		if err != nil {
			return err
		}
		stopped, err := p.storage.getFlag(p.storage.protocolStopped)
		if err != nil {
			return err
		}
		if paused || stopped {
			return reverts.ErrStakingPaused
		}

		limit, err := p.storage.getStakeLimit()
		if err != nil {
			return err
		}
		consumed, err := limit.Consume(blockNumber, value)
		if err != nil {
			if errors.Is(err, stakelimit.ErrLimitExceeded) {
				return reverts.ErrStakeLimit
			}
			return err
		}
		if consumed != limit {
			if err := p.storage.setStakeLimit(consumed); err != nil {
				return err
			}
		}

		minted, err = p.getSharesByPooledEth(value)
		if err != nil {
			return err
		}
		if err := p.mintShares(sender, minted); err != nil {
			return err
		}
		if err := p.storage.bufferedEther.Add(value); err != nil {
			return err
		}
		buffered, err := p.storage.bufferedEther.Get()
		if err != nil {
			return err
		}

		metricsSubmittedEther().Add(toGwei(value))
		metricsBufferedEther().Set(toGwei(buffered))
		logger.Info("deposit recorded", "sender", sender, "value", value, "shares", minted, "referral", referral)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// Deposit pulls buffered ether for up to maxDepositsCount validator
// deposits and forwards it to the staking router. The ledger is debited
// before the router sees any ether, so a compromised router cannot reenter
// an inconsistent buffer.
func (p *Pool) Deposit(caller undine.Address, maxDepositsCount uint64, moduleID uint32, calldata []byte) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.depositRole, caller); err != nil {
			return err
		}

		stopped, err := p.storage.getFlag(p.storage.protocolStopped)
		if err != nil {
			return err
		}
		if stopped {
			return reverts.ErrCanNotDeposit
		}
		bunker, err := p.queue.IsBunkerModeActive()
		if err != nil {
			return err
		}
		if bunker {
			return reverts.ErrCanNotDeposit
		}

		routerMax, err := p.router.MaxDepositsCount(moduleID)
		if err != nil {
			return err
		}
		depositsCount := min(maxDepositsCount, routerMax)
		if depositsCount == 0 {
			return nil
		}

		amount := new(big.Int).Mul(new(big.Int).SetUint64(depositsCount), undine.DepositSize)
		buffered, err := p.storage.bufferedEther.Get()
		if err != nil {
			return err
		}
		if buffered.Cmp(amount) < 0 {
			return reverts.ErrCanNotDeposit
		}

		// ledger first, router second
		if err := p.storage.bufferedEther.Sub(amount); err != nil {
			return err
		}
		if err := p.storage.depositedValidators.Add(new(big.Int).SetUint64(depositsCount)); err != nil {
			return err
		}

		if err := p.router.Deposit(depositsCount, moduleID, calldata, amount); err != nil {
			return err
		}

		metricsDepositedValidators().Add(int64(depositsCount))
		metricsBufferedEther().Set(toGwei(new(big.Int).Sub(buffered, amount)))
		logger.Info("validators deposited", "count", depositsCount, "module", moduleID, "amount", amount)
		return nil
	})
}

// ProcessCLStateUpdate records the oracle-reported consensus-layer
// snapshot. The validator count can only grow and never exceed what the
// ledger itself has deposited.
func (p *Pool) ProcessCLStateUpdate(caller undine.Address, update *CLStateUpdate) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.accountingRole, caller); err != nil {
			return err
		}

		deposited, err := p.storage.depositedValidators.Get()
		if err != nil {
			return err
		}
		clValidators, err := p.storage.clValidators.Get()
		if err != nil {
			return err
		}

		post := new(big.Int).SetUint64(update.PostClValidators)
		if post.Cmp(clValidators) < 0 {
			return reverts.NewAssert("REPORTED_LESS_VALIDATORS")
		}
		if post.Cmp(deposited) > 0 {
			return reverts.NewAssert("REPORTED_MORE_DEPOSITED")
		}

		p.storage.clValidators.Set(post)
		p.storage.clBalance.Set(update.PostClBalance)

		logger.Info("cl state updated", "clValidators", update.PostClValidators, "clBalance", update.PostClBalance)
		return nil
	})
}

// CollectRewardsAndProcessWithdrawals sweeps execution-layer rewards and
// withdrawal-vault ether into the buffer, then hands the finalization
// budget to the withdrawal queue.
func (p *Pool) CollectRewardsAndProcessWithdrawals(caller undine.Address, report *WithdrawalsReport) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.accountingRole, caller); err != nil {
			return err
		}

		if report.ElRewardsToWithdraw != nil && report.ElRewardsToWithdraw.Sign() > 0 {
			swept, err := p.rewardsVault.WithdrawRewards(report.ElRewardsToWithdraw)
			if err != nil {
				return err
			}
			if err := p.storage.bufferedEther.Add(swept); err != nil {
				return err
			}
		}
		if report.WithdrawalsToWithdraw != nil && report.WithdrawalsToWithdraw.Sign() > 0 {
			if err := p.wdVault.WithdrawWithdrawals(report.WithdrawalsToWithdraw); err != nil {
				return err
			}
			if err := p.storage.bufferedEther.Add(report.WithdrawalsToWithdraw); err != nil {
				return err
			}
		}

		if report.LastWithdrawalIDToFinalize != nil && report.LastWithdrawalIDToFinalize.Sign() > 0 {
			// a finalization batch may carry no lock at all
			locked := report.EtherToLockOnWithdrawalQueue
			if locked == nil {
				locked = new(big.Int)
			}
			buffered, err := p.storage.bufferedEther.Get()
			if err != nil {
				return err
			}
			if buffered.Cmp(locked) < 0 {
				return reverts.NewAssert("LOCKED_EXCEEDS_BUFFERED")
			}
			if err := p.storage.bufferedEther.Sub(locked); err != nil {
				return err
			}
			if err := p.queue.Finalize(report.LastWithdrawalIDToFinalize, report.SimulatedShareRate, locked); err != nil {
				return err
			}
		}

		logger.Info("rewards collected and withdrawals processed",
			"elRewards", report.ElRewardsToWithdraw, "withdrawals", report.WithdrawalsToWithdraw,
			"lockedForFinalization", report.EtherToLockOnWithdrawalQueue)
		return nil
	})
}

// UnsafeChangeDepositedValidators overrides the deposited-validators
// counter. Admin-only escape hatch for consolidating manual deposits made
// outside the ledger; it deliberately skips the monotonicity guards.
func (p *Pool) UnsafeChangeDepositedValidators(caller undine.Address, newDepositedValidators uint64) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		p.storage.depositedValidators.Set(new(big.Int).SetUint64(newDepositedValidators))
		logger.Warn("deposited validators changed unsafely", "newValue", newDepositedValidators)
		return nil
	})
}

// mintShares credits newly minted shares to the recipient.
func (p *Pool) mintShares(recipient undine.Address, amount *big.Int) error {
	if recipient.IsZero() {
		return reverts.ErrZeroAddress
	}
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	balance, err := p.storage.sharesOf(recipient)
	if err != nil {
		return err
	}
	if err := p.storage.shares.Set(recipient, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return p.storage.totalShares.Add(amount)
}

// burnShares removes shares from the account.
func (p *Pool) burnShares(account undine.Address, amount *big.Int) error {
	if account.IsZero() {
		return reverts.ErrZeroAddress
	}
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	balance, err := p.storage.sharesOf(account)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.New("BALANCE_EXCEEDED")
	}
	if err := p.storage.shares.Set(account, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	return p.storage.totalShares.Sub(amount)
}
