// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/undinefi/undine/pool/stakelimit"
	"github.com/undinefi/undine/reverts"
	"github.com/undinefi/undine/undine"
)

// PauseStaking refuses new submissions until resumed. Deposits of already
// buffered ether keep flowing.
func (p *Pool) PauseStaking(caller undine.Address) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		p.storage.setFlag(p.storage.stakingPaused, true)
		logger.Warn("staking paused")
		return nil
	})
}

// ResumeStaking reopens submissions.
func (p *Pool) ResumeStaking(caller undine.Address) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		p.storage.setFlag(p.storage.stakingPaused, false)
		logger.Info("staking resumed")
		return nil
	})
}

// Stop halts the whole protocol: submissions, deposits and external mints.
func (p *Pool) Stop(caller undine.Address) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		p.storage.setFlag(p.storage.protocolStopped, true)
		p.storage.setFlag(p.storage.stakingPaused, true)
		logger.Warn("protocol stopped")
		return nil
	})
}

// Resume lifts a protocol stop. Staking stays paused until resumed
// separately, so operators can restart in stages.
func (p *Pool) Resume(caller undine.Address) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		p.storage.setFlag(p.storage.protocolStopped, false)
		logger.Info("protocol resumed")
		return nil
	})
}

// SetStakingLimit installs a stake-rate limit. The running limit is
// clipped to the new maximum but not refilled, so raising the cap cannot
// be abused for an instant burst.
func (p *Pool) SetStakingLimit(caller undine.Address, maxStakeLimit, growthPerBlock *big.Int, blockNumber uint32) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		if maxStakeLimit == nil || maxStakeLimit.Sign() == 0 {
			return reverts.ErrZeroAmount
		}
		if growthPerBlock == nil {
			growthPerBlock = new(big.Int)
		}
		if growthPerBlock.Cmp(maxStakeLimit) > 0 {
			return reverts.ErrTooLargeLimitIncrease
		}
		if growthPerBlock.Sign() != 0 {
			// growth blocks must fit the packed 32-bit field
			blocks := new(big.Int).Div(maxStakeLimit, growthPerBlock)
			if !blocks.IsUint64() || blocks.Uint64() > math.MaxUint32 {
				return reverts.ErrTooSmallLimitIncrease
			}
		}

		limit, err := p.storage.getStakeLimit()
		if err != nil {
			return err
		}
		next, err := limit.SetLimit(blockNumber, maxStakeLimit, growthPerBlock)
		if err != nil {
			if errors.Is(err, stakelimit.ErrTooLargeLimit) {
				return reverts.ErrTooLargeLimit
			}
			return err
		}
		if err := p.storage.setStakeLimit(next); err != nil {
			return err
		}
		logger.Info("staking limit set", "max", maxStakeLimit, "growthPerBlock", growthPerBlock)
		return nil
	})
}

// RemoveStakingLimit makes staking unlimited again.
func (p *Pool) RemoveStakingLimit(caller undine.Address) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		limit, err := p.storage.getStakeLimit()
		if err != nil {
			return err
		}
		next, err := limit.SetLimit(limit.PrevStakeBlockNumber, new(big.Int), new(big.Int))
		if err != nil {
			return err
		}
		if err := p.storage.setStakeLimit(next); err != nil {
			return err
		}
		logger.Info("staking limit removed")
		return nil
	})
}

// SetMaxExternalRatioBP bounds the external share of the supply, in basis
// points of the post-mint total.
func (p *Pool) SetMaxExternalRatioBP(caller undine.Address, ratioBP *big.Int) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.admin, caller); err != nil {
			return err
		}
		if ratioBP == nil || ratioBP.Sign() < 0 || ratioBP.Cmp(new(big.Int).SetUint64(undine.TotalBasisPoints)) > 0 {
			return reverts.ErrTooLargeLimit
		}
		p.storage.maxExternalRatioBP.Set(ratioBP)
		logger.Info("max external ratio set", "bp", ratioBP)
		return nil
	})
}
