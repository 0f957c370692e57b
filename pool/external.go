// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/undinefi/undine/reverts"
	"github.com/undinefi/undine/undine"
)

// maxMintableExternalShares solves the share count x that keeps
// (externalShares + x) / (totalShares + x) within the configured ratio:
// x = (ratioBP * totalShares - externalShares * TOTAL_BP) / (TOTAL_BP - ratioBP).
func (p *Pool) maxMintableExternalShares() (*big.Int, error) {
	ratioBP, err := p.storage.maxExternalRatioBP.Get()
	if err != nil {
		return nil, err
	}
	if ratioBP.Sign() == 0 {
		return new(big.Int), nil
	}
	totalBP := new(big.Int).SetUint64(undine.TotalBasisPoints)
	if ratioBP.Cmp(totalBP) >= 0 {
		// no cap
		return new(big.Int).Set(maxShares), nil
	}

	totalShares, err := p.storage.totalShares.Get()
	if err != nil {
		return nil, err
	}
	externalShares, err := p.storage.externalShares.Get()
	if err != nil {
		return nil, err
	}

	num := new(big.Int).Mul(ratioBP, totalShares)
	num.Sub(num, new(big.Int).Mul(externalShares, totalBP))
	if num.Sign() <= 0 {
		return new(big.Int), nil
	}
	return num.Div(num, new(big.Int).Sub(totalBP, ratioBP)), nil
}

var maxShares = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// MintExternalShares mints shares backed by ether that is custodied
// outside the ledger. The mint is capped so external shares never exceed
// the configured fraction of the post-mint supply.
func (p *Pool) MintExternalShares(caller, recipient undine.Address, amountShares *big.Int) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.externalRole, caller); err != nil {
			return err
		}
		if amountShares == nil || amountShares.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		stopped, err := p.storage.getFlag(p.storage.protocolStopped)
		if err != nil {
			return err
		}
		if stopped {
			return reverts.ErrStakingPaused
		}

		mintable, err := p.maxMintableExternalShares()
		if err != nil {
			return err
		}
		if amountShares.Cmp(mintable) > 0 {
			return reverts.ErrExtBalanceLimit
		}

		// external shares are valued at the internal rate, so there must
		// be internal shares to define one
		totalShares, err := p.storage.totalShares.Get()
		if err != nil {
			return err
		}
		externalShares, err := p.storage.externalShares.Get()
		if err != nil {
			return err
		}
		if totalShares.Cmp(externalShares) == 0 {
			return reverts.ErrExtBalanceLimit
		}

		if err := p.mintShares(recipient, amountShares); err != nil {
			return err
		}
		if err := p.storage.externalShares.Add(amountShares); err != nil {
			return err
		}

		external, err := p.storage.externalShares.Get()
		if err != nil {
			return err
		}
		metricsExternalShares().Set(toShares(external))
		logger.Info("external shares minted", "recipient", recipient, "shares", amountShares)
		return nil
	})
}

// BurnExternalShares burns externally backed shares from the caller's
// balance, releasing the matching external ether from the ledger's books.
func (p *Pool) BurnExternalShares(caller undine.Address, amountShares *big.Int) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.externalRole, caller); err != nil {
			return err
		}
		if amountShares == nil || amountShares.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}

		externalShares, err := p.storage.externalShares.Get()
		if err != nil {
			return err
		}
		if externalShares.Cmp(amountShares) < 0 {
			return reverts.ErrExtSharesTooSmall
		}

		if err := p.burnShares(caller, amountShares); err != nil {
			return err
		}
		if err := p.storage.externalShares.Sub(amountShares); err != nil {
			return err
		}

		external, err := p.storage.externalShares.Get()
		if err != nil {
			return err
		}
		metricsExternalShares().Set(toShares(external))
		logger.Info("external shares burned", "caller", caller, "shares", amountShares)
		return nil
	})
}

// RebalanceExternalEtherToInternal moves ether that was custodied
// externally into the buffer. The matching shares stop being external but
// keep existing, so the total supply and the share rate do not move.
func (p *Pool) RebalanceExternalEtherToInternal(caller undine.Address, amountEther *big.Int) error {
	return p.atomically(func() error {
		if err := p.requireRole(p.storage.externalRole, caller); err != nil {
			return err
		}
		if amountEther == nil || amountEther.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}

		shareEquivalent, err := p.getSharesByPooledEth(amountEther)
		if err != nil {
			return err
		}
		externalShares, err := p.storage.externalShares.Get()
		if err != nil {
			return err
		}
		if externalShares.Cmp(shareEquivalent) < 0 {
			return reverts.ErrExtSharesTooSmall
		}
		externalEther, err := p.getExternalEther()
		if err != nil {
			return err
		}
		if externalEther.Cmp(amountEther) < 0 {
			return reverts.ErrExtBalanceLimit
		}

		if err := p.storage.externalShares.Sub(shareEquivalent); err != nil {
			return err
		}
		if err := p.storage.bufferedEther.Add(amountEther); err != nil {
			return err
		}

		logger.Info("external ether rebalanced to buffer", "ether", amountEther, "shares", shareEquivalent)
		return nil
	})
}
