// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/undinefi/undine/undine"
)

// getTransientEther is the ether sent to the deposit contract but not yet
// visible on the consensus layer: (deposited - clValidators) * 32 ether.
func (p *Pool) getTransientEther() (*big.Int, error) {
	deposited, err := p.storage.depositedValidators.Get()
	if err != nil {
		return nil, err
	}
	clValidators, err := p.storage.clValidators.Get()
	if err != nil {
		return nil, err
	}
	inFlight := new(big.Int).Sub(deposited, clValidators)
	return inFlight.Mul(inFlight, undine.DepositSize), nil
}

// getInternalEther is the ether held by the protocol itself: buffered,
// transient and consensus-layer balances. It backs the internal shares
// and defines the share rate.
func (p *Pool) getInternalEther() (*big.Int, error) {
	buffered, err := p.storage.bufferedEther.Get()
	if err != nil {
		return nil, err
	}
	clBalance, err := p.storage.clBalance.Get()
	if err != nil {
		return nil, err
	}
	transient, err := p.getTransientEther()
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(buffered, clBalance)
	return total.Add(total, transient), nil
}

// getExternalEther values the external shares at the internal rate:
// externalShares * internalEther / internalShares. Deriving it rather
// than storing it keeps external backing rebasing with the pool.
func (p *Pool) getExternalEther() (*big.Int, error) {
	externalShares, err := p.storage.externalShares.Get()
	if err != nil {
		return nil, err
	}
	if externalShares.Sign() == 0 {
		return new(big.Int), nil
	}
	totalShares, err := p.storage.totalShares.Get()
	if err != nil {
		return nil, err
	}
	internalEther, err := p.getInternalEther()
	if err != nil {
		return nil, err
	}
	internalShares := new(big.Int).Sub(totalShares, externalShares)
	out := new(big.Int).Mul(externalShares, internalEther)
	return out.Div(out, internalShares), nil
}

// GetTotalPooledEther sums every ether bucket the share supply is backed
// by: buffered, transient, consensus-layer and external.
func (p *Pool) GetTotalPooledEther() (*big.Int, error) {
	internal, err := p.getInternalEther()
	if err != nil {
		return nil, err
	}
	external, err := p.getExternalEther()
	if err != nil {
		return nil, err
	}
	return internal.Add(internal, external), nil
}

// GetTotalShares returns the share supply, internal plus external.
func (p *Pool) GetTotalShares() (*big.Int, error) {
	return p.storage.totalShares.Get()
}

// SharesOf returns the share balance of the account.
func (p *Pool) SharesOf(account undine.Address) (*big.Int, error) {
	return p.storage.sharesOf(account)
}

// GetBufferedEther returns the ether held in the buffer, awaiting
// validator deposits or withdrawal finalization.
func (p *Pool) GetBufferedEther() (*big.Int, error) {
	return p.storage.bufferedEther.Get()
}

// GetExternalEther returns the ether value of the externally minted
// shares at the current share rate.
func (p *Pool) GetExternalEther() (*big.Int, error) {
	return p.getExternalEther()
}

// GetExternalShares returns the externally minted part of the supply.
func (p *Pool) GetExternalShares() (*big.Int, error) {
	return p.storage.externalShares.Get()
}

// GetBeaconStat returns the ledger's consensus-layer counters.
func (p *Pool) GetBeaconStat() (*BeaconStat, error) {
	deposited, err := p.storage.depositedValidators.Get()
	if err != nil {
		return nil, err
	}
	clValidators, err := p.storage.clValidators.Get()
	if err != nil {
		return nil, err
	}
	clBalance, err := p.storage.clBalance.Get()
	if err != nil {
		return nil, err
	}
	return &BeaconStat{
		DepositedValidators: deposited.Uint64(),
		BeaconValidators:    clValidators.Uint64(),
		BeaconBalance:       clBalance,
	}, nil
}

// getSharesByPooledEth converts an ether amount to shares at the current
// rate. On an empty pool the rate bootstraps at 1:1.
func (p *Pool) getSharesByPooledEth(etherAmount *big.Int) (*big.Int, error) {
	total, err := p.GetTotalPooledEther()
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 {
		return new(big.Int).Set(etherAmount), nil
	}
	shares, err := p.storage.totalShares.Get()
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(etherAmount, shares)
	return out.Div(out, total), nil
}

// GetSharesByPooledEth converts ether to shares at the current rate.
func (p *Pool) GetSharesByPooledEth(etherAmount *big.Int) (*big.Int, error) {
	return p.getSharesByPooledEth(etherAmount)
}

// GetPooledEthByShares converts shares to their ether value at the
// current rate. With no shares outstanding the value is zero.
func (p *Pool) GetPooledEthByShares(sharesAmount *big.Int) (*big.Int, error) {
	shares, err := p.storage.totalShares.Get()
	if err != nil {
		return nil, err
	}
	if shares.Sign() == 0 {
		return new(big.Int), nil
	}
	total, err := p.GetTotalPooledEther()
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(sharesAmount, total)
	return out.Div(out, shares), nil
}

// IsStakingPaused reports whether new submissions are refused.
func (p *Pool) IsStakingPaused() (bool, error) {
	return p.storage.getFlag(p.storage.stakingPaused)
}

// IsStopped reports whether the whole protocol is halted.
func (p *Pool) IsStopped() (bool, error) {
	return p.storage.getFlag(p.storage.protocolStopped)
}

// GetStakeLimitFullInfo exposes the raw stake-limit record together with
// the replayed current limit at the given block.
func (p *Pool) GetStakeLimitFullInfo(blockNumber uint32) (*StakeLimitInfo, error) {
	paused, err := p.storage.getFlag(p.storage.stakingPaused)
	if err != nil {
		return nil, err
	}
	limit, err := p.storage.getStakeLimit()
	if err != nil {
		return nil, err
	}
	return &StakeLimitInfo{
		IsStakingPaused:           paused,
		IsStakingLimitSet:         limit.IsSet(),
		CurrentStakeLimit:         limit.CurrentLimit(blockNumber),
		MaxStakeLimit:             limit.MaxStakeLimit,
		MaxStakeLimitGrowthBlocks: limit.MaxStakeLimitGrowthBlocks,
		PrevStakeLimit:            limit.PrevStakeLimit,
		PrevStakeBlockNumber:      limit.PrevStakeBlockNumber,
	}, nil
}
