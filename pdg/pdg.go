// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pdg implements the predeposit guarantee: node operators stake a
// bond, lock a fixed slice of it per predeposited validator, and get it
// back (or forfeit it) once the validator's withdrawal credentials are
// proven on the consensus layer.
package pdg

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"

	"github.com/undinefi/undine/clproofs"
	"github.com/undinefi/undine/reverts"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

var logger = log.New("pkg", "pdg")

// ProofVerifier checks a validator witness against an oracle-anchored
// beacon block header.
type ProofVerifier interface {
	VerifyValidatorWC(header *clproofs.ProvableBeaconBlockHeader, w *clproofs.ValidatorWitness) error
}

// Guarantee is the bond and validator-lifecycle service.
type Guarantee struct {
	storage  *storage
	state    *state.State
	verifier ProofVerifier
}

func New(addr undine.Address, st *state.State, verifier ProofVerifier) *Guarantee {
	return &Guarantee{
		storage:  newStorage(addr, st),
		state:    st,
		verifier: verifier,
	}
}

func (g *Guarantee) atomically(fn func() error) error {
	checkpoint := g.state.NewCheckpoint()
	if err := fn(); err != nil {
		g.state.RevertTo(checkpoint)
		return err
	}
	return nil
}

// TopUp credits the operator's bond.
func (g *Guarantee) TopUp(operator undine.Address, amount *big.Int) error {
	return g.atomically(func() error {
		if operator.IsZero() {
			return reverts.ErrZeroAddress
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		bond, err := g.storage.bondOf(operator)
		if err != nil {
			return err
		}
		bond.Total.Add(bond.Total, amount)
		if err := g.storage.setBond(operator, bond); err != nil {
			return err
		}
		logger.Info("bond topped up", "operator", operator, "amount", amount, "total", bond.Total)
		return nil
	})
}

// WithdrawBond releases unlocked bond back to the operator.
func (g *Guarantee) WithdrawBond(operator undine.Address, amount *big.Int) error {
	return g.atomically(func() error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		bond, err := g.storage.bondOf(operator)
		if err != nil {
			return err
		}
		if bond.Unlocked().Cmp(amount) < 0 {
			return reverts.ErrNotEnoughUnlocked
		}
		bond.Total.Sub(bond.Total, amount)
		if err := g.storage.setBond(operator, bond); err != nil {
			return err
		}
		logger.Info("bond withdrawn", "operator", operator, "amount", amount, "total", bond.Total)
		return nil
	})
}

// Predeposit registers a fresh validator pubkey for the vault and locks
// the predeposit slice of the operator's bond behind it. A pubkey that has
// ever been registered, whatever its current stage, is refused.
func (g *Guarantee) Predeposit(vault, operator undine.Address, pubkey [48]byte) error {
	return g.atomically(func() error {
		if vault.IsZero() || operator.IsZero() {
			return reverts.ErrZeroAddress
		}
		status, err := g.storage.statusOf(pubkey)
		if err != nil {
			return err
		}
		if status.Stage != StageNone {
			return reverts.ErrPubkeyNotNew
		}

		bond, err := g.storage.bondOf(operator)
		if err != nil {
			return err
		}
		if bond.Unlocked().Cmp(undine.PredepositAmount) < 0 {
			return reverts.ErrNotEnoughUnlocked
		}
		bond.Locked.Add(bond.Locked, undine.PredepositAmount)
		if err := g.storage.setBond(operator, bond); err != nil {
			return err
		}

		if err := g.storage.setStatus(pubkey, &ValidatorStatus{
			Stage:        StageAwaitingProof,
			StakingVault: vault,
			NodeOperator: operator,
		}); err != nil {
			return err
		}
		logger.Info("validator predeposited", "vault", vault, "operator", operator, "locked", bond.Locked)
		return nil
	})
}

// vaultWithdrawalCredentials is the 0x02 compounding credential pointing
// at the vault's address.
func vaultWithdrawalCredentials(vault undine.Address) [32]byte {
	var wc [32]byte
	wc[0] = 0x02
	copy(wc[12:], vault.Bytes())
	return wc
}

// ProveValidatorWC resolves an awaiting predeposit positively: the witness
// shows the validator on the consensus layer carries the vault's
// withdrawal credentials, so the operator's locked bond slice is released.
func (g *Guarantee) ProveValidatorWC(header *clproofs.ProvableBeaconBlockHeader, w *clproofs.ValidatorWitness) error {
	return g.atomically(func() error {
		pubkey := [48]byte(w.Pubkey)
		status, err := g.storage.statusOf(pubkey)
		if err != nil {
			return err
		}
		if status.Stage != StageAwaitingProof {
			return reverts.ErrNotAwaitingProof
		}
		if w.WithdrawalCredentials != vaultWithdrawalCredentials(status.StakingVault) {
			return reverts.ErrWCMismatch
		}
		if err := g.verifier.VerifyValidatorWC(header, w); err != nil {
			return err
		}

		bond, err := g.storage.bondOf(status.NodeOperator)
		if err != nil {
			return err
		}
		bond.Locked.Sub(bond.Locked, undine.PredepositAmount)
		if err := g.storage.setBond(status.NodeOperator, bond); err != nil {
			return err
		}

		status.Stage = StageProven
		if err := g.storage.setStatus(pubkey, status); err != nil {
			return err
		}
		logger.Info("validator proven", "operator", status.NodeOperator, "vault", status.StakingVault,
			"validatorIndex", w.ValidatorIndex)
		return nil
	})
}

// ProveInvalidValidatorWC resolves an awaiting predeposit negatively: the
// witness shows the validator carries withdrawal credentials other than
// the vault's, so the locked bond slice is forfeited to the vault.
func (g *Guarantee) ProveInvalidValidatorWC(header *clproofs.ProvableBeaconBlockHeader, w *clproofs.ValidatorWitness) error {
	return g.atomically(func() error {
		pubkey := [48]byte(w.Pubkey)
		status, err := g.storage.statusOf(pubkey)
		if err != nil {
			return err
		}
		if status.Stage != StageAwaitingProof {
			return reverts.ErrNotAwaitingProof
		}
		if w.WithdrawalCredentials == vaultWithdrawalCredentials(status.StakingVault) {
			// a matching credential cannot disprove anything
			return reverts.ErrWCMismatch
		}
		if err := g.verifier.VerifyValidatorWC(header, w); err != nil {
			return err
		}

		bond, err := g.storage.bondOf(status.NodeOperator)
		if err != nil {
			return err
		}
		bond.Total.Sub(bond.Total, undine.PredepositAmount)
		bond.Locked.Sub(bond.Locked, undine.PredepositAmount)
		if err := g.storage.setBond(status.NodeOperator, bond); err != nil {
			return err
		}

		status.Stage = StageDisproven
		if err := g.storage.setStatus(pubkey, status); err != nil {
			return err
		}
		logger.Warn("validator disproven", "operator", status.NodeOperator, "vault", status.StakingVault,
			"validatorIndex", w.ValidatorIndex)
		return nil
	})
}

// ClaimDisprovenPredeposit moves a disproven pubkey to its terminal stage
// and pays the forfeited bond slice out to the vault. Only the recorded
// vault may claim, and only once.
func (g *Guarantee) ClaimDisprovenPredeposit(caller undine.Address, pubkey [48]byte) (*big.Int, error) {
	var claimed *big.Int
	err := g.atomically(func() error {
		status, err := g.storage.statusOf(pubkey)
		if err != nil {
			return err
		}
		if status.Stage != StageDisproven {
			return reverts.ErrNotDisproven
		}
		if caller != status.StakingVault {
			return reverts.ErrAuthFailed
		}

		status.Stage = StageWithdrawn
		if err := g.storage.setStatus(pubkey, status); err != nil {
			return err
		}
		claimed = new(big.Int).Set(undine.PredepositAmount)
		logger.Info("disproven predeposit claimed", "vault", status.StakingVault, "amount", claimed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// StatusOf returns the lifecycle record of the pubkey.
func (g *Guarantee) StatusOf(pubkey [48]byte) (*ValidatorStatus, error) {
	return g.storage.statusOf(pubkey)
}

// BondOf returns the operator's bond.
func (g *Guarantee) BondOf(operator undine.Address) (*Bond, error) {
	return g.storage.bondOf(operator)
}

// UnlockedBondOf returns the slice of the operator's bond not locked
// behind pending predeposits.
func (g *Guarantee) UnlockedBondOf(operator undine.Address) (*big.Int, error) {
	bond, err := g.storage.bondOf(operator)
	if err != nil {
		return nil, err
	}
	return bond.Unlocked(), nil
}
