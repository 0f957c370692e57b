// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clproofs verifies consensus-layer facts against beacon block
// roots served by the EIP-4788 oracle. Every entry point is stateless: one
// call proves one point-in-time fact and, where applicable, forwards it to
// the staking router. Idempotency of repeated reports is the router's
// concern.
package clproofs

import (
	"bytes"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/undinefi/undine/exitbus"
	"github.com/undinefi/undine/gindex"
	"github.com/undinefi/undine/merkle"
	"github.com/undinefi/undine/undine"
)

var (
	ErrInvalidBlockHeader    = errors.New("clproofs: header root does not match oracle root")
	ErrUnsupportedSlot       = errors.New("clproofs: slot is before the first supported slot")
	ErrInvalidGIndex         = errors.New("clproofs: gindex is outside the expected subtree")
	ErrWitnessMismatch       = errors.New("clproofs: witness does not match the exit request")
	ErrSummaryNotYetProvable = errors.New("clproofs: historical summary is newer than the proven state")
	ErrExitNotEligible       = errors.New("clproofs: validator exit is not yet eligible")
)

// BeaconRootReader serves parent beacon block roots by child block
// timestamp.
type BeaconRootReader interface {
	GetParentBlockRoot(childTimestamp uint64) (undine.Bytes32, error)
}

// StakingRouter receives the proven exit delays.
type StakingRouter interface {
	ReportValidatorExitDelay(moduleID uint32, nodeOperatorID uint64, pubkey phase0.BLSPubKey, secondsSinceEligibleExit uint64) error
}

type Verifier struct {
	roots      BeaconRootReader
	deliveries exitbus.Deliveries
	router     StakingRouter
	spec       undine.ChainSpec
	logger     log.Logger
}

func NewVerifier(roots BeaconRootReader, deliveries exitbus.Deliveries, router StakingRouter, spec undine.ChainSpec) *Verifier {
	return &Verifier{
		roots:      roots,
		deliveries: deliveries,
		router:     router,
		spec:       spec,
		logger:     log.New("pkg", "clproofs"),
	}
}

// verifyHeader anchors the witness header to the oracle and returns the
// beacon block root the remaining proof layers verify against.
func (v *Verifier) verifyHeader(h *ProvableBeaconBlockHeader) ([32]byte, error) {
	if uint64(h.Header.Slot) < v.spec.FirstSupportedSlot {
		return [32]byte{}, errors.Wrapf(ErrUnsupportedSlot, "slot %d", h.Header.Slot)
	}

	root, err := v.roots.GetParentBlockRoot(h.RootsTimestamp)
	if err != nil {
		return [32]byte{}, err
	}
	if headerRoot(h.Header) != [32]byte(root) {
		return [32]byte{}, errors.Wrapf(ErrInvalidBlockHeader, "slot %d", h.Header.Slot)
	}
	return [32]byte(root), nil
}

// VerifyValidatorWC proves that the witness pubkey is registered at the
// witness validator index with the given withdrawal credentials, in the
// state of the proven header.
func (v *Verifier) VerifyValidatorWC(header *ProvableBeaconBlockHeader, w *ValidatorWitness) error {
	blockRoot, err := v.verifyHeader(header)
	if err != nil {
		return err
	}

	first, err := v.firstValidatorGI(header.Header.Slot)
	if err != nil {
		return err
	}
	validatorGI, err := first.Shr(uint64(w.ValidatorIndex))
	if err != nil {
		return err
	}
	gi, err := gindex.Concat(validatorGI, pubkeyWCParentGI())
	if err != nil {
		return err
	}

	leaf := merkle.Hash(merkle.PubkeyRoot(w.Pubkey), w.WithdrawalCredentials)
	if err := merkle.VerifyProof(w.Proof, blockRoot, leaf, gi); err != nil {
		return err
	}

	v.logger.Debug("verified validator withdrawal credentials",
		"validator", w.ValidatorIndex, "slot", header.Header.Slot)
	return nil
}

// ProcessExitDelayProof proves that the validator named by an exit request
// had still not exited at the proven slot, computes how long the exit has
// been overdue and reports it to the staking router.
func (v *Verifier) ProcessExitDelayProof(header *ProvableBeaconBlockHeader, w *ExitDelayWitness, request exitbus.ExitRequest) error {
	if !bytes.Equal(w.Validator.PublicKey[:], request.Pubkey[:]) || w.Index != phase0.ValidatorIndex(request.ValidatorIndex) {
		return ErrWitnessMismatch
	}

	blockRoot, err := v.verifyHeader(header)
	if err != nil {
		return err
	}

	first, err := v.firstValidatorGI(header.Header.Slot)
	if err != nil {
		return err
	}
	gi, err := first.Shr(uint64(w.Index))
	if err != nil {
		return err
	}

	leaf := validatorRoot(w.Validator, true)
	if err := merkle.VerifyProof(w.Proof, blockRoot, leaf, gi); err != nil {
		return err
	}

	deliveredAt, err := v.deliveries.DeliveryTimestamp(request)
	if err != nil {
		return err
	}

	secondsSince, err := v.exitDelaySeconds(w.Validator.ActivationEpoch, deliveredAt, header.Header.Slot)
	if err != nil {
		return err
	}

	v.logger.Info("reporting validator exit delay",
		"validator", w.Index, "module", request.ModuleID,
		"nodeOperator", request.NodeOperatorID, "overdueSeconds", secondsSince)
	return v.router.ReportValidatorExitDelay(request.ModuleID, request.NodeOperatorID, w.Validator.PublicKey, secondsSince)
}

// exitDelaySeconds computes how long an exit has been overdue at the proven
// slot. A validator becomes eligible to exit at the later of the exit
// request delivery and the end of its shard committee period.
func (v *Verifier) exitDelaySeconds(activationEpoch phase0.Epoch, deliveredAt uint64, proofSlot phase0.Slot) (uint64, error) {
	eligible := v.spec.EpochStartTime(uint64(activationEpoch)) + undine.ShardCommitteePeriodSeconds
	if deliveredAt > eligible {
		eligible = deliveredAt
	}

	proofSlotTime := v.spec.SlotStartTime(uint64(proofSlot))
	if proofSlotTime < eligible {
		return 0, errors.Wrapf(ErrExitNotEligible, "eligible at %d, proven at %d", eligible, proofSlotTime)
	}
	return proofSlotTime - eligible, nil
}

// VerifyHistoricalHeader proves an old beacon block header, too old for the
// oracle's retention window, through the historical_summaries accumulator
// of a recent provable state. It returns the old header's root, which can
// anchor further validator proofs at that slot.
func (v *Verifier) VerifyHistoricalHeader(recent *ProvableBeaconBlockHeader, w *HistoricalHeaderWitness) ([32]byte, error) {
	blockRoot, err := v.verifyHeader(recent)
	if err != nil {
		return [32]byte{}, err
	}

	oldSlot := uint64(w.OldHeader.Slot)
	if oldSlot < v.spec.FirstSupportedSlot {
		return [32]byte{}, errors.Wrapf(ErrUnsupportedSlot, "slot %d", oldSlot)
	}

	summaryIndex := (oldSlot - v.spec.CapellaSlot) / undine.SlotsPerHistoricalRoot
	rootIndex := oldSlot % undine.SlotsPerHistoricalRoot

	// the summary covering oldSlot is only written once its whole window has
	// been accumulated
	summaryCompleteSlot := v.spec.CapellaSlot + (summaryIndex+1)*undine.SlotsPerHistoricalRoot
	if summaryCompleteSlot > uint64(recent.Header.Slot) {
		return [32]byte{}, errors.Wrapf(ErrSummaryNotYetProvable, "summary %d", summaryIndex)
	}

	firstSummary, err := v.firstHistoricalSummaryGI(recent.Header.Slot)
	if err != nil {
		return [32]byte{}, err
	}
	summaryGI, err := firstSummary.Shr(summaryIndex)
	if err != nil {
		return [32]byte{}, err
	}
	inSummary, err := blockRootInSummaryGI(rootIndex)
	if err != nil {
		return [32]byte{}, err
	}
	expected, err := gindex.Concat(summaryGI, inSummary)
	if err != nil {
		return [32]byte{}, err
	}

	// the caller-supplied gindex must be the derived one; a parent check
	// alone would still admit siblings inside the summary subtree
	if !summaryGI.IsParentOf(w.RootGIndex) || expected.Index().Cmp(w.RootGIndex.Index()) != 0 {
		return [32]byte{}, errors.Wrapf(ErrInvalidGIndex, "summary %d root %d", summaryIndex, rootIndex)
	}

	oldRoot := headerRoot(w.OldHeader)
	if err := merkle.VerifyProof(w.Proof, blockRoot, oldRoot, w.RootGIndex); err != nil {
		return [32]byte{}, err
	}

	v.logger.Debug("verified historical block root", "oldSlot", oldSlot, "recentSlot", recent.Header.Slot)
	return oldRoot, nil
}
