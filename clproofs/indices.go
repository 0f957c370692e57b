// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clproofs

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/undinefi/undine/gindex"
)

// Beacon object layout facts the proofs are anchored to. The block header
// always has 5 fields. The state's field count grew past 32 at the pivot
// fork, which pushes every field one tree level deeper.
const (
	blockHeaderTreeDepth = 3
	stateRootFieldIndex  = 3

	validatorsFieldIndex = 11
	summariesFieldIndex  = 27
	prevStateTreeDepth   = 5
	currStateTreeDepth   = 6

	validatorRegistryDepth   = 40 // list limit 2^40
	historicalSummariesDepth = 24 // list limit 2^24
	blockRootsVectorDepth    = 13 // vector size 8192

	validatorTreeDepth = 3 // 8 container fields
)

// stateRootGI addresses state_root inside the beacon block header.
func stateRootGI() gindex.GIndex {
	return gindex.New(1<<blockHeaderTreeDepth+stateRootFieldIndex, blockHeaderTreeDepth)
}

// stateFieldGI addresses a field of the beacon state for the given state
// tree depth.
func stateFieldGI(depth uint8, field uint64) gindex.GIndex {
	return gindex.New(1<<depth+field, depth)
}

// listElementGI descends from a list field's root to element 0: the left
// child holds the element subtree, the right child the mixed-in length.
func listElementGI(elementDepth uint8) (gindex.GIndex, error) {
	return gindex.Concat(gindex.New(2, 1), gindex.New(1<<elementDepth, elementDepth))
}

// firstValidatorGI returns the generalized index of validators[0] relative
// to the beacon block root, for the state layout in force at the slot.
func (v *Verifier) firstValidatorGI(slot phase0.Slot) (gindex.GIndex, error) {
	depth := v.stateTreeDepth(slot)

	inState, err := listElementGI(validatorRegistryDepth)
	if err != nil {
		return gindex.GIndex{}, err
	}
	fromState, err := gindex.Concat(stateFieldGI(depth, validatorsFieldIndex), inState)
	if err != nil {
		return gindex.GIndex{}, err
	}
	return gindex.Concat(stateRootGI(), fromState)
}

// firstHistoricalSummaryGI returns the generalized index of
// historical_summaries[0] relative to the beacon block root.
func (v *Verifier) firstHistoricalSummaryGI(slot phase0.Slot) (gindex.GIndex, error) {
	depth := v.stateTreeDepth(slot)

	inState, err := listElementGI(historicalSummariesDepth)
	if err != nil {
		return gindex.GIndex{}, err
	}
	fromState, err := gindex.Concat(stateFieldGI(depth, summariesFieldIndex), inState)
	if err != nil {
		return gindex.GIndex{}, err
	}
	return gindex.Concat(stateRootGI(), fromState)
}

// blockRootInSummaryGI addresses block_roots[rootIndex] relative to one
// historical summary: field 0 of the summary is the block-roots vector root.
func blockRootInSummaryGI(rootIndex uint64) (gindex.GIndex, error) {
	return gindex.Concat(
		gindex.New(2, 1),
		gindex.New(1<<blockRootsVectorDepth+rootIndex, blockRootsVectorDepth),
	)
}

// pubkeyWCParentGI addresses the node covering pubkey and
// withdrawal_credentials inside the validator container.
func pubkeyWCParentGI() gindex.GIndex {
	return gindex.New(4, 2)
}

// stateTreeDepth selects the layout in force at the witness slot. Selection
// uses the slot embedded in the witness, never wall-clock time: a witness
// from before the pivot proves against the shallower tree even if the pivot
// has since passed.
func (v *Verifier) stateTreeDepth(slot phase0.Slot) uint8 {
	if uint64(slot) < v.spec.PivotSlot {
		return prevStateTreeDepth
	}
	return currStateTreeDepth
}
