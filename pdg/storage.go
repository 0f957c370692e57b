// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pdg

import (
	"github.com/undinefi/undine/record"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

var (
	slotStatuses = nameToSlot("validator-statuses")
	slotBonds    = nameToSlot("node-operator-bonds")
)

func nameToSlot(name string) undine.Bytes32 {
	return undine.BytesToBytes32([]byte("pdg." + name))
}

// storage keys validator statuses by the hash of the pubkey and bonds by
// the node operator address.
type storage struct {
	context *record.Context

	statuses *record.Mapping[undine.Bytes32, *ValidatorStatus]
	bonds    *record.Mapping[undine.Address, *Bond]
}

func newStorage(addr undine.Address, st *state.State) *storage {
	context := record.NewContext(addr, st)
	return &storage{
		context:  context,
		statuses: record.NewMapping[undine.Bytes32, *ValidatorStatus](context, slotStatuses),
		bonds:    record.NewMapping[undine.Address, *Bond](context, slotBonds),
	}
}

func pubkeyID(pubkey [48]byte) undine.Bytes32 {
	return undine.Blake2b(pubkey[:])
}

// statusOf returns the lifecycle record of the pubkey; StageNone for an
// unseen one.
func (s *storage) statusOf(pubkey [48]byte) (*ValidatorStatus, error) {
	status, err := s.statuses.Get(pubkeyID(pubkey))
	if err != nil {
		return nil, err
	}
	if status == nil {
		return &ValidatorStatus{Stage: StageNone}, nil
	}
	return status, nil
}

func (s *storage) setStatus(pubkey [48]byte, status *ValidatorStatus) error {
	return s.statuses.Set(pubkeyID(pubkey), status)
}

// bondOf returns the operator's bond, a zero bond if none exists yet.
func (s *storage) bondOf(operator undine.Address) (*Bond, error) {
	bond, err := s.bonds.Get(operator)
	if err != nil {
		return nil, err
	}
	if bond == nil {
		return newBond(), nil
	}
	return bond, nil
}

func (s *storage) setBond(operator undine.Address, bond *Bond) error {
	return s.bonds.Set(operator, bond)
}
