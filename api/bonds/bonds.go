// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bonds exposes node-operator bond balances and validator
// lifecycle records over HTTP.
package bonds

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/undinefi/undine/api/utils"
	"github.com/undinefi/undine/pdg"
	"github.com/undinefi/undine/undine"
)

type Bond struct {
	Total    string `json:"total"`
	Locked   string `json:"locked"`
	Unlocked string `json:"unlocked"`
}

type ValidatorStatus struct {
	Stage        string `json:"stage"`
	StakingVault string `json:"stakingVault"`
	NodeOperator string `json:"nodeOperator"`
}

type Bonds struct {
	guarantee *pdg.Guarantee
}

func New(g *pdg.Guarantee) *Bonds {
	return &Bonds{guarantee: g}
}

func parsePubkey(s string) ([48]byte, error) {
	var pubkey [48]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return pubkey, err
	}
	if len(raw) != len(pubkey) {
		return pubkey, errors.New("pubkey must be 48 bytes")
	}
	copy(pubkey[:], raw)
	return pubkey, nil
}

func (b *Bonds) handleGetBond(w http.ResponseWriter, req *http.Request) error {
	operator, err := undine.ParseAddress(mux.Vars(req)["operator"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "operator"))
	}
	bond, err := b.guarantee.BondOf(*operator)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Bond{
		Total:    bond.Total.String(),
		Locked:   bond.Locked.String(),
		Unlocked: bond.Unlocked().String(),
	})
}

func (b *Bonds) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	pubkey, err := parsePubkey(mux.Vars(req)["pubkey"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pubkey"))
	}
	status, err := b.guarantee.StatusOf(pubkey)
	if err != nil {
		return err
	}
	if status.Stage == pdg.StageNone {
		return utils.NotFound(errors.New("pubkey not known"))
	}
	return utils.WriteJSON(w, &ValidatorStatus{
		Stage:        status.Stage.String(),
		StakingVault: status.StakingVault.String(),
		NodeOperator: status.NodeOperator.String(),
	})
}

func (b *Bonds) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/operators/{operator}").
		Methods(http.MethodGet).
		Name("bonds_get_operator").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBond))
	sub.Path("/validators/{pubkey}").
		Methods(http.MethodGet).
		Name("bonds_get_validator").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetValidator))
}
