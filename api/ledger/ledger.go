// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger exposes the pool's accounting views over HTTP. All
// endpoints are read-only; mutation only happens through protocol entry
// points.
package ledger

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/undinefi/undine/api/utils"
	"github.com/undinefi/undine/pool"
	"github.com/undinefi/undine/undine"
)

type Ledger struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Ledger {
	return &Ledger{pool: p}
}

func (l *Ledger) handleGetSupply(w http.ResponseWriter, _ *http.Request) error {
	total, err := l.pool.GetTotalPooledEther()
	if err != nil {
		return err
	}
	shares, err := l.pool.GetTotalShares()
	if err != nil {
		return err
	}
	buffered, err := l.pool.GetBufferedEther()
	if err != nil {
		return err
	}
	extEther, err := l.pool.GetExternalEther()
	if err != nil {
		return err
	}
	extShares, err := l.pool.GetExternalShares()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Supply{
		TotalPooledEther: dec(total),
		TotalShares:      dec(shares),
		BufferedEther:    dec(buffered),
		ExternalEther:    dec(extEther),
		ExternalShares:   dec(extShares),
	})
}

func (l *Ledger) handleGetBeaconStat(w http.ResponseWriter, _ *http.Request) error {
	stat, err := l.pool.GetBeaconStat()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &BeaconStat{
		DepositedValidators: stat.DepositedValidators,
		BeaconValidators:    stat.BeaconValidators,
		BeaconBalance:       dec(stat.BeaconBalance),
	})
}

func (l *Ledger) handleGetStakeLimit(w http.ResponseWriter, req *http.Request) error {
	block, err := strconv.ParseUint(req.URL.Query().Get("block"), 10, 32)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "block"))
	}
	info, err := l.pool.GetStakeLimitFullInfo(uint32(block))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStakeLimit(info))
}

func (l *Ledger) handleGetShares(w http.ResponseWriter, req *http.Request) error {
	addr, err := undine.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	shares, err := l.pool.SharesOf(*addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &AccountShares{
		Address: addr.String(),
		Shares:  dec(shares),
	})
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("ledger_get_supply").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetSupply))
	sub.Path("/beacon-stat").
		Methods(http.MethodGet).
		Name("ledger_get_beacon_stat").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetBeaconStat))
	sub.Path("/stake-limit").
		Methods(http.MethodGet).
		Name("ledger_get_stake_limit").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetStakeLimit))
	sub.Path("/shares/{address}").
		Methods(http.MethodGet).
		Name("ledger_get_shares").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetShares))
}
