// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/undinefi/undine/pool/stakelimit"
	"github.com/undinefi/undine/record"
	"github.com/undinefi/undine/state"
	"github.com/undinefi/undine/undine"
)

var (
	slotBufferedEther       = nameToSlot("buffered-ether")
	slotClBalance           = nameToSlot("cl-balance")
	slotDepositedValidators = nameToSlot("deposited-validators")
	slotClValidators        = nameToSlot("cl-validators")
	slotTotalShares         = nameToSlot("total-shares")
	slotExternalShares      = nameToSlot("external-shares")
	slotMaxExternalRatioBP  = nameToSlot("max-external-ratio-bp")
	slotStakeLimit          = nameToSlot("stake-limit")
	slotStakingPaused       = nameToSlot("staking-paused")
	slotProtocolStopped     = nameToSlot("protocol-stopped")
	// authorized callers
	slotAdmin          = nameToSlot("admin")
	slotAccountingRole = nameToSlot("accounting-caller")
	slotDepositRole    = nameToSlot("deposit-security-caller")
	slotExternalRole   = nameToSlot("external-minter-caller")
	// per-account share balances
	slotShares = nameToSlot("shares")
)

func nameToSlot(name string) undine.Bytes32 {
	return undine.BytesToBytes32([]byte("pool." + name))
}

// storage is the root storage of the pool ledger. Every field lives at a
// fixed name-derived slot, per-account shares at content-addressed slots
// under slotShares, so the layout survives logic upgrades.
type storage struct {
	context *record.Context

	bufferedEther       *record.Uint256
	clBalance           *record.Uint256
	depositedValidators *record.Uint256
	clValidators        *record.Uint256
	totalShares         *record.Uint256
	externalShares      *record.Uint256
	maxExternalRatioBP  *record.Uint256
	stakeLimit          *record.Bytes32
	stakingPaused       *record.Uint256
	protocolStopped     *record.Uint256

	admin          *record.Address
	accountingRole *record.Address
	depositRole    *record.Address
	externalRole   *record.Address

	shares *record.Mapping[undine.Address, *big.Int]
}

func newStorage(addr undine.Address, st *state.State) *storage {
	context := record.NewContext(addr, st)
	return &storage{
		context: context,

		bufferedEther:       record.NewUint256(context, slotBufferedEther),
		clBalance:           record.NewUint256(context, slotClBalance),
		depositedValidators: record.NewUint256(context, slotDepositedValidators),
		clValidators:        record.NewUint256(context, slotClValidators),
		totalShares:         record.NewUint256(context, slotTotalShares),
		externalShares:      record.NewUint256(context, slotExternalShares),
		maxExternalRatioBP:  record.NewUint256(context, slotMaxExternalRatioBP),
		stakeLimit:          record.NewBytes32(context, slotStakeLimit),
		stakingPaused:       record.NewUint256(context, slotStakingPaused),
		protocolStopped:     record.NewUint256(context, slotProtocolStopped),

		admin:          record.NewAddress(context, slotAdmin),
		accountingRole: record.NewAddress(context, slotAccountingRole),
		depositRole:    record.NewAddress(context, slotDepositRole),
		externalRole:   record.NewAddress(context, slotExternalRole),

		shares: record.NewMapping[undine.Address, *big.Int](context, slotShares),
	}
}

func (s *storage) getStakeLimit() (*stakelimit.State, error) {
	word, err := s.stakeLimit.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake limit")
	}
	return stakelimit.Unpack(word), nil
}

func (s *storage) setStakeLimit(limit *stakelimit.State) error {
	word, err := limit.Pack()
	if err != nil {
		return errors.Wrap(err, "failed to pack stake limit")
	}
	s.stakeLimit.Set(&word)
	return nil
}

func (s *storage) getFlag(flag *record.Uint256) (bool, error) {
	v, err := flag.Get()
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

func (s *storage) setFlag(flag *record.Uint256, on bool) {
	v := big.NewInt(0)
	if on {
		v = big.NewInt(1)
	}
	flag.Set(v)
}

func (s *storage) sharesOf(account undine.Address) (*big.Int, error) {
	v, err := s.shares.Get(account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get shares")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}
