// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakelimit implements the stake admission token bucket. The
// available limit grows linearly per block and is capped at a maximum;
// submissions drain it. The whole state packs into one 32-byte storage
// word so the ledger can keep it at a single slot.
package stakelimit

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/undinefi/undine/undine"
)

var (
	ErrTooLargeLimit = errors.New("stakelimit: limit exceeds 96 bits")
	ErrLimitExceeded = errors.New("stakelimit: staking limit exceeded")
)

var maxUint96 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 96), big.NewInt(1))

// State is the unpacked stake-limit record.
//
// PrevStakeBlockNumber and PrevStakeLimit snapshot the bucket at the last
// mutation; the current limit is replayed from them. A zero MaxStakeLimit
// means staking is unlimited; pause is flagged out of band by the ledger.
type State struct {
	PrevStakeBlockNumber      uint32
	PrevStakeLimit            *big.Int // <= 96 bits
	MaxStakeLimitGrowthBlocks uint32
	MaxStakeLimit             *big.Int // <= 96 bits
}

// Pack lays the record out as
// | maxStakeLimit 96b | growthBlocks 32b | prevStakeLimit 96b | prevBlockNumber 32b |
// from the most significant end.
func (s *State) Pack() (undine.Bytes32, error) {
	if s.PrevStakeLimit.Cmp(maxUint96) > 0 || s.MaxStakeLimit.Cmp(maxUint96) > 0 {
		return undine.Bytes32{}, ErrTooLargeLimit
	}

	word := new(big.Int).Set(s.MaxStakeLimit)
	word.Lsh(word, 32).Or(word, big.NewInt(int64(s.MaxStakeLimitGrowthBlocks)))
	word.Lsh(word, 96).Or(word, s.PrevStakeLimit)
	word.Lsh(word, 32).Or(word, big.NewInt(int64(s.PrevStakeBlockNumber)))
	return undine.BytesToBytes32(word.Bytes()), nil
}

// Unpack reverses Pack.
func Unpack(word undine.Bytes32) *State {
	v := new(big.Int).SetBytes(word.Bytes())

	mask32 := big.NewInt(0xFFFFFFFF)

	s := &State{}
	s.PrevStakeBlockNumber = uint32(new(big.Int).And(v, mask32).Uint64())
	v.Rsh(v, 32)
	s.PrevStakeLimit = new(big.Int).And(v, maxUint96)
	v.Rsh(v, 96)
	s.MaxStakeLimitGrowthBlocks = uint32(new(big.Int).And(v, mask32).Uint64())
	v.Rsh(v, 32)
	s.MaxStakeLimit = new(big.Int).And(v, maxUint96)
	return s
}

// IsSet reports whether a limit is active at all.
func (s *State) IsSet() bool {
	return s.MaxStakeLimit.Sign() != 0
}

// CurrentLimit replays the bucket to the given block:
// min(maxLimit, prevLimit + elapsedBlocks*growthPerBlock).
func (s *State) CurrentLimit(blockNumber uint32) *big.Int {
	if !s.IsSet() {
		return new(big.Int).Set(maxUint96)
	}
	if s.MaxStakeLimitGrowthBlocks == 0 {
		return new(big.Int).Set(s.PrevStakeLimit)
	}

	if blockNumber < s.PrevStakeBlockNumber {
		// a query below the snapshot block must not wrap into a refill
		blockNumber = s.PrevStakeBlockNumber
	}
	elapsed := new(big.Int).SetUint64(uint64(blockNumber - s.PrevStakeBlockNumber))
	growthPerBlock := new(big.Int).Div(s.MaxStakeLimit, big.NewInt(int64(s.MaxStakeLimitGrowthBlocks)))

	limit := new(big.Int).Mul(elapsed, growthPerBlock)
	limit.Add(limit, s.PrevStakeLimit)
	if limit.Cmp(s.MaxStakeLimit) > 0 {
		limit.Set(s.MaxStakeLimit)
	}
	return limit
}

// Consume debits amount from the bucket at the given block, returning the
// updated record. ErrLimitExceeded leaves the record untouched.
func (s *State) Consume(blockNumber uint32, amount *big.Int) (*State, error) {
	limit := s.CurrentLimit(blockNumber)
	if amount.Cmp(limit) > 0 {
		return nil, errors.Wrapf(ErrLimitExceeded, "requested %s, available %s", amount, limit)
	}
	if !s.IsSet() {
		// unlimited, nothing to record
		return s, nil
	}

	next := *s
	next.PrevStakeBlockNumber = blockNumber
	next.PrevStakeLimit = new(big.Int).Sub(limit, amount)
	return &next, nil
}

// SetLimit installs a new maximum and growth schedule at the given block.
// The running limit is clipped to the new maximum but otherwise preserved,
// so raising the cap does not grant an instant refill.
func (s *State) SetLimit(blockNumber uint32, maxStakeLimit, growthPerBlock *big.Int) (*State, error) {
	if maxStakeLimit.Cmp(maxUint96) > 0 {
		return nil, ErrTooLargeLimit
	}
	if maxStakeLimit.Sign() != 0 && growthPerBlock.Sign() != 0 && maxStakeLimit.Cmp(growthPerBlock) < 0 {
		return nil, errors.Wrap(ErrTooLargeLimit, "growth per block exceeds max limit")
	}

	next := *s
	next.MaxStakeLimit = new(big.Int).Set(maxStakeLimit)
	if growthPerBlock.Sign() == 0 {
		next.MaxStakeLimitGrowthBlocks = 0
	} else {
		next.MaxStakeLimitGrowthBlocks = uint32(new(big.Int).Div(maxStakeLimit, growthPerBlock).Uint64())
	}

	prev := s.CurrentLimit(blockNumber)
	if prev.Cmp(maxStakeLimit) > 0 {
		prev.Set(maxStakeLimit)
	}
	next.PrevStakeLimit = prev
	next.PrevStakeBlockNumber = blockNumber
	return &next, nil
}
