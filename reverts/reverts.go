// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is an error raised by a guard in a protocol entry point. The
// whole call aborts with no partial state change observable. Reverts are
// never retried internally, the caller decides whether to resubmit.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Authorization guards. Always the first check of a privileged entry point.
var (
	ErrAuthFailed = New("APP_AUTH_FAILED")
)

// Input and limit guards. Recoverable by the caller adjusting input or
// waiting for rate-limit replenishment.
var (
	ErrZeroDeposit           = New("ZERO_DEPOSIT")
	ErrStakingPaused         = New("STAKING_PAUSED")
	ErrStakeLimit            = New("STAKE_LIMIT")
	ErrExtSharesTooSmall     = New("EXT_SHARES_TOO_SMALL")
	ErrCanNotDeposit         = New("CAN_NOT_DEPOSIT")
	ErrExtBalanceLimit       = New("EXTERNAL_BALANCE_LIMIT_EXCEEDED")
	ErrZeroAddress           = New("ZERO_ADDRESS")
	ErrZeroAmount            = New("ZERO_AMOUNT_OF_SHARES")
	ErrTooLargeLimit         = New("TOO_LARGE_LIMIT")
	ErrTooLargeLimitIncrease = New("TOO_LARGE_LIMIT_INCREASE")
	ErrTooSmallLimitIncrease = New("TOO_SMALL_LIMIT_INCREASE")
	ErrNotEnoughUnlocked     = New("NOT_ENOUGH_UNLOCKED_BOND")
)

// Validator lifecycle guards.
var (
	ErrPubkeyNotNew     = New("PUBKEY_NOT_NEW")
	ErrNotAwaitingProof = New("VALIDATOR_NOT_AWAITING_PROOF")
	ErrNotDisproven     = New("VALIDATOR_NOT_DISPROVEN")
	ErrWCMismatch       = New("WITHDRAWAL_CREDENTIALS_MISMATCH")
)

// ErrAssert is an invariant breach that should be unreachable under correct
// operation. Distinguished from ErrRevert so callers never treat it as a
// recoverable guard.
type ErrAssert struct {
	message string
}

func NewAssert(message string) *ErrAssert {
	return &ErrAssert{
		message: message,
	}
}

func (e *ErrAssert) Error() string {
	return e.message
}

func IsAssertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ae *ErrAssert
	return errors.As(e, &ae)
}
