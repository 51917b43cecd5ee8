// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts holds the caller-recoverable failures of ledger and staking calls.
// A revert rejects the whole call; the reason text is part of the public contract.
package reverts

import (
	"errors"
)

// Kind classifies a revert.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidRecipient
	KindInsufficientBalance
	KindInsufficientAllowance
	KindExcessiveWithdrawal
	KindNoSuchStake
	KindInvalidAmount
)

var kindNames = [...]string{
	KindUnknown:               "Unknown",
	KindInvalidRecipient:      "InvalidRecipient",
	KindInsufficientBalance:   "InsufficientBalance",
	KindInsufficientAllowance: "InsufficientAllowance",
	KindExcessiveWithdrawal:   "ExcessiveWithdrawal",
	KindNoSuchStake:           "NoSuchStake",
	KindInvalidAmount:         "InvalidAmount",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Sentinels for errors.Is matching on the kind alone.
var (
	InvalidRecipient      = &ErrRevert{kind: KindInvalidRecipient}
	InsufficientBalance   = &ErrRevert{kind: KindInsufficientBalance}
	InsufficientAllowance = &ErrRevert{kind: KindInsufficientAllowance}
	ExcessiveWithdrawal   = &ErrRevert{kind: KindExcessiveWithdrawal}
	NoSuchStake           = &ErrRevert{kind: KindNoSuchStake}
	InvalidAmount         = &ErrRevert{kind: KindInvalidAmount}
)

type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind.String()
	}
	return e.message
}

// Kind returns the failure class.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Reason returns the human readable reason.
func (e *ErrRevert) Reason() string {
	return e.message
}

// Is reports kind equality, so any revert matches the sentinel of its kind.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	return t.kind == e.kind
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

// KindOf returns the kind of the revert wrapped in err, or KindUnknown.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return KindUnknown
}
