// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dsa signs message hashes and recovers their signers.
package dsa

import (
	"crypto/ecdsa"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/token"
)

// SignatureLength is the length of [R || S || V] signatures.
const SignatureLength = crypto.SignatureLength

var (
	errSignatureLength = errors.New("dsa: invalid signature length")
	errRecoveryID      = errors.New("dsa: invalid recovery id")
	errNotCanonical    = errors.New("dsa: signature not canonical")
)

// checkCanonical accepts only R, S in [1, N) with S in the lower half of the order,
// so that every message has a single valid signature per key.
func checkCanonical(sig []byte) error {
	if len(sig) != SignatureLength {
		return errSignatureLength
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return errRecoveryID
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return errNotCanonical
	}
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() || s.IsOverHalfOrder() {
		return errNotCanonical
	}
	return nil
}

// Signer extracts signer.
func Signer(msgHash common.Hash, sig []byte) (token.Address, error) {
	if err := checkCanonical(sig); err != nil {
		return token.Address{}, err
	}
	pub, err := crypto.SigToPub(msgHash[:], sig)
	if err != nil {
		return token.Address{}, err
	}
	return token.Address(crypto.PubkeyToAddress(*pub)), nil
}

// Sign signs msgHash with key.
func Sign(msgHash common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(msgHash[:], key)
}
