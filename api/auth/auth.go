// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth authenticates the caller of mutating requests.
//
// A request is signed by the caller over the genesis id, its method, its path,
// the caller's next nonce and the hash of its body. The nonce and the
// signature travel in the NonceHeader and SignatureHeader headers.
package auth

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/binary"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/dsa"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/token"
)

const (
	NonceHeader     = "x-stakeledger-nonce"
	SignatureHeader = "x-stakeledger-signature"

	maxBodySize = 1 << 20
)

// Nonces tracks the per caller nonces of signed requests.
type Nonces interface {
	GenesisID() common.Hash
	UseNonce(addr token.Address, nonce uint64) error
}

// SigningHash returns the hash a caller signs to authorize a request.
func SigningHash(genesisID common.Hash, method, path string, nonce uint64, body []byte) common.Hash {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return crypto.Keccak256Hash(
		genesisID[:],
		[]byte(method), []byte{0},
		[]byte(path), []byte{0},
		n[:],
		crypto.Keccak256(body),
	)
}

// Sign sets the headers authorizing req on behalf of the owner of key.
// The body of req is read and replaced.
func Sign(req *http.Request, genesisID common.Hash, nonce uint64, key *ecdsa.PrivateKey) error {
	body, err := readBody(req)
	if err != nil {
		return err
	}
	sig, err := dsa.Sign(SigningHash(genesisID, req.Method, req.URL.Path, nonce, body), key)
	if err != nil {
		return err
	}
	req.Header.Set(NonceHeader, strconv.FormatUint(nonce, 10))
	req.Header.Set(SignatureHeader, hexutil.Encode(sig))
	return nil
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
	req.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodySize {
		return nil, errors.New("body too large")
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// Authenticator checks signed requests and consumes their nonces.
type Authenticator struct {
	nonces Nonces
}

func New(nonces Nonces) *Authenticator {
	return &Authenticator{nonces}
}

// Caller returns the address in the route variable name once req is proven
// to be signed by it. Any failure to prove it is a forbidden error.
func (a *Authenticator) Caller(req *http.Request, name string) (token.Address, error) {
	claimed, err := utils.AddressVar(mux.Vars(req), name)
	if err != nil {
		return token.Address{}, err
	}
	if err := a.Authenticate(req, claimed); err != nil {
		return token.Address{}, err
	}
	return claimed, nil
}

// Authenticate verifies that req is signed by claimed with its current nonce,
// then consumes the nonce.
func (a *Authenticator) Authenticate(req *http.Request, claimed token.Address) error {
	rawNonce := req.Header.Get(NonceHeader)
	rawSig := req.Header.Get(SignatureHeader)
	if rawNonce == "" || rawSig == "" {
		return utils.Forbidden(errors.New("request not signed"))
	}
	nonce, err := strconv.ParseUint(rawNonce, 10, 64)
	if err != nil {
		return utils.Forbidden(errors.New("nonce: invalid"))
	}
	sig, err := hexutil.Decode(rawSig)
	if err != nil {
		return utils.Forbidden(errors.WithMessage(err, "signature"))
	}
	body, err := readBody(req)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	hash := SigningHash(a.nonces.GenesisID(), req.Method, req.URL.Path, nonce, body)
	signer, err := dsa.Signer(hash, sig)
	if err != nil {
		return utils.Forbidden(errors.WithMessage(err, "signature"))
	}
	if signer != claimed {
		return utils.Forbidden(errors.New("signature: signer is not the caller"))
	}
	if err := a.nonces.UseNonce(claimed, nonce); err != nil {
		if errors.Is(err, engine.ErrNonceMismatch) {
			return utils.Forbidden(errors.WithMessage(err, "nonce"))
		}
		return err
	}
	return nil
}
