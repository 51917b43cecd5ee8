// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("address: invalid length")), http.StatusBadRequest, "address: invalid length\n"},
		{"not found", NotFound(errors.New("missing")), http.StatusNotFound, "missing\n"},
		{"not initialized", errors.WithMessage(engine.ErrNotInitialized, "transfer"), http.StatusServiceUnavailable, ""},
		{"internal", errors.New("disk failure"), http.StatusInternalServerError, "disk failure\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestWrapHandlerFuncRevert(t *testing.T) {
	rec := httptest.NewRecorder()
	revert := reverts.New(reverts.KindInsufficientBalance, "The amount of Tokens to be transferred exceeds balance.")
	WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
		return errors.WithMessage(revert, "transfer")
	})(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))

	var res RevertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "InsufficientBalance", res.Kind)
	assert.Equal(t, "The amount of Tokens to be transferred exceeds balance.", res.Reason)
}

func TestParseJSON(t *testing.T) {
	var body struct {
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"amount":"0x64"}`), &body))
	amount, err := Amount(body.Amount, "amount")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), amount.Uint64())

	require.NoError(t, ParseJSON(strings.NewReader(`{"amount":"100"}`), &body))
	amount, err = Amount(body.Amount, "amount")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), amount.Uint64())

	assert.Error(t, ParseJSON(strings.NewReader(`{"amount":"1","extra":true}`), &body))
}

func TestAmount(t *testing.T) {
	_, err := Amount(nil, "amount")
	assert.EqualError(t, err, "amount: required")

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = Amount((*math.HexOrDecimal256)(tooBig), "amount")
	assert.EqualError(t, err, "amount: out of range")

	_, err = Amount((*math.HexOrDecimal256)(big.NewInt(-1)), "amount")
	assert.Error(t, err)

	out, err := json.Marshal(FromAmount(uint256.NewInt(255)))
	require.NoError(t, err)
	assert.Equal(t, `"0xff"`, string(out))

	out, err = json.Marshal(FromAmount(nil))
	require.NoError(t, err)
	assert.Equal(t, `"0x0"`, string(out))
}

func TestPathVars(t *testing.T) {
	vars := map[string]string{"address": "0x435933c8064b4ae76be665428e0307ef2ccfbd68", "position": "2", "bad": "x"}

	addr, err := AddressVar(vars, "address")
	require.NoError(t, err)
	assert.Equal(t, "0x435933c8064b4ae76be665428e0307ef2ccfbd68", addr.String())

	_, err = AddressVar(vars, "bad")
	assert.Error(t, err)

	n, err := Uint64Var(vars, "position")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	_, err = Uint64Var(vars, "bad")
	assert.Error(t, err)
}
