// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/clock"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/token"
)

type MintRequest struct {
	To     *token.Address        `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type BurnRequest struct {
	From   *token.Address        `json:"from"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type AdvanceRequest struct {
	Seconds uint64 `json:"seconds"`
}

type ClockResponse struct {
	Now uint64 `json:"now"`
}

// solo exposes privileged ledger operations and time travel of a dev instance.
type solo struct {
	engine *engine.Engine
	clock  clock.Advancer
}

func newSolo(engine *engine.Engine, clock clock.Advancer) *solo {
	return &solo{engine, clock}
}

func (s *solo) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("to: required"))
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	if err := s.engine.Mint(*body.To, amount); err != nil {
		return err
	}
	logger.Info("minted", "to", body.To, "amount", amount)
	return utils.WriteJSON(w, utils.M{})
}

func (s *solo) handleBurn(w http.ResponseWriter, req *http.Request) error {
	var body BurnRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.From == nil {
		return utils.BadRequest(errors.New("from: required"))
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	if err := s.engine.Burn(*body.From, amount); err != nil {
		return err
	}
	logger.Info("burnt", "from", body.From, "amount", amount)
	return utils.WriteJSON(w, utils.M{})
}

func (s *solo) handleGetClock(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, ClockResponse{Now: s.engine.Now()})
}

func (s *solo) handleAdvanceClock(w http.ResponseWriter, req *http.Request) error {
	var body AdvanceRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	now, err := s.clock.Advance(body.Seconds)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "seconds"))
	}
	logger.Info("clock advanced", "seconds", body.Seconds, "now", now)
	return utils.WriteJSON(w, ClockResponse{Now: now})
}

func (s *solo) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /admin/mint").
		HandlerFunc(utils.WrapHandlerFunc(s.handleMint))
	sub.Path("/burn").
		Methods(http.MethodPost).
		Name("POST /admin/burn").
		HandlerFunc(utils.WrapHandlerFunc(s.handleBurn))
	if s.clock == nil {
		return
	}
	sub.Path("/clock").
		Methods(http.MethodGet).
		Name("GET /admin/clock").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetClock))
	sub.Path("/clock/advance").
		Methods(http.MethodPost).
		Name("POST /admin/clock/advance").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAdvanceClock))
}
