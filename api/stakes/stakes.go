// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/auth"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/engine"
)

type Stakes struct {
	engine *engine.Engine
	auth   *auth.Authenticator
}

func New(engine *engine.Engine) *Stakes {
	return &Stakes{engine, auth.New(engine)}
}

func (s *Stakes) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(mux.Vars(req), "address")
	if err != nil {
		return err
	}
	summary, err := s.engine.HasStake(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSummary(summary))
}

func (s *Stakes) handleStake(w http.ResponseWriter, req *http.Request) error {
	caller, err := s.auth.Caller(req, "address")
	if err != nil {
		return err
	}
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	position, err := s.engine.Stake(caller, amount)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &StakeResult{Position: position})
}

func (s *Stakes) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	position, err := utils.Uint64Var(mux.Vars(req), "position")
	if err != nil {
		return err
	}
	caller, err := s.auth.Caller(req, "address")
	if err != nil {
		return err
	}
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	reward, err := s.engine.WithdrawStake(caller, amount, position)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &WithdrawResult{Reward: utils.FromAmount(reward)})
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStakes))
	sub.Path("/{address}").
		Methods(http.MethodPost).
		Name("POST /stakes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/{address}/{position}/withdraw").
		Methods(http.MethodPost).
		Name("POST /stakes/{address}/{position}/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(s.handleWithdraw))
}
