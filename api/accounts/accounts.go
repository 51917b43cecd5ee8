// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/auth"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/engine"
	"github.com/vechain/stakeledger/token"
)

type Accounts struct {
	engine *engine.Engine
	auth   *auth.Authenticator
}

func New(engine *engine.Engine) *Accounts {
	return &Accounts{
		engine,
		auth.New(engine),
	}
}

func (a *Accounts) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	info, err := a.engine.TokenInfo()
	if err != nil {
		return err
	}
	supply, err := a.engine.TotalSupply()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Token{
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: utils.FromAmount(supply),
		GenesisID:   a.engine.GenesisID(),
	})
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(mux.Vars(req), "address")
	if err != nil {
		return err
	}
	bal, err := a.engine.BalanceOf(addr)
	if err != nil {
		return err
	}
	nonce, err := a.engine.Nonce(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{
		Balance: utils.FromAmount(bal),
		Nonce:   nonce,
	})
}

func (a *Accounts) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	owner, err := utils.AddressVar(vars, "address")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(vars, "spender")
	if err != nil {
		return err
	}
	allowance, err := a.engine.Allowance(owner, spender)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{
		Owner:     owner,
		Spender:   spender,
		Allowance: utils.FromAmount(allowance),
	})
}

func requireAddress(addr *token.Address, name string) (token.Address, error) {
	if addr == nil {
		return token.Address{}, utils.BadRequest(errors.Errorf("%s: required", name))
	}
	return *addr, nil
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.auth.Caller(req, "address")
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	to, err := requireAddress(body.To, "to")
	if err != nil {
		return err
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	if err := a.engine.Transfer(caller, to, amount); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (a *Accounts) handleApprove(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.auth.Caller(req, "address")
	if err != nil {
		return err
	}
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	spender, err := requireAddress(body.Spender, "spender")
	if err != nil {
		return err
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	if err := a.engine.Approve(caller, spender, amount); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (a *Accounts) handleTransferFrom(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.auth.Caller(req, "address")
	if err != nil {
		return err
	}
	var body TransferFromRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	owner, err := requireAddress(body.Owner, "owner")
	if err != nil {
		return err
	}
	to, err := requireAddress(body.To, "to")
	if err != nil {
		return err
	}
	amount, err := utils.Amount(body.Amount, "amount")
	if err != nil {
		return err
	}
	if err := a.engine.TransferFrom(caller, owner, to, amount); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

// MountToken mounts the token description at path.
func (a *Accounts) MountToken(root *mux.Router, path string) {
	root.Path(path).
		Methods(http.MethodGet).
		Name("GET /token").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetToken))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/allowances/{spender}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}/allowances/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAllowance))
	sub.Path("/{address}/transfers").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}/transfers").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/{address}/approvals").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}/approvals").
		HandlerFunc(utils.WrapHandlerFunc(a.handleApprove))
	sub.Path("/{address}/delegated-transfers").
		Methods(http.MethodPost).
		Name("POST /accounts/{address}/delegated-transfers").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransferFrom))
}
