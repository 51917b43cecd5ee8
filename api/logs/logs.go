// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{
		db,
		logsLimit,
	}
}

// prepare validates the common parts of a filter and fills the default paging.
// The default limit is one above the configured limit so that overflowing results are detected.
func (l *Logs) prepare(rng *Range, options *Options, order logdb.Order) (*logdb.Range, *logdb.Options, logdb.Order, error) {
	if options != nil && options.Limit > l.limit {
		return nil, nil, "", utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	if options != nil && options.Offset > math.MaxInt64 {
		return nil, nil, "", utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	r, err := ConvertRange(rng)
	if err != nil {
		return nil, nil, "", utils.BadRequest(err)
	}
	o, err := convertOrder(order)
	if err != nil {
		return nil, nil, "", utils.BadRequest(err)
	}
	opts := &logdb.Options{Limit: l.limit + 1}
	if options != nil {
		opts = &logdb.Options{Offset: options.Offset, Limit: options.Limit}
	}
	return r, opts, o, nil
}

func (l *Logs) checkSize(n int) error {
	if n > int(l.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	return nil
}

func (l *Logs) handleFilterTransferLogs(w http.ResponseWriter, req *http.Request) error {
	var filter TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	// reject null element in CriteriaSet, {} matches everything
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	rng, opts, order, err := l.prepare(filter.Range, filter.Options, filter.Order)
	if err != nil {
		return err
	}
	transfers, err := l.db.FilterTransfers(req.Context(), &logdb.TransferFilter{
		CriteriaSet: filter.CriteriaSet,
		Range:       rng,
		Options:     opts,
		Order:       order,
	})
	if err != nil {
		return err
	}
	if err := l.checkSize(len(transfers)); err != nil {
		return err
	}
	out := make([]*FilteredTransfer, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, ConvertTransfer(t))
	}
	return utils.WriteJSON(w, out)
}

func (l *Logs) handleFilterApprovalLogs(w http.ResponseWriter, req *http.Request) error {
	var filter ApprovalFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	rng, opts, order, err := l.prepare(filter.Range, filter.Options, filter.Order)
	if err != nil {
		return err
	}
	approvals, err := l.db.FilterApprovals(req.Context(), &logdb.ApprovalFilter{
		Owner:   filter.Owner,
		Spender: filter.Spender,
		Range:   rng,
		Options: opts,
		Order:   order,
	})
	if err != nil {
		return err
	}
	if err := l.checkSize(len(approvals)); err != nil {
		return err
	}
	out := make([]*FilteredApproval, 0, len(approvals))
	for _, a := range approvals {
		out = append(out, ConvertApproval(a))
	}
	return utils.WriteJSON(w, out)
}

func (l *Logs) handleFilterStakeLogs(w http.ResponseWriter, req *http.Request) error {
	var filter StakeFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	switch filter.Action {
	case "", logdb.Staked, logdb.Unstaked:
	default:
		return utils.BadRequest(fmt.Errorf("action: unsupported %q", filter.Action))
	}
	rng, opts, order, err := l.prepare(filter.Range, filter.Options, filter.Order)
	if err != nil {
		return err
	}
	stakes, err := l.db.FilterStakes(req.Context(), &logdb.StakeFilter{
		Staker:  filter.Staker,
		Action:  filter.Action,
		Range:   rng,
		Options: opts,
		Order:   order,
	})
	if err != nil {
		return err
	}
	if err := l.checkSize(len(stakes)); err != nil {
		return err
	}
	out := make([]*FilteredStake, 0, len(stakes))
	for _, s := range stakes {
		out = append(out, ConvertStake(s))
	}
	return utils.WriteJSON(w, out)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /logs/transfer").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterTransferLogs))
	sub.Path("/approval").
		Methods(http.MethodPost).
		Name("POST /logs/approval").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterApprovalLogs))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /logs/stake").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterStakeLogs))
}
