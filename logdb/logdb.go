// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb keeps the history of committed notifications in sqlite
// and answers filtered queries over it.
package logdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/events"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

var _ events.Emitter = (*LogDB)(nil)

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory database lives in a single connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(transferTableSchema + approvalTableSchema + stakeTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// NewestSeq returns the highest call sequence stored, 0 if empty.
func (db *LogDB) NewestSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	err := db.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM (
		SELECT MAX(seq) AS seq FROM transfer
		UNION ALL SELECT MAX(seq) FROM approval
		UNION ALL SELECT MAX(seq) FROM stake)`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// Emit stores the records of committed calls in one transaction.
func (db *LogDB) Emit(records []*events.Record) error {
	if len(records) == 0 {
		return nil
	}
	return db.execInTx(func(tx *sql.Tx) error {
		for _, r := range records {
			if err := insertRecord(tx, r); err != nil {
				return errors.WithMessagef(err, "insert record seq=%d index=%d", r.Seq, r.Index)
			}
		}
		return nil
	})
}

func insertRecord(tx *sql.Tx, r *events.Record) error {
	var err error
	switch ev := r.Event.(type) {
	case *events.Transfer:
		_, err = tx.Exec("INSERT OR REPLACE INTO transfer(seq, eventIndex, time, sender, recipient, amount) VALUES (?, ?, ?, ?, ?, ?);",
			r.Seq,
			r.Index,
			r.Time,
			ev.From.Bytes(),
			ev.To.Bytes(),
			amountValue(ev.Amount),
		)
	case *events.Approval:
		_, err = tx.Exec("INSERT OR REPLACE INTO approval(seq, eventIndex, time, owner, spender, amount) VALUES (?, ?, ?, ?, ?, ?);",
			r.Seq,
			r.Index,
			r.Time,
			ev.Owner.Bytes(),
			ev.Spender.Bytes(),
			amountValue(ev.Amount),
		)
	case *events.Staked:
		_, err = tx.Exec("INSERT OR REPLACE INTO stake(seq, eventIndex, time, action, staker, amount, reward, position, stakeholderIndex, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
			r.Seq,
			r.Index,
			r.Time,
			string(Staked),
			ev.Staker.Bytes(),
			amountValue(ev.Amount),
			amountValue(nil),
			ev.Position,
			ev.Index,
			ev.Timestamp,
		)
	case *events.Unstaked:
		_, err = tx.Exec("INSERT OR REPLACE INTO stake(seq, eventIndex, time, action, staker, amount, reward, position, stakeholderIndex, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
			r.Seq,
			r.Index,
			r.Time,
			string(Unstaked),
			ev.Staker.Bytes(),
			amountValue(ev.Amount),
			amountValue(ev.Reward),
			ev.Position,
			0,
			ev.Timestamp,
		)
	default:
		logger.Debug("skip unknown event", "type", r.Event.EventType())
		return nil
	}
	if err == nil {
		metricEmitted().AddWithLabel(1, map[string]string{"type": r.Event.EventType()})
	}
	return err
}

func amountValue(v *uint256.Int) []byte {
	var b [32]byte
	if v != nil {
		b = v.Bytes32()
	}
	return b[:]
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// appendRange adds the range condition on seq or time.
func appendRange(stmt string, args []any, r *Range) (string, []any) {
	if r == nil {
		return stmt, args
	}
	condition := "seq"
	if r.Unit == Time {
		condition = "time"
	}
	args = append(args, r.From)
	stmt += " AND " + condition + " >= ? "
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND " + condition + " <= ? "
	}
	return stmt, args
}

func appendOrderAndLimit(stmt string, args []any, order Order, options *Options) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY seq DESC,eventIndex DESC "
	} else {
		stmt += " ORDER BY seq ASC,eventIndex ASC "
	}
	if options != nil {
		stmt += " limit ?, ? "
		args = append(args, options.Offset, options.Limit)
	}
	return stmt, args
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	const query = "SELECT seq, eventIndex, time, sender, recipient, amount FROM transfer"
	if filter == nil {
		return db.queryTransfers(ctx, query+" ORDER BY seq ASC,eventIndex ASC")
	}
	observeFilter("transfer", filter.Options, filter.Order, len(filter.CriteriaSet))

	var args []any
	stmt, args := appendRange(query+" WHERE 1", args, filter.Range)
	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1 "
		} else {
			stmt += " OR ( 1 "
		}
		if criteria.Sender != nil {
			args = append(args, criteria.Sender.Bytes())
			stmt += " AND sender = ? "
		}
		if criteria.Recipient != nil {
			args = append(args, criteria.Recipient.Bytes())
			stmt += " AND recipient = ? "
		}
		if i == length-1 {
			stmt += " )) "
		} else {
			stmt += " ) "
		}
	}
	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) FilterApprovals(ctx context.Context, filter *ApprovalFilter) ([]*Approval, error) {
	const query = "SELECT seq, eventIndex, time, owner, spender, amount FROM approval"
	if filter == nil {
		return db.queryApprovals(ctx, query+" ORDER BY seq ASC,eventIndex ASC")
	}
	observeFilter("approval", filter.Options, filter.Order, 1)

	var args []any
	stmt, args := appendRange(query+" WHERE 1", args, filter.Range)
	if filter.Owner != nil {
		args = append(args, filter.Owner.Bytes())
		stmt += " AND owner = ? "
	}
	if filter.Spender != nil {
		args = append(args, filter.Spender.Bytes())
		stmt += " AND spender = ? "
	}
	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryApprovals(ctx, stmt, args...)
}

func (db *LogDB) FilterStakes(ctx context.Context, filter *StakeFilter) ([]*StakeLog, error) {
	const query = "SELECT seq, eventIndex, time, action, staker, amount, reward, position, stakeholderIndex, timestamp FROM stake"
	if filter == nil {
		return db.queryStakes(ctx, query+" ORDER BY seq ASC,eventIndex ASC")
	}
	observeFilter("stake", filter.Options, filter.Order, 1)

	var args []any
	stmt, args := appendRange(query+" WHERE 1", args, filter.Range)
	if filter.Staker != nil {
		args = append(args, filter.Staker.Bytes())
		stmt += " AND staker = ? "
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		stmt += " AND action = ? "
	}
	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryStakes(ctx, stmt, args...)
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	defer observeQuery("transfer", time.Now())

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			trans     Transfer
			sender    []byte
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(
			&trans.Seq,
			&trans.Index,
			&trans.Time,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		trans.Sender = token.BytesToAddress(sender)
		trans.Recipient = token.BytesToAddress(recipient)
		trans.Amount = new(uint256.Int).SetBytes(amount)
		transfers = append(transfers, &trans)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func (db *LogDB) queryApprovals(ctx context.Context, stmt string, args ...any) ([]*Approval, error) {
	defer observeQuery("approval", time.Now())

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []*Approval
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			appr    Approval
			owner   []byte
			spender []byte
			amount  []byte
		)
		if err := rows.Scan(
			&appr.Seq,
			&appr.Index,
			&appr.Time,
			&owner,
			&spender,
			&amount,
		); err != nil {
			return nil, err
		}
		appr.Owner = token.BytesToAddress(owner)
		appr.Spender = token.BytesToAddress(spender)
		appr.Amount = new(uint256.Int).SetBytes(amount)
		approvals = append(approvals, &appr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return approvals, nil
}

func (db *LogDB) queryStakes(ctx context.Context, stmt string, args ...any) ([]*StakeLog, error) {
	defer observeQuery("stake", time.Now())

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stakes []*StakeLog
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			sl     StakeLog
			action string
			staker []byte
			amount []byte
			reward []byte
		)
		if err := rows.Scan(
			&sl.Seq,
			&sl.Index,
			&sl.Time,
			&action,
			&staker,
			&amount,
			&reward,
			&sl.Position,
			&sl.StakeholderIndex,
			&sl.Timestamp,
		); err != nil {
			return nil, err
		}
		sl.Action = StakeAction(action)
		sl.Staker = token.BytesToAddress(staker)
		sl.Amount = new(uint256.Int).SetBytes(amount)
		sl.Reward = new(uint256.Int).SetBytes(reward)
		stakes = append(stakes, &sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stakes, nil
}
