// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api/logs"
	"github.com/vechain/stakeledger/logdb"
)

type dumpedTransfer struct {
	Kind string `json:"kind"`
	*logs.FilteredTransfer
}

type dumpedApproval struct {
	Kind string `json:"kind"`
	*logs.FilteredApproval
}

type dumpedStake struct {
	Kind string `json:"kind"`
	*logs.FilteredStake
}

func dumpLogsAction(ctx *cli.Context) error {
	initLogger(ctx)

	gene := selectGenesis(ctx)
	instanceDir := filepath.Join(makeDataDir(ctx), instanceDirName(gene))
	if _, err := os.Stat(filepath.Join(instanceDir, "logs.db")); err != nil {
		return errors.Wrap(err, "log database")
	}
	logDB := openLogDB(instanceDir)
	defer logDB.Close()

	var out io.Writer = os.Stdout
	if path := ctx.String(outputFlag.Name); path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		out = f
	}

	exitSignal := handleExitSignal()
	newest, err := logDB.NewestSeq(exitSignal)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, ">> Dumping logs <<")
	bar := pb.New64(int64(newest)).
		SetMaxWidth(90)
	bar.Output = os.Stderr
	bar.Start()
	defer func() { bar.NotPrint = true }()

	w := bufio.NewWriter(out)
	n, err := dumpLogs(exitSignal, logDB, w, ctx.Uint64(pageSizeFlag.Name), func(seq uint64) {
		bar.Set64(int64(seq))
	})
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	bar.Finish()
	logger.Info("logs dumped", "count", n)
	return nil
}

// dumpLogs writes every stored notification as one JSON object per line, transfers first,
// then approvals, then stake actions. progress receives the sequence of the last written row.
func dumpLogs(ctx context.Context, logDB *logdb.LogDB, w io.Writer, pageSize uint64, progress func(seq uint64)) (int, error) {
	if pageSize == 0 {
		return 0, errors.New("page size must be positive")
	}
	enc := json.NewEncoder(w)
	total := 0

	for offset := uint64(0); ; offset += pageSize {
		page, err := logDB.FilterTransfers(ctx, &logdb.TransferFilter{
			Options: &logdb.Options{Offset: offset, Limit: pageSize},
			Order:   logdb.ASC,
		})
		if err != nil {
			return total, err
		}
		for _, t := range page {
			if err := enc.Encode(&dumpedTransfer{"transfer", logs.ConvertTransfer(t)}); err != nil {
				return total, err
			}
			progress(t.Seq)
		}
		total += len(page)
		if uint64(len(page)) < pageSize {
			break
		}
	}

	for offset := uint64(0); ; offset += pageSize {
		page, err := logDB.FilterApprovals(ctx, &logdb.ApprovalFilter{
			Options: &logdb.Options{Offset: offset, Limit: pageSize},
			Order:   logdb.ASC,
		})
		if err != nil {
			return total, err
		}
		for _, a := range page {
			if err := enc.Encode(&dumpedApproval{"approval", logs.ConvertApproval(a)}); err != nil {
				return total, err
			}
			progress(a.Seq)
		}
		total += len(page)
		if uint64(len(page)) < pageSize {
			break
		}
	}

	for offset := uint64(0); ; offset += pageSize {
		page, err := logDB.FilterStakes(ctx, &logdb.StakeFilter{
			Options: &logdb.Options{Offset: offset, Limit: pageSize},
			Order:   logdb.ASC,
		})
		if err != nil {
			return total, err
		}
		for _, s := range page {
			if err := enc.Encode(&dumpedStake{string(s.Action), logs.ConvertStake(s)}); err != nil {
				return total, err
			}
			progress(s.Seq)
		}
		total += len(page)
		if uint64(len(page)) < pageSize {
			break
		}
	}
	return total, nil
}
