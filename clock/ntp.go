// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clock

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakeledger/log"
)

var logger = log.WithContext("pkg", "clock")

// DefaultNTPServer is queried by CheckOffset.
const DefaultNTPServer = "pool.ntp.org"

var queryNTP = func(host string) (time.Duration, error) {
	resp, err := ntp.Query(host)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// CheckOffset compares the wall clock with an NTP server.
// It reports whether the offset stays within tolerance. An unreachable server counts as in sync.
func CheckOffset(host string, tolerance time.Duration) bool {
	offset, err := queryNTP(host)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return true
	}
	if offset < 0 {
		offset = -offset
	}
	if offset > tolerance {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
		return false
	}
	return true
}

// WatchOffset runs CheckOffset every interval until ctx is done.
func WatchOffset(ctx context.Context, host string, interval, tolerance time.Duration) {
	logger.Debug("enter clock watch")
	defer logger.Debug("leave clock watch")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CheckOffset(host, tolerance)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckOffset(host, tolerance)
		}
	}
}
