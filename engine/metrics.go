// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import "github.com/vechain/stakeledger/metrics"

var (
	metricCallCount        = metrics.LazyLoadCounterVec("engine_call_count", []string{"op", "outcome"})
	metricCallDuration     = metrics.LazyLoadHistogramVec("engine_call_duration_us", []string{"op"}, metrics.BucketCallMicros)
	metricTotalSupply      = metrics.LazyLoadGauge("ledger_total_supply")
	metricStakeholderCount = metrics.LazyLoadGauge("staker_stakeholder_count")
)
