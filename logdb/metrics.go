// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"time"

	"github.com/vechain/stakeledger/metrics"
)

var (
	metricQueryDuration = metrics.LazyLoadHistogramVec("logdb_query_duration_ms", []string{"type"}, metrics.BucketQueryMs)
	metricQueryOrder    = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order", "type"})
	metricCriteriaLen   = metrics.LazyLoadHistogramVec("logdb_criteria_length_bucket", []string{"type"}, []int64{0, 1, 2, 5, 10, 25, 100})
	metricQueryWindow   = metrics.LazyLoadHistogramVec("logdb_query_window_bucket", []string{"type", "bound"}, []int64{
		0, 10, 100, 1_000, 10_000, 100_000, 1_000_000,
	})
	metricEmitted = metrics.LazyLoadCounterVec("logdb_emitted_count", []string{"type"})
)

// observeFilter records the shape of a filter query.
func observeFilter(queryType string, options *Options, order Order, criteriaLen int) {
	if metrics.NoOp() {
		return
	}
	labels := map[string]string{"type": queryType}
	metricCriteriaLen().ObserveWithLabels(int64(criteriaLen), labels)

	if order == "" {
		order = ASC
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": string(order), "type": queryType})

	if options == nil {
		return
	}
	metricQueryWindow().ObserveWithLabels(int64(min(options.Offset, 1_000_001)), map[string]string{"type": queryType, "bound": "offset"})
	metricQueryWindow().ObserveWithLabels(int64(min(options.Limit, 1_000_001)), map[string]string{"type": queryType, "bound": "limit"})
}

func observeQuery(queryType string, start time.Time) {
	metrics.ObserveSince(metricQueryDuration(), start, time.Millisecond, map[string]string{"type": queryType})
}
