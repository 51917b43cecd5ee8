// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics is a meter factory. The process wide instance is a no-op until
// InitializePrometheusMetrics swaps in the Prometheus one.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

type backend struct{ Metrics }

var active atomic.Pointer[backend]

func current() Metrics {
	if b := active.Load(); b != nil {
		return b.Metrics
	}
	return noop
}

func use(m Metrics) {
	active.Store(&backend{m})
}

// HTTPHandler serves the registered meters, nil while metrics are disabled.
func HTTPHandler() http.Handler {
	return current().GetOrCreateHandler()
}

var (
	// BucketCallMicros covers in-memory engine calls up to a slow store commit.
	BucketCallMicros = []int64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10_000, 50_000, 250_000}
	// BucketQueryMs covers log database queries.
	BucketQueryMs = []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}
	// BucketHTTPReqs covers API round trips in milliseconds.
	BucketHTTPReqs = []int64{
		0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
		150, 200, 300, 400, 500, 750, 1000,
		1500, 2000, 3000, 4000, 5000, 10000,
	}
)

type HistogramMeter interface {
	Observe(int64)
}

type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

// CountMeter only goes up.
type CountMeter interface {
	Add(int64)
}

type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current().GetOrCreateHistogramMeter(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return current().GetOrCreateHistogramVecMeter(name, labels, buckets)
}

func Counter(name string) CountMeter {
	return current().GetOrCreateCountMeter(name)
}

func CounterVec(name string, labels []string) CountVecMeter {
	return current().GetOrCreateCountVecMeter(name, labels)
}

func Gauge(name string) GaugeMeter {
	return current().GetOrCreateGaugeMeter(name)
}

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current().GetOrCreateGaugeVecMeter(name, labels)
}

// ObserveSince records the time elapsed from start in unit.
func ObserveSince(h HistogramVecMeter, start time.Time, unit time.Duration, labels map[string]string) {
	h.ObserveWithLabels(int64(time.Since(start)/unit), labels)
}
