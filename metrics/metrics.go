// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes process meters behind a swappable backend.
// The backend defaults to no-op; InitializePrometheusMetrics switches it
// to prometheus. Meters obtained before the switch keep reporting to the
// backend active at first use, so package-level meters should be declared
// through the LazyLoad helpers.
package metrics

import (
	"net/http"
	"sync"
)

var backend Backend = noopBackend{}

// Backend creates meters. Repeated calls with the same name return the
// same underlying meter.
type Backend interface {
	Counter(name string) CountMeter
	CounterVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a labeled counter.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a value that can move both ways.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// HistogramVecMeter aggregates labeled observations into buckets.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

// BucketHTTPReqs is the millisecond bucket layout for HTTP request durations.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 4000, 5000, 10000,
}

// Counter returns the counter registered under name.
func Counter(name string) CountMeter { return backend.Counter(name) }

// CounterVec returns the labeled counter registered under name.
func CounterVec(name string, labels []string) CountVecMeter {
	return backend.CounterVec(name, labels)
}

// Gauge returns the gauge registered under name.
func Gauge(name string) GaugeMeter { return backend.Gauge(name) }

// HistogramVec returns the labeled histogram registered under name.
func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return backend.HistogramVec(name, labels, buckets)
}

// HTTPHandler returns the exposition handler of the active backend.
func HTTPHandler() http.Handler { return backend.Handler() }

// LazyLoad defers meter creation to first use, letting package-level meter
// vars bind to the backend chosen at startup rather than at init time.
func LazyLoad[T any](f func() T) func() T {
	var (
		once   sync.Once
		result T
	)
	return func() T {
		once.Do(func() { result = f() })
		return result
	}
}

// LazyLoadCounter is LazyLoad over Counter.
func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

// LazyLoadGauge is LazyLoad over Gauge.
func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

type noopBackend struct{}

type noopMeter struct{}

func (noopBackend) Counter(string) CountMeter                 { return noopMeter{} }
func (noopBackend) CounterVec(string, []string) CountVecMeter { return noopMeter{} }
func (noopBackend) Gauge(string) GaugeMeter                   { return noopMeter{} }
func (noopBackend) HistogramVec(string, []string, []int64) HistogramVecMeter {
	return noopMeter{}
}
func (noopBackend) Handler() http.Handler { return nil }

func (noopMeter) Add(int64)                                  {}
func (noopMeter) Set(int64)                                  {}
func (noopMeter) AddWithLabel(int64, map[string]string)      {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
