// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "undine_metrics"

// InitializePrometheusMetrics switches the active backend to prometheus.
// Calling it again has no effect.
func InitializePrometheusMetrics() {
	if _, ok := backend.(*promBackend); !ok {
		backend = &promBackend{}
	}
}

// promBackend registers meters with the default prometheus registry,
// deduplicating by name.
type promBackend struct {
	meters sync.Map
}

func (b *promBackend) Counter(name string) CountMeter {
	return load(b, name, func() CountMeter {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		register(name, c)
		return promCounter{c}
	})
}

func (b *promBackend) CounterVec(name string, labels []string) CountVecMeter {
	return load(b, name, func() CountVecMeter {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		register(name, c)
		return promCounterVec{c}
	})
}

func (b *promBackend) Gauge(name string) GaugeMeter {
	return load(b, name, func() GaugeMeter {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		register(name, g)
		return promGauge{g}
	})
}

func (b *promBackend) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return load(b, name, func() HistogramVecMeter {
		floats := make([]float64, len(buckets))
		for i, v := range buckets {
			floats[i] = float64(v)
		}
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floats,
		}, labels)
		register(name, h)
		return promHistogramVec{h}
	})
}

func (b *promBackend) Handler() http.Handler {
	return promhttp.Handler()
}

func load[T any](b *promBackend, name string, create func() T) T {
	if m, ok := b.meters.Load(name); ok {
		return m.(T)
	}
	m := create()
	b.meters.Store(name, m)
	return m
}

func register(name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		log.Warn("unable to register metric", "name", name, "err", err)
	}
}

type promCounter struct{ c prometheus.Counter }

func (p promCounter) Add(i int64) { p.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (p promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	p.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (p promGauge) Add(i int64) { p.g.Add(float64(i)) }
func (p promGauge) Set(i int64) { p.g.Set(float64(i)) }

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (p promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	p.h.With(labels).Observe(float64(i))
}
