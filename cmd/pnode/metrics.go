// Copyright 2024 The petrochain Authors
// This file is part of the petrochain node.
// Licensed under the GNU Lesser General Public License v3; see the
// project LICENSE file.

package main

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/rs/cors"
)

const prometheusPushInterval = 3 * time.Second

// prometheusBridge periodically copies every counter and gauge in a
// go-metrics registry into prometheus gauges, the same push-on-a-ticker
// shape klaytn's metrics client uses internally, reimplemented here
// directly against prometheus/client_golang since that internal bridge
// isn't importable as a standalone third-party package.
type prometheusBridge struct {
	mu     sync.Mutex
	gauges map[string]prometheus.Gauge
}

func newPrometheusBridge() *prometheusBridge {
	return &prometheusBridge{gauges: make(map[string]prometheus.Gauge)}
}

func (b *prometheusBridge) gaugeFor(name string) prometheus.Gauge {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "petrochain_" + name,
		Help: "petrochain consensus metric: " + name,
	})
	prometheus.MustRegister(g)
	b.gauges[name] = g
	return g
}

func (b *prometheusBridge) pushOnce() {
	gometrics.DefaultRegistry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case gometrics.Counter:
			b.gaugeFor(name).Set(float64(m.Count()))
		case gometrics.Gauge:
			b.gaugeFor(name).Set(float64(m.Value()))
		}
	})
}

func (b *prometheusBridge) run(stop <-chan struct{}) {
	ticker := time.NewTicker(prometheusPushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.pushOnce()
		}
	}
}

// opsRouter builds the node's small ops-only HTTP surface: a Prometheus
// scrape endpoint, a liveness probe and the stdlib expvar dump, routed
// with httprouter and wrapped in rs/cors the way klaytn's RPC HTTP
// transport wraps its own handler — there is no JSON-RPC/domain API
// here, only these three fixed routes.
func opsRouter() http.Handler {
	r := httprouter.New()
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	r.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}).Handler(r)
}

// servePrometheus exposes the ops endpoint on addr, pushing from the
// consensus package's go-metrics registry into Prometheus gauges on a
// fixed interval.
func servePrometheus(addr string) {
	bridge := newPrometheusBridge()
	stop := make(chan struct{})
	go bridge.run(stop)

	logger.Info("serving ops endpoint", "addr", addr)
	if err := http.ListenAndServe(addr, opsRouter()); err != nil {
		logger.Error("ops endpoint failed", "addr", addr, "err", err)
	}
}
