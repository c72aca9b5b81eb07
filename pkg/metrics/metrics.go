// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/armon/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var initOnce sync.Once

// Initialize prepares the metrics system with a Prometheus sink. It sets up a
// global metrics collector that can be used throughout the application. The
// metrics are exposed on the /metrics endpoint of the metrics server.
func Initialize() error {
	var err error
	initOnce.Do(func() {
		sink, sinkErr := prometheus.NewPrometheusSink()
		if sinkErr != nil {
			err = sinkErr
			return
		}

		conf := metrics.DefaultConfig("dxgateway")
		conf.EnableHostname = false

		if _, err = metrics.NewGlobal(conf, sink); err != nil {
			return
		}
	})
	return err
}

// Handler returns an http.Handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer starts an HTTP server to expose the metrics. It returns the
// server so the caller can shut it down.
func StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		_ = server.ListenAndServe()
	}()
	return server
}

// IncrCounter increments a counter metric identified by the key path.
func IncrCounter(key []string, val float32) {
	metrics.IncrCounter(key, val)
}

// MeasureSince records the latency since start for the key path.
func MeasureSince(key []string, start time.Time) {
	metrics.MeasureSince(key, start)
}
