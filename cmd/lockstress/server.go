// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/locker/internal/stress"
	"github.com/xmidt-org/locker/xmetrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const metricsPath = "/metrics"

func provideRegistry(c Config, logger *zap.Logger) (xmetrics.Registry, error) {
	o := c.Metrics
	o.Logger = logger
	return xmetrics.NewRegistry(&o, stress.Metrics)
}

func newRouter(registry xmetrics.Registry, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Handle(
		metricsPath,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(logger),
		}),
	).Methods(http.MethodGet)

	return router
}

// ServerIn is the set of components needed to serve metrics
type ServerIn struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    Config
	Logger    *zap.Logger
	Registry  xmetrics.Registry
}

func serveMetrics(in ServerIn) {
	if len(in.Config.Address) == 0 {
		in.Logger.Info("metrics endpoint disabled")
		return
	}

	server := &http.Server{
		Addr:              in.Config.Address,
		Handler:           newRouter(in.Registry, in.Logger),
		ErrorLog:          zap.NewStdLog(in.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}

			in.Logger.Info("serving metrics", zap.Stringer("address", l.Addr()), zap.String("path", metricsPath))
			go func() {
				if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
					in.Logger.Error("metrics server exited", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: server.Shutdown,
	})
}
