/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// fixacceptor runs the FIX 4.2 broker acceptor: the TCP listener, the
// order store and its audit persistence, the administrative HTTP surface,
// and the execution dispatcher bridging the two.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/primevalsoup/fix-agent/acceptor"
	"github.com/primevalsoup/fix-agent/admin"
	"github.com/primevalsoup/fix-agent/config"
	"github.com/primevalsoup/fix-agent/dispatcher"
	"github.com/primevalsoup/fix-agent/order"
	"github.com/primevalsoup/fix-agent/session"
	"github.com/primevalsoup/fix-agent/storedb"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional; env FIXACC_* always applies)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("server_comp_id", cfg.Session.ServerCompID).
		Int("listen_port", cfg.Listen.Port).
		Int("admin_port", cfg.Admin.Port).
		Msg("fixacceptor starting")

	audit, err := storedb.Open(cfg.Store.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open audit database")
	}
	defer audit.Close()

	store := order.NewStore()
	store.SetOnTransition(func(rec order.Record, exec *order.Execution) {
		if err := audit.RecordTransition(rec, exec); err != nil {
			log.Warn().Err(err).Str("cl_ord_id", rec.ClOrdID).Msg("failed to persist order transition")
		}
	})

	table := session.NewTable()
	dispatch := dispatcher.New(store, table, log.Logger)

	acc := acceptor.New(acceptor.Config{
		Host:                   cfg.Listen.Host,
		Port:                   cfg.Listen.Port,
		MaxSessions:            cfg.Listen.MaxSessions,
		ServerCompID:           cfg.Session.ServerCompID,
		DefaultHeartbeatS:      cfg.Session.DefaultHeartbeatS,
		InboundIdleTimeoutMult: cfg.Session.InboundIdleTimeoutMult,
		ShutdownGracePeriod:    time.Duration(cfg.Session.ShutdownGracePeriodS) * time.Second,
	}, store, table, log.Logger)

	handlers := admin.NewHandlers(dispatch, store, log.Logger)
	adminAddr := fmt.Sprintf("%s:%d", cfg.Admin.Host, cfg.Admin.Port)
	adminSrv := admin.NewServer(adminAddr, handlers, log.Logger)

	errCh := make(chan error, 2)
	go func() {
		if err := acc.Serve(); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := adminSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("component failed, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := adminSrv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("admin server shutdown error")
	}
	if err := acc.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("acceptor shutdown error")
	}
	log.Info().Msg("fixacceptor stopped")
}
