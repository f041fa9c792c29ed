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

// Package acceptor implements the TCP listener: it binds the configured
// host/port, constructs a session.Session per accepted connection,
// enforces the optional max_sessions cap, and gives live sessions a grace
// period to Logout on shutdown.
package acceptor

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/primevalsoup/fix-agent/order"
	"github.com/primevalsoup/fix-agent/session"
)

// Config is the subset of the process configuration the acceptor needs.
type Config struct {
	Host                   string
	Port                   int
	MaxSessions            int // 0 = unbounded
	ServerCompID           string
	DefaultHeartbeatS      int
	InboundIdleTimeoutMult float64
	ShutdownGracePeriod    time.Duration
}

// Acceptor owns the listen socket and the live session table.
type Acceptor struct {
	cfg   Config
	store *order.Store
	table *session.Table
	log   zerolog.Logger

	lnMu      sync.Mutex
	ln        net.Listener
	wg        sync.WaitGroup
	closing   chan struct{}
	closeOnce sync.Once
}

// New returns an Acceptor ready to Serve.
func New(cfg Config, store *order.Store, table *session.Table, log zerolog.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		store:   store,
		table:   table,
		log:     log,
		closing: make(chan struct{}),
	}
}

// Serve binds the listen socket and accepts connections until Shutdown is
// called or Accept returns an error (any Accept error ends Serve). It
// blocks until the listener stops.
func (a *Acceptor) Serve() error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("acceptor: listen %s: %w", addr, err)
	}
	a.lnMu.Lock()
	a.ln = ln
	a.lnMu.Unlock()
	a.log.Info().Str("addr", addr).Msg("FIX acceptor listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-a.closing:
				return nil
			default:
			}
			a.log.Warn().Err(err).Msg("accept failed")
			return err
		}

		if a.cfg.MaxSessions > 0 && a.table.Len() >= a.cfg.MaxSessions {
			a.log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("max_sessions reached, refusing connection")
			conn.Close()
			continue
		}

		sess := session.New(conn, a.cfg.ServerCompID, a.store, a.table, a.cfg.DefaultHeartbeatS, a.cfg.InboundIdleTimeoutMult, a.log)
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			sess.Run()
		}()
	}
}

// Addr returns the listener's bound address, or nil before Serve has bound
// it. Useful when Port is 0 and the OS picked the port.
func (a *Acceptor) Addr() net.Addr {
	a.lnMu.Lock()
	defer a.lnMu.Unlock()
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Shutdown stops accepting new connections immediately, gives live
// sessions cfg.ShutdownGracePeriod to reach CLOSED on their own (having
// sent/received Logout), then forcibly tears down whatever remains.
func (a *Acceptor) Shutdown(ctx context.Context) error {
	a.closeOnce.Do(func() {
		close(a.closing)
		a.lnMu.Lock()
		if a.ln != nil {
			a.ln.Close()
		}
		a.lnMu.Unlock()
	})

	grace := a.cfg.ShutdownGracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}
	graceCtx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-graceCtx.Done():
		for _, sess := range a.table.List() {
			sess.ForceClose()
		}
		<-drained
		return nil
	}
}
