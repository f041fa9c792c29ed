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

package session

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/primevalsoup/fix-agent/builder"
	"github.com/primevalsoup/fix-agent/constants"
	"github.com/primevalsoup/fix-agent/fixcodec"
	"github.com/primevalsoup/fix-agent/idgen"
	"github.com/primevalsoup/fix-agent/order"
	"github.com/primevalsoup/fix-agent/statemachine"
)

// Session lifecycle states.
const (
	StateConnected  = "CONNECTED"
	StateLoggedIn   = "LOGGED_IN"
	StateLoggingOut = "LOGGING_OUT"
	StateClosed     = "CLOSED"
)

// Session is one accepted TCP connection. It owns the receive loop, the
// heartbeat timer, and the serialized outbound send path; it does not own
// any orders - those belong to the shared store and outlive the session.
type Session struct {
	conn           net.Conn
	serverCompID   string
	store          *order.Store
	table          *Table
	log            zerolog.Logger
	idleMultiple   float64
	defaultHeartBt int

	state atomic.Value // string

	senderCompID    string       // set once, at logon
	heartBtInt      atomic.Int32 // seconds, client-proposed; read by the heartbeat loop
	nextOutboundSeq int
	expectedInbound int

	sendMu       sync.Mutex
	lastOutbound atomic.Int64 // unix nano
	lastInbound  atomic.Int64 // unix nano

	closeOnce sync.Once
	done      chan struct{}
}

// New constructs a Session in CONNECTED state for a freshly accepted
// connection. defaultHeartBt is the heartbeat interval (seconds) used when
// the client's Logon proposes none. Call Run to drive it.
func New(conn net.Conn, serverCompID string, store *order.Store, table *Table, defaultHeartBt int, idleMultiple float64, log zerolog.Logger) *Session {
	if defaultHeartBt <= 0 {
		defaultHeartBt = 30
	}
	s := &Session{
		conn:            conn,
		serverCompID:    serverCompID,
		store:           store,
		table:           table,
		idleMultiple:    idleMultiple,
		defaultHeartBt:  defaultHeartBt,
		log:             log,
		nextOutboundSeq: constants.MsgSeqNumInit,
		expectedInbound: constants.MsgSeqNumInit,
		done:            make(chan struct{}),
	}
	s.state.Store(StateConnected)
	s.lastInbound.Store(time.Now().UnixNano())
	return s
}

// State returns the session's current lifecycle state.
func (s *Session) State() string {
	return s.state.Load().(string)
}

// SenderCompID returns the client identity this session logged on as, or
// "" before logon completes.
func (s *Session) SenderCompID() string {
	return s.senderCompID
}

// Run drives the session to completion: reads the socket, feeds the
// decoder, dispatches messages, and runs the heartbeat/idle-timeout timer
// until the connection closes. It returns once the session has reached
// CLOSED.
func (s *Session) Run() {
	defer s.teardown()

	go s.heartbeatLoop()

	dec := fixcodec.NewDecoder(constants.FixBeginString)
	buf := make([]byte, 4096)
	for {
		s.conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.lastInbound.Store(time.Now().UnixNano())
			dec.Feed(buf[:n])
			for {
				msg, ferr := dec.Next()
				if ferr != nil {
					s.log.Warn().Err(ferr).Str("sender_comp_id", s.senderCompID).Msg("framing error, closing connection")
					s.closeConn()
					return
				}
				if msg == nil {
					break
				}
				s.log.Debug().Str("sender_comp_id", s.senderCompID).Str("msg_type", msg.MsgType()).Msg("RECV")
				if s.dispatch(msg) {
					s.closeConn()
					return
				}
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// just a read-deadline tick so we can check the done
				// channel and idle timeout below; not a real error.
			} else {
				s.closeConn()
				return
			}
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

// dispatch handles one parsed message and reports whether the session
// should close after it.
func (s *Session) dispatch(msg *fixcodec.Message) bool {
	msgType := msg.MsgType()

	if !constants.InboundMsgTypes[msgType] {
		s.log.Warn().Str("msg_type", msgType).Msg("unsupported MsgType, ignored")
		return false
	}

	if msgType == constants.MsgTypeLogon {
		return s.handleLogon(msg)
	}

	if s.State() != StateLoggedIn {
		s.log.Warn().Str("msg_type", msgType).Msg("message before logon, ignored")
		return false
	}

	if seqNum, ok, err := msg.GetInt(constants.TagMsgSeqNum); ok && err == nil {
		switch CheckSequence(s.expectedInbound, seqNum) {
		case SeqTooLow:
			if msg.GetOr(43, "") == "Y" { // PossDupFlag: a resent duplicate, not a violation
				s.log.Warn().Int("expected", s.expectedInbound).Int("got", seqNum).Msg("possible duplicate below expected MsgSeqNum, ignored")
				return false
			}
			s.sendLogout("MsgSeqNum too low")
			return true
		case SeqGap:
			s.log.Warn().Int("expected", s.expectedInbound).Int("got", seqNum).Msg("sequence gap detected")
			s.expectedInbound = seqNum + 1
		case SeqInOrder:
			s.expectedInbound++
		}
	}

	switch msgType {
	case constants.MsgTypeHeartbeat, constants.MsgTypeTestRequest:
		return false
	case constants.MsgTypeLogout:
		s.state.Store(StateLoggingOut)
		s.sendLogout("")
		return true
	case constants.MsgTypeNewOrderSingle:
		s.handleNewOrder(msg)
	case constants.MsgTypeOrderCancelRequest:
		s.handleCancel(msg)
	case constants.MsgTypeOrderCancelReplace:
		s.handleReplace(msg)
	}
	return false
}

func (s *Session) handleLogon(msg *fixcodec.Message) bool {
	senderCompID, _ := msg.Get(constants.TagSenderCompID)
	targetCompID, _ := msg.Get(constants.TagTargetCompID)
	encryptMethod, _ := msg.Get(constants.TagEncryptMethod)
	heartBtInt, _, _ := msg.GetInt(constants.TagHeartBtInt)

	if encryptMethod != constants.EncryptMethod || targetCompID != s.serverCompID || senderCompID == "" {
		s.sendLogoutRaw(senderCompID, "Logon")
		return true
	}

	if !s.table.Register(senderCompID, s) {
		s.senderCompID = senderCompID
		s.sendLogout("Session already active")
		return true
	}

	s.senderCompID = senderCompID
	if heartBtInt <= 0 {
		heartBtInt = s.defaultHeartBt
	}
	s.heartBtInt.Store(int32(heartBtInt))
	s.state.Store(StateLoggedIn)
	if seqNum, ok, err := msg.GetInt(constants.TagMsgSeqNum); ok && err == nil {
		s.expectedInbound = seqNum + 1
	}

	s.send(constants.MsgTypeLogon, builder.LogonAck(heartBtInt))
	return false
}

func (s *Session) handleNewOrder(msg *fixcodec.Message) {
	price, _ := msg.Get(constants.TagPrice)
	tif, _ := msg.Get(constants.TagTimeInForce)
	qty, _, _ := msg.GetInt(constants.TagOrderQty)
	side, _ := msg.Get(constants.TagSide)
	ordType, _ := msg.Get(constants.TagOrdType)
	symbol, _ := msg.Get(constants.TagSymbol)
	clOrdID, _ := msg.Get(constants.TagClOrdID)

	out := statemachine.NewOrderSingle(s.store, statemachine.NewOrderRequest{
		ClOrdID:         clOrdID,
		Symbol:          symbol,
		SideWire:        side,
		OrdTypeWire:     ordType,
		OrderQty:        int64(qty),
		PriceWire:       price,
		TimeInForceWire: tif,
		SenderCompID:    s.senderCompID,
	})
	s.send(out.MsgType, out.Fields)
}

func (s *Session) handleCancel(msg *fixcodec.Message) {
	clOrdID, _ := msg.Get(constants.TagClOrdID)
	origClOrdID, _ := msg.Get(constants.TagOrigClOrdID)
	out := statemachine.CancelRequest(s.store, statemachine.CancelRequestParams{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
	})
	s.send(out.MsgType, out.Fields)
}

func (s *Session) handleReplace(msg *fixcodec.Message) {
	clOrdID, _ := msg.Get(constants.TagClOrdID)
	origClOrdID, _ := msg.Get(constants.TagOrigClOrdID)
	price, _ := msg.Get(constants.TagPrice)
	qty, _, _ := msg.GetInt(constants.TagOrderQty)
	out := statemachine.CancelReplaceRequest(s.store, statemachine.ReplaceRequestParams{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		OrderQty:    int64(qty),
		PriceWire:   price,
	})
	s.send(out.MsgType, out.Fields)
}

// Deliver sends an administratively-produced report on this session (used
// by the execution dispatcher). Safe for concurrent use with the receive
// loop - both paths go through send's lock.
func (s *Session) Deliver(out statemachine.Outbound) {
	s.send(out.MsgType, out.Fields)
}

func (s *Session) sendLogout(text string) {
	s.send(constants.MsgTypeLogout, builder.Logout(text))
}

// sendLogoutRaw is used before senderCompID/registration is established
// (a failed Logon), so the header still needs somewhere to address the
// response: echo whatever SenderCompID the client sent, even though it was
// never registered.
func (s *Session) sendLogoutRaw(senderCompID, context string) {
	s.senderCompID = senderCompID
	s.send(constants.MsgTypeLogout, builder.Logout("invalid "+context))
}

// send serializes one outbound message: builds the header, increments
// next_outbound_seq, stamps SendingTime, and writes to the socket. All
// outbound writes - receive-loop responses, heartbeats, and dispatcher
// deliveries - funnel through here so MsgSeqNum stays gap-free.
func (s *Session) send(msgType string, body []fixcodec.Field) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	seq := s.nextOutboundSeq
	s.nextOutboundSeq++

	fields := builder.Header(msgType, s.serverCompID, s.senderCompID, seq, idgen.Now())
	fields = append(fields, body...)
	frame := fixcodec.Serialize(constants.FixBeginString, fields)

	s.log.Debug().Str("sender_comp_id", s.senderCompID).Str("msg_type", msgType).Int("seq", seq).Msg("SEND")
	if _, err := s.conn.Write(frame); err != nil {
		s.log.Warn().Err(err).Str("sender_comp_id", s.senderCompID).Msg("write failed")
	}
	s.lastOutbound.Store(time.Now().UnixNano())
}

func (s *Session) heartbeatLoop() {
	if s.heartBtInt.Load() <= 0 {
		// Not logged in yet; wait for it on a short poll before the real
		// interval is known.
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for s.heartBtInt.Load() <= 0 {
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}

	heartBt := int(s.heartBtInt.Load())
	interval := time.Duration(heartBt) * time.Second
	idleLimit := time.Duration(float64(heartBt) * s.idleMultiple * float64(time.Second))
	ticker := time.NewTicker(interval / 4)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			if now.Sub(time.Unix(0, s.lastInbound.Load())) > idleLimit {
				s.log.Warn().Str("sender_comp_id", s.senderCompID).Msg("idle timeout, tearing down session")
				s.closeConn()
				return
			}
			if now.Sub(time.Unix(0, s.lastOutbound.Load())) >= interval {
				s.send(constants.MsgTypeHeartbeat, builder.Heartbeat())
			}
		}
	}
}

// ForceClose tears down the connection immediately, for the acceptor's
// shutdown grace-period expiry. Safe to call concurrently with Run.
func (s *Session) ForceClose() {
	s.closeConn()
}

func (s *Session) closeConn() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *Session) teardown() {
	s.state.Store(StateClosed)
	if s.senderCompID != "" {
		s.table.Unregister(s.senderCompID, s)
	}
	s.closeConn()
}
