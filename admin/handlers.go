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

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/primevalsoup/fix-agent/dispatcher"
	"github.com/primevalsoup/fix-agent/order"
)

// Handlers holds every admin HTTP handler's dependencies: the dispatcher
// for mutating calls (fill/cancel/reject) and the store directly for the
// read-only order and execution views.
type Handlers struct {
	dispatch *dispatcher.Dispatcher
	store    *order.Store
	log      zerolog.Logger
}

// NewHandlers builds a Handlers over the given dispatcher and store.
func NewHandlers(dispatch *dispatcher.Dispatcher, store *order.Store, log zerolog.Logger) *Handlers {
	return &Handlers{dispatch: dispatch, store: store, log: log.With().Str("component", "admin-handlers").Logger()}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOrders serves GET /orders.
func (h *Handlers) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records := h.store.List()
	views := make([]orderView, 0, len(records))
	for _, rec := range records {
		views = append(views, newOrderView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleExecutions serves GET /executions.
func (h *Handlers) handleExecutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	execs := h.store.ListExecutions()
	views := make([]execView, 0, len(execs))
	for _, e := range execs {
		views = append(views, newExecView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleOrderSubresource dispatches GET /orders/{clOrdID}, POST
// /orders/{clOrdID}/fill, POST /orders/{clOrdID}/cancel, and POST
// /orders/{clOrdID}/reject. A bare ServeMux on go 1.21 has no pattern
// routing, so the remaining path is split by hand, matching the style of
// the pack's own bare-mux admin surface.
func (h *Handlers) handleOrderSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/orders/")
	parts := strings.SplitN(rest, "/", 2)
	clOrdID := parts[0]
	if clOrdID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if len(parts) == 1 {
		h.handleGetOrder(w, r, clOrdID)
		return
	}

	switch parts[1] {
	case "fill":
		h.handleSubmitFill(w, r, clOrdID)
	case "cancel":
		h.handleAdminCancel(w, r, clOrdID)
	case "reject":
		h.handleAdminReject(w, r, clOrdID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleGetOrder serves GET /orders/{clOrdID}.
func (h *Handlers) handleGetOrder(w http.ResponseWriter, r *http.Request, clOrdID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rec, ok := h.store.Get(clOrdID)
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(rec))
}

// handleSubmitFill serves POST /orders/{clOrdID}/fill.
func (h *Handlers) handleSubmitFill(w http.ResponseWriter, r *http.Request, clOrdID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "price must be a decimal string")
		return
	}
	if err := h.dispatch.SubmitFill(clOrdID, req.Quantity, price); err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdminCancel serves POST /orders/{clOrdID}/cancel.
func (h *Handlers) handleAdminCancel(w http.ResponseWriter, r *http.Request, clOrdID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.dispatch.AdminCancel(clOrdID); err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdminReject serves POST /orders/{clOrdID}/reject.
func (h *Handlers) handleAdminReject(w http.ResponseWriter, r *http.Request, clOrdID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.dispatch.AdminReject(clOrdID); err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeAdminError translates a dispatcher error into the
// NotFound/BadState/Overfill taxonomy as an HTTP status + body.
func writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound")
	case errors.Is(err, order.ErrOverfill):
		writeError(w, http.StatusConflict, "Overfill")
	case errors.Is(err, order.ErrBadState):
		writeError(w, http.StatusConflict, "BadState")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
