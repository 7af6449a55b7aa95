package api

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/betexlabs/saft-engine/internal/engine"
)

// Metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saft_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "saft_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// callerHeader carries the caller identity for privileged calls and the
// sender identity for native payments.
const callerHeader = "X-Caller-Address"

type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// Request/response shapes. Raw currency amounts, quotes and token totals
// travel as decimal strings so they are never clipped by JSON numbers.

type collectorRequest struct {
	Symbol     string `json:"symbol"`
	Decimals   uint8  `json:"decimals"`
	PriceQuery string `json:"price_query"`
}

type refillerRequest struct {
	Address string `json:"address"`
}

type directRequest struct {
	Address  string `json:"address"`
	FunderID uint64 `json:"funder_id"`
}

type orderRequest struct {
	FunderID       uint64 `json:"funder_id"`
	CollectorIndex int    `json:"collector_index"`
	Amount         string `json:"amount"`
	ExternalTxRef  string `json:"external_tx_ref"`
}

type paymentRequest struct {
	Amount string `json:"amount"`
}

type callbackRequest struct {
	RequestID string `json:"request_id"`
	Rate      string `json:"rate"`
}

type gasPriceRequest struct {
	GasPrice uint64 `json:"gas_price"`
}

type orderView struct {
	ID             uint64 `json:"id"`
	FunderID       uint64 `json:"funder_id"`
	CollectorIndex int    `json:"collector_index"`
	Amount         string `json:"amount"`
	Quote          string `json:"quote,omitempty"`
	Tokens         string `json:"tokens,omitempty"`
	ExternalTxRef  string `json:"external_tx_ref,omitempty"`
	Status         string `json:"status"`
	CreatedAt      int64  `json:"created_at"`
	ResolvedAt     int64  `json:"resolved_at,omitempty"`
}

func viewOrder(o engine.Order) orderView {
	v := orderView{
		ID:             o.ID,
		FunderID:       o.FunderID,
		CollectorIndex: o.Collector,
		Amount:         o.AmountPaid.String(),
		ExternalTxRef:  o.ExternalTxRef,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt.Unix(),
	}
	if o.Resolved() {
		v.Quote = o.Quote.String()
		v.Tokens = o.Tokens.String()
		v.ResolvedAt = o.ResolvedAt.Unix()
	}
	return v
}

func (h *Handler) CreateCollector(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r, "POST", "/collectors")
	if !ok {
		return
	}

	var req collectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/collectors")
		return
	}
	if req.Symbol == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "Symbol required", "POST", "/collectors")
		return
	}

	index, err := h.engine.AddCollector(caller, req.Symbol, req.Decimals, req.PriceQuery)
	if err != nil {
		h.respondEngineError(w, err, "POST", "/collectors")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]int{"index": index}, "POST", "/collectors")
}

func (h *Handler) ListCollectors(w http.ResponseWriter, r *http.Request) {
	collectors := h.engine.Collectors()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(collectors),
		"collectors": collectors,
	}, "GET", "/collectors")
}

func (h *Handler) GetCollector(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid collector index", "GET", "/collectors/{index}")
		return
	}

	c, err := h.engine.Collector(index)
	if err != nil {
		h.respondEngineError(w, err, "GET", "/collectors/{index}")
		return
	}
	h.respondJSON(w, http.StatusOK, c, "GET", "/collectors/{index}")
}

func (h *Handler) AddRefiller(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r, "POST", "/refillers")
	if !ok {
		return
	}

	var req refillerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.respondError(w, http.StatusBadRequest, "Refiller address required", "POST", "/refillers")
		return
	}

	if err := h.engine.AddRefiller(caller, req.Address); err != nil {
		h.respondEngineError(w, err, "POST", "/refillers")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"address": req.Address}, "POST", "/refillers")
}

func (h *Handler) RemoveRefiller(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r, "DELETE", "/refillers/{address}")
	if !ok {
		return
	}

	if err := h.engine.RemoveRefiller(caller, mux.Vars(r)["address"]); err != nil {
		h.respondEngineError(w, err, "DELETE", "/refillers/{address}")
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil, "DELETE", "/refillers/{address}")
}

func (h *Handler) GetRefiller(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"address":  address,
		"refiller": h.engine.IsRefiller(address),
	}, "GET", "/refillers/{address}")
}

func (h *Handler) AddDirectFunder(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r, "POST", "/funders/direct")
	if !ok {
		return
	}

	var req directRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.respondError(w, http.StatusBadRequest, "Funder address required", "POST", "/funders/direct")
		return
	}

	if err := h.engine.AddDirect(caller, req.Address, req.FunderID); err != nil {
		h.respondEngineError(w, err, "POST", "/funders/direct")
		return
	}
	h.respondJSON(w, http.StatusCreated, req, "POST", "/funders/direct")
}

func (h *Handler) FailKyc(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r, "POST", "/funders/{id}/kyc-failure")
	if !ok {
		return
	}

	funderID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid funder id", "POST", "/funders/{id}/kyc-failure")
		return
	}

	if err := h.engine.FailedKyc(caller, funderID); err != nil {
		h.respondEngineError(w, err, "POST", "/funders/{id}/kyc-failure")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"funder_id":        funderID,
		"failed_kyc_count": h.engine.FailedKycCount(),
	}, "POST", "/funders/{id}/kyc-failure")
}

func (h *Handler) GetFunder(w http.ResponseWriter, r *http.Request) {
	funderID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid funder id", "GET", "/funders/{id}")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"funder_id":  funderID,
		"purchased":  h.engine.Purchased(funderID).String(),
		"kyc_failed": h.engine.IsKycFailed(funderID),
	}, "GET", "/funders/{id}")
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/orders"))
	defer timer.ObserveDuration()

	caller, ok := h.requireCaller(w, r, "POST", "/orders")
	if !ok {
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/orders")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid amount", "POST", "/orders")
		return
	}

	orderID, err := h.engine.SubmitOrder(caller, req.FunderID, req.CollectorIndex, amount, req.ExternalTxRef)
	if err != nil {
		h.respondEngineError(w, err, "POST", "/orders")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]uint64{"order_id": orderID}, "POST", "/orders")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid order id", "GET", "/orders/{id}")
		return
	}

	o, err := h.engine.GetOrder(orderID)
	if err != nil {
		h.respondEngineError(w, err, "GET", "/orders/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, viewOrder(o), "GET", "/orders/{id}")
}

// CreatePayment is the service-world rendition of a direct value transfer:
// the sender is the caller address and the amount is in raw native units.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/payments"))
	defer timer.ObserveDuration()

	sender, ok := h.requireCaller(w, r, "POST", "/payments")
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/payments")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid amount", "POST", "/payments")
		return
	}

	orderID, err := h.engine.ReceivePayment(sender, amount)
	if err != nil {
		h.respondEngineError(w, err, "POST", "/payments")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]uint64{"order_id": orderID}, "POST", "/payments")
}

func (h *Handler) OracleCallback(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/oracle/callback"))
	defer timer.ObserveDuration()

	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestID == "" {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/oracle/callback")
		return
	}
	rate, err := parseAmount(req.Rate)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid rate", "POST", "/oracle/callback")
		return
	}

	o, err := h.engine.ApplyQuote(req.RequestID, rate)
	if err != nil {
		h.respondEngineError(w, err, "POST", "/oracle/callback")
		return
	}
	h.respondJSON(w, http.StatusOK, viewOrder(o), "POST", "/oracle/callback")
}

func (h *Handler) SetGasPrice(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r, "PUT", "/oracle/gas-price")
	if !ok {
		return
	}

	var req gasPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "PUT", "/oracle/gas-price")
		return
	}

	if err := h.engine.SetOracleGasPrice(caller, req.GasPrice); err != nil {
		h.respondEngineError(w, err, "PUT", "/oracle/gas-price")
		return
	}
	h.respondJSON(w, http.StatusOK, req, "PUT", "/oracle/gas-price")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

// Helpers

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.New("not a base-10 integer")
	}
	return v, nil
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request, method, endpoint string) (string, bool) {
	caller := r.Header.Get(callerHeader)
	if caller == "" {
		h.respondError(w, http.StatusBadRequest, "Missing "+callerHeader+" header", method, endpoint)
		return "", false
	}
	return caller, true
}

func (h *Handler) respondEngineError(w http.ResponseWriter, err error, method, endpoint string) {
	h.respondError(w, statusFor(err), err.Error(), method, endpoint)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnauthorized),
		errors.Is(err, engine.ErrUnauthorizedFunder),
		errors.Is(err, engine.ErrWindowClosed):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, engine.ErrUnknownRequest):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrDuplicateSymbol),
		errors.Is(err, engine.ErrAlreadyMapped),
		errors.Is(err, engine.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, engine.ErrZeroAmount),
		errors.Is(err, engine.ErrInvalidCollector),
		errors.Is(err, engine.ErrInvalidDecimals),
		errors.Is(err, engine.ErrBelowMinimum),
		errors.Is(err, engine.ErrInvalidQuote):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
