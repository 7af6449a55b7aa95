package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the full HTTP surface under /api/v1, plus /health and
// /metrics at the root.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	apiV1.HandleFunc("/collectors", h.CreateCollector).Methods("POST")
	apiV1.HandleFunc("/collectors", h.ListCollectors).Methods("GET")
	apiV1.HandleFunc("/collectors/{index}", h.GetCollector).Methods("GET")

	apiV1.HandleFunc("/refillers", h.AddRefiller).Methods("POST")
	apiV1.HandleFunc("/refillers/{address}", h.RemoveRefiller).Methods("DELETE")
	apiV1.HandleFunc("/refillers/{address}", h.GetRefiller).Methods("GET")

	apiV1.HandleFunc("/funders/direct", h.AddDirectFunder).Methods("POST")
	apiV1.HandleFunc("/funders/{id}/kyc-failure", h.FailKyc).Methods("POST")
	apiV1.HandleFunc("/funders/{id}", h.GetFunder).Methods("GET")

	apiV1.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	apiV1.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	apiV1.HandleFunc("/payments", h.CreatePayment).Methods("POST")

	apiV1.HandleFunc("/oracle/callback", h.OracleCallback).Methods("POST")
	apiV1.HandleFunc("/oracle/gas-price", h.SetGasPrice).Methods("PUT")

	return r
}
