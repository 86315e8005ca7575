package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	"github.com/tdnguyen/pawnshop-engine/internal/service"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
	"github.com/tdnguyen/pawnshop-engine/pkg/response"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawnshop_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pawnshop_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	settlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawnshop_interest_settlements_total",
		Help: "Successful interest settlements",
	})

	redemptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawnshop_redemptions_total",
		Help: "Contracts redeemed",
	})
)

type ContractHandler struct {
	service   *service.ContractService
	validator *validator.Validate
}

func NewContractHandler(service *service.ContractService) *ContractHandler {
	return &ContractHandler{
		service:   service,
		validator: validator.New(),
	}
}

// instrument starts a latency timer for the endpoint; the returned func
// records duration and the final status code.
func instrument(method, endpoint string) func(status int) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(method, endpoint))
	return func(status int) {
		timer.ObserveDuration()
		httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	}
}

func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	done := instrument("POST", "/contracts")

	var request domain.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Malformed JSON body", err)
		done(http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		done(http.StatusBadRequest)
		return
	}

	contract, err := h.service.CreateContract(r.Context(), &request)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Created(w, contract)
	done(http.StatusCreated)
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	done := instrument("GET", "/contracts")

	asOf, err := parseAsOf(r)
	if err != nil {
		response.BadRequest(w, "Invalid as_of date, want YYYY-MM-DD", err)
		done(http.StatusBadRequest)
		return
	}

	contracts, err := h.service.ListContracts(r.Context(), asOf)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, contracts)
	done(http.StatusOK)
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	done := instrument("GET", "/contracts/{contractId}")

	asOf, err := parseAsOf(r)
	if err != nil {
		response.BadRequest(w, "Invalid as_of date, want YYYY-MM-DD", err)
		done(http.StatusBadRequest)
		return
	}

	contract, err := h.service.GetContract(r.Context(), mux.Vars(r)["contractId"], asOf)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, contract)
	done(http.StatusOK)
}

func (h *ContractHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	done := instrument("PUT", "/contracts/{contractId}")

	var request domain.UpdateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Malformed JSON body", err)
		done(http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		done(http.StatusBadRequest)
		return
	}

	contract, err := h.service.UpdateContract(r.Context(), mux.Vars(r)["contractId"], &request)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, contract)
	done(http.StatusOK)
}

func (h *ContractHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	done := instrument("DELETE", "/contracts/{contractId}")

	contractID := mux.Vars(r)["contractId"]
	if err := h.service.DeleteContract(r.Context(), contractID); err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, map[string]string{"contract_id": contractID, "deleted": "true"})
	done(http.StatusOK)
}

func (h *ContractHandler) SettleInterest(w http.ResponseWriter, r *http.Request) {
	done := instrument("POST", "/contracts/{contractId}/interest")

	var request domain.SettleInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Malformed JSON body", err)
		done(http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		done(http.StatusBadRequest)
		return
	}

	settlement, err := h.service.SettleInterest(r.Context(), mux.Vars(r)["contractId"], &request)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	settlementsTotal.Inc()
	response.Success(w, settlement)
	done(http.StatusOK)
}

func (h *ContractHandler) AdjustPrincipal(w http.ResponseWriter, r *http.Request) {
	done := instrument("POST", "/contracts/{contractId}/principal")

	var request domain.AdjustPrincipalRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Malformed JSON body", err)
		done(http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		done(http.StatusBadRequest)
		return
	}

	contract, err := h.service.AdjustPrincipal(r.Context(), mux.Vars(r)["contractId"], &request)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, contract)
	done(http.StatusOK)
}

func (h *ContractHandler) GetPayoff(w http.ResponseWriter, r *http.Request) {
	done := instrument("GET", "/contracts/{contractId}/payoff")

	asOf, err := parseAsOf(r)
	if err != nil {
		response.BadRequest(w, "Invalid as_of date, want YYYY-MM-DD", err)
		done(http.StatusBadRequest)
		return
	}

	payoff, err := h.service.GetPayoff(r.Context(), mux.Vars(r)["contractId"], asOf)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, payoff)
	done(http.StatusOK)
}

func (h *ContractHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	done := instrument("POST", "/contracts/{contractId}/redeem")

	contract, err := h.service.Redeem(r.Context(), mux.Vars(r)["contractId"])
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	redemptionsTotal.Inc()
	response.Success(w, contract)
	done(http.StatusOK)
}

func (h *ContractHandler) Liquidate(w http.ResponseWriter, r *http.Request) {
	done := instrument("POST", "/contracts/{contractId}/liquidate")

	contract, err := h.service.Liquidate(r.Context(), mux.Vars(r)["contractId"])
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, contract)
	done(http.StatusOK)
}

func (h *ContractHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	done := instrument("GET", "/dashboard")

	asOf, err := parseAsOf(r)
	if err != nil {
		response.BadRequest(w, "Invalid as_of date, want YYYY-MM-DD", err)
		done(http.StatusBadRequest)
		return
	}

	stats, err := h.service.Dashboard(r.Context(), asOf)
	if err != nil {
		done(h.respondError(w, err))
		return
	}

	response.Success(w, stats)
	done(http.StatusOK)
}

// respondError maps business error codes onto HTTP statuses and writes the
// error envelope; it returns the status for metrics.
func (h *ContractHandler) respondError(w http.ResponseWriter, err error) int {
	status := http.StatusInternalServerError
	code := ""
	message := "Internal server error"

	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		code = bizErr.Code
		message = bizErr.Message

		switch bizErr.Code {
		case customError.ErrCodeContractNotFound:
			status = http.StatusNotFound
		case customError.ErrCodeContractAlreadyExists, customError.ErrCodeVersionConflict:
			status = http.StatusConflict
		case customError.ErrCodeInvalidAmount, customError.ErrCodeMalformedRecord:
			status = http.StatusBadRequest
		case customError.ErrCodeTerminalContract, customError.ErrCodeZeroAccrualRate:
			status = http.StatusUnprocessableEntity
		}
	}

	response.ErrorWithCode(w, status, code, message, err)
	return status
}

// parseAsOf reads the optional as_of query parameter; the zero time means
// "now" downstream.
func parseAsOf(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get("as_of")
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateFormat, value)
}
