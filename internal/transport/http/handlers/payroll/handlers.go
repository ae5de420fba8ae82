package payrollhandler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"paycalc/internal/domain/payroll"
	"paycalc/internal/platform/metrics"
	"paycalc/internal/reports"
	"paycalc/internal/transport/http/api"
	"paycalc/internal/transport/http/middleware"
	"paycalc/internal/transport/http/shared"
)

type Handler struct {
	Calculator payroll.Calculator
	Workers    int
	Logger     *zap.Logger
	Metrics    *metrics.Collector
}

func NewHandler(calc payroll.Calculator, workers int, logger *zap.Logger, collector *metrics.Collector) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Calculator: calc, Workers: workers, Logger: logger, Metrics: collector}
}

type slabView struct {
	UpTo *float64 `json:"upTo"`
	Rate float64  `json:"rate"`
}

type taxPayload struct {
	Gross json.RawMessage `json:"gross"`
}

type taxResponse struct {
	Gross float64 `json:"gross"`
	Tax   float64 `json:"tax"`
}

type failureView struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

type computeResponse struct {
	Results  []payroll.PayrollResult `json:"results"`
	Failures []failureView           `json:"failures"`
	Totals   payroll.Totals          `json:"totals"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/tax-schedule", h.handleTaxSchedule)
		r.Post("/tax", h.handleTax)
		r.Post("/compute", h.handleCompute)
		r.Post("/register", h.handleRegister)
	})
}

func (h *Handler) handleTaxSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := h.schedule()
	slabs := make([]slabView, 0, len(schedule))
	for _, slab := range schedule {
		view := slabView{Rate: slab.Rate}
		if !math.IsInf(slab.UpTo, 1) {
			upTo := slab.UpTo
			view.UpTo = &upTo
		}
		slabs = append(slabs, view)
	}
	api.Success(w, map[string]any{"slabs": slabs}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTax(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload taxPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	gross, _ := v.Amount("gross", payload.Gross)
	if v.Reject(w, reqID) {
		return
	}
	api.Success(w, taxResponse{Gross: gross, Tax: h.schedule().Tax(gross)}, reqID)
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runBatch(w, r)
	if !ok {
		return
	}

	failures := make([]failureView, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, failureView{
			Index: f.Index,
			ID:    f.ID,
			Field: payroll.FieldOf(f.Err),
			Error: f.Err.Error(),
		})
	}
	api.Success(w, computeResponse{
		Results:  report.Results,
		Failures: failures,
		Totals:   report.Totals(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runBatch(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=payroll-register.csv")
	if err := reports.WriteRegister(w, report.Results); err != nil {
		h.Logger.Warn("register write failed", zap.Error(err), zap.String("requestId", middleware.GetRequestID(r.Context())))
	}
}

// runBatch decodes the request body as an employee batch and runs it. On
// failure the error response has already been written.
func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request) (payroll.Report, bool) {
	reqID := middleware.GetRequestID(r.Context())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
			return payroll.Report{}, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", reqID)
		return payroll.Report{}, false
	}

	records, err := payroll.DecodeBatch(body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
		return payroll.Report{}, false
	}

	policy := payroll.PolicyFailFast
	if r.URL.Query().Get("mode") == payroll.PolicyCollect {
		policy = payroll.PolicyCollect
	}
	processor := payroll.NewProcessor(h.Calculator, policy, h.Workers, h.Logger.With(zap.String("requestId", reqID)))
	if h.Metrics != nil {
		processor.OnRecord = h.Metrics.RecordPayroll
	}

	report, err := processor.Run(r.Context(), records)
	if err != nil {
		if recErr, ok := payroll.FailedRecord(err); ok {
			api.FailWithDetails(w, http.StatusUnprocessableEntity, "record_invalid", recErr.Error(), map[string]any{
				"index": recErr.Index,
				"id":    recErr.ID,
				"field": payroll.FieldOf(recErr.Err),
			}, reqID)
			return payroll.Report{}, false
		}
		h.Logger.Error("payroll run failed", zap.Error(err), zap.String("requestId", reqID))
		api.Fail(w, http.StatusInternalServerError, "compute_failed", "failed to compute payroll", reqID)
		return payroll.Report{}, false
	}
	if report.Results == nil {
		report.Results = []payroll.PayrollResult{}
	}
	return report, true
}

func (h *Handler) schedule() payroll.TaxSchedule {
	if len(h.Calculator.Schedule) == 0 {
		return payroll.DefaultSchedule()
	}
	return h.Calculator.Schedule
}
