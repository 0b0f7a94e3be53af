package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/negotiation-envelope/internal/config"
	"github.com/iwvelando/negotiation-envelope/internal/envelope"
	"github.com/iwvelando/negotiation-envelope/internal/negotiation"
	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/iwvelando/negotiation-envelope/pkg/output"
	"github.com/iwvelando/negotiation-envelope/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the correlation id of a request and its response.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "requestID"

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	numeric       string
}

// NewHandler constructs the HTTP handler that serves the envelope API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	numeric := opts.Numeric
	if numeric == "" {
		numeric = constants.NumericString
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, numeric: numeric}

	mux := http.NewServeMux()

	// Full envelope for one set of revenue and expense streams
	mux.HandleFunc("/api/envelope", h.handleEnvelope)

	// Margin band only
	mux.HandleFunc("/api/margins", h.handleMargins)

	// Scenario file upload
	mux.HandleFunc("/api/scenarios", h.handleScenarios)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/health", h.handleHealth)

	return h.withRequestID(mux)
}

// withRequestID tags every request with a correlation id, reusing the
// caller's X-Request-ID when present.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		h.logger.Debug("handling request",
			zap.String("op", "server.withRequestID"),
			zap.String("requestId", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// envelopeRequest is the JSON body of /api/envelope and /api/margins.
// Numeric fields are decoded as json.Number so no precision is lost before
// the engine parses them.
type envelopeRequest struct {
	Revenue       interface{}            `json:"revenue"`
	Expense       interface{}            `json:"expense"`
	TargetMargin  interface{}            `json:"targetMargin"`
	FloorMargin   interface{}            `json:"floorMargin"`
	CeilingMargin interface{}            `json:"ceilingMargin"`
	ReserveBand   interface{}            `json:"reserveBand"`
	Currency      string                 `json:"currency"`
	ListRevenue   interface{}            `json:"listRevenue"`
	Metadata      map[string]interface{} `json:"metadata"`
	Precision     int32                  `json:"precision"`
	Numeric       string                 `json:"numeric"`
}

func (req envelopeRequest) params() envelope.Params {
	return envelope.Params{
		TargetMargin:  req.TargetMargin,
		FloorMargin:   req.FloorMargin,
		CeilingMargin: req.CeilingMargin,
		ReserveBand:   req.ReserveBand,
		Currency:      req.Currency,
		ListRevenue:   req.ListRevenue,
		Metadata:      req.Metadata,
		Precision:     req.Precision,
	}
}

type envelopeResponse struct {
	RequestID string                 `json:"requestId"`
	Envelope  map[string]interface{} `json:"envelope"`
}

type marginsResponse struct {
	RequestID string                 `json:"requestId"`
	Margins   map[string]interface{} `json:"margins"`
}

type scenariosResponse struct {
	RequestID string                 `json:"requestId"`
	Scenarios []scenarioResult       `json:"scenarios"`
	CSV       string                 `json:"csv"`
	Warnings  []string               `json:"warnings,omitempty"`
	Duration  string                 `json:"duration"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

type scenarioResult struct {
	Name     string                 `json:"name"`
	Envelope map[string]interface{} `json:"envelope"`
}

func (h *handler) decodeEnvelopeRequest(w http.ResponseWriter, r *http.Request, op string) (envelopeRequest, envelope.Converter, bool) {
	var req envelopeRequest
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return req, nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), "", op)
			return req, nil, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "", op)
		return req, nil, false
	}

	numeric := req.Numeric
	if numeric == "" {
		numeric = h.numeric
	}
	convert, err := envelope.ConverterFor(numeric)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), "", op)
		return req, nil, false
	}
	return req, convert, true
}

func (h *handler) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEnvelope"
	req, convert, ok := h.decodeEnvelopeRequest(w, r, op)
	if !ok {
		return
	}

	env, err := envelope.Calculate(req.Revenue, req.Expense, req.params())
	if err != nil {
		h.respondEngineError(w, r, err, op)
		return
	}

	h.logger.Info("computed envelope",
		zap.String("op", op),
		zap.String("requestId", requestID(r)),
		zap.String("currency", env.Currency),
		zap.String("currentMargin", env.CurrentMargin.String()),
	)

	h.writeJSON(w, http.StatusOK, envelopeResponse{
		RequestID: requestID(r),
		Envelope:  env.ToMap(convert),
	})
}

func (h *handler) handleMargins(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMargins"
	req, convert, ok := h.decodeEnvelopeRequest(w, r, op)
	if !ok {
		return
	}

	band, err := envelope.DetermineMarginEnvelope(req.Revenue, req.Expense, req.params())
	if err != nil {
		h.respondEngineError(w, r, err, op)
		return
	}

	margins := make(map[string]interface{}, 3)
	for key, value := range band.Map() {
		margins[key] = convert(value, constants.RatioPlaces)
	}

	h.writeJSON(w, http.StatusOK, marginsResponse{RequestID: requestID(r), Margins: margins})
}

func (h *handler) handleScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarios"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "", op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "", op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing scenario file", "", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read scenario file: %v", err), "", op)
		return
	}

	configMap, err := decodeYAMLToMap(buf.Bytes())
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), "", op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), "", op)
		return
	}

	numeric := r.FormValue("numeric")
	if numeric == "" {
		numeric = conf.Output.Numeric
	}
	if err := validation.ValidateNumericMode(numeric); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), "", op)
		return
	}
	convert, err := envelope.ConverterFor(numeric)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), "", op)
		return
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		h.logger.Warn(warning,
			zap.String("op", op),
			zap.String("requestId", requestID(r)),
		)
	}

	results, err := negotiation.GetEnvelopes(h.logger, *conf)
	if err != nil {
		h.respondEngineError(w, r, err, op)
		return
	}

	csvData, err := output.CsvString(results)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), "", op)
		return
	}

	scenarios := make([]scenarioResult, 0, len(results))
	for _, result := range results {
		scenarios = append(scenarios, scenarioResult{Name: result.Name, Envelope: result.Envelope.ToMap(convert)})
	}

	h.writeJSON(w, http.StatusOK, scenariosResponse{
		RequestID: requestID(r),
		Scenarios: scenarios,
		CSV:       csvData,
		Warnings:  warnings,
		Duration:  time.Since(start).String(),
		Config:    configMap,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"generatedAt":   time.Now().UTC().Format(time.RFC3339),
		"correlationId": requestID(r),
	})
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

// respondEngineError reports engine failures as 400 with their kind and
// anything else as 500.
func (h *handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if kind, ok := errs.KindOf(err); ok {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), string(kind), op)
		return
	}
	h.respondErrorWithOp(w, r, http.StatusInternalServerError, err.Error(), "", op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg, kind, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", requestID(r)),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	payload := map[string]string{"error": msg}
	if kind != "" {
		payload["kind"] = kind
	}
	h.writeJSON(w, status, payload)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
