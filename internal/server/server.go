package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/loan-desk/internal/assistant"
	"github.com/iwvelando/loan-desk/internal/eligibility"
	"github.com/iwvelando/loan-desk/internal/metrics"
	"github.com/iwvelando/loan-desk/internal/reference"
	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/iwvelando/loan-desk/pkg/format"
	"github.com/iwvelando/loan-desk/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options are the dependencies of the HTTP handler. Only Reference is
// required.
type Options struct {
	Logger           *zap.Logger
	Reference        reference.Provider
	Store            *assistant.Store
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	MaxRequestSize   int64
	Version          string
	AssistantEnabled bool
}

type handler struct {
	logger           *zap.Logger
	reference        reference.Provider
	store            *assistant.Store
	metrics          *metrics.Metrics
	maxRequestSize   int64
	version          string
	assistantEnabled bool
}

// NewHandler constructs the HTTP handler that serves the web UI, the
// eligibility and reference API, the assistant and the metrics endpoint.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Reference == nil {
		panic("server: reference provider is required")
	}

	maxRequestSize := opts.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	store := opts.Store
	if store == nil {
		store = assistant.NewStore(assistant.DisabledGateway{}, logger, 0)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &handler{
		logger:           logger,
		reference:        opts.Reference,
		store:            store,
		metrics:          opts.Metrics,
		maxRequestSize:   maxRequestSize,
		version:          trimmedVersion,
		assistantEnabled: opts.AssistantEnabled,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/eligibility", h.handleEvaluate)
		r.Get("/eligibility/ownership-options", h.handleOwnershipOptions)

		r.Get("/reference", h.handleReference)
		r.Get("/reference/deposit-protection/{region}", h.handleDepositProtection)
		r.Get("/reference/approval-authorities", h.handleApprovalAuthorities)
		r.Get("/reference/{table}", h.handleReferenceTable)

		r.Get("/assistant", h.handleAssistantStatus)
		r.Post("/assistant/inquiries", h.handleInquiry)
		r.Get("/assistant/sessions/{id}/messages", h.handleMessages)

		r.Get("/version", h.handleVersion)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

type evaluateResponse struct {
	Application      eligibility.ApplicationView `json:"application"`
	Result           eligibility.ResultView      `json:"result"`
	OwnershipOptions []option                    `json:"ownershipOptions"`
	OwnershipCleared bool                        `json:"ownershipCleared"`
	Duration         string                      `json:"duration"`
}

type depositProtectionResponse struct {
	reference.DepositProtection
	HousingDisplay    string `json:"housingDisplay"`
	CommercialDisplay string `json:"commercialDisplay"`
}

type approvalLookupResponse struct {
	Amount    float64                     `json:"amount"`
	Authority reference.ApprovalAuthority `json:"authority"`
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type inquiryRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type inquiryResponse struct {
	SessionID string              `json:"sessionId"`
	Reply     assistant.Message   `json:"reply"`
	Messages  []assistant.Message `json:"messages"`
}

type messagesResponse struct {
	SessionID string              `json:"sessionId"`
	InFlight  bool                `json:"inFlight"`
	Messages  []assistant.Message `json:"messages"`
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	start := time.Now()

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	problems, err := validation.ApplicationSchema.ValidateBytes(body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode application: %v", err), op)
		return
	}
	if len(problems) > 0 {
		h.respondDetails(w, http.StatusUnprocessableEntity, "invalid application", problems, op)
		return
	}

	var view eligibility.ApplicationView
	if err := json.Unmarshal(body, &view); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode application: %v", err), op)
		return
	}

	form := eligibility.NewForm()
	result, cleared := form.Load(view.LoanApplication())

	codes := make([]string, 0, len(result.FailureReasons))
	for _, code := range result.ReasonCodes() {
		codes = append(codes, string(code))
	}
	h.metrics.ObserveEvaluation(string(result.Verdict), string(form.Application().Purpose), codes, result.PolicyCapApplied)

	h.logger.Debug("evaluated application",
		zap.String("op", op),
		zap.String("requestId", middleware.GetReqID(r.Context())),
		zap.String("verdict", string(result.Verdict)),
		zap.Strings("reasons", codes),
		zap.Bool("ownershipCleared", cleared),
	)

	h.writeJSON(w, http.StatusOK, evaluateResponse{
		Application:      form.Application().View(),
		Result:           result.View(),
		OwnershipOptions: ownershipOptions(form.OwnershipOptions()),
		OwnershipCleared: cleared,
		Duration:         time.Since(start).String(),
	})
}

func (h *handler) handleOwnershipOptions(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOwnershipOptions"

	purpose, err := eligibility.ParsePurpose(r.URL.Query().Get("purpose"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	region, err := eligibility.ParseRegion(r.URL.Query().Get("region"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string][]option{
		"options": ownershipOptions(eligibility.OwnershipOptions(purpose, region)),
	})
}

func ownershipOptions(values []eligibility.Ownership) []option {
	options := make([]option, 0, len(values))
	for _, v := range values {
		options = append(options, option{Value: string(v), Label: v.Label()})
	}
	return options
}

func (h *handler) handleReference(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.reference.Tables())
}

func (h *handler) handleReferenceTable(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReferenceTable"

	table, err := reference.Table(h.reference, chi.URLParam(r, "table"))
	if err != nil {
		if errors.Is(err, reference.ErrUnknownTable) {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, table)
}

func (h *handler) handleDepositProtection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDepositProtection"

	region := reference.DepositRegion(strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "region"))))
	row, err := h.reference.DepositProtection(region)
	if err != nil {
		if errors.Is(err, reference.ErrUnknownRegion) {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, depositProtectionResponse{
		DepositProtection: row,
		HousingDisplay:    format.Won(row.Housing),
		CommercialDisplay: format.Won(row.Commercial),
	})
}

// handleApprovalAuthorities lists the matrix, optionally filtered by risk.
// With risk, area and amount (millions of KRW) it returns the deciding row.
func (h *handler) handleApprovalAuthorities(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleApprovalAuthorities"
	query := r.URL.Query()

	var risk reference.CollateralRisk
	if v := query.Get("risk"); v != "" {
		parsed, err := reference.ParseCollateralRisk(v)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		risk = parsed
	}

	areaParam, amountParam := query.Get("area"), query.Get("amount")
	if areaParam == "" && amountParam == "" {
		h.writeJSON(w, http.StatusOK, h.reference.ApprovalAuthorities(risk))
		return
	}
	if risk == "" || areaParam == "" || amountParam == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "risk, area and amount are all required for a lookup", op)
		return
	}

	area, err := reference.ParseAuthorityArea(areaParam)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	amount, err := decimal.NewFromString(amountParam)
	if err != nil || amount.Sign() < 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid amount %q", amountParam), op)
		return
	}

	row, ok := h.reference.ApprovalAuthorityFor(risk, area, amount)
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "no approval authority covers this loan", op)
		return
	}
	h.writeJSON(w, http.StatusOK, approvalLookupResponse{Amount: amount.InexactFloat64(), Authority: row})
}

func (h *handler) handleAssistantStatus(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"enabled": h.assistantEnabled,
		"link":    h.reference.Links().Assistant,
	})
}

func (h *handler) handleInquiry(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleInquiry"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	var req inquiryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode inquiry: %v", err), op)
		return
	}

	session, reply, err := h.store.Send(r.Context(), req.SessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrStoreFull):
			h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), op)
		case errors.Is(err, assistant.ErrBusy):
			h.respondErrorWithOp(w, http.StatusConflict, err.Error(), op)
		case errors.Is(err, assistant.ErrEmptyInquiry), errors.Is(err, assistant.ErrInquiryTooLong):
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		default:
			h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, inquiryResponse{
		SessionID: session.ID(),
		Reply:     reply,
		Messages:  session.Messages(),
	})
}

func (h *handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMessages"

	session, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, "unknown assistant session", op)
		return
	}
	h.writeJSON(w, http.StatusOK, messagesResponse{
		SessionID: session.ID(),
		InFlight:  session.InFlight(),
		Messages:  session.Messages(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// readBody reads a size-limited request body, writing the error response
// itself when it fails.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.request"),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logRequestError(status, msg, op)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) respondDetails(w http.ResponseWriter, status int, msg string, details []string, op string) {
	h.logRequestError(status, msg, op)
	h.writeJSON(w, status, map[string]any{"error": msg, "details": details})
}

func (h *handler) logRequestError(status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("op", op), zap.Int("status", status), zap.String("error", msg))
		return
	}
	h.logger.Debug("request rejected", zap.String("op", op), zap.Int("status", status), zap.String("error", msg))
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
