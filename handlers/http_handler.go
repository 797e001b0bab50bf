package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	builder    interfaces.ProfileBuilder
	scanner    interfaces.ConditionScanner
	repository interfaces.ExclusivityRepository
	validator  interfaces.DataValidator
	health     interfaces.HealthChecker
	startedAt  time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	builder interfaces.ProfileBuilder,
	scanner interfaces.ConditionScanner,
	repository interfaces.ExclusivityRepository,
	validator interfaces.DataValidator,
	health interfaces.HealthChecker,
) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		builder:    builder,
		scanner:    scanner,
		repository: repository,
		validator:  validator,
		health:     health,
		startedAt:  time.Now(),
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// GetProfile serves GET /v1/profiles/{drugName}
func (h *HTTPHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	drugName := strings.TrimSpace(chi.URLParam(r, "drugName"))
	if err := h.validator.ValidateInput(drugName); err != nil {
		logging.Warn("Unusual user input", "drugName", drugName, "error", err)
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.builder.BuildProfile(r.Context(), drugName)
	if err != nil {
		h.respondUpstreamError(w, r, err, "drugName", drugName)
		return
	}
	if profile == nil {
		RespondWithError(w, r, http.StatusNotFound, fmt.Sprintf("No FDA approval found for %q", drugName))
		return
	}

	RespondWithJSON(w, r, http.StatusOK, profile)
}

// ScanCondition serves GET /v1/conditions/{condition}. An empty result is a 200.
func (h *HTTPHandlerImpl) ScanCondition(w http.ResponseWriter, r *http.Request) {
	condition := strings.TrimSpace(chi.URLParam(r, "condition"))
	if err := h.validator.ValidateInput(condition); err != nil {
		logging.Warn("Unusual user input", "condition", condition, "error", err)
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profiles, err := h.scanner.ScanCondition(r.Context(), condition)
	if err != nil {
		h.respondUpstreamError(w, r, err, "condition", condition)
		return
	}
	if profiles == nil {
		profiles = []entities.DrugPatentProfile{}
	}

	RespondWithJSON(w, r, http.StatusOK, profiles)
}

// GetPatents serves GET /v1/applications/{applNo}/patents
func (h *HTTPHandlerImpl) GetPatents(w http.ResponseWriter, r *http.Request) {
	applNo, ok := h.applicationNumber(w, r)
	if !ok {
		return
	}

	patents, err := h.repository.Patents(r.Context(), applNo)
	if err != nil {
		h.respondUpstreamError(w, r, err, "applNo", applNo)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, patents)
}

// GetExclusivities serves GET /v1/applications/{applNo}/exclusivities
func (h *HTTPHandlerImpl) GetExclusivities(w http.ResponseWriter, r *http.Request) {
	applNo, ok := h.applicationNumber(w, r)
	if !ok {
		return
	}

	exclusivities, err := h.repository.Exclusivities(r.Context(), applNo)
	if err != nil {
		h.respondUpstreamError(w, r, err, "applNo", applNo)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, exclusivities)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := time.Since(h.startedAt)

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	RespondWithJSON(w, r, httpStatus, response)
}

func (h *HTTPHandlerImpl) applicationNumber(w http.ResponseWriter, r *http.Request) (string, bool) {
	applNo := strings.TrimSpace(chi.URLParam(r, "applNo"))
	if err := h.validator.ValidateApplicationNumber(applNo); err != nil {
		logging.Warn("Unusual user input", "applNo", applNo, "error", err)
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return "", false
	}
	return applNo, true
}

// respondUpstreamError maps failures of the archive or the registry.
// Timeouts are 504, everything else is a 502.
func (h *HTTPHandlerImpl) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error, key, value string) {
	switch {
	case errors.Is(err, context.Canceled):
		logging.Info("Request cancelled by client", key, value)
		RespondWithError(w, r, http.StatusServiceUnavailable, "Request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		logging.Warn("Upstream data source timed out", key, value, "error", err)
		RespondWithError(w, r, http.StatusGatewayTimeout, "Upstream data source timed out")
	default:
		logging.Error("Upstream data source failed", key, value, "error", err)
		RespondWithError(w, r, http.StatusBadGateway, "Orange Book or Drugs@FDA data is currently unavailable")
	}
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
