// Package health reports service health from the age of the Orange Book tables.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/clock"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
)

const (
	// Tables older than this are served but reported as degraded
	DegradedAfter = 24 * time.Hour
	// Tables older than this mean the daily refresh has failed twice
	UnhealthyAfter = 48 * time.Hour
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store         interfaces.OrangeBookStore
	clock         clock.Clock
	refreshHour   int
	refreshMinute int
}

// NewHealthChecker creates a health checker. refreshHour and refreshMinute
// give the daily refresh time used by CalculateNextUpdate.
func NewHealthChecker(store interfaces.OrangeBookStore, clk clock.Clock, refreshHour, refreshMinute int) *HealthCheckerImpl {
	if clk == nil {
		clk = clock.System{}
	}
	return &HealthCheckerImpl{
		store:         store,
		clock:         clk,
		refreshHour:   refreshHour,
		refreshMinute: refreshMinute,
	}
}

// HealthCheck never triggers a load; it only inspects the in-memory tables
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.clock.Now()
	tables := h.store.Tables()

	data = map[string]any{
		"next_update": h.CalculateNextUpdate().Format(time.RFC3339),
	}

	if tables == nil || (len(tables.Products) == 0 && len(tables.Patents) == 0) {
		data["loaded"] = false
		return "unhealthy", data, http.StatusServiceUnavailable
	}

	dataAge := now.Sub(tables.LoadedAt)

	switch {
	case dataAge > UnhealthyAfter:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case dataAge > DegradedAfter:
		status = "degraded"
		httpStatus = http.StatusOK
	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data["loaded"] = true
	data["last_update"] = tables.LoadedAt.Format(time.RFC3339)
	data["data_age_hours"] = math.Round(dataAge.Hours()*10) / 10
	data["source"] = string(tables.Source)
	data["products"] = len(tables.Products)
	data["patents"] = len(tables.Patents)
	data["exclusivities"] = len(tables.Exclusivities)

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next daily refresh time after now
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := h.clock.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), h.refreshHour, h.refreshMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
