// Package interfaces defines core abstractions for the LOE engine
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
)

// OrangeBookStore defines the contract for the two-tier Orange Book cache.
// Load returns the current table generation, refreshing it when stale.
type OrangeBookStore interface {
	Load(ctx context.Context) (*entities.OrangeBookTables, error)

	// Refresh ignores both cache tiers and downloads a new archive
	Refresh(ctx context.Context) (*entities.OrangeBookTables, error)

	// Tables returns the in-memory generation without any I/O, or nil
	Tables() *entities.OrangeBookTables
}

// RateLimiter spaces outbound calls to an external service
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// ApprovalResolver maps free-text drug names to registry approval records
type ApprovalResolver interface {
	// Resolve returns approvals matching a brand or generic name, registry order
	Resolve(ctx context.Context, drugName string) ([]entities.ApprovalRecord, error)

	// SearchPharmClass returns brand names of drugs in a pharmacologic class
	SearchPharmClass(ctx context.Context, class string) ([]string, error)
}

// ExclusivityRepository returns deduplicated, sorted Orange Book rows for an application
type ExclusivityRepository interface {
	Patents(ctx context.Context, applicationNumber string) ([]entities.OrangeBookPatentRecord, error)
	Exclusivities(ctx context.Context, applicationNumber string) ([]entities.OrangeBookExclusivityRecord, error)
	Lookup(ctx context.Context, applicationNumber string) ([]entities.OrangeBookPatentRecord, []entities.OrangeBookExclusivityRecord, error)

	// SearchProducts returns unique trade names whose product text mentions keyword
	SearchProducts(ctx context.Context, keyword string) ([]string, error)
}

// ProfileBuilder builds a single drug profile. A nil profile with a nil
// error means the drug was not found.
type ProfileBuilder interface {
	BuildProfile(ctx context.Context, drugName string) (*entities.DrugPatentProfile, error)
}

// ConditionScanner builds profiles for drugs associated with a condition
type ConditionScanner interface {
	ScanCondition(ctx context.Context, condition string) ([]entities.DrugPatentProfile, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	ScanCondition(w http.ResponseWriter, r *http.Request)
	GetPatents(w http.ResponseWriter, r *http.Request)
	GetExclusivities(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status, details and the HTTP status to use
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled refresh time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for input and data quality validation.
type DataValidator interface {
	// ValidateInput validates user supplied drug or condition names
	ValidateInput(input string) error

	// ValidateApplicationNumber validates an application number path parameter
	ValidateApplicationNumber(input string) error

	// ReportDataQuality summarises issues in one table generation
	ReportDataQuality(tables *entities.OrangeBookTables) *entities.DataQualityReport
}
