// Package approvals resolves drug names to FDA approval records through the
// openFDA drugs@FDA registry.
package approvals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
)

const (
	DefaultBaseURL = "https://api.fda.gov/drug/drugsfda.json"
	DefaultTimeout = 15 * time.Second

	// Search fields
	FieldBrandName   = "openfda.brand_name"
	FieldGenericName = "openfda.generic_name"
	FieldPharmClass  = "openfda.pharm_class_epc"
)

var (
	// ErrNotFound is returned when the registry has no match for a search
	ErrNotFound = errors.New("no registry match")

	// ErrRateLimitWait is returned when the caller cannot wait for its turn
	// at the registry. It wraps the context error that stopped the wait.
	ErrRateLimitWait = errors.New("rate limiter wait aborted")
)

// drugsFDAResponse is the subset of the drugsfda.json payload the resolver reads
type drugsFDAResponse struct {
	Results []drugsFDAResult `json:"results"`
}

type drugsFDAResult struct {
	ApplicationNumber string               `json:"application_number"`
	SponsorName       string               `json:"sponsor_name"`
	OpenFDA           drugsFDAOpenFDA      `json:"openfda"`
	Products          []drugsFDAProduct    `json:"products"`
	Submissions       []drugsFDASubmission `json:"submissions"`
}

type drugsFDAOpenFDA struct {
	BrandName        []string `json:"brand_name"`
	GenericName      []string `json:"generic_name"`
	ManufacturerName []string `json:"manufacturer_name"`
	PharmClassEPC    []string `json:"pharm_class_epc"`
	Route            []string `json:"route"`
}

type drugsFDAProduct struct {
	ProductNumber     string                     `json:"product_number"`
	BrandName         string                     `json:"brand_name"`
	DosageForm        string                     `json:"dosage_form"`
	Route             string                     `json:"route"`
	MarketingStatus   string                     `json:"marketing_status"`
	ActiveIngredients []drugsFDAActiveIngredient `json:"active_ingredients"`
}

type drugsFDAActiveIngredient struct {
	Name     string `json:"name"`
	Strength string `json:"strength"`
}

type drugsFDASubmission struct {
	SubmissionType       string `json:"submission_type"`
	SubmissionNumber     string `json:"submission_number"`
	SubmissionStatus     string `json:"submission_status"`
	SubmissionStatusDate string `json:"submission_status_date"`
}

// ClientOptions configures a Client. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Limiter    interfaces.RateLimiter
}

// Client performs rate-limited searches against the registry
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter interfaces.RateLimiter
}

// NewClient creates a registry client
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		limiter: opts.Limiter,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.limiter == nil {
		c.limiter = NewIntervalLimiter(DefaultInterval)
	}

	return c
}

// search runs one exact-phrase query, field:"term". A 404 is ErrNotFound.
func (c *Client) search(ctx context.Context, field, term string, limit int) ([]drugsFDAResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, limiterError(ctx, err)
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL %q: %w", c.baseURL, err)
	}
	query := endpoint.Query()
	query.Set("search", fmt.Sprintf("%s:%q", field, term))
	query.Set("limit", strconv.Itoa(limit))
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("User-Agent", "loe-engine/1.0")
	req.Header.Set("Accept", "application/json")

	response, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close registry response body", "error", err)
		}
	}()

	if response.StatusCode == http.StatusNotFound {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, response.Body)
		return nil, ErrNotFound
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("registry returned HTTP %d", response.StatusCode)
	}

	var payload drugsFDAResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, ErrNotFound
	}

	return payload.Results, nil
}

// limiterError wraps a failed wait. rate.Limiter refuses a wait that would
// overrun the deadline before ctx itself has expired, so that case is
// reported as context.DeadlineExceeded.
func limiterError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrRateLimitWait, ctxErr)
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %w: %v", ErrRateLimitWait, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrRateLimitWait, err)
}

// firstNonEmpty returns the first non-blank value
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
