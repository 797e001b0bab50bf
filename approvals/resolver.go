package approvals

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
)

// Compile-time check to ensure Resolver implements ApprovalResolver
var _ interfaces.ApprovalResolver = (*Resolver)(nil)

const (
	// NameSearchLimit is the result limit for each brand/generic query
	NameSearchLimit = 5
	// ClassSearchLimit bounds pharmacologic class queries
	ClassSearchLimit = 20
)

// Resolver maps drug names to approval records
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver on top of a registry client
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve searches by brand name, then by generic name, and merges the
// results in that order keeping the first record per application number.
// A term that fails is logged and skipped. Cancellation, an expired deadline
// or a deadline the rate limiter cannot meet aborts.
func (r *Resolver) Resolve(ctx context.Context, drugName string) ([]entities.ApprovalRecord, error) {
	name := strings.TrimSpace(drugName)
	if name == "" {
		return nil, nil
	}

	var records []entities.ApprovalRecord
	seen := make(map[string]bool)

	for _, field := range []string{FieldBrandName, FieldGenericName} {
		outcome := r.client.searchTerm(ctx, field, name, NameSearchLimit)

		switch outcome.Status {
		case SearchNotFound:
			logging.Debug("No registry match", "field", field, "term", name)
			continue
		case SearchFailed:
			if errors.Is(outcome.Err, ErrRateLimitWait) {
				return nil, outcome.Err
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			logging.Warn("Registry search failed, trying next term", "field", field, "term", name, "error", outcome.Err)
			continue
		}

		for _, result := range outcome.Results {
			record := toApprovalRecord(result)
			if record.ApplicationNumber == "" || seen[record.ApplicationNumber] {
				continue
			}
			seen[record.ApplicationNumber] = true
			records = append(records, record)
		}
	}

	return records, nil
}

// SearchPharmClass returns unique brand names for a pharmacologic class in
// registry order. Unlike Resolve, a failed search is returned to the caller.
func (r *Resolver) SearchPharmClass(ctx context.Context, class string) ([]string, error) {
	class = strings.TrimSpace(class)
	if class == "" {
		return nil, nil
	}

	outcome := r.client.searchTerm(ctx, FieldPharmClass, class, ClassSearchLimit)
	switch outcome.Status {
	case SearchNotFound:
		return nil, nil
	case SearchFailed:
		return nil, outcome.Err
	}

	var names []string
	seen := make(map[string]bool)
	for _, result := range outcome.Results {
		name := brandName(result)
		key := strings.ToUpper(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}

	return names, nil
}

func toApprovalRecord(result drugsFDAResult) entities.ApprovalRecord {
	applicationType := ClassifyApplication(result.ApplicationNumber)

	record := entities.ApprovalRecord{
		ApplicationNumber: strings.TrimSpace(result.ApplicationNumber),
		ApplicationType:   applicationType,
		BrandName:         brandName(result),
		Sponsor:           firstNonEmpty(result.SponsorName, first(result.OpenFDA.ManufacturerName)),
		ApprovalDate:      approvalDate(result.Submissions),
		ActiveIngredients: activeIngredients(result.Products),
		IsBiologic:        applicationType == entities.ApplicationBLA,
	}

	record.GenericName = firstNonEmpty(first(result.OpenFDA.GenericName), strings.Join(record.ActiveIngredients, ", "))

	if len(result.Products) > 0 {
		record.DosageForm = strings.TrimSpace(result.Products[0].DosageForm)
		record.Route = strings.TrimSpace(result.Products[0].Route)
	}
	if record.Route == "" {
		record.Route = first(result.OpenFDA.Route)
	}

	return record
}

// ClassifyApplication derives the application type from the number prefix
func ClassifyApplication(applicationNumber string) string {
	upper := strings.ToUpper(strings.TrimSpace(applicationNumber))
	switch {
	case strings.HasPrefix(upper, entities.ApplicationBLA):
		return entities.ApplicationBLA
	case strings.HasPrefix(upper, entities.ApplicationANDA):
		return entities.ApplicationANDA
	default:
		return entities.ApplicationNDA
	}
}

func brandName(result drugsFDAResult) string {
	name := first(result.OpenFDA.BrandName)
	if name == "" && len(result.Products) > 0 {
		name = strings.TrimSpace(result.Products[0].BrandName)
	}
	return name
}

// activeIngredients lists unique ingredient names across all products
func activeIngredients(products []drugsFDAProduct) []string {
	var names []string
	seen := make(map[string]bool)
	for _, product := range products {
		for _, ingredient := range product.ActiveIngredients {
			name := strings.TrimSpace(ingredient.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// approvalDate prefers the original submission, then the earliest approved
// submission, else unknown
func approvalDate(submissions []drugsFDASubmission) entities.ISODate {
	for _, s := range submissions {
		if strings.EqualFold(s.SubmissionType, "ORIG") {
			if date := formatRegistryDate(s.SubmissionStatusDate); date != "" {
				return date
			}
		}
	}

	var approved []entities.ISODate
	for _, s := range submissions {
		if strings.EqualFold(s.SubmissionStatus, "AP") {
			if date := formatRegistryDate(s.SubmissionStatusDate); date != "" {
				approved = append(approved, date)
			}
		}
	}
	if len(approved) == 0 {
		return ""
	}
	sort.Slice(approved, func(i, j int) bool { return approved[i] < approved[j] })
	return approved[0]
}

// formatRegistryDate turns YYYYMMDD into YYYY-MM-DD. Anything that is not
// exactly eight digits is unknown.
func formatRegistryDate(raw string) entities.ISODate {
	raw = strings.TrimSpace(raw)
	if len(raw) != 8 {
		return ""
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return entities.ISODate(raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8])
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
