// Package loe computes loss-of-exclusivity dates from patents, statutory
// exclusivities and, for biologics, the 12-year BPCIA period.
package loe

import (
	"math"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
)

// BiologicExclusivityYears is the BPCIA reference product exclusivity
const BiologicExclusivityYears = 12

// Calculate merges the three LOE candidates. approval may be nil. now is
// the reference point for DaysUntilLOE.
func Calculate(
	patents []entities.OrangeBookPatentRecord,
	exclusivities []entities.OrangeBookExclusivityRecord,
	approval *entities.ApprovalRecord,
	now time.Time,
) entities.LOEResult {
	result := entities.LOEResult{
		LatestPatentExpiry:        LatestPatentExpiry(patents),
		LatestExclusivityExpiry:   LatestExclusivityExpiry(exclusivities),
		BiologicExclusivityExpiry: BiologicExclusivityExpiry(approval),
	}

	result.EffectiveLOE = entities.MaxDate(
		result.LatestPatentExpiry,
		result.LatestExclusivityExpiry,
		result.BiologicExclusivityExpiry,
	)
	result.DaysUntilLOE = DaysUntil(result.EffectiveLOE, now)

	return result
}

// LatestPatentExpiry ignores patents without a parsed expiry
func LatestPatentExpiry(patents []entities.OrangeBookPatentRecord) entities.ISODate {
	var latest entities.ISODate
	for _, p := range patents {
		latest = entities.MaxDate(latest, p.ExpiryDateParsed)
	}
	return latest
}

// EarliestPatentExpiry is the first parsed patent expiry, or unknown
func EarliestPatentExpiry(patents []entities.OrangeBookPatentRecord) entities.ISODate {
	var earliest entities.ISODate
	for _, p := range patents {
		if p.ExpiryDateParsed.IsZero() {
			continue
		}
		if earliest.IsZero() || p.ExpiryDateParsed < earliest {
			earliest = p.ExpiryDateParsed
		}
	}
	return earliest
}

// LatestExclusivityExpiry ignores exclusivities without a parsed date
func LatestExclusivityExpiry(exclusivities []entities.OrangeBookExclusivityRecord) entities.ISODate {
	var latest entities.ISODate
	for _, e := range exclusivities {
		latest = entities.MaxDate(latest, e.ExclusivityDateParsed)
	}
	return latest
}

// BiologicExclusivityExpiry is approval + 12 years for biologics with a known
// approval date, otherwise unknown
func BiologicExclusivityExpiry(approval *entities.ApprovalRecord) entities.ISODate {
	if approval == nil || !approval.IsBiologic {
		return ""
	}
	approved, ok := approval.ApprovalDate.Time()
	if !ok {
		return ""
	}
	return entities.NewISODate(approved.AddDate(BiologicExclusivityYears, 0, 0))
}

// DaysUntil returns ceil((date - now) in days), or nil for an unknown date.
// Dates are UTC midnight; past dates give zero or negative values.
func DaysUntil(date entities.ISODate, now time.Time) *int {
	target, ok := date.Time()
	if !ok {
		return nil
	}
	days := int(math.Ceil(target.Sub(now).Hours() / 24))
	return &days
}
