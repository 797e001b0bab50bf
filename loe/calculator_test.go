package loe

import (
	"testing"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
)

func patents(dates ...entities.ISODate) []entities.OrangeBookPatentRecord {
	out := make([]entities.OrangeBookPatentRecord, len(dates))
	for i, d := range dates {
		out[i] = entities.OrangeBookPatentRecord{PatentNo: string(rune('A' + i)), ExpiryDateParsed: d}
	}
	return out
}

func exclusivities(dates ...entities.ISODate) []entities.OrangeBookExclusivityRecord {
	out := make([]entities.OrangeBookExclusivityRecord, len(dates))
	for i, d := range dates {
		out[i] = entities.OrangeBookExclusivityRecord{ExclusivityCode: "NCE", ExclusivityDateParsed: d}
	}
	return out
}

var refNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCalculateBiologic(t *testing.T) {
	approval := &entities.ApprovalRecord{
		ApplicationType: entities.ApplicationBLA,
		ApprovalDate:    "2018-01-01",
		IsBiologic:      true,
	}

	result := Calculate(nil, nil, approval, refNow)

	if result.BiologicExclusivityExpiry != "2030-01-01" {
		t.Errorf("expected 2030-01-01, got %q", result.BiologicExclusivityExpiry)
	}
	if result.EffectiveLOE != "2030-01-01" {
		t.Errorf("expected effective LOE 2030-01-01, got %q", result.EffectiveLOE)
	}
	if result.DaysUntilLOE == nil || *result.DaysUntilLOE != 1826 {
		t.Errorf("expected 1826 days, got %v", result.DaysUntilLOE)
	}
}

func TestBiologicExclusivityExpiry(t *testing.T) {
	tests := []struct {
		name     string
		approval *entities.ApprovalRecord
		expected entities.ISODate
	}{
		{"nil approval", nil, ""},
		{"small molecule", &entities.ApprovalRecord{ApprovalDate: "2020-05-10"}, ""},
		{"biologic", &entities.ApprovalRecord{ApprovalDate: "2020-05-10", IsBiologic: true}, "2032-05-10"},
		{"biologic without date", &entities.ApprovalRecord{IsBiologic: true}, ""},
		{"leap day", &entities.ApprovalRecord{ApprovalDate: "2016-02-29", IsBiologic: true}, "2028-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BiologicExclusivityExpiry(tt.approval); got != tt.expected {
				t.Errorf("BiologicExclusivityExpiry() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCalculateTakesLatestCandidate(t *testing.T) {
	result := Calculate(
		patents("2031-03-01", "", "2034-07-15"),
		exclusivities("2033-01-01", ""),
		&entities.ApprovalRecord{ApprovalDate: "2020-01-01"},
		refNow,
	)

	if result.LatestPatentExpiry != "2034-07-15" {
		t.Errorf("latest patent = %q", result.LatestPatentExpiry)
	}
	if result.LatestExclusivityExpiry != "2033-01-01" {
		t.Errorf("latest exclusivity = %q", result.LatestExclusivityExpiry)
	}
	if result.BiologicExclusivityExpiry != "" {
		t.Errorf("non-biologic must not get BPCIA, got %q", result.BiologicExclusivityExpiry)
	}
	if result.EffectiveLOE != "2034-07-15" {
		t.Errorf("effective = %q", result.EffectiveLOE)
	}

	for _, candidate := range []entities.ISODate{result.LatestPatentExpiry, result.LatestExclusivityExpiry, result.BiologicExclusivityExpiry} {
		if candidate.After(result.EffectiveLOE) {
			t.Errorf("candidate %s is after the effective LOE %s", candidate, result.EffectiveLOE)
		}
	}
}

func TestCalculateExclusivityBeatsPatent(t *testing.T) {
	result := Calculate(patents("2026-01-01"), exclusivities("2027-06-30"), nil, refNow)
	if result.EffectiveLOE != "2027-06-30" {
		t.Errorf("expected exclusivity to drive LOE, got %q", result.EffectiveLOE)
	}
}

func TestCalculateAllUnknown(t *testing.T) {
	result := Calculate(patents("", ""), exclusivities(""), &entities.ApprovalRecord{IsBiologic: true}, refNow)

	if result.EffectiveLOE != "" {
		t.Errorf("expected unknown effective LOE, got %q", result.EffectiveLOE)
	}
	if result.DaysUntilLOE != nil {
		t.Errorf("expected nil days, got %d", *result.DaysUntilLOE)
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name     string
		date     entities.ISODate
		now      time.Time
		expected int
	}{
		{"same day", "2025-01-01", refNow, 0},
		{"tomorrow", "2025-01-02", refNow, 1},
		{"partial day rounds up", "2025-01-02", refNow.Add(6 * time.Hour), 1},
		{"past date", "2024-12-01", refNow, -31},
		{"yesterday afternoon", "2024-12-31", refNow.Add(12 * time.Hour), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysUntil(tt.date, tt.now)
			if got == nil {
				t.Fatal("expected a value")
			}
			if *got != tt.expected {
				t.Errorf("DaysUntil(%s) = %d, want %d", tt.date, *got, tt.expected)
			}
		})
	}

	if DaysUntil("", refNow) != nil {
		t.Error("expected nil for unknown date")
	}
}

func TestExpiredLOEIsNonPositive(t *testing.T) {
	result := Calculate(patents("2019-06-01"), nil, nil, refNow)
	if result.DaysUntilLOE == nil || *result.DaysUntilLOE > 0 {
		t.Errorf("expected non-positive days for an expired LOE, got %v", result.DaysUntilLOE)
	}
}

func TestEarliestPatentExpiry(t *testing.T) {
	if got := EarliestPatentExpiry(patents("2034-01-01", "", "2029-05-05", "2031-01-01")); got != "2029-05-05" {
		t.Errorf("expected 2029-05-05, got %q", got)
	}
	if got := EarliestPatentExpiry(patents("", "")); got != "" {
		t.Errorf("expected unknown, got %q", got)
	}
	if got := EarliestPatentExpiry(nil); got != "" {
		t.Errorf("expected unknown for no patents, got %q", got)
	}
}
