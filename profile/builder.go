// Package profile assembles drug patent profiles and condition scans.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/clock"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/loe"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/metrics"
)

// Compile-time check to ensure Builder implements ProfileBuilder
var _ interfaces.ProfileBuilder = (*Builder)(nil)

// Builder resolves one drug name into a DrugPatentProfile
type Builder struct {
	resolver   interfaces.ApprovalResolver
	repository interfaces.ExclusivityRepository
	clock      clock.Clock
}

// NewBuilder creates a profile builder. A nil clock uses the system clock.
func NewBuilder(resolver interfaces.ApprovalResolver, repository interfaces.ExclusivityRepository, clk clock.Clock) *Builder {
	if clk == nil {
		clk = clock.System{}
	}
	return &Builder{
		resolver:   resolver,
		repository: repository,
		clock:      clk,
	}
}

// BuildProfile returns nil, nil when the registry knows no approval for
// drugName. Biologics never touch the Orange Book.
func (b *Builder) BuildProfile(ctx context.Context, drugName string) (*entities.DrugPatentProfile, error) {
	name := strings.TrimSpace(drugName)
	approvals, err := b.resolver.Resolve(ctx, name)
	if err != nil {
		metrics.ProfilesBuilt.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	if len(approvals) == 0 {
		metrics.ProfilesBuilt.WithLabelValues("not_found").Inc()
		return nil, nil
	}

	approval := approvals[0]
	patents := []entities.OrangeBookPatentRecord{}
	exclusivities := []entities.OrangeBookExclusivityRecord{}

	if approval.ApplicationType != entities.ApplicationBLA {
		patents, exclusivities, err = b.repository.Lookup(ctx, approval.ApplicationNumber)
		if err != nil {
			metrics.ProfilesBuilt.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to look up %s: %w", approval.ApplicationNumber, err)
		}
	}

	now := b.clock.Now()
	result := loe.Calculate(patents, exclusivities, &approval, now)

	profile := &entities.DrugPatentProfile{
		DrugName:                  name,
		BrandName:                 approval.BrandName,
		Sponsor:                   approval.Sponsor,
		Approval:                  approval,
		Patents:                   patents,
		Exclusivities:             exclusivities,
		UniquePatentNumbers:       uniquePatentNumbers(patents),
		EarliestPatentExpiry:      loe.EarliestPatentExpiry(patents),
		LatestPatentExpiry:        result.LatestPatentExpiry,
		LatestExclusivityExpiry:   result.LatestExclusivityExpiry,
		BiologicExclusivityExpiry: result.BiologicExclusivityExpiry,
		EffectiveLOE:              result.EffectiveLOE,
		DaysUntilLOE:              result.DaysUntilLOE,
		FetchedAt:                 now,
	}

	metrics.ProfilesBuilt.WithLabelValues("found").Inc()
	logging.Debug("Profile built",
		"drug", profile.DrugName,
		"application", approval.ApplicationNumber,
		"patents", len(patents),
		"exclusivities", len(exclusivities),
		"effective_loe", string(profile.EffectiveLOE))

	return profile, nil
}

func uniquePatentNumbers(patents []entities.OrangeBookPatentRecord) []string {
	numbers := make([]string, 0, len(patents))
	seen := make(map[string]bool, len(patents))
	for _, p := range patents {
		if seen[p.PatentNo] {
			continue
		}
		seen[p.PatentNo] = true
		numbers = append(numbers, p.PatentNo)
	}
	return numbers
}
