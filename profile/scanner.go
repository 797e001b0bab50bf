package profile

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
)

// Compile-time check to ensure Scanner implements ConditionScanner
var _ interfaces.ConditionScanner = (*Scanner)(nil)

const (
	// MaxCandidates bounds the profiles built for one condition
	MaxCandidates = 20
	// DefaultPacing separates consecutive profile builds
	DefaultPacing = 400 * time.Millisecond
)

// ScannerOptions configures a Scanner
type ScannerOptions struct {
	// Limit is capped at MaxCandidates; zero means MaxCandidates
	Limit  int
	Pacing time.Duration
	// Sleep replaces the pacing wait in tests
	Sleep func(ctx context.Context, d time.Duration) error
}

// Scanner builds profiles for the drugs associated with a condition
type Scanner struct {
	builder    interfaces.ProfileBuilder
	resolver   interfaces.ApprovalResolver
	repository interfaces.ExclusivityRepository
	limit      int
	pacing     time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewScanner creates a condition scanner
func NewScanner(
	builder interfaces.ProfileBuilder,
	resolver interfaces.ApprovalResolver,
	repository interfaces.ExclusivityRepository,
	opts ScannerOptions,
) *Scanner {
	s := &Scanner{
		builder:    builder,
		resolver:   resolver,
		repository: repository,
		limit:      opts.Limit,
		pacing:     opts.Pacing,
		sleep:      opts.Sleep,
	}

	if s.limit <= 0 || s.limit > MaxCandidates {
		s.limit = MaxCandidates
	}
	if s.pacing < 0 {
		s.pacing = 0
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}

	return s
}

// ScanCondition builds profiles sequentially for at most limit candidates,
// pacing between consecutive builds, and returns them by effective LOE with
// unknown dates last. Failed and unknown candidates are skipped.
func (s *Scanner) ScanCondition(ctx context.Context, condition string) ([]entities.DrugPatentProfile, error) {
	candidates, err := s.candidates(ctx, condition)
	if err != nil {
		return nil, err
	}
	if len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}

	logging.Info("Scanning condition", "condition", condition, "candidates", len(candidates))

	profiles := make([]entities.DrugPatentProfile, 0, len(candidates))
	for i, name := range candidates {
		if i > 0 {
			if err := s.sleep(ctx, s.pacing); err != nil {
				return nil, err
			}
		}

		profile, err := s.builder.BuildProfile(ctx, name)
		if err != nil {
			if abortErr := abortError(ctx, err); abortErr != nil {
				return nil, abortErr
			}
			logging.Warn("Skipping candidate after profile failure", "condition", condition, "drug", name, "error", err)
			continue
		}
		if profile == nil {
			logging.Debug("Skipping candidate without approval", "condition", condition, "drug", name)
			continue
		}
		profiles = append(profiles, *profile)
	}

	SortByEffectiveLOE(profiles)
	return profiles, nil
}

// candidates asks the registry for the pharmacologic class first and falls
// back to an Orange Book keyword search when that fails or finds nothing
func (s *Scanner) candidates(ctx context.Context, condition string) ([]string, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, nil
	}

	names, err := s.resolver.SearchPharmClass(ctx, condition)
	if err != nil {
		if abortErr := abortError(ctx, err); abortErr != nil {
			return nil, abortErr
		}
		logging.Warn("Pharmacologic class search failed, using Orange Book keyword search", "condition", condition, "error", err)
	}
	if err == nil && len(names) > 0 {
		return names, nil
	}

	return s.repository.SearchProducts(ctx, condition)
}

// SortByEffectiveLOE orders profiles by effective LOE ascending. Profiles
// without a date go last and ties keep their order.
func SortByEffectiveLOE(profiles []entities.DrugPatentProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i].EffectiveLOE, profiles[j].EffectiveLOE
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a < b
	})
}

// abortError returns the error that ends a scan: a done ctx, or a failure
// caused by a deadline or cancellation upstream
func abortError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
