package main

import (
	"github.com/deeyajkotecha-del/helix-biotech-sub002/approvals"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/clock"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/config"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/exclusivity"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/handlers"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/health"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/orangebook"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/profile"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/scheduler"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/validation"
)

// application wires every component from one configuration
type application struct {
	config     *config.Config
	clock      clock.Clock
	store      *orangebook.Store
	resolver   *approvals.Resolver
	repository *exclusivity.Repository
	builder    *profile.Builder
	scanner    *profile.Scanner
	validator  *validation.DataValidatorImpl
	health     *health.HealthCheckerImpl
}

func newApplication(cfg *config.Config, clk clock.Clock) *application {
	if clk == nil {
		clk = clock.System{}
	}

	validator := validation.NewDataValidator()

	store := orangebook.NewStore(orangebook.Options{
		URL:       cfg.OrangeBookURL,
		CacheDir:  cfg.CacheDir,
		TTL:       cfg.CacheTTL,
		Timeout:   cfg.ArchiveTimeout,
		Clock:     clk,
		Validator: validator,
	})

	resolver := approvals.NewResolver(approvals.NewClient(approvals.ClientOptions{
		BaseURL: cfg.OpenFDABaseURL,
		APIKey:  cfg.OpenFDAAPIKey,
		Timeout: cfg.RegistryTimeout,
		Limiter: approvals.NewIntervalLimiter(cfg.RegistryInterval),
	}))

	repository := exclusivity.NewRepository(store)
	builder := profile.NewBuilder(resolver, repository, clk)
	scanner := profile.NewScanner(builder, resolver, repository, profile.ScannerOptions{
		Limit:  cfg.ScanLimit,
		Pacing: cfg.ScanPacing,
	})

	return &application{
		config:     cfg,
		clock:      clk,
		store:      store,
		resolver:   resolver,
		repository: repository,
		builder:    builder,
		scanner:    scanner,
		validator:  validator,
		health:     health.NewHealthChecker(store, clk, cfg.RefreshHour, cfg.RefreshMinute),
	}
}

func (a *application) httpHandler() *handlers.HTTPHandlerImpl {
	return handlers.NewHTTPHandler(a.builder, a.scanner, a.repository, a.validator, a.health)
}

func (a *application) scheduler() *scheduler.Scheduler {
	return scheduler.NewScheduler(a.store, scheduler.Options{
		RefreshAt: a.config.RefreshAt,
		Clock:     a.clock,
	})
}
