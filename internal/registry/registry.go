// Package registry provides optional clients for external healthcare
// registries: the Healthcare.gov marketplace, the NPPES provider
// directory, and the RxNorm drug database. All lookups are best-effort
// collaborators for the local analysis pipeline; a disabled or
// unreachable registry degrades to local plan data and never fails the
// core pipeline.
package registry

import (
	"context"
	"net/http"
	"time"

	"github.com/rzimmerman2022/healthplan-navigator/internal/config"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
)

// Cache stores raw lookup responses keyed by request. Implementations
// must tolerate concurrent absence of entries; a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ProviderDirectory looks up care providers in an external registry.
type ProviderDirectory interface {
	// LookupNPI fetches the registry record for an exact NPI.
	LookupNPI(ctx context.Context, npi string) (*ProviderRecord, error)
	// FindProvider resolves a client provider to a registry record,
	// by NPI when present, otherwise by fuzzy name and specialty match.
	// Returns nil when no confident match exists.
	FindProvider(ctx context.Context, p model.Provider) (*ProviderRecord, error)
}

// PlanFinder fetches marketplace plans for a location.
type PlanFinder interface {
	FetchPlans(ctx context.Context, zipcode string, year int) ([]model.Plan, error)
}

// DrugDirectory resolves medication names to registry codes.
type DrugDirectory interface {
	// LookupCode returns the RxNorm concept identifier for a drug name,
	// or "" when the name is unknown to the registry.
	LookupCode(ctx context.Context, drugName string) (string, error)
	// Alternatives lists related branded/clinical drug concepts.
	Alternatives(ctx context.Context, drugName string) ([]DrugConcept, error)
}

// Registry bundles the configured external lookups. Disabled registries
// are represented by no-op implementations so callers never nil-check.
type Registry struct {
	Providers ProviderDirectory
	Drugs     DrugDirectory
	Plans     PlanFinder
}

// New builds a Registry from configuration. Each lookup is wired only
// when its enable flag is set; everything else is a no-op.
func New(cfg config.RegistryConfig, cache Cache) *Registry {
	hc := newHTTPClient(cfg.RequestTimeoutSecs)

	r := &Registry{
		Providers: noopDirectory{},
		Drugs:     noopDrugs{},
		Plans:     noopPlans{},
	}
	if cfg.NPPESEnabled {
		r.Providers = NewNPPES(cfg.NPPESBaseURL, hc, cache)
	}
	if cfg.RxNormEnabled {
		r.Drugs = NewRxNorm(cfg.RxNormBaseURL, hc, cache)
	}
	if cfg.MarketplaceEnabled {
		r.Plans = NewMarketplace(cfg.MarketplaceBaseURL, cfg.MarketplaceAPIKey, hc, cache)
	}
	return r
}

func newHTTPClient(timeoutSecs int) *http.Client {
	if timeoutSecs <= 0 {
		timeoutSecs = 15
	}
	return &http.Client{
		Timeout: time.Duration(timeoutSecs) * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

type noopDirectory struct{}

func (noopDirectory) LookupNPI(context.Context, string) (*ProviderRecord, error) {
	return nil, nil
}

func (noopDirectory) FindProvider(context.Context, model.Provider) (*ProviderRecord, error) {
	return nil, nil
}

type noopDrugs struct{}

func (noopDrugs) LookupCode(context.Context, string) (string, error) { return "", nil }

func (noopDrugs) Alternatives(context.Context, string) ([]DrugConcept, error) {
	return nil, nil
}

type noopPlans struct{}

func (noopPlans) FetchPlans(context.Context, string, int) ([]model.Plan, error) {
	return nil, nil
}
