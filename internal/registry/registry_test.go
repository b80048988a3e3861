package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rzimmerman2022/healthplan-navigator/internal/config"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is an in-memory Cache for tests.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte) error {
	m.entries[key] = value
	return nil
}

const nppesLookupBody = `{
	"result_count": 1,
	"results": [{
		"number": 1234567890,
		"basic": {"first_name": "Jane", "last_name": "Smith"},
		"taxonomies": [
			{"desc": "Internal Medicine", "primary": false},
			{"desc": "Cardiology", "primary": true}
		],
		"addresses": [{"city": "Phoenix", "state": "AZ", "telephone_number": "602-555-0100"}]
	}]
}`

func TestNPPESLookupNPI(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2.1", r.URL.Query().Get("version"))
		assert.Equal(t, "1234567890", r.URL.Query().Get("number"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(nppesLookupBody))
	}))
	defer srv.Close()

	dir := NewNPPES(srv.URL, srv.Client(), nil)
	rec, err := dir.LookupNPI(context.Background(), "1234567890")

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "1234567890", rec.NPI)
	assert.Equal(t, "Jane Smith", rec.Name)
	assert.Equal(t, "Cardiology", rec.Specialty)
	assert.Equal(t, "Phoenix", rec.City)
}

func TestNPPESLookupNPI_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result_count": 0, "results": []}`))
	}))
	defer srv.Close()

	dir := NewNPPES(srv.URL, srv.Client(), nil)
	rec, err := dir.LookupNPI(context.Background(), "0000000000")

	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNPPESFindProvider_ByName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "smith", q.Get("last_name"))
		assert.Equal(t, "jane", q.Get("first_name"))
		assert.Equal(t, "Cardiology", q.Get("taxonomy_description"))
		w.Write([]byte(nppesLookupBody))
	}))
	defer srv.Close()

	dir := NewNPPES(srv.URL, srv.Client(), nil)
	rec, err := dir.FindProvider(context.Background(), model.Provider{
		Name:      "Dr. Jane Smith, MD",
		Specialty: "Cardiology",
	})

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "1234567890", rec.NPI)
}

func TestNPPESFindProvider_NoConfidentMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nppesLookupBody))
	}))
	defer srv.Close()

	dir := NewNPPES(srv.URL, srv.Client(), nil)
	rec, err := dir.FindProvider(context.Background(), model.Provider{
		Name:      "Robert Smith",
		Specialty: "Dermatology",
	})

	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNPPESLookup_UsesCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(nppesLookupBody))
	}))
	defer srv.Close()

	dir := NewNPPES(srv.URL, srv.Client(), newMemCache())

	for i := 0; i < 3; i++ {
		rec, err := dir.LookupNPI(context.Background(), "1234567890")
		require.NoError(t, err)
		require.NotNil(t, rec)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestNPPESLookup_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`down`))
	}))
	defer srv.Close()

	dir := NewNPPES(srv.URL, srv.Client(), nil)
	_, err := dir.LookupNPI(context.Background(), "1234567890")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

const marketplaceBody = `{
	"plans": [
		{
			"id": "12345AZ6789012",
			"name": "Gold Choice Select",
			"issuer": {"name": "Ambetter"},
			"metal_level": "Gold",
			"type": "HMO",
			"premium": 450.00,
			"deductible": {"individual": 1500},
			"moop": {"individual": 8000},
			"copays": {"primary": 30, "specialist": 60, "emergency": 500},
			"coinsurance": 20,
			"quality_rating": {"global": 4.0, "customer": 3.5}
		},
		{
			"name": "Broken Plan Without ID"
		}
	]
}`

func TestMarketplaceFetchPlans(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plans", r.URL.Path)
		assert.Equal(t, "85001", r.URL.Query().Get("zipcode"))
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(marketplaceBody))
	}))
	defer srv.Close()

	finder := NewMarketplace(srv.URL, "test-key", srv.Client(), nil)
	plans, err := finder.FetchPlans(context.Background(), "85001", 2026)

	require.NoError(t, err)
	require.Len(t, plans, 1) // plan without id is dropped

	p := plans[0]
	assert.Equal(t, "12345AZ6789012", p.PlanID)
	assert.Equal(t, "Gold Choice Select", p.MarketingName)
	assert.Equal(t, "Ambetter", p.Issuer)
	assert.Equal(t, model.MetalGold, p.MetalLevel)
	assert.Equal(t, model.PlanHMO, p.PlanType)
	assert.Equal(t, 450.00, p.MonthlyPremium)
	assert.Equal(t, 1500.0, p.Deductible)
	assert.Equal(t, 8000.0, p.OOPMax)
	assert.Equal(t, 30.0, p.CopayPrimary)
	assert.InDelta(t, 0.2, p.Coinsurance, 0.001)
	assert.Equal(t, 4.0, p.QualityRating)
	assert.Equal(t, "healthcare.gov", p.SourceFile)
}

func TestMarketplaceFetchPlans_NoAPIKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"plans": []}`))
	}))
	defer srv.Close()

	finder := NewMarketplace(srv.URL, "", srv.Client(), nil)
	plans, err := finder.FetchPlans(context.Background(), "85001", 2026)

	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestRxNormLookupCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rxcui.json", r.URL.Path)
		assert.Equal(t, "Metformin", r.URL.Query().Get("name"))
		w.Write([]byte(`{"idGroup": {"rxnormId": ["6809"]}}`))
	}))
	defer srv.Close()

	drugs := NewRxNorm(srv.URL, srv.Client(), nil)
	code, err := drugs.LookupCode(context.Background(), "Metformin")

	require.NoError(t, err)
	assert.Equal(t, "6809", code)
}

func TestRxNormLookupCode_Unknown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idGroup": {}}`))
	}))
	defer srv.Close()

	drugs := NewRxNorm(srv.URL, srv.Client(), nil)
	code, err := drugs.LookupCode(context.Background(), "NotADrug")

	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestRxNormAlternatives(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rxcui.json":
			w.Write([]byte(`{"idGroup": {"rxnormId": ["6809"]}}`))
		case "/rxcui/6809/related.json":
			w.Write([]byte(`{
				"relatedGroup": {
					"conceptGroup": [{
						"tty": "SBD",
						"conceptProperties": [
							{"rxcui": "861007", "name": "Glucophage 500 MG Oral Tablet"},
							{"rxcui": "6809", "name": "Metformin"}
						]
					}]
				}
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	drugs := NewRxNorm(srv.URL, srv.Client(), nil)
	alts, err := drugs.Alternatives(context.Background(), "Metformin")

	require.NoError(t, err)
	require.Len(t, alts, 1) // the drug itself is excluded
	assert.Equal(t, "861007", alts[0].RxCUI)
	assert.Equal(t, "Glucophage 500 MG Oral Tablet", alts[0].Name)
	assert.Equal(t, "SBD", alts[0].TTY)
}

func TestNewRegistry_AllDisabled(t *testing.T) {
	t.Parallel()

	r := New(config.RegistryConfig{}, nil)

	rec, err := r.Providers.FindProvider(context.Background(), model.Provider{Name: "Jane Smith"})
	require.NoError(t, err)
	assert.Nil(t, rec)

	code, err := r.Drugs.LookupCode(context.Background(), "Metformin")
	require.NoError(t, err)
	assert.Empty(t, code)

	plans, err := r.Plans.FetchPlans(context.Background(), "85001", 2026)
	require.NoError(t, err)
	assert.Nil(t, plans)
}

func TestNewRegistry_EnabledWiresClients(t *testing.T) {
	t.Parallel()

	r := New(config.RegistryConfig{
		NPPESEnabled:       true,
		NPPESBaseURL:       "https://npiregistry.cms.hhs.gov/api/",
		RxNormEnabled:      true,
		RxNormBaseURL:      "https://rxnav.nlm.nih.gov/REST",
		MarketplaceEnabled: true,
		MarketplaceBaseURL: "https://marketplace.api.healthcare.gov/api/v1",
	}, nil)

	assert.IsType(t, &nppesClient{}, r.Providers)
	assert.IsType(t, &rxnormClient{}, r.Drugs)
	assert.IsType(t, &marketplaceClient{}, r.Plans)
}
