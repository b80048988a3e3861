package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
	"go.uber.org/zap"
)

// ProviderRecord is a provider as known to the NPPES registry.
type ProviderRecord struct {
	NPI       string `json:"npi"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type nppesClient struct {
	baseURL string
	http    *http.Client
	cache   Cache
}

// NewNPPES creates a provider directory backed by the public NPPES
// registry API. cache may be nil.
func NewNPPES(baseURL string, hc *http.Client, cache Cache) ProviderDirectory {
	return &nppesClient{baseURL: baseURL, http: hc, cache: cache}
}

func (c *nppesClient) LookupNPI(ctx context.Context, npi string) (*ProviderRecord, error) {
	if npi == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("version", "2.1")
	q.Set("number", npi)

	recs, err := c.search(ctx, q, "nppes:npi:"+npi)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (c *nppesClient) FindProvider(ctx context.Context, p model.Provider) (*ProviderRecord, error) {
	if p.NPI != "" {
		rec, err := c.LookupNPI(ctx, p.NPI)
		if err != nil || rec != nil {
			return rec, err
		}
	}

	first, last := splitProviderName(p.Name)
	if last == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("version", "2.1")
	q.Set("enumeration_type", "NPI-1")
	q.Set("limit", "25")
	q.Set("last_name", last)
	if first != "" {
		q.Set("first_name", first)
	}
	if p.Specialty != "" {
		q.Set("taxonomy_description", p.Specialty)
	}

	recs, err := c.search(ctx, q, "nppes:name:"+strings.ToLower(first+"|"+last+"|"+p.Specialty))
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if MatchesProvider(p, recs[i]) {
			return &recs[i], nil
		}
	}
	return nil, nil
}

func (c *nppesClient) search(ctx context.Context, q url.Values, cacheKey string) ([]ProviderRecord, error) {
	body, err := c.fetch(ctx, q, cacheKey)
	if err != nil {
		return nil, err
	}

	var resp nppesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal nppes response")
	}

	recs := make([]ProviderRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		recs = append(recs, r.record())
	}
	return recs, nil
}

func (c *nppesClient) fetch(ctx context.Context, q url.Values, cacheKey string) ([]byte, error) {
	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: create nppes request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "registry: nppes request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read nppes response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("registry: nppes status %d: %s", resp.StatusCode, string(body))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body); err != nil {
			zap.L().Warn("nppes cache write failed", zap.Error(err))
		}
	}
	return body, nil
}

// splitProviderName separates a display name into first and last parts,
// dropping titles and credentials. Single-word names become a bare last
// name.
func splitProviderName(name string) (first, last string) {
	fields := strings.Fields(normalizeProviderName(name))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return fields[0], fields[len(fields)-1]
	}
}

type nppesResponse struct {
	ResultCount int           `json:"result_count"`
	Results     []nppesResult `json:"results"`
}

type nppesResult struct {
	Number json.Number `json:"number"`
	Basic  struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		OrganizationName string `json:"organization_name"`
	} `json:"basic"`
	Taxonomies []struct {
		Desc    string `json:"desc"`
		Primary bool   `json:"primary"`
	} `json:"taxonomies"`
	Addresses []struct {
		City            string `json:"city"`
		State           string `json:"state"`
		TelephoneNumber string `json:"telephone_number"`
	} `json:"addresses"`
}

func (r nppesResult) record() ProviderRecord {
	rec := ProviderRecord{NPI: r.Number.String()}

	name := strings.TrimSpace(r.Basic.FirstName + " " + r.Basic.LastName)
	if name == "" {
		name = r.Basic.OrganizationName
	}
	rec.Name = name

	for _, t := range r.Taxonomies {
		if t.Primary || rec.Specialty == "" {
			rec.Specialty = t.Desc
		}
		if t.Primary {
			break
		}
	}
	if len(r.Addresses) > 0 {
		rec.City = r.Addresses[0].City
		rec.State = r.Addresses[0].State
		rec.Phone = r.Addresses[0].TelephoneNumber
	}
	return rec
}
