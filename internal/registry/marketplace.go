package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rzimmerman2022/healthplan-navigator/internal/model"
	"go.uber.org/zap"
)

type marketplaceClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   Cache
}

// NewMarketplace creates a plan finder backed by the Healthcare.gov
// marketplace API. cache may be nil.
func NewMarketplace(baseURL, apiKey string, hc *http.Client, cache Cache) PlanFinder {
	return &marketplaceClient{baseURL: baseURL, apiKey: apiKey, http: hc, cache: cache}
}

func (c *marketplaceClient) FetchPlans(ctx context.Context, zipcode string, year int) ([]model.Plan, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	q := url.Values{}
	q.Set("zipcode", zipcode)
	q.Set("year", fmt.Sprintf("%d", year))
	cacheKey := fmt.Sprintf("marketplace:plans:%s:%d", zipcode, year)

	body, err := c.fetch(ctx, "/plans?"+q.Encode(), cacheKey)
	if err != nil {
		return nil, err
	}

	var resp marketplaceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal marketplace response")
	}

	plans := make([]model.Plan, 0, len(resp.Plans))
	for _, p := range resp.Plans {
		if p.ID == "" {
			zap.L().Warn("skipping marketplace plan without id", zap.String("name", p.Name))
			continue
		}
		plans = append(plans, p.plan())
	}
	zap.L().Info("marketplace plans fetched",
		zap.String("zipcode", zipcode),
		zap.Int("year", year),
		zap.Int("plans", len(plans)))
	return plans, nil
}

func (c *marketplaceClient) fetch(ctx context.Context, path, cacheKey string) ([]byte, error) {
	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: create marketplace request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "registry: marketplace request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read marketplace response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("registry: marketplace status %d: %s", resp.StatusCode, string(body))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body); err != nil {
			zap.L().Warn("marketplace cache write failed", zap.Error(err))
		}
	}
	return body, nil
}

type marketplaceResponse struct {
	Plans []marketplacePlan `json:"plans"`
}

type marketplacePlan struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer struct {
		Name string `json:"name"`
	} `json:"issuer"`
	MetalLevel string  `json:"metal_level"`
	Type       string  `json:"type"`
	Premium    float64 `json:"premium"`
	Deductible struct {
		Individual float64 `json:"individual"`
	} `json:"deductible"`
	MOOP struct {
		Individual float64 `json:"individual"`
	} `json:"moop"`
	Copays struct {
		Primary    float64 `json:"primary"`
		Specialist float64 `json:"specialist"`
		Emergency  float64 `json:"emergency"`
	} `json:"copays"`
	Coinsurance   float64 `json:"coinsurance"` // percent
	QualityRating struct {
		Global   float64 `json:"global"`
		Customer float64 `json:"customer"`
	} `json:"quality_rating"`
}

func (p marketplacePlan) plan() model.Plan {
	metal, ok := model.ParseMetalLevel(p.MetalLevel)
	if !ok {
		metal = model.MetalBronze
	}
	planType, ok := model.ParsePlanType(p.Type)
	if !ok {
		planType = model.PlanPPO
	}

	return model.Plan{
		PlanID:          p.ID,
		MarketingName:   p.Name,
		Issuer:          p.Issuer.Name,
		MetalLevel:      metal,
		PlanType:        planType,
		MonthlyPremium:  p.Premium,
		Deductible:      p.Deductible.Individual,
		OOPMax:          p.MOOP.Individual,
		CopayPrimary:    p.Copays.Primary,
		CopaySpecialist: p.Copays.Specialist,
		CopayER:         p.Copays.Emergency,
		Coinsurance:     p.Coinsurance / 100,
		Administrative:  model.DefaultAdministrative(),
		QualityRating:   p.QualityRating.Global,
		CustomerRating:  p.QualityRating.Customer,
		SourceFile:      "healthcare.gov",
	}
}
