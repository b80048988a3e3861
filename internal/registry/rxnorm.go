package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DrugConcept is a drug as known to the RxNorm registry.
type DrugConcept struct {
	RxCUI string `json:"rxcui"`
	Name  string `json:"name"`
	TTY   string `json:"tty"`
}

type rxnormClient struct {
	baseURL string
	http    *http.Client
	cache   Cache
}

// NewRxNorm creates a drug directory backed by the public RxNorm API.
// cache may be nil.
func NewRxNorm(baseURL string, hc *http.Client, cache Cache) DrugDirectory {
	return &rxnormClient{baseURL: strings.TrimSuffix(baseURL, "/"), http: hc, cache: cache}
}

func (c *rxnormClient) LookupCode(ctx context.Context, drugName string) (string, error) {
	if drugName == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("name", drugName)
	cacheKey := "rxnorm:rxcui:" + strings.ToLower(drugName)

	body, err := c.fetch(ctx, "/rxcui.json?"+q.Encode(), cacheKey)
	if err != nil {
		return "", err
	}

	var resp struct {
		IDGroup struct {
			RxNormID []string `json:"rxnormId"`
		} `json:"idGroup"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", eris.Wrap(err, "registry: unmarshal rxnorm response")
	}
	if len(resp.IDGroup.RxNormID) == 0 {
		return "", nil
	}
	return resp.IDGroup.RxNormID[0], nil
}

func (c *rxnormClient) Alternatives(ctx context.Context, drugName string) ([]DrugConcept, error) {
	rxcui, err := c.LookupCode(ctx, drugName)
	if err != nil || rxcui == "" {
		return nil, err
	}

	q := url.Values{}
	q.Set("tty", "SBD SCD")
	cacheKey := "rxnorm:related:" + rxcui

	body, err := c.fetch(ctx, "/rxcui/"+url.PathEscape(rxcui)+"/related.json?"+q.Encode(), cacheKey)
	if err != nil {
		return nil, err
	}

	var resp struct {
		RelatedGroup struct {
			ConceptGroup []struct {
				TTY               string `json:"tty"`
				ConceptProperties []struct {
					RxCUI string `json:"rxcui"`
					Name  string `json:"name"`
				} `json:"conceptProperties"`
			} `json:"conceptGroup"`
		} `json:"relatedGroup"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal rxnorm related response")
	}

	var out []DrugConcept
	for _, g := range resp.RelatedGroup.ConceptGroup {
		for _, cp := range g.ConceptProperties {
			if strings.EqualFold(cp.Name, drugName) {
				continue
			}
			out = append(out, DrugConcept{RxCUI: cp.RxCUI, Name: cp.Name, TTY: g.TTY})
		}
	}
	return out, nil
}

func (c *rxnormClient) fetch(ctx context.Context, path, cacheKey string) ([]byte, error) {
	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: create rxnorm request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "registry: rxnorm request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read rxnorm response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("registry: rxnorm status %d: %s", resp.StatusCode, string(body))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body); err != nil {
			zap.L().Warn("rxnorm cache write failed", zap.Error(err))
		}
	}
	return body, nil
}
