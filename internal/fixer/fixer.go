package fixer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// CapabilityProvider reports which rule identifiers a fixer can rewrite automatically.
type CapabilityProvider interface {
	FixableRules(ctx context.Context) (map[string]bool, error)
}

// RulesResult is the payload returned by the fixer service.
type RulesResult struct {
	Rules []string `json:"rules"`
}

// HTTPProvider asks a remote fixer service for its capabilities.
type HTTPProvider struct {
	httpc *resty.Client
	url   string
}

// NewHTTPProvider builds a provider for the service at url.
// A nil client falls back to a bare resty client.
func NewHTTPProvider(url, token string, client *resty.Client) *HTTPProvider {
	if client == nil {
		client = resty.New()
	}
	url = strings.TrimRight(url, "/")
	client.SetBaseURL(url)
	if token != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Token %s", token))
	}

	return &HTTPProvider{
		httpc: client,
		url:   url,
	}
}

// FixableRules fetches GET <url>/rules.
func (p *HTTPProvider) FixableRules(ctx context.Context) (map[string]bool, error) {
	if p.url == "" {
		return nil, fmt.Errorf("fixer url is not configured")
	}

	result := RulesResult{}
	resp, err := p.httpc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&result).
		Get("/rules")
	if err != nil {
		return nil, fmt.Errorf("failed to query fixer capabilities: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fixer returned status code %d: %s", resp.StatusCode(), resp.String())
	}

	return toSet(result.Rules), nil
}

// StaticProvider serves a fixed capability list.
type StaticProvider struct {
	Rules []string
	Err   error
}

func (s StaticProvider) FixableRules(context.Context) (map[string]bool, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return toSet(s.Rules), nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = true
		}
	}
	return set
}
