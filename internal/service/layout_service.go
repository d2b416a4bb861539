package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"layout-proxy/internal/layout"
	"layout-proxy/internal/upstream"
)

// EmptyEnvelope is returned for a successful but empty layout response.
var EmptyEnvelope = []byte(`{"sitecore":{"context":null,"route":null}}`)

// RenderResult is the outcome of a layout request.
type RenderResult struct {
	Body []byte
	// Patched is false when the upstream body is returned unchanged.
	Patched bool
	ItemID  string
	Rules   []string
}

// LayoutService proxies the REST layout endpoint and patches targeted routes.
type LayoutService struct {
	fetcher LayoutFetcher
	rules   RuleResolver
	patcher *layout.Patcher
	logger  *zap.Logger
	now     func() time.Time
}

// NewLayoutService creates a LayoutService.
func NewLayoutService(fetcher LayoutFetcher, resolver RuleResolver, patcher *layout.Patcher, logger *zap.Logger) *LayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoutService{
		fetcher: fetcher,
		rules:   resolver,
		patcher: patcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Render fetches the layout for req and applies the updates planned for its
// route. Routes no rule targets are returned exactly as received. Upstream
// failures are returned without patching.
func (s *LayoutService) Render(ctx context.Context, req upstream.LayoutRequest, headers http.Header) (*RenderResult, error) {
	resp, err := s.fetcher.Fetch(ctx, req, headers)
	if errors.Is(err, upstream.ErrEmptyDocument) {
		return &RenderResult{Body: EmptyEnvelope}, nil
	}
	if err != nil {
		return nil, err
	}

	doc := resp.Document
	route := doc.Sitecore.Route
	if route == nil {
		return &RenderResult{Body: resp.Body}, nil
	}
	result := &RenderResult{Body: resp.Body, ItemID: route.ItemID}

	vars := ContextVars(doc.Sitecore.Context, s.now())
	if site := req["sc_site"]; site != "" {
		vars.Site = site
	}
	if lang := req["sc_lang"]; lang != "" {
		vars.Language = lang
	}
	plan, err := s.rules.Resolve(route.ItemID, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rules for item %s: %w", route.ItemID, err)
	}
	if plan == nil {
		s.logger.Debug("Route not targeted", zap.String("item_id", route.ItemID))
		return result, nil
	}

	if err := ApplyPlan(s.patcher, doc, plan); err != nil {
		return nil, fmt.Errorf("failed to set hybrid placeholder data: %w", err)
	}
	body, err := layout.Encode(doc)
	if err != nil {
		return nil, err
	}
	result.Body = body
	result.Patched = true
	result.Rules = plan.Rules
	s.logger.Debug("Route patched", zap.String("item_id", route.ItemID), zap.Strings("rules", plan.Rules))
	return result, nil
}
