package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"layout-proxy/internal/cache"
	"layout-proxy/internal/layout"
	"layout-proxy/internal/upstream"
)

// RenderedPath locates the layout JSON inside a GraphQL layout query response.
var RenderedPath = jp.MustParseString("$.data.layout.item.rendered")

// GraphResult is the outcome of a GraphQL request.
type GraphResult struct {
	Body    []byte
	Patched bool
	Cached  bool
}

// GraphService proxies the GraphQL endpoint. Layout queries (those asking
// for "rendered") are patched; other responses may be cached.
type GraphService struct {
	client  GraphQLExecutor
	rules   RuleResolver
	patcher *layout.Patcher
	cache   ResponseCache
	logger  *zap.Logger
	now     func() time.Time
}

// NewGraphService creates a GraphService. responses may be nil to disable
// caching.
func NewGraphService(client GraphQLExecutor, resolver RuleResolver, patcher *layout.Patcher, responses ResponseCache, logger *zap.Logger) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphService{
		client:  client,
		rules:   resolver,
		patcher: patcher,
		cache:   responses,
		logger:  logger,
		now:     time.Now,
	}
}

// Execute forwards req and returns the response body.
func (s *GraphService) Execute(ctx context.Context, req upstream.GraphQLRequest, headers http.Header) (*GraphResult, error) {
	rendered := strings.Contains(req.Query, "rendered")

	var key string
	if !rendered && s.cache != nil {
		key = cache.Key(req.Query, req.OperationName, req.Variables, headers)
		body, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Cache read failed", zap.Error(err))
		} else if ok {
			return &GraphResult{Body: body, Cached: true}, nil
		}
	}

	tree, err := s.client.Do(ctx, req, headers)
	if err != nil {
		return nil, err
	}

	result := &GraphResult{}
	if rendered {
		if result.Patched, err = s.patchRendered(tree); err != nil {
			return nil, err
		}
	}

	body, err := layout.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graphql response: %w", err)
	}
	result.Body = body

	if key != "" {
		if _, hasErrors := tree["errors"]; !hasErrors {
			if err := s.cache.Put(ctx, key, req.OperationName, body); err != nil {
				s.logger.Warn("Cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}

// patchRendered patches the layout at data.layout.item.rendered in place.
// The value may be a JSON string or an embedded object; it is written back
// in the same form. A missing or blank value is left alone.
func (s *GraphService) patchRendered(tree map[string]any) (bool, error) {
	found := RenderedPath.Get(tree)
	if len(found) == 0 {
		return false, nil
	}

	var node any
	asString := false
	switch v := found[0].(type) {
	case nil:
		return false, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return false, nil
		}
		parsed, err := oj.Parse([]byte(v))
		if err != nil {
			return false, fmt.Errorf("%w: rendered is not JSON: %v", ErrInvalidPayload, err)
		}
		node, asString = parsed, true
	case map[string]any:
		node = v
	default:
		return false, fmt.Errorf("%w: rendered is %T", ErrInvalidPayload, v)
	}

	raw, err := layout.Marshal(layout.NormalizeFields(node))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	doc, err := layout.Decode(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	route := doc.Sitecore.Route
	if route == nil {
		return false, nil
	}

	plan, err := s.rules.Resolve(route.ItemID, ContextVars(doc.Sitecore.Context, s.now()))
	if err != nil {
		return false, fmt.Errorf("failed to resolve rules for item %s: %w", route.ItemID, err)
	}
	if plan == nil {
		return false, nil
	}
	if err := ApplyPlan(s.patcher, doc, plan); err != nil {
		return false, fmt.Errorf("failed to set hybrid placeholder data: %w", err)
	}

	out, err := layout.Encode(doc)
	if err != nil {
		return false, err
	}
	var value any = string(out)
	if !asString {
		if value, err = oj.Parse(out); err != nil {
			return false, fmt.Errorf("failed to re-read patched layout: %w", err)
		}
	}
	if err := RenderedPath.Set(tree, value); err != nil {
		return false, fmt.Errorf("failed to write patched layout: %w", err)
	}
	s.logger.Debug("Rendered layout patched", zap.String("item_id", route.ItemID), zap.Strings("rules", plan.Rules))
	return true, nil
}
