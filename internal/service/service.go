package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"layout-proxy/internal/layout"
	"layout-proxy/internal/rules"
	"layout-proxy/internal/upstream"
)

// ErrInvalidPayload is returned when an upstream response is well formed
// JSON but its layout cannot be decoded.
var ErrInvalidPayload = errors.New("service: invalid upstream layout payload")

// LayoutFetcher fetches layout documents.
type LayoutFetcher interface {
	Fetch(ctx context.Context, req upstream.LayoutRequest, headers http.Header) (*upstream.LayoutResponse, error)
}

// GraphQLExecutor runs GraphQL queries upstream.
type GraphQLExecutor interface {
	Do(ctx context.Context, req upstream.GraphQLRequest, headers http.Header) (map[string]any, error)
}

// RuleResolver decides which updates apply to a route item.
type RuleResolver interface {
	Resolve(itemID string, vars rules.Vars) (*rules.Plan, error)
}

// ResponseCache stores GraphQL response bodies.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key, operation string, body []byte) error
}

var (
	siteNamePath = jp.MustParseString("site.name")
	languagePath = jp.MustParseString("language")
)

// ContextVars reads the site name and language from a layout context.
func ContextVars(ctx []byte, now time.Time) rules.Vars {
	vars := rules.Vars{Now: now}
	if len(ctx) == 0 {
		return vars
	}
	tree, err := oj.Parse(ctx)
	if err != nil {
		return vars
	}
	if v, ok := first(siteNamePath, tree).(string); ok {
		vars.Site = v
	}
	if v, ok := first(languagePath, tree).(string); ok {
		vars.Language = v
	}
	return vars
}

func first(x jp.Expr, data any) any {
	if results := x.Get(data); len(results) > 0 {
		return results[0]
	}
	return nil
}

// ApplyPlan applies plan to doc and, when the plan asks for it, records hybrid
// placeholder data in the context.
func ApplyPlan(p *layout.Patcher, doc *layout.Document, plan *rules.Plan) error {
	route := doc.Sitecore.Route
	p.Apply(route, plan.Updates)
	if !plan.Hybrid {
		return nil
	}
	return doc.Sitecore.SetContextValue(layout.HybridPlaceholderKey, layout.HybridPlaceholderData(route, plan.SSR))
}
