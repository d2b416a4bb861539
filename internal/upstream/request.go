package upstream

import (
	"net/http"
	"net/url"
	"strings"
)

// AuthHeaderKey is the request key whose value is sent as a bearer token.
const AuthHeaderKey = "sc_auth_header_key"

// APIKeyKey is the request key carrying the layout service API key.
const APIKeyKey = "sc_apikey"

// DefaultRequestKeys are the only request keys copied into the layout
// service query string.
var DefaultRequestKeys = []string{
	"sc_site",
	"item",
	"placeholderName",
	"hybridLocation",
	"isHybridPlaceholder",
	"hasHybridSsr",
	"sc_lang",
	"sc_apikey",
	"sc_mode",
	"sc_date",
}

// LayoutRequest is the set of named values describing one layout fetch.
type LayoutRequest map[string]string

// NewLayoutRequest picks the whitelisted keys and the auth key from a query.
func NewLayoutRequest(q url.Values) LayoutRequest {
	req := LayoutRequest{}
	for _, key := range append(DefaultRequestKeys, AuthHeaderKey) {
		if v := q.Get(key); v != "" {
			req[key] = v
		}
	}
	return req
}

// BuildURL appends to base the keys of req listed in keys, in keys order.
// Blank values are skipped. With nothing to add, base is returned as is.
func BuildURL(base string, req LayoutRequest, keys []string) string {
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		v, ok := req[key]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(v))
	}
	if len(pairs) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(pairs, "&")
}

// BuildHeaders returns the headers for one upstream call: the forward-listed
// headers of the incoming request plus a bearer token from the auth key.
// A fresh header set is built per call.
func BuildHeaders(incoming http.Header, forward []string, req LayoutRequest) http.Header {
	h := http.Header{}
	for _, name := range forward {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, v := range incoming.Values(name) {
			h.Add(name, v)
		}
	}
	if token := strings.TrimSpace(req[AuthHeaderKey]); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
