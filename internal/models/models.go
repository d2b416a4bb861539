package models

import "encoding/json"

// GraphQLQuery is the body accepted by the GraphQL endpoint.
// @Description GraphQLQuery is a GraphQL request forwarded to the edge endpoint.
type GraphQLQuery struct {
	Query         string          `json:"query" binding:"required"`
	OperationName string          `json:"operationName,omitempty"`
	Variables     json.RawMessage `json:"variables,omitempty" swaggertype:"object"`
}

// LayoutEnvelope documents the layout service response shape.
// @Description LayoutEnvelope is the layout service response: {"sitecore": {"context": ..., "route": ...}}.
type LayoutEnvelope struct {
	Sitecore struct {
		Context map[string]interface{} `json:"context"`
		Route   map[string]interface{} `json:"route"`
	} `json:"sitecore"`
}
