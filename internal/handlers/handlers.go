package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"layout-proxy/internal/models"
	"layout-proxy/internal/service"
	"layout-proxy/internal/upstream"
)

// LayoutPath is the REST layout endpoint, mirroring the layout service.
const LayoutPath = "/sitecore/api/layout/render/jss"

// LayoutRenderer serves layout requests.
type LayoutRenderer interface {
	Render(ctx context.Context, req upstream.LayoutRequest, headers http.Header) (*service.RenderResult, error)
}

// GraphExecutor serves GraphQL requests.
type GraphExecutor interface {
	Execute(ctx context.Context, req upstream.GraphQLRequest, headers http.Header) (*service.GraphResult, error)
}

// Handler wires the proxy endpoints to their services.
type Handler struct {
	Layout         LayoutRenderer
	Graph          GraphExecutor
	ForwardHeaders []string
	Logger         *zap.Logger
}

// RegisterRoutes mounts the proxy endpoints on r.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET(LayoutPath, h.RenderLayout)
	r.POST("/graph", h.ExecuteGraph)
	r.GET("/healthz", Healthz)
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// RenderLayout godoc
// @Summary Fetch and patch a route layout
// @Description Proxies the layout service. Routes targeted by the configured rules have their component fields patched; other routes are returned unchanged.
// @Tags layout
// @Produce  json
// @Param   item     query  string  false  "Item path or ID"
// @Param   sc_apikey query string  false  "Layout service API key (defaults to the configured key)"
// @Param   sc_site  query  string  false  "Site name"
// @Param   sc_lang  query  string  false  "Language"
// @Param   sc_mode  query  string  false  "Mode"
// @Param   sc_date  query  string  false  "Preview date"
// @Param   sc_auth_header_key query string false "Sent upstream as a bearer token"
// @Success 200 {object} models.LayoutEnvelope "Layout document"
// @Failure 502 {object} models.APIError "Upstream failure (UPSTREAM_ERROR or INVALID_UPSTREAM_PAYLOAD)"
// @Failure 504 {object} models.APIError "Upstream timeout (REQUEST_TIMEOUT)"
// @Router /sitecore/api/layout/render/jss [get]
func (h *Handler) RenderLayout(c *gin.Context) {
	req := upstream.NewLayoutRequest(c.Request.URL.Query())
	headers := upstream.BuildHeaders(c.Request.Header, h.ForwardHeaders, req)

	res, err := h.Layout.Render(c.Request.Context(), req, headers)
	if err != nil {
		respondWithServiceError(c, h.logger(), err)
		return
	}
	if res.Patched {
		h.logger().Info("Layout patched",
			zap.String("item_id", res.ItemID),
			zap.Strings("rules", res.Rules),
			zap.String("request_id", RequestIDFrom(c)))
	}
	RespondWithJSON(c, http.StatusOK, res.Body)
}

// ExecuteGraph godoc
// @Summary Proxy a GraphQL query
// @Description Forwards the query to the GraphQL edge endpoint. Layout queries selecting "rendered" are patched in place; other successful responses may be served from cache.
// @Tags graphql
// @Accept  json
// @Produce  json
// @Param   query  body  models.GraphQLQuery  true  "GraphQL request"
// @Success 200 {object} map[string]interface{} "GraphQL response"
// @Failure 400 {object} models.APIError "Invalid request body (VALIDATION_ERROR or INVALID_JSON)"
// @Failure 502 {object} models.APIError "Upstream failure (UPSTREAM_ERROR or INVALID_UPSTREAM_PAYLOAD)"
// @Failure 504 {object} models.APIError "Upstream timeout (REQUEST_TIMEOUT)"
// @Router /graph [post]
func (h *Handler) ExecuteGraph(c *gin.Context) {
	var q models.GraphQLQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		code := models.ErrorCodeValidation
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			code = models.ErrorCodeInvalidJSON
		}
		RespondWithError(c, http.StatusBadRequest, code, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}

	headers := upstream.BuildHeaders(c.Request.Header, h.ForwardHeaders, nil)
	res, err := h.Graph.Execute(c.Request.Context(), upstream.GraphQLRequest{
		Query:         q.Query,
		OperationName: q.OperationName,
		Variables:     q.Variables,
	}, headers)
	if err != nil {
		respondWithServiceError(c, h.logger(), err)
		return
	}
	if res.Cached {
		c.Header("X-Cache", "HIT")
	}
	RespondWithJSON(c, http.StatusOK, res.Body)
}

// Healthz godoc
// @Summary Health check
// @Tags health
// @Produce  plain
// @Success 200 {string} string "Healthy"
// @Router /healthz [get]
func Healthz(c *gin.Context) {
	c.String(http.StatusOK, "Healthy")
}
