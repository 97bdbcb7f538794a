package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halcyard/recall/internal/errors"
	"github.com/halcyard/recall/internal/retriever"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine *retriever.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *retriever.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// Request types for each tool

// QueryRequest represents the arguments for recall_query.
type QueryRequest struct {
	Query         string  `json:"query"`
	Project       string  `json:"project,omitempty"`
	Limit         int     `json:"limit,omitempty"`
	ForceSpecific bool    `json:"force_specific,omitempty"`
	MinRelevance  float64 `json:"min_relevance,omitempty"`
}

// CategoryRequest represents the arguments for recall_category.
type CategoryRequest struct {
	Category string `json:"category"`
	Project  string `json:"project,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ByDateRequest represents the arguments for recall_bydate.
type ByDateRequest struct {
	After   string `json:"after,omitempty"`
	Before  string `json:"before,omitempty"`
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ByTypeRequest represents the arguments for recall_bytype.
type ByTypeRequest struct {
	Type    string `json:"type"`
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// HandleQuery runs a ranked free-text retrieval.
func (h *Handlers) HandleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[QueryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := h.engine.Retrieve(ctx, retriever.RetrieveInput{
		Query:         args.Query,
		Project:       args.Project,
		Limit:         args.Limit,
		ForceSpecific: args.ForceSpecific,
		MinRelevance:  args.MinRelevance,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCategory lists a category without scoring.
func (h *Handlers) HandleCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[CategoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := h.engine.RetrieveByCategory(ctx, retriever.ByCategoryInput{
		Category: args.Category,
		Project:  args.Project,
		Limit:    args.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleByDate lists capsules inside a date window.
func (h *Handlers) HandleByDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[ByDateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	in := retriever.ByDateRangeInput{Project: args.Project, Limit: args.Limit}
	if args.After != "" {
		ts, err := time.Parse(time.RFC3339, args.After)
		if err != nil {
			return errorResult(errors.NewInvalidRequest("after: " + err.Error())), nil
		}
		in.After = ts
	}
	if args.Before != "" {
		ts, err := time.Parse(time.RFC3339, args.Before)
		if err != nil {
			return errorResult(errors.NewInvalidRequest("before: " + err.Error())), nil
		}
		in.Before = ts
	}

	out, err := h.engine.RetrieveByDateRange(ctx, in)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleByType lists capsules of one record type.
func (h *Handlers) HandleByType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[ByTypeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	out, err := h.engine.RetrieveByType(ctx, retriever.ByTypeInput{
		Type:    args.Type,
		Project: args.Project,
		Limit:   args.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if rErr, ok := err.(*errors.RecallError); ok {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
