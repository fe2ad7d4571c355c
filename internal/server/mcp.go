package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"go.uber.org/zap"

	"diet-planner/internal/app"
	"diet-planner/internal/logger"
	"diet-planner/internal/nutrition"
	"diet-planner/internal/planner"
)

// MCP tool names.
const (
	ToolGenerateMealPlan = "generate_meal_plan"
	ToolListFoods        = "list_foods"
)

// handleMCP serves MCP tools/call requests over plain HTTP POST.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	var (
		result *protocol.CallToolResult
		err    error
	)
	switch request.Name {
	case ToolGenerateMealPlan:
		result, err = s.callGenerateMealPlan(r, &request)
	case ToolListFoods:
		result, err = jsonResult(s.app.Planner().Catalog().Items(), false)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown tool: %s", request.Name))
		return
	}
	if err != nil {
		logger.Error("MCP tool failed", zap.String("tool", request.Name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) callGenerateMealPlan(r *http.Request, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params app.PlanRequest
	if err := extractParams(req, &params); err != nil {
		return textResult(err.Error(), true), nil
	}

	report, err := s.app.GeneratePlan(r.Context(), params)
	if err != nil {
		if errors.Is(err, nutrition.ErrInvalidInput) {
			return textResult(err.Error(), true), nil
		}
		return nil, err
	}
	return jsonResult(report, report.Status != planner.StatusSuccess)
}

// extractParams converts the loosely typed tool arguments into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func jsonResult(v any, isError bool) (*protocol.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return textResult(string(raw), isError), nil
}

func textResult(text string, isError bool) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: isError,
	}
}
