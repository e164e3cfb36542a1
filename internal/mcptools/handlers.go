package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harborline/wayplan/internal/planner"
	"github.com/harborline/wayplan/internal/planstore"
)

// PlannerService holds the pipeline, analyzer, and store used by the MCP
// tool handlers.
type PlannerService struct {
	orch     planner.Orchestrator
	analyzer *planner.Analyzer
	store    planstore.Store
}

// NewPlannerService wires the tool handlers to their collaborators.
func NewPlannerService(orch planner.Orchestrator, analyzer *planner.Analyzer, store planstore.Store) *PlannerService {
	return &PlannerService{orch: orch, analyzer: analyzer, store: store}
}

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// GeneratePlanInput is the input for the generate_plan MCP tool.
type GeneratePlanInput struct {
	Goal        string `json:"goal" jsonschema:"the natural-language trip goal, e.g. 'plan a 3-day trip to Jaipur'"`
	Description string `json:"description,omitempty" jsonschema:"optional note stored in place of the generated plan description"`
}

// GeneratePlanOutput is the result of the generate_plan MCP tool.
type GeneratePlanOutput struct {
	Plan   planstore.Record `json:"plan"`
	TripID string           `json:"tripId" jsonschema:"audit trail id correlating this generation run"`
}

// AnalyzeGoalInput is the input for the analyze_goal MCP tool.
type AnalyzeGoalInput struct {
	Goal string `json:"goal" jsonschema:"the natural-language trip goal to analyze"`
}

// AnalyzeGoalOutput is the result of the analyze_goal MCP tool.
type AnalyzeGoalOutput struct {
	Goal planner.StructuredGoal `json:"goal"`
}

// GetPlanInput is the input for the get_plan MCP tool.
type GetPlanInput struct {
	ID string `json:"id" jsonschema:"the stored plan id"`
}

// GetPlanOutput is the result of the get_plan MCP tool.
type GetPlanOutput struct {
	Plan planstore.Record `json:"plan"`
}

// ListPlansInput is the input for the list_plans MCP tool.
type ListPlansInput struct {
	Goal   string `json:"goal,omitempty" jsonschema:"optional search term matched against plan goals and descriptions"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of plans to return (default: 10)"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of plans to skip from the newest"`
}

// ListPlansOutput is the result of the list_plans MCP tool.
type ListPlansOutput struct {
	Plans []planstore.Record `json:"plans"`
	Total int                `json:"total"`
}

// GeneratePlan runs the full pipeline for a goal and persists the result.
func (s *PlannerService) GeneratePlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GeneratePlanInput,
) (*mcp.CallToolResult, GeneratePlanOutput, error) {
	if strings.TrimSpace(input.Goal) == "" {
		return nil, GeneratePlanOutput{}, fmt.Errorf("goal is required")
	}

	tripID := uuid.NewString()
	plan, err := s.orch.GeneratePlan(ctx, input.Goal, tripID)
	if err != nil {
		return nil, GeneratePlanOutput{}, err
	}

	if input.Description != "" {
		plan.Description = input.Description
	}

	rec, err := s.store.Create(ctx, plan)
	if err != nil {
		return nil, GeneratePlanOutput{}, fmt.Errorf("store plan: %w", err)
	}

	return nil, GeneratePlanOutput{Plan: *rec, TripID: tripID}, nil
}

// AnalyzeGoal extracts structured trip parameters without generating.
func (s *PlannerService) AnalyzeGoal(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeGoalInput,
) (*mcp.CallToolResult, AnalyzeGoalOutput, error) {
	goal, err := s.analyzer.Analyze(ctx, nil, input.Goal)
	if err != nil {
		return nil, AnalyzeGoalOutput{}, err
	}
	return nil, AnalyzeGoalOutput{Goal: goal}, nil
}

// GetPlan fetches a stored plan by id.
func (s *PlannerService) GetPlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetPlanInput,
) (*mcp.CallToolResult, GetPlanOutput, error) {
	if input.ID == "" {
		return nil, GetPlanOutput{}, fmt.Errorf("id is required")
	}

	rec, err := s.store.Get(ctx, input.ID)
	if err != nil {
		return nil, GetPlanOutput{}, err
	}
	return nil, GetPlanOutput{Plan: *rec}, nil
}

// ListPlans lists stored plans, optionally filtered by a search term.
func (s *PlannerService) ListPlans(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListPlansInput,
) (*mcp.CallToolResult, ListPlansOutput, error) {
	opts := planstore.ListOptions{Limit: input.Limit, Offset: input.Offset}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}

	var (
		records []planstore.Record
		err     error
	)
	if input.Goal != "" {
		records, err = s.store.Search(ctx, input.Goal, opts)
	} else {
		records, err = s.store.List(ctx, opts)
	}
	if err != nil {
		return nil, ListPlansOutput{}, fmt.Errorf("list plans: %w", err)
	}

	return nil, ListPlansOutput{Plans: records, Total: len(records)}, nil
}
