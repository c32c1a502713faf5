// ABOUTME: MCP resource implementations for the myjot journal.
// ABOUTME: Provides myjot://workouts/recent and myjot://routines resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/myjot/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentWorkoutsURI = "myjot://workouts/recent"
	routinesURI       = "myjot://routines"
)

func (s *Server) registerResources() {
	// myjot://workouts/recent - Last 10 workouts plus recent meals
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentWorkoutsURI,
		Name:        "Recent Workouts",
		Description: "Last 10 workout entries and the last 10 logged meals",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// myjot://routines - Every saved routine
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         routinesURI,
		Name:        "Routines",
		Description: "Every saved routine with its exercises and sets",
		MIMEType:    "application/json",
	}, s.handleRoutinesResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.assembler.List(ctx, workout.TargetWorkout, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	meals, err := s.meals.List(ctx, false, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"workouts":     workouts,
		"meals":        meals,
	}
	return jsonResource(recentWorkoutsURI, result)
}

func (s *Server) handleRoutinesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	routines, err := s.assembler.List(ctx, workout.TargetRoutine, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}

	result := map[string]interface{}{
		"routines": routines,
		"count":    len(routines),
	}
	return jsonResource(routinesURI, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
