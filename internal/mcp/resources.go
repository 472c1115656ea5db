// ABOUTME: MCP resource implementations for the cycles tracker.
// ABOUTME: Provides cycles://summary, cycles://calendar, and cycles://insight-context resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/cycles/internal/insight"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	summaryURI        = "cycles://summary"
	calendarURI       = "cycles://calendar"
	insightContextURI = "cycles://insight-context"
)

func (s *Server) registerResources() {
	// cycles://summary - mode, phase, predictions, and latest cycles
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Cycle Summary",
		Description: "Current mode, phase, predictions, statistics, and recent cycles",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// cycles://calendar - day statuses for the current month
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         calendarURI,
		Name:        "Cycle Calendar",
		Description: "Logged, predicted period, ovulation, and fertile days for the current month",
		MIMEType:    "application/json",
	}, s.handleCalendarResource)

	// cycles://insight-context - the request an insight provider would receive
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         insightContextURI,
		Name:        "Insight Context",
		Description: "Prompt and data for cycle, pregnancy, or postpartum analysis",
		MIMEType:    "application/json",
	}, s.handleInsightContextResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	today := s.today()

	recent := []insight.CycleSummary{}
	for i := len(snap.Cycles) - 1; i >= 0 && len(recent) < 6; i-- {
		recent = append(recent, insight.NewCycleSummary(snap.Cycles[i]))
	}

	result := map[string]interface{}{
		"generated_at":  s.now().Format(time.RFC3339),
		"today":         today.String(),
		"mode":          snap.Mode,
		"phase":         tracker.CurrentPhase(today, snap.Cycles, snap.Settings),
		"stats":         tracker.BuildCycleStats(snap.Cycles),
		"recent_cycles": recent,
		"settings":      snap.Settings,
	}
	if n, ok := tracker.CycleDayNumber(snap.Cycles, today); ok {
		result["cycle_day"] = n
	}
	if p, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings); ok {
		result["predictions"] = insight.NewPredictionContext(p)
	}
	if snap.Mode == models.ModePregnancy {
		week, _ := tracker.WeekOfPregnancy(snap.Pregnancy, today)
		trimester, _ := tracker.CurrentTrimester(snap.Pregnancy, today)
		result["pregnancy"] = map[string]interface{}{
			"week":      week,
			"trimester": trimester,
			"due_date":  snap.Pregnancy.DueDate,
		}
	}

	return jsonResource(summaryURI, result)
}

type calendarDay struct {
	Date              string `json:"date"`
	Logged            bool   `json:"logged"`
	Bleeding          string `json:"bleeding,omitempty"`
	IsPredictedPeriod bool   `json:"is_predicted_period,omitempty"`
	IsOvulation       bool   `json:"is_ovulation,omitempty"`
	IsFertile         bool   `json:"is_fertile,omitempty"`
}

func (s *Server) handleCalendarResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	today := s.today()

	var preds *models.Predictions
	if p, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings); ok {
		preds = &p
	}

	statuses := tracker.ResolveMonth(today.Year(), today.Month(), snap.Cycles, preds)
	days := make([]calendarDay, 0, len(statuses))
	for _, st := range statuses {
		day := calendarDay{
			Date:              st.Date.String(),
			Logged:            st.CycleDay != nil,
			IsPredictedPeriod: st.IsPredictedPeriod,
			IsOvulation:       st.IsOvulation,
			IsFertile:         st.IsFertile,
		}
		if st.CycleDay != nil && st.CycleDay.Bleeding != nil {
			day.Bleeding = string(*st.CycleDay.Bleeding)
		}
		days = append(days, day)
	}

	return jsonResource(calendarURI, map[string]interface{}{
		"month": today.Time().Format("2006-01"),
		"days":  days,
	})
}

func (s *Server) handleInsightContextResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	today := s.today()

	request, ok := insight.BuildPregnancyRequest(*snap, today)
	if !ok {
		request = insight.BuildCycleRequest(*snap, today)
	}
	return jsonResource(insightContextURI, request)
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
