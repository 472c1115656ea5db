// ABOUTME: Insight provider boundary: structured prompt contexts in, structured analysis out.
// ABOUTME: Nothing in the tracker depends on a provider; a nil provider reports ErrProviderUnavailable.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrProviderUnavailable is returned when no insight provider is configured.
var ErrProviderUnavailable = errors.New("insight provider unavailable")

// Kind selects the analysis prompt.
type Kind string

const (
	KindCycleAnalysis Kind = "cycle_analysis"
	KindPhase         Kind = "phase"
	KindPregnancy     Kind = "pregnancy"
	KindPostpartum    Kind = "postpartum"
)

// Request is everything a provider needs: the instruction prompt and the
// data context it should analyze. Exactly one context is set.
type Request struct {
	Kind      Kind              `json:"kind"`
	Prompt    string            `json:"prompt"`
	Cycle     *CycleContext     `json:"cycle,omitempty"`
	Pregnancy *PregnancyContext `json:"pregnancy,omitempty"`
}

// Text renders the request as a single prompt string.
func (r Request) Text() (string, error) {
	var data any
	switch {
	case r.Cycle != nil:
		data = r.Cycle
	case r.Pregnancy != nil:
		data = r.Pregnancy
	default:
		return r.Prompt, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal insight context: %w", err)
	}
	return r.Prompt + "\n\nAnalyze: " + string(b), nil
}

// Result is the structured analysis a provider returns. Insights and
// Alerts are grouped by topic (e.g. "cycleHealth", "medical").
type Result struct {
	Summary         string              `json:"summary"`
	Insights        map[string][]string `json:"insights"`
	Recommendations []string            `json:"recommendations"`
	Alerts          map[string][]string `json:"alerts"`
}

// HasAlerts reports whether any alert group is non-empty.
func (r *Result) HasAlerts() bool {
	for _, items := range r.Alerts {
		if len(items) > 0 {
			return true
		}
	}
	return false
}

// Provider turns a request into an analysis.
type Provider interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// Analyze runs req through p. A nil provider returns ErrProviderUnavailable.
func Analyze(ctx context.Context, p Provider, req Request) (*Result, error) {
	if p == nil {
		return nil, ErrProviderUnavailable
	}
	res, err := p.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", req.Kind, err)
	}
	return res, nil
}

// ParseResult decodes a provider's raw text reply. Markdown code fences
// around the JSON are stripped first.
func ParseResult(text string) (*Result, error) {
	cleaned := stripFences(text)
	if cleaned == "" {
		return nil, errors.New("parse insight result: empty response")
	}
	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, fmt.Errorf("parse insight result: %w", err)
	}
	if res.Insights == nil {
		res.Insights = map[string][]string{}
	}
	if res.Alerts == nil {
		res.Alerts = map[string][]string{}
	}
	return &res, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Fallback is the generic guidance shown when a provider fails.
func Fallback(kind Kind) *Result {
	res := &Result{
		Summary: "Unable to analyze your data at this time",
		Insights: map[string][]string{
			"general": {"Keep logging regularly so patterns become visible"},
		},
		Recommendations: []string{
			"Stay hydrated and active",
			"Get adequate rest",
			"Manage stress levels",
		},
		Alerts: map[string][]string{
			"medical": {"Consult your healthcare provider for personalized advice"},
		},
	}
	switch kind {
	case KindPregnancy, KindPostpartum:
		res.Insights["general"] = []string{"Track symptoms and measurements to share at appointments"}
	case KindPhase:
		res.Summary = "Phase information temporarily unavailable"
	}
	return res
}
