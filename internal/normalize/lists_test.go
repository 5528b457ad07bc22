package normalize

import (
	"reflect"
	"testing"

	"github.com/spigell/edubridge/internal/career"
)

func TestRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		expect []string
		reason Reason
	}{
		{name: "strings pass through", input: []any{"AI Engineer", "Data Scientist"}, expect: []string{"AI Engineer", "Data Scientist"}},
		{name: "typed slice", input: []string{"DevOps Engineer"}, expect: []string{"DevOps Engineer"}},
		{name: "absent", input: nil, expect: []string{}, reason: ReasonAbsent},
		{name: "blank dropped", input: []any{"Go Developer", " "}, expect: []string{"Go Developer"}, reason: ReasonPartial},
		{name: "non string dropped", input: []any{"Go Developer", 3.0}, expect: []string{"Go Developer"}, reason: ReasonPartial},
		{name: "json string", input: `["Data Analyst"]`, expect: []string{"Data Analyst"}},
		{name: "object is unknown", input: map[string]any{"a": 1}, expect: []string{}, reason: ReasonUnknownShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Roles(tt.input)
			if got.Fallback != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got.Fallback)
			}
			if !reflect.DeepEqual(got.Items, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got.Items)
			}
		})
	}
}

func TestProjects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		expect []career.Project
		reason Reason
	}{
		{
			name:   "newline delimited string",
			input:  "Chat server\n\n  Rate limiter \n",
			expect: []career.Project{{Title: "Chat server"}, {Title: "Rate limiter"}},
		},
		{
			name:   "list of strings",
			input:  []any{"CLI tool", "Web crawler"},
			expect: []career.Project{{Title: "CLI tool"}, {Title: "Web crawler"}},
		},
		{
			name: "list of objects",
			input: []any{
				map[string]any{
					"title":       "Feature store",
					"description": "Serve features online",
					"tech_stack":  []any{"Go", "Redis"},
					"difficulty":  "Advanced",
				},
				"Plain title",
			},
			expect: []career.Project{
				{Title: "Feature store", Description: "Serve features online", TechStack: []string{"Go", "Redis"}, Difficulty: "Advanced"},
				{Title: "Plain title"},
			},
		},
		{
			name:   "single object",
			input:  map[string]any{"title": "Portfolio", "tech_stack": "React"},
			expect: []career.Project{{Title: "Portfolio", TechStack: []string{"React"}}},
		},
		{
			name:   "json string of objects",
			input:  `[{"title": "Scheduler"}]`,
			expect: []career.Project{{Title: "Scheduler"}},
		},
		{
			name:   "absent",
			input:  nil,
			expect: []career.Project{},
			reason: ReasonAbsent,
		},
		{
			name:   "number is unknown",
			input:  12.0,
			expect: []career.Project{},
			reason: ReasonUnknownShape,
		},
		{
			name:   "bad element dropped",
			input:  []any{"Kept", false},
			expect: []career.Project{{Title: "Kept"}},
			reason: ReasonPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Projects(tt.input)
			if got.Fallback != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got.Fallback)
			}
			if !reflect.DeepEqual(got.Items, tt.expect) {
				t.Fatalf("expected %+v, got %+v", tt.expect, got.Items)
			}
		})
	}
}

func TestRoadmap(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"target_role":    "DevOps Engineer",
		"timeline_weeks": "12",
		"roadmap": []any{
			map[string]any{
				"phase":          "Phase 1: Foundations",
				"objective":      "Learn the basics.",
				"focus":          []any{"Linux", "Git"},
				"projects":       []any{"Dotfiles repo"},
				"duration_weeks": float64(4),
			},
			map[string]any{
				"phase":          "Phase 2: Cloud",
				"focus":          "AWS",
				"duration_weeks": "8 weeks",
			},
		},
	}

	got, reason := Roadmap(raw)
	if reason != OK {
		t.Fatalf("unexpected reason %q", reason)
	}

	expect := career.Roadmap{
		TargetRole:    "DevOps Engineer",
		TimelineWeeks: 12,
		Phases: []career.RoadmapPhase{
			{Phase: "Phase 1: Foundations", Objective: "Learn the basics.", Focus: []string{"Linux", "Git"}, Projects: []string{"Dotfiles repo"}, DurationWeeks: 4},
			{Phase: "Phase 2: Cloud", Focus: []string{"AWS"}},
		},
	}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %+v, got %+v", expect, got)
	}

	empty, reason := Roadmap(nil)
	if reason != ReasonAbsent || len(empty.Phases) != 0 || empty.Phases == nil {
		t.Fatalf("unexpected absent roadmap: %+v (%q)", empty, reason)
	}

	fromString, reason := Roadmap(`[{"phase": "Only", "duration_weeks": 3}]`)
	if reason != OK || fromString.TotalWeeks() != 3 {
		t.Fatalf("unexpected roadmap from string: %+v (%q)", fromString, reason)
	}
}

func TestEvaluation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       any
		score       int
		suggestions string
		strengths   []string
		reason      Reason
	}{
		{
			name: "regular payload",
			input: map[string]any{
				"score": float64(78),
				"feedback": map[string]any{
					"strengths":   []any{"Good clarity"},
					"weaknesses":  []any{"Shallow"},
					"suggestions": "Give examples.",
				},
			},
			score:       78,
			suggestions: "Give examples.",
			strengths:   []string{"Good clarity"},
		},
		{
			name:      "score above range is clamped",
			input:     map[string]any{"score": float64(130)},
			score:     100,
			strengths: []string{},
			reason:    ReasonPartial,
		},
		{
			name:      "negative score is clamped",
			input:     map[string]any{"score": float64(-4)},
			score:     0,
			strengths: []string{},
			reason:    ReasonPartial,
		},
		{
			name:      "huge score is clamped",
			input:     map[string]any{"score": 1e20},
			score:     100,
			strengths: []string{},
			reason:    ReasonPartial,
		},
		{
			name:      "huge string score is clamped",
			input:     map[string]any{"score": "1e20"},
			score:     100,
			strengths: []string{},
			reason:    ReasonPartial,
		},
		{
			name:      "score just above int range is clamped",
			input:     map[string]any{"score": 9.3e18},
			score:     100,
			strengths: []string{},
			reason:    ReasonPartial,
		},
		{
			name:      "hugely negative score is clamped",
			input:     map[string]any{"score": -1e20},
			score:     0,
			strengths: []string{},
			reason:    ReasonPartial,
		},
		{
			name:      "numeric string score",
			input:     map[string]any{"score": "85/100"},
			score:     85,
			strengths: []string{},
		},
		{
			name:        "missing score",
			input:       map[string]any{"feedback": "Keep improving"},
			score:       0,
			strengths:   []string{},
			reason:      ReasonPartial,
			suggestions: "Keep improving",
		},
		{
			name:        "plain string",
			input:       "evaluation unavailable",
			suggestions: "evaluation unavailable",
			strengths:   []string{},
			reason:      ReasonUndecodable,
		},
		{
			name:      "absent",
			input:     nil,
			strengths: []string{},
			reason:    ReasonAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, reason := Evaluation(tt.input)
			if reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, reason)
			}
			if got.Score != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, got.Score)
			}
			if got.Score < career.MinScore || got.Score > career.MaxScore {
				t.Fatalf("score out of range: %d", got.Score)
			}
			if got.Feedback.Suggestions != tt.suggestions {
				t.Fatalf("expected suggestions %q, got %q", tt.suggestions, got.Feedback.Suggestions)
			}
			if !reflect.DeepEqual(got.Feedback.Strengths, tt.strengths) {
				t.Fatalf("expected strengths %v, got %v", tt.strengths, got.Feedback.Strengths)
			}
		})
	}
}
