package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/onboarding"
)

func withOutput(t *testing.T, format string) {
	t.Helper()

	prev := viper.GetString("output")
	viper.Set("output", format)
	t.Cleanup(func() { viper.Set("output", prev) })
}

func TestRenderFormats(t *testing.T) {
	result := career.InterviewResult{
		Score: 82,
		Feedback: career.Feedback{
			Strengths:   []string{"clear"},
			Weaknesses:  []string{},
			Suggestions: "go deeper",
		},
	}

	t.Run("json", func(t *testing.T) {
		withOutput(t, "json")

		var buf bytes.Buffer
		if err := render(&buf, result, func(io.Writer) { t.Fatalf("text renderer used") }); err != nil {
			t.Fatalf("render: %v", err)
		}

		var got career.InterviewResult
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Score != 82 || got.Feedback.Suggestions != "go deeper" {
			t.Fatalf("unexpected json %s", buf.String())
		}
	})

	t.Run("yaml", func(t *testing.T) {
		withOutput(t, "YAML")

		var buf bytes.Buffer
		if err := render(&buf, result, func(io.Writer) { t.Fatalf("text renderer used") }); err != nil {
			t.Fatalf("render: %v", err)
		}

		var got map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got["score"] != 82 {
			t.Fatalf("unexpected yaml %s", buf.String())
		}
	})

	t.Run("text", func(t *testing.T) {
		withOutput(t, "")

		var buf bytes.Buffer
		if err := render(&buf, result, func(w io.Writer) { writeResult(w, result) }); err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Score: 82/100\n") || !strings.Contains(buf.String(), "  - clear") {
			t.Fatalf("unexpected text %q", buf.String())
		}
		if strings.Contains(buf.String(), "Weaknesses") {
			t.Fatalf("empty sections must be omitted: %q", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		withOutput(t, "xml")

		if err := render(io.Discard, result, func(io.Writer) {}); err == nil {
			t.Fatalf("expected error for unknown format")
		}
	})
}

func TestWriteResultClampsScore(t *testing.T) {
	var buf bytes.Buffer
	writeResult(&buf, career.InterviewResult{Score: 250})

	if !strings.HasPrefix(buf.String(), "Score: 100/100") {
		t.Fatalf("expected clamped score, got %q", buf.String())
	}
}

func TestViewReport(t *testing.T) {
	view := viewReport(onboarding.GenerationReport{
		Role: "AI Engineer",
		Results: []onboarding.StepResult{
			{Step: onboarding.StepRoadmap},
			{Step: onboarding.StepProjects, Err: errors.New("bad status 500")},
		},
	})

	if view.Role != "AI Engineer" || len(view.Steps) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Steps[0].Status != "done" || view.Steps[1].Status != "failed" || view.Steps[1].Error != "bad status 500" {
		t.Fatalf("unexpected steps %+v", view.Steps)
	}

	var buf bytes.Buffer
	writeReport(&buf, view)
	if !strings.Contains(buf.String(), "projects: failed (bad status 500)") {
		t.Fatalf("unexpected text %q", buf.String())
	}
}

func TestWriteRoadmapEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeRoadmap(&buf, career.Roadmap{Phases: []career.RoadmapPhase{}})

	if !strings.Contains(buf.String(), "No roadmap yet") {
		t.Fatalf("unexpected text %q", buf.String())
	}
}
