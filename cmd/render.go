package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spigell/edubridge/internal/career"
	"github.com/spigell/edubridge/internal/onboarding"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// render writes v in the configured output format. text is used for the
// human readable default.
func render(w io.Writer, v any, text func(io.Writer)) error {
	switch format := strings.ToLower(strings.TrimSpace(viper.GetString("output"))); format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputText, "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

func writeResult(w io.Writer, r career.InterviewResult) {
	fmt.Fprintf(w, "Score: %d/%d\n", career.ClampScore(r.Score), career.MaxScore)
	writeList(w, "Strengths", r.Feedback.Strengths)
	writeList(w, "Weaknesses", r.Feedback.Weaknesses)
	if r.Feedback.Suggestions != "" {
		fmt.Fprintf(w, "Suggestions:\n  %s\n", r.Feedback.Suggestions)
	}
}

func writeRoadmap(w io.Writer, r career.Roadmap) {
	if len(r.Phases) == 0 {
		fmt.Fprintln(w, "No roadmap yet. Confirm a role first.")
		return
	}

	if r.TargetRole != "" {
		fmt.Fprintf(w, "Roadmap for %s (%d weeks)\n", r.TargetRole, r.TotalWeeks())
	}
	for i, p := range r.Phases {
		fmt.Fprintf(w, "%d. %s", i+1, p.Phase)
		if p.DurationWeeks > 0 {
			fmt.Fprintf(w, " [%d weeks]", p.DurationWeeks)
		}
		fmt.Fprintln(w)
		if p.Objective != "" {
			fmt.Fprintf(w, "   %s\n", p.Objective)
		}
		if len(p.Focus) > 0 {
			fmt.Fprintf(w, "   focus: %s\n", strings.Join(p.Focus, ", "))
		}
		if len(p.Projects) > 0 {
			fmt.Fprintf(w, "   projects: %s\n", strings.Join(p.Projects, ", "))
		}
	}
}

func writeProjects(w io.Writer, projects []career.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects yet. Confirm a role first.")
		return
	}

	for i, p := range projects {
		fmt.Fprintf(w, "%d. %s", i+1, p.Title)
		if p.Difficulty != "" {
			fmt.Fprintf(w, " (%s)", p.Difficulty)
		}
		fmt.Fprintln(w)
		if p.Description != "" {
			fmt.Fprintf(w, "   %s\n", p.Description)
		}
		if len(p.TechStack) > 0 {
			fmt.Fprintf(w, "   stack: %s\n", strings.Join(p.TechStack, ", "))
		}
	}
}

func writeProfile(w io.Writer, p career.Profile) {
	fmt.Fprintf(w, "%s <%s>\n", p.Name, p.Email)
	if p.SelectedRole != "" {
		fmt.Fprintf(w, "Role: %s\n", p.SelectedRole)
	}
	fmt.Fprintln(w)
	writeRoadmap(w, p.Roadmap)
	fmt.Fprintln(w)
	writeProjects(w, p.Projects)
}

func writeAnalysis(w io.Writer, a career.ResumeAnalysis) {
	if a.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", a.Summary)
	}
	writeList(w, "Suggested roles", a.SuggestedRoles)
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

type stepView struct {
	Step   string `json:"step" yaml:"step"`
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type reportView struct {
	Role  string     `json:"role" yaml:"role"`
	Steps []stepView `json:"steps" yaml:"steps"`
}

func viewReport(r onboarding.GenerationReport) reportView {
	view := reportView{Role: r.Role, Steps: make([]stepView, 0, len(r.Results))}
	for _, res := range r.Results {
		step := stepView{Step: string(res.Step), Status: "done"}
		if res.Err != nil {
			step.Status = "failed"
			step.Error = res.Err.Error()
		}
		view.Steps = append(view.Steps, step)
	}
	return view
}

func writeReport(w io.Writer, v reportView) {
	fmt.Fprintf(w, "Role confirmed: %s\n", v.Role)
	for _, s := range v.Steps {
		if s.Error != "" {
			fmt.Fprintf(w, "  %s: %s (%s)\n", s.Step, s.Status, s.Error)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", s.Step, s.Status)
	}
}
