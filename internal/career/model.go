package career

import "time"

const (
	MinScore = 0
	MaxScore = 100
)

// Session is the authenticated user's local state.
type Session struct {
	Token        string
	Email        string
	Name         string
	SelectedRole string
	// ExpiresAt is zero when the token carries no expiry.
	ExpiresAt time.Time
}

// Expired reports whether the session token has a known expiry in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authenticated reports whether the session can be used for authenticated calls.
func (s Session) Authenticated(now time.Time) bool {
	return s.Token != "" && !s.Expired(now)
}

type ResumeAnalysis struct {
	Summary        string   `json:"summary"`
	SuggestedRoles []string `json:"suggested_roles"`
}

type Question struct {
	ID   string `json:"id"`
	Text string `json:"question"`
}

type AnswerRecord struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"answer"`
}

type Feedback struct {
	Strengths   []string `json:"strengths" yaml:"strengths"`
	Weaknesses  []string `json:"weaknesses" yaml:"weaknesses"`
	Suggestions string   `json:"suggestions" yaml:"suggestions"`
}

type InterviewResult struct {
	AttemptID   string    `json:"attempt_id,omitempty" yaml:"attempt_id,omitempty"`
	Score       int       `json:"score" yaml:"score"`
	Feedback    Feedback  `json:"feedback" yaml:"feedback"`
	EvaluatedAt time.Time `json:"evaluated_at,omitempty" yaml:"evaluated_at,omitempty"`
}

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

type RoadmapPhase struct {
	Phase         string   `json:"phase" yaml:"phase" mapstructure:"phase"`
	Objective     string   `json:"objective,omitempty" yaml:"objective,omitempty" mapstructure:"objective"`
	Focus         []string `json:"focus,omitempty" yaml:"focus,omitempty" mapstructure:"focus"`
	Projects      []string `json:"projects,omitempty" yaml:"projects,omitempty" mapstructure:"projects"`
	DurationWeeks int      `json:"duration_weeks,omitempty" yaml:"duration_weeks,omitempty" mapstructure:"duration_weeks"`
}

type Roadmap struct {
	TargetRole    string         `json:"target_role,omitempty" yaml:"target_role,omitempty" mapstructure:"target_role"`
	TimelineWeeks int            `json:"timeline_weeks,omitempty" yaml:"timeline_weeks,omitempty" mapstructure:"timeline_weeks"`
	Phases        []RoadmapPhase `json:"roadmap" yaml:"roadmap" mapstructure:"roadmap"`
}

// TotalWeeks returns the declared timeline or, when absent, the sum of phase durations.
func (r Roadmap) TotalWeeks() int {
	if r.TimelineWeeks > 0 {
		return r.TimelineWeeks
	}

	total := 0
	for _, p := range r.Phases {
		total += p.DurationWeeks
	}
	return total
}

type Project struct {
	Title       string   `json:"title" yaml:"title" mapstructure:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	TechStack   []string `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty" mapstructure:"tech_stack"`
	Difficulty  string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty" mapstructure:"difficulty"`
}

type Profile struct {
	Name         string    `json:"name" yaml:"name"`
	Email        string    `json:"email" yaml:"email"`
	SelectedRole string    `json:"selected_role,omitempty" yaml:"selected_role,omitempty"`
	Roadmap      Roadmap   `json:"roadmap" yaml:"roadmap"`
	Projects     []Project `json:"projects" yaml:"projects"`
}
