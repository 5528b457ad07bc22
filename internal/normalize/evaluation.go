package normalize

import (
	"math"

	"github.com/spigell/edubridge/internal/career"
)

// Evaluation decodes an interview evaluation. The score is rounded and
// clamped to [0,100]; a missing, non numeric or out of range score is
// reported as ReasonPartial. Feedback may be an object or a plain string,
// the latter becoming the suggestions text.
func Evaluation(raw any) (career.InterviewResult, Reason) {
	return evaluation(unwrapBytes(raw), true)
}

func evaluation(raw any, decodeStrings bool) (career.InterviewResult, Reason) {
	switch v := raw.(type) {
	case nil:
		return emptyResult(), ReasonAbsent
	case string:
		if decodeStrings {
			if decoded, isJSON := decodeJSONString(v); isJSON {
				return evaluation(decoded, false)
			}
		}
		result := emptyResult()
		result.Feedback.Suggestions = coerceString(v)
		return result, ReasonUndecodable
	case map[string]any:
		result := emptyResult()
		reason := OK

		score := coerceFloat(v["score"])
		if math.IsNaN(score) || math.IsInf(score, 0) {
			score = 0
			reason = ReasonPartial
		}
		bounded := math.Min(math.Max(score, career.MinScore), career.MaxScore)
		if bounded != score {
			reason = ReasonPartial
		}
		result.Score = career.ClampScore(int(math.Round(bounded)))

		switch fb := v["feedback"].(type) {
		case nil:
		case map[string]any:
			result.Feedback = career.Feedback{
				Strengths:   nonNil(coerceStrings(fb["strengths"])),
				Weaknesses:  nonNil(coerceStrings(fb["weaknesses"])),
				Suggestions: coerceString(fb["suggestions"]),
			}
		default:
			result.Feedback.Suggestions = coerceString(fb)
		}

		return result, reason
	default:
		return emptyResult(), ReasonUnknownShape
	}
}

func emptyResult() career.InterviewResult {
	return career.InterviewResult{
		Feedback: career.Feedback{
			Strengths:  []string{},
			Weaknesses: []string{},
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
