package normalize

import (
	"github.com/spigell/edubridge/internal/career"
)

// Roadmap decodes the roadmap stored on the profile. The backend wraps the
// phases in {target_role, timeline_weeks, roadmap}; a bare phase list and a
// JSON encoded string of either are accepted too.
func Roadmap(raw any) (career.Roadmap, Reason) {
	return roadmap(unwrapBytes(raw), true)
}

func roadmap(raw any, decodeStrings bool) (career.Roadmap, Reason) {
	switch v := raw.(type) {
	case nil:
		return career.Roadmap{Phases: []career.RoadmapPhase{}}, ReasonAbsent
	case string:
		if decodeStrings {
			if decoded, isJSON := decodeJSONString(v); isJSON {
				return roadmap(decoded, false)
			}
		}
		return career.Roadmap{Phases: []career.RoadmapPhase{}}, ReasonUndecodable
	case []any:
		phases, dropped := roadmapPhases(v)
		return career.Roadmap{Phases: phases}, reasonFor(dropped)
	case map[string]any:
		rawPhases := v["roadmap"]
		if rawPhases == nil {
			rawPhases = v["phases"]
		}

		list, isList := rawPhases.([]any)
		if rawPhases != nil && !isList {
			return career.Roadmap{Phases: []career.RoadmapPhase{}}, ReasonUnknownShape
		}

		phases, dropped := roadmapPhases(list)
		return career.Roadmap{
			TargetRole:    coerceString(v["target_role"]),
			TimelineWeeks: coerceInt(v["timeline_weeks"]),
			Phases:        phases,
		}, reasonFor(dropped)
	default:
		return career.Roadmap{Phases: []career.RoadmapPhase{}}, ReasonUnknownShape
	}
}

func roadmapPhases(items []any) ([]career.RoadmapPhase, int) {
	out := make([]career.RoadmapPhase, 0, len(items))
	dropped := 0

	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, career.RoadmapPhase{Phase: v})
		case map[string]any:
			out = append(out, career.RoadmapPhase{
				Phase:         coerceString(v["phase"]),
				Objective:     coerceString(v["objective"]),
				Focus:         coerceStrings(v["focus"]),
				Projects:      coerceStrings(v["projects"]),
				DurationWeeks: coerceInt(v["duration_weeks"]),
			})
		default:
			dropped++
		}
	}

	return out, dropped
}

func reasonFor(dropped int) Reason {
	if dropped > 0 {
		return ReasonPartial
	}
	return OK
}
