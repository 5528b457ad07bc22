package normalize

import (
	"strings"

	"github.com/spigell/edubridge/internal/career"
)

// Projects decodes generated project ideas. Accepted shapes: a newline
// delimited string, a list of strings, a list of project objects, a single
// project object and an absent value.
func Projects(raw any) Outcome[career.Project] {
	return projects(unwrapBytes(raw), true)
}

func projects(raw any, decodeStrings bool) Outcome[career.Project] {
	switch v := raw.(type) {
	case nil:
		return fallback[career.Project](nil, ReasonAbsent)
	case string:
		if decodeStrings {
			if decoded, isJSON := decodeJSONString(v); isJSON {
				return projects(decoded, false)
			}
		}
		return ok(projectsFromLines(v))
	case []string:
		out := make([]career.Project, 0, len(v))
		for _, title := range v {
			out = append(out, career.Project{Title: title})
		}
		return ok(out)
	case []any:
		return projectList(v)
	case map[string]any:
		p, decoded := projectFromMap(v)
		if !decoded {
			return fallback[career.Project](nil, ReasonUnknownShape)
		}
		return ok([]career.Project{p})
	default:
		return fallback[career.Project](nil, ReasonUnknownShape)
	}
}

func projectsFromLines(s string) []career.Project {
	lines := strings.Split(s, "\n")
	out := make([]career.Project, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, career.Project{Title: line})
	}
	return out
}

func projectList(items []any) Outcome[career.Project] {
	out := make([]career.Project, 0, len(items))
	dropped := 0

	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, career.Project{Title: v})
		case map[string]any:
			p, decoded := projectFromMap(v)
			if !decoded {
				dropped++
				continue
			}
			out = append(out, p)
		default:
			dropped++
		}
	}

	return partialIf(out, dropped)
}

func projectFromMap(m map[string]any) (career.Project, bool) {
	var p career.Project
	if err := weakDecode(m, &p); err != nil {
		return career.Project{}, false
	}
	return p, true
}
