package normalize

import (
	"strconv"
	"strings"

	"github.com/spigell/edubridge/internal/career"
)

type rawQuestion struct {
	ID       string `mapstructure:"id"`
	Question string `mapstructure:"question"`
	Text     string `mapstructure:"text"`
}

// Questions decodes an interview question set. Accepted shapes are a list of
// question objects, a list of strings, a JSON encoded string of either, an
// envelope object with a "questions" field, a single question object and a
// plain string. A string that is not JSON becomes one synthetic question.
func Questions(raw any) Outcome[career.Question] {
	return questions(unwrapBytes(raw), true)
}

func questions(raw any, decodeStrings bool) Outcome[career.Question] {
	switch v := raw.(type) {
	case nil:
		return fallback[career.Question](nil, ReasonAbsent)
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback[career.Question](nil, ReasonAbsent)
		}
		if decodeStrings {
			if decoded, isJSON := decodeJSONString(v); isJSON {
				return questions(decoded, false)
			}
		}
		return fallback([]career.Question{{ID: "1", Text: v}}, ReasonUndecodable)
	case []string:
		items := make([]any, 0, len(v))
		for _, s := range v {
			items = append(items, s)
		}
		return questionList(items)
	case []any:
		return questionList(v)
	case map[string]any:
		if inner, found := v["questions"]; found {
			return questions(inner, decodeStrings)
		}
		q, found := questionFromMap(v, 0)
		if !found {
			return fallback[career.Question](nil, ReasonUnknownShape)
		}
		return ok([]career.Question{q})
	default:
		return fallback[career.Question](nil, ReasonUnknownShape)
	}
}

func questionList(items []any) Outcome[career.Question] {
	out := make([]career.Question, 0, len(items))
	dropped := 0

	for i, item := range items {
		switch v := item.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				dropped++
				continue
			}
			out = append(out, career.Question{ID: positionID(i), Text: v})
		case map[string]any:
			q, found := questionFromMap(v, i)
			if !found {
				dropped++
				continue
			}
			out = append(out, q)
		default:
			dropped++
		}
	}

	return partialIf(out, dropped)
}

func questionFromMap(m map[string]any, position int) (career.Question, bool) {
	var rq rawQuestion
	if err := weakDecode(m, &rq); err != nil {
		return career.Question{}, false
	}

	text := rq.Question
	if strings.TrimSpace(text) == "" {
		text = rq.Text
	}
	if strings.TrimSpace(text) == "" {
		return career.Question{}, false
	}

	id := strings.TrimSpace(rq.ID)
	if id == "" {
		id = positionID(position)
	}

	return career.Question{ID: id, Text: text}, true
}

func positionID(i int) string {
	return strconv.Itoa(i + 1)
}
