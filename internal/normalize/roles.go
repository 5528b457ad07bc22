package normalize

import "strings"

// Roles decodes suggested role names. A list of strings passes through with
// blank entries dropped; an absent value yields an empty list.
func Roles(raw any) Outcome[string] {
	switch v := unwrapBytes(raw).(type) {
	case nil:
		return fallback[string](nil, ReasonAbsent)
	case []string:
		return roleList(v)
	case []any:
		names := make([]string, 0, len(v))
		dropped := 0
		for _, item := range v {
			s, isString := item.(string)
			if !isString {
				dropped++
				continue
			}
			names = append(names, s)
		}
		out := roleList(names)
		if dropped > 0 {
			out.Fallback = ReasonPartial
		}
		return out
	case string:
		if decoded, isJSON := decodeJSONString(v); isJSON {
			if list, isList := decoded.([]any); isList {
				return Roles(list)
			}
		}
		return fallback[string](nil, ReasonUnknownShape)
	default:
		return fallback[string](nil, ReasonUnknownShape)
	}
}

func roleList(names []string) Outcome[string] {
	out := make([]string, 0, len(names))
	dropped := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			dropped++
			continue
		}
		out = append(out, name)
	}
	return partialIf(out, dropped)
}
