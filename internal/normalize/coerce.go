package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// weakDecode decodes generic JSON values into typed structs, accepting
// numbers for strings, numeric strings for ints and single values for slices.
func weakDecode(input, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// unwrapBytes turns raw JSON bytes into a generic value. Bytes that are not
// JSON are returned as a string so they still reach the string branches.
func unwrapBytes(raw any) any {
	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		return raw
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return string(data)
	}
	return decoded
}

// decodeJSONString decodes a JSON array or object embedded in a string,
// tolerating a surrounding markdown code fence.
func decodeJSONString(s string) (any, bool) {
	cleaned := extractJSON(s)
	if cleaned == "" || (cleaned[0] != '[' && cleaned[0] != '{') {
		return nil, false
	}

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, false
	}

	switch decoded.(type) {
	case []any, map[string]any:
		return decoded, true
	default:
		return nil, false
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if i := strings.Index(trimmed, "/"); i != -1 {
			// "85/100"
			trimmed = strings.TrimSpace(trimmed[:i])
		}
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceInt(v any) int {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case []any:
		return strings.Join(coerceStrings(val), "; ")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// coerceStrings flattens a string or list into non-blank strings.
func coerceStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		out := make([]string, 0, len(val))
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if _, nested := item.([]any); nested {
				continue
			}
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := coerceString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}
