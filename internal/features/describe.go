package features

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DescribeValue reports the kind of v and a few derived facts.
// Unsupported types return nil.
func DescribeValue(v any) map[string]any {
	switch val := v.(type) {
	case string:
		return map[string]any{"type": "string", "length": utf8.RuneCountInString(val), "upper": strings.ToUpper(val)}
	case int:
		return map[string]any{"type": "integer", "value": val, "squared": val * val}
	case int64:
		return map[string]any{"type": "integer", "value": val, "squared": val * val}
	case []string:
		items := make([]any, 0, len(val))
		for _, s := range val {
			items = append(items, strings.ToUpper(s))
		}
		return map[string]any{"type": "list", "length": len(val), "items": items}
	case []any:
		items := make([]any, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				item = strings.ToUpper(s)
			}
			items = append(items, item)
		}
		return map[string]any{"type": "list", "length": len(val), "items": items}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return map[string]any{"type": "dict", "keys": keys, "size": len(val)}
	default:
		return nil
	}
}
