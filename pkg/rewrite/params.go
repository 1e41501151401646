package rewrite

import (
	"fmt"
	"net/url"
	"strconv"
)

// EncodeParams serializes query parameters as a URL-encoded query
// string ("a=1&b=x", no leading "?"). Keys are emitted in sorted order
// so the output is stable for identical inputs. Returns "" for an
// empty or nil map.
func EncodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, formatValue(v))
	}
	return q.Encode()
}

// formatValue stringifies a primitive parameter value using
// locale-independent conversions.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
