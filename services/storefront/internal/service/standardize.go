package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StandardizeUserID converts a raw user identifier into the exact string the
// order backends filter on. Strings are trimmed and integers are rendered in
// decimal. Floats are accepted only when finite and integral. Anything else,
// including nil and types that merely implement fmt.Stringer, yields "".
func StandardizeUserID(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return standardizeNumber(string(v))
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return standardizeFloat(float64(v))
	case float64:
		return standardizeFloat(v)
	default:
		return ""
	}
}

func standardizeFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return ""
	}
	if f >= -(1<<63) && f < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// standardizeNumber renders integer literals canonically and routes anything
// with a fraction or exponent through the float rules.
func standardizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ""
	}
	return standardizeFloat(f)
}
