package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stringify coerces a record value to the text a template sees.
//
// Booleans render as "1" or "", times as Unix seconds, lists are joined
// with "|" and nil is the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Text:
		return string(t)
	case Date:
		if t.IsZero() {
			return ""
		}
		return strconv.FormatInt(t.Unix(), 10)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return strconv.FormatInt(t.Unix(), 10)
	case bool:
		if t {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case PathVar:
		return t.Path
	case []string:
		return strings.Join(t, "|")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, "|")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// AsTime reports whether v holds a point in time.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case Date:
		return t.Time, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	}
	return time.Time{}, false
}

// AsInt converts numeric attribute values (including numeric strings) to int.
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case Text:
		return AsInt(string(t))
	}
	return 0, false
}
