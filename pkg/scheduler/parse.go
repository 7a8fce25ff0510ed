package scheduler

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxEpochMillis bounds Unix millisecond values to roughly 275,000 years
// either side of the epoch
const maxEpochMillis = 8_640_000_000_000_000

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.DateTime,
	time.DateOnly,
}

// ParseTime converts v into an instant. It accepts time values, strings in
// common layouts or as Unix milliseconds, numeric Unix milliseconds, and JSON
// strings or numbers as raw bytes or gjson results. Anything else fails with
// ErrInvalidTime
func ParseTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return checkTime(v)
	case *time.Time:
		if v != nil {
			return checkTime(*v)
		}
	case string:
		return parseTimeString(v)
	case int:
		return fromMillis(int64(v))
	case int32:
		return fromMillis(int64(v))
	case int64:
		return fromMillis(v)
	case uint32:
		return fromMillis(int64(v))
	case uint64:
		if v <= maxEpochMillis {
			return fromMillis(int64(v))
		}
	case float32:
		return fromFloatMillis(float64(v))
	case float64:
		return fromFloatMillis(v)
	case gjson.Result:
		return parseJSONResult(v)
	case json.RawMessage:
		return parseJSON(v)
	case []byte:
		return parseJSON(v)
	}
	return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, v)
}

func checkTime(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidTime)
	}
	return t, nil
}

func parseTimeString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidTime)
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromMillis(ms)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return checkTime(t)
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

func parseJSON(b []byte) (time.Time, error) {
	if !gjson.ValidBytes(b) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, b)
	}
	return parseJSONResult(gjson.ParseBytes(b))
}

func parseJSONResult(r gjson.Result) (time.Time, error) {
	switch r.Type {
	case gjson.String:
		return parseTimeString(r.Str)
	case gjson.Number:
		return fromFloatMillis(r.Num)
	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTime, r.Raw)
	}
}

func fromMillis(ms int64) (time.Time, error) {
	if ms > maxEpochMillis || ms < -maxEpochMillis {
		return time.Time{}, fmt.Errorf("%w: %d out of range",
			ErrInvalidTime, ms)
	}
	return time.UnixMilli(ms), nil
}

func fromFloatMillis(ms float64) (time.Time, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, ms)
	}
	if math.Abs(ms) > maxEpochMillis {
		return time.Time{}, fmt.Errorf("%w: %v out of range",
			ErrInvalidTime, ms)
	}
	return time.UnixMilli(int64(math.Trunc(ms))), nil
}
