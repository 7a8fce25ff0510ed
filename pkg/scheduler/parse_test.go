package scheduler_test

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/kode4food/alarm/pkg/scheduler"
)

func TestParseTimeValid(t *testing.T) {
	ms := epoch.UnixMilli()
	cases := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"time", epoch, epoch},
		{"time pointer", &epoch, epoch},
		{"rfc3339", "2026-02-27T12:00:00Z", epoch},
		{"rfc3339 offset", "2026-02-27T14:00:00+02:00", epoch},
		{"rfc3339 nano", "2026-02-27T12:00:00.5Z",
			epoch.Add(500 * time.Millisecond)},
		{"rfc1123z", "Fri, 27 Feb 2026 12:00:00 +0000", epoch},
		{"date time", "2026-02-27 12:00:00", epoch},
		{"date only", "2026-02-27", epoch.Add(-12 * time.Hour)},
		{"padded", "  2026-02-27T12:00:00Z ", epoch},
		{"millis string", strconv.FormatInt(ms, 10), epoch},
		{"int64", ms, epoch},
		{"int", int(ms), epoch},
		{"float64", float64(ms) + 0.9, epoch},
		{"json string", []byte(`"2026-02-27T12:00:00Z"`), epoch},
		{"json number", json.RawMessage(strconv.FormatInt(ms, 10)), epoch},
		{"gjson", gjson.Parse(`"2026-02-27T12:00:00Z"`), epoch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := scheduler.ParseTime(tc.value)
			if assert.NoError(t, err) {
				assert.True(t, tc.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseTimeInvalid(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"nil pointer", (*time.Time)(nil)},
		{"zero time", time.Time{}},
		{"garbage", "not a date"},
		{"empty", ""},
		{"blank", "   "},
		{"json object", []byte(`{"at":1}`)},
		{"bad json", []byte(`not json`)},
		{"json bool", json.RawMessage(`true`)},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"too large", int64(8_640_000_000_000_001)},
		{"too large unsigned", uint64(math.MaxUint64)},
		{"struct", struct{}{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scheduler.ParseTime(tc.value)
			assert.ErrorIs(t, err, scheduler.ErrInvalidTime)
		})
	}
}
