package log

import (
	"log/slog"
	"time"
)

func TaskID[T ~string](id T) slog.Attr {
	return slog.String("task_id", string(id))
}

func AlarmID[T ~string](id T) slog.Attr {
	return slog.String("alarm_id", string(id))
}

// Time renders an instant under the given key in RFC 3339 with milliseconds
func Time(key string, t time.Time) slog.Attr {
	return slog.String(key, t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

func Delay(d time.Duration) slog.Attr {
	return slog.Int64("delay_ms", d.Milliseconds())
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
