package log_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/alarm/pkg/log"
)

type errStub string

func TestTaskID(t *testing.T) {
	attr := log.TaskID("task-123")
	assertAttrEqual(t, attr, "task_id", "task-123")
}

func TestAlarmID(t *testing.T) {
	attr := log.AlarmID("alarm-abc")
	assertAttrEqual(t, attr, "alarm_id", "alarm-abc")
}

func TestTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 30, 0, 250*int(time.Millisecond), time.UTC)
	attr := log.Time("wake_up", at)
	assertAttrEqual(t, attr, "wake_up", "2026-03-01T08:30:00.250Z")
}

func TestDelay(t *testing.T) {
	attr := log.Delay(1500 * time.Millisecond)
	assert.Equal(t, "delay_ms", attr.Key)
	assert.Equal(t, int64(1500), attr.Value.Int64())
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
