package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/kode4food/alarm/pkg/api"
	"github.com/kode4food/alarm/pkg/log"
	"github.com/kode4food/alarm/pkg/scheduler"
)

func (s *Server) listAlarms(c *gin.Context) {
	s.mu.Lock()
	res := make([]api.PendingAlarm, 0, len(s.alarms))
	for id, a := range s.alarms {
		res = append(res, api.PendingAlarm{ID: id, At: a.at})
	}
	s.mu.Unlock()

	slices.SortFunc(res, func(a, b api.PendingAlarm) int {
		return a.At.Compare(b.At)
	})
	c.JSON(http.StatusOK, res)
}

func (s *Server) scheduleAlarm(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		writeError(c, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	atField := gjson.GetBytes(body, "at")
	if !atField.Exists() {
		writeError(c, http.StatusBadRequest, ErrMissingTime)
		return
	}
	at, err := scheduler.ParseTime(atField)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	var payload json.RawMessage
	if p := gjson.GetBytes(body, "payload"); p.Exists() {
		payload = json.RawMessage(p.Raw)
	}

	id := api.AlarmID(uuid.NewString())
	s.mu.Lock()
	s.alarms[id] = &pendingAlarm{at: at}
	s.mu.Unlock()

	task, err := s.sched.ScheduleAt(at, func() error {
		return s.fireAlarm(id, at, payload)
	})
	if err != nil {
		s.forgetAlarm(id)
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if task == "" {
		c.JSON(http.StatusOK, api.ScheduleResponse{ID: id, Fired: true})
		return
	}

	s.mu.Lock()
	a, ok := s.alarms[id]
	if ok {
		a.task = task
	}
	s.mu.Unlock()
	if !ok {
		// cancelled while the task was being queued
		_ = s.sched.Cancel(task)
	}

	slog.Info("Alarm scheduled",
		log.AlarmID(id),
		log.TaskID(task),
		log.Time("at", at))
	c.JSON(http.StatusCreated, api.ScheduleResponse{ID: id})
}

func (s *Server) cancelAlarm(c *gin.Context) {
	id := api.AlarmID(c.Param("alarmID"))
	a, ok := s.forgetAlarm(id)
	if ok && a.task != "" {
		if err := s.sched.Cancel(a.task); err != nil {
			writeError(c, http.StatusInternalServerError, err)
			return
		}
		slog.Info("Alarm cancelled", log.AlarmID(id))
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fireAlarm(
	id api.AlarmID, at time.Time, payload json.RawMessage,
) error {
	if _, ok := s.forgetAlarm(id); !ok {
		return nil
	}

	fired := &api.FiredAlarm{
		ID:      id,
		At:      at,
		FiredAt: s.sched.Now(),
		Payload: payload,
	}
	if !s.publish(fired) {
		slog.Warn("Alarm fired after server closed", log.AlarmID(id))
		return nil
	}
	slog.Info("Alarm fired", log.AlarmID(id))
	return nil
}

func (s *Server) forgetAlarm(id api.AlarmID) (*pendingAlarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alarms[id]
	delete(s.alarms, id)
	return a, ok
}
