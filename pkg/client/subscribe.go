package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/kode4food/alarm/pkg/api"
	"github.com/kode4food/alarm/pkg/log"
)

// Subscribe opens the daemon's fired alarm stream. The returned channel
// yields every alarm fired after the subscription was established and is
// closed when ctx is done or the connection drops
func (c *Client) Subscribe(
	ctx context.Context,
) (<-chan *api.FiredAlarm, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(
		ctx, wsURL(c.baseURL)+"/ws", nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	res := make(chan *api.FiredAlarm)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(res)
		defer close(done)
		defer func() { _ = conn.Close() }()
		for {
			var fired api.FiredAlarm
			if err := conn.ReadJSON(&fired); err != nil {
				if ctx.Err() == nil {
					slog.Debug("Alarm stream closed", log.Error(err))
				}
				return
			}
			select {
			case res <- &fired:
			case <-ctx.Done():
				return
			}
		}
	}()
	return res, nil
}

func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
