package mgsp

import (
	"context"
	"fmt"
	"time"
)

// MonitorEvents polls the transport for live-event frames and sends each
// decoded record on the returned channel. The loop runs until ctx is
// canceled or, when d > 0, until d has elapsed; the channel is closed when
// it stops. Frames outside the live-event range are discarded, malformed
// event frames are logged and skipped. Each call starts a fresh poll cycle;
// do not issue commands on the session while a monitor is running.
func (c *Client) MonitorEvents(ctx context.Context, d time.Duration) <-chan EventRecord {
	out := make(chan EventRecord)
	go func() {
		defer close(out)
		var deadline time.Time
		if d > 0 {
			deadline = time.Now().Add(d)
		}
		c.log.Info("monitoring events")
		for {
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return
			}
			n, err := c.t.Available()
			if err != nil {
				c.log.Error("could not poll the transport", "err", err)
				return
			}
			if n > 0 {
				frame, err := readFrame(c.t)
				if err != nil {
					c.log.Error("could not read from the transport", "err", err)
					return
				}
				if len(frame) > 0 {
					if isLiveEvent(frame[0]) {
						event, err := parseLiveEvent(frame)
						if err != nil {
							c.log.Warn("could not decode event", "err", err)
						} else {
							select {
							case out <- event:
							case <-ctx.Done():
								return
							}
						}
					} else {
						c.log.Debug("ignoring message", "command", fmt.Sprintf("0x%02x", frame[0]))
					}
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
			}
		}
	}()
	return out
}
