package subscribers

import (
	"context"
	"sync"

	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
)

// MarketEvent is implemented by every engine event that can be rendered as
// a human readable market activity line.
type MarketEvent interface {
	MarketEvent() string
	TraceID() string
}

// ActivityRecord is one rendered event, as served by the activity API.
type ActivityRecord struct {
	TraceID string `json:"traceId"`
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// MarketActivity retains the most recent engine events so the API can serve
// an activity feed without a datastore behind it.
type MarketActivity struct {
	*Base
	log *logging.Logger

	mu      sync.RWMutex
	records []ActivityRecord
	cap     int
}

func NewMarketActivity(ctx context.Context, log *logging.Logger, retain int, ack bool) *MarketActivity {
	m := &MarketActivity{
		Base: NewBase(ctx, 10, ack),
		log:  log.Named("activity"),
		cap:  retain,
	}
	if m.isRunning() {
		go m.loop(m.ctx)
	}
	return m
}

func (m *MarketActivity) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.Halt()
			return
		case evts, ok := <-m.ch:
			if !ok {
				return
			}
			if m.isRunning() {
				m.Push(evts...)
			}
		}
	}
}

func (m *MarketActivity) Push(evts ...events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range evts {
		me, ok := e.(MarketEvent)
		if !ok {
			m.log.Debug("ignoring event without market payload",
				logging.String("type", e.Type().String()))
			continue
		}
		m.records = append(m.records, ActivityRecord{
			TraceID: me.TraceID(),
			Type:    e.Type().String(),
			Payload: me.MarketEvent(),
		})
		if len(m.records) > m.cap {
			m.records = m.records[len(m.records)-m.cap:]
		}
	}
}

// Types returns nil so the broker registers the subscriber for all events.
func (m *MarketActivity) Types() []events.Type {
	return nil
}

// Recent returns up to n of the latest records, newest last.
func (m *MarketActivity) Recent(n int) []ActivityRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 || n > len(m.records) {
		n = len(m.records)
	}
	out := make([]ActivityRecord, n)
	copy(out, m.records[len(m.records)-n:])
	return out
}
