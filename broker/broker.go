// Package broker fans engine events out to subscribers. Events originate
// in-process (the engine is the only producer), so unlike a chain node there
// is no external event source, Send is called directly by the engines.
package broker

import (
	"context"
	"sync"
	"time"

	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
)

// Subscriber interface allows pushing values to subscribers, can be set to
// a Skip state (temporarily not receiving any events), or closed.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/subscriber_mock.go -package mocks code.trustnet.io/repmarket/broker Subscriber
type Subscriber interface {
	Push(val ...events.Event)
	Skip() <-chan struct{}
	Closed() <-chan struct{}
	C() chan<- []events.Event
	Types() []events.Type
	SetID(id int)
	ID() int
	Ack() bool
}

type subscription struct {
	Subscriber
	required bool
}

// Broker is the base broker type, routing events to subscribers registered
// for their type. Acking subscribers are pushed synchronously, the rest are
// served from a per-type channel.
type Broker struct {
	ctx context.Context
	log *logging.Logger
	cfg Config

	mu    sync.Mutex
	tSubs map[events.Type]map[int]*subscription
	// subs ensures a unique ID for all subscribers regardless of the event
	// types they subscribe to, and lets us notify everyone on shutdown.
	subs   map[int]subscription
	keys   []int
	eChans map[events.Type]chan []events.Event

	quit chan struct{}
}

// New creates a new base broker.
func New(ctx context.Context, log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	b := &Broker{
		ctx:    ctx,
		log:    log,
		cfg:    config,
		tSubs:  map[events.Type]map[int]*subscription{},
		subs:   map[int]subscription{},
		keys:   []int{},
		eChans: map[events.Type]chan []events.Event{},
		quit:   make(chan struct{}),
	}
	go func() {
		<-ctx.Done()
		b.cancelAll()
	}()
	return b
}

func (b *Broker) cancelAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.quit)
	for _, ch := range b.eChans {
		close(ch)
	}
	b.eChans = map[events.Type]chan []events.Event{}
}

func (b *Broker) sendChannel(sub Subscriber, evts []events.Event) {
	timeout := time.NewTimer(b.cfg.SendTimeout.Get())
	defer func() {
		if !timeout.Stop() {
			<-timeout.C
		}
	}()
	select {
	case <-b.ctx.Done():
		return
	case <-sub.Skip():
		return
	case <-sub.Closed():
		return
	case sub.C() <- evts:
		return
	case <-timeout.C:
		return
	}
}

func (b *Broker) startSending(t events.Type, evts []events.Event) {
	b.mu.Lock()
	subs := b.getSubsByType(t)
	ch, ok := b.eChans[t]
	if !ok {
		ch = make(chan []events.Event, 100)
		b.eChans[t] = ch
		go func() {
			for {
				select {
				case <-b.ctx.Done():
					return
				case <-b.quit:
					return
				case batch, open := <-ch:
					if !open {
						return
					}
					b.mu.Lock()
					cur := b.getSubsByType(t)
					b.mu.Unlock()
					for _, sub := range cur {
						if sub.Ack() {
							continue
						}
						select {
						case <-sub.Skip():
						case <-sub.Closed():
							b.Unsubscribe(sub.ID())
						default:
							b.sendChannel(sub, batch)
						}
					}
				}
			}
		}()
	}
	b.mu.Unlock()
	// acking subscribers get the events in the caller's goroutine, so an
	// engine operation returns only once required subscribers saw it
	for _, sub := range subs {
		if sub.Ack() {
			sub.Push(evts...)
		}
	}
	select {
	case <-b.quit:
	case ch <- evts:
	}
}

// Send sends an event to all subscribers.
func (b *Broker) Send(event events.Event) {
	b.startSending(event.Type(), []events.Event{event})
}

// SendBatch sends a slice of events, all of one operation, to subscribers.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}
	byType := map[events.Type][]events.Event{}
	for _, e := range evts {
		byType[e.Type()] = append(byType[e.Type()], e)
	}
	for t, batch := range byType {
		b.startSending(t, batch)
	}
}

// caller must hold the lock
func (b *Broker) getSubsByType(t events.Type) []*subscription {
	subs := make([]*subscription, 0, len(b.tSubs[t])+len(b.tSubs[events.All]))
	for _, s := range b.tSubs[t] {
		subs = append(subs, s)
	}
	for _, s := range b.tSubs[events.All] {
		subs = append(subs, s)
	}
	return subs
}

// Subscribe registers a new subscriber, returning the key.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribe(s)
}

// SubscribeBatch registers several subscribers at once.
func (b *Broker) SubscribeBatch(subs ...Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range subs {
		k := b.subscribe(s)
		s.SetID(k)
	}
}

func (b *Broker) subscribe(s Subscriber) int {
	k := b.getKey()
	sub := subscription{
		Subscriber: s,
		required:   s.Ack(),
	}
	b.subs[k] = sub
	s.SetID(k)
	types := sub.Types()
	if len(types) == 0 {
		types = []events.Type{events.All}
	}
	for _, t := range types {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]*subscription{}
		}
		b.tSubs[t][k] = &sub
	}
	return k
}

// Unsubscribe removes a subscriber, the key can be reused.
func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[k]
	if !ok {
		return
	}
	types := sub.Types()
	if len(types) == 0 {
		types = []events.Type{events.All}
	}
	for _, t := range types {
		delete(b.tSubs[t], k)
	}
	delete(b.subs, k)
	b.keys = append(b.keys, k)
}

func (b *Broker) getKey() int {
	if len(b.keys) > 0 {
		k := b.keys[0]
		b.keys = b.keys[1:]
		return k
	}
	return len(b.subs) + 1
}
