// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package event carries ledger notifications to in-process observers.
package event

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventQueueSize is the buffer size of channel subscribers. Events delivered
// to a full subscriber are dropped.
const EventQueueSize = 100

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber receives events from the bus. Close must be idempotent. A
// Deliver error or panic unregisters the subscriber.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

type subscription struct {
	sub       Subscriber
	eventType EventType
	id        EventSubscriberId
}

// EventBus is an in-process publish/subscribe bus. Subscribers of a type
// receive events in registration order, and Publish never waits on a slow
// channel subscriber.
type EventBus struct {
	subs      map[EventType][]subscription
	metrics   *eventMetrics
	logger    *slog.Logger
	lastSubId EventSubscriberId
	mu        sync.RWMutex
	handlerWg sync.WaitGroup
}

func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subs:   make(map[EventType][]subscription),
		logger: logger.With("component", "event"),
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

// RegisterSubscriber attaches a Subscriber and returns its id
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSubId++
	e.subs[eventType] = append(e.subs[eventType], subscription{
		sub:       sub,
		eventType: eventType,
		id:        e.lastSubId,
	})
	e.metrics.subscriberAdded(eventType, sub)
	return e.lastSubId
}

// Subscribe returns a channel receiving events of one type
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	chSub := newChannelSubscriber(EventQueueSize, e.dropped)
	return e.RegisterSubscriber(eventType, chSub), chSub.ch
}

func (e *EventBus) dropped(evt Event) {
	e.logger.Warn(
		"subscriber queue full, dropping event",
		"type", evt.Type,
	)
	e.metrics.eventDropped(evt.Type)
}

// SubscribeFunc runs handlerFunc on its own goroutine for each event of one
// type until the subscription ends. A panicking handler keeps its
// subscription.
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	e.handlerWg.Add(1)
	go func() {
		defer e.handlerWg.Done()
		for evt := range evtCh {
			e.runHandler(handlerFunc, evt)
		}
	}()
	return subId
}

func (e *EventBus) runHandler(handlerFunc EventHandlerFunc, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(
				"event handler panic",
				"type", evt.Type,
				"panic", r,
			)
		}
	}()
	handlerFunc(evt)
}

// Unsubscribe removes and closes a subscriber. Unknown ids are ignored.
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	subs := e.subs[eventType]
	idx := slices.IndexFunc(subs, func(s subscription) bool {
		return s.id == subId
	})
	if idx < 0 {
		e.mu.Unlock()
		return
	}
	removed := subs[idx]
	subs = slices.Delete(subs, idx, idx+1)
	if len(subs) == 0 {
		delete(e.subs, eventType)
	} else {
		e.subs[eventType] = subs
	}
	e.metrics.subscriberRemoved(eventType, removed.sub)
	e.mu.Unlock()
	removed.sub.Close()
}

// Publish delivers evt to every subscriber of eventType
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	subs := slices.Clone(e.subs[eventType])
	e.mu.RUnlock()
	for _, s := range subs {
		err := deliver(s.sub, evt)
		if err == nil {
			continue
		}
		e.Unsubscribe(eventType, s.id)
		e.metrics.deliveryFailed(eventType, s.sub)
		e.logger.Debug(
			"event delivery error",
			"type", eventType,
			"subscriber", s.id,
			"error", err,
		)
	}
	e.metrics.eventPublished(eventType)
}

func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Stop closes every subscriber and waits for SubscribeFunc handlers to
// return. The bus remains usable afterwards.
func (e *EventBus) Stop() {
	e.mu.Lock()
	old := e.subs
	e.subs = make(map[EventType][]subscription)
	e.mu.Unlock()
	for _, subs := range old {
		for _, s := range subs {
			s.sub.Close()
		}
	}
	e.handlerWg.Wait()
	e.metrics.reset()
}

// subscriberCount returns the number of subscribers of one type
func (e *EventBus) subscriberCount(eventType EventType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[eventType])
}
