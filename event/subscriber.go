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

package event

import (
	"log/slog"
	"sync"
)

// channelSubscriber queues events on a buffered channel. Events arriving at
// a full queue go to onDrop instead.
type channelSubscriber struct {
	ch     chan Event
	onDrop func(Event)
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int, onDrop func(Event)) *channelSubscriber {
	return &channelSubscriber{
		ch:     make(chan Event, buffer),
		onDrop: onDrop,
	}
}

func (c *channelSubscriber) Deliver(evt Event) error {
	// Holding the read lock keeps Close from closing ch mid-send
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
	default:
		if c.onDrop != nil {
			c.onDrop(evt)
		}
	}
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// LogSubscriber writes every delivered event to a logger
type LogSubscriber struct {
	logger *slog.Logger
}

func NewLogSubscriber(logger *slog.Logger) *LogSubscriber {
	return &LogSubscriber{logger: logger}
}

func (l *LogSubscriber) Deliver(evt Event) error {
	l.logger.Info(
		"notification",
		"type", string(evt.Type),
		"timestamp", evt.Timestamp,
		"data", evt.Data,
	)
	return nil
}

func (l *LogSubscriber) Close() {}

// SubscribeAll registers sub for every ledger event type
func (e *EventBus) SubscribeAll(sub Subscriber) []EventSubscriberId {
	ret := make([]EventSubscriberId, 0, len(AllEventTypes))
	for _, eventType := range AllEventTypes {
		ret = append(ret, e.RegisterSubscriber(eventType, sub))
	}
	return ret
}
