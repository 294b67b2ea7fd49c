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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// eventMetrics methods are no-ops on a nil receiver so the bus works
// without a registry
type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	eventsDropped  *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
}

func (e *EventBus) initMetrics(promRegistry prometheus.Registerer) {
	factory := promauto.With(promRegistry)
	e.metrics = &eventMetrics{
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgov_event_bus_events_total",
				Help: "total events published by type",
			},
			[]string{"type"},
		),
		eventsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgov_event_bus_events_dropped_total",
				Help: "events dropped because a subscriber queue was full",
			},
			[]string{"type"},
		),
		deliveryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelgov_event_bus_delivery_errors_total",
				Help: "subscriber delivery failures by type and subscriber kind",
			},
			[]string{"type", "kind"},
		),
		subscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modelgov_event_bus_subscribers",
				Help: "current subscribers by type and subscriber kind",
			},
			[]string{"type", "kind"},
		),
	}
}

func subscriberKind(sub Subscriber) string {
	if _, ok := sub.(*channelSubscriber); ok {
		return "channel"
	}
	return "external"
}

func (m *eventMetrics) subscriberAdded(eventType EventType, sub Subscriber) {
	if m != nil {
		m.subscribers.WithLabelValues(string(eventType), subscriberKind(sub)).Inc()
	}
}

func (m *eventMetrics) subscriberRemoved(eventType EventType, sub Subscriber) {
	if m != nil {
		m.subscribers.WithLabelValues(string(eventType), subscriberKind(sub)).Dec()
	}
}

func (m *eventMetrics) deliveryFailed(eventType EventType, sub Subscriber) {
	if m != nil {
		m.deliveryErrors.WithLabelValues(string(eventType), subscriberKind(sub)).Inc()
	}
}

func (m *eventMetrics) eventDropped(eventType EventType) {
	if m != nil {
		m.eventsDropped.WithLabelValues(string(eventType)).Inc()
	}
}

func (m *eventMetrics) eventPublished(eventType EventType) {
	if m != nil {
		m.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func (m *eventMetrics) reset() {
	if m != nil {
		m.subscribers.Reset()
	}
}
