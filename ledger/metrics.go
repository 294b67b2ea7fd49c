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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	operations *prometheus.CounterVec
	models     prometheus.Gauge
	proposals  prometheus.Gauge
	electorate prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modelgov_ledger_operations_total",
			Help: "ledger operations by operation and result",
		},
		[]string{"op", "result"},
	)
	m.models = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "modelgov_ledger_models",
		Help: "number of registered models",
	})
	m.proposals = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "modelgov_ledger_proposals",
		Help: "number of proposals across all models",
	})
	m.electorate = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "modelgov_ledger_electorate_size",
		Help: "current electorate size",
	})
}
