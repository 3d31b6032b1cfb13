/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metrics defines the prometheus collectors of the anchoring and
// verification operations.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons used as label values of FailuresTotal.
const (
	ReasonEmptyInput      = "empty_input"
	ReasonInvalidEncoding = "invalid_encoding"
	ReasonDecode          = "decode"
	ReasonSign            = "sign"
)

var (

	// ANCHOR

	RootsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "merkleroot_roots_total",
			Help: "Number of computed merkle roots.",
		},
	)
	LeavesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "merkleroot_leaves_total",
			Help: "Number of leaves reduced into a root.",
		},
	)
	FailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merkleroot_failures_total",
			Help: "Number of batches rejected, by reason.",
		},
		[]string{"reason"},
	)
	RootDurationSeconds = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "merkleroot_root_duration_seconds",
			Help: "Duration of the root computation, decoding included.",
		},
	)

	// HASH CHAIN

	ChainBlocksVerifiedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "merkleroot_chain_blocks_verified_total",
			Help: "Number of hash chain blocks verified.",
		},
	)
	ChainInvalidBlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "merkleroot_chain_invalid_blocks_total",
			Help: "Number of hash chain blocks that failed verification.",
		},
	)

	// PROMETHEUS

	DefaultMetrics = []prometheus.Collector{
		RootsTotal,
		LeavesTotal,
		FailuresTotal,
		RootDurationSeconds,

		ChainBlocksVerifiedTotal,
		ChainInvalidBlocksTotal,
	}
)

// Register registers all metrics in r. Collectors already present in r are
// skipped, so it is safe to call it more than once.
func Register(r prometheus.Registerer) error {
	for _, metric := range DefaultMetrics {
		if err := r.Register(metric); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// WriteTextfile dumps all metrics to path in the text exposition format,
// ready to be picked up by a node exporter textfile collector.
func WriteTextfile(path string) error {
	r := prometheus.NewRegistry()
	if err := Register(r); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r)
}
