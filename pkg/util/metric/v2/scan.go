// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v2

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScanChunkCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "scan",
			Name:      "chunk_total",
			Help:      "Total number of storage chunks visited by table scans.",
		}, []string{"type"})
	ScanPrunedChunkCounter  = ScanChunkCounter.WithLabelValues("pruned")
	ScanScannedChunkCounter = ScanChunkCounter.WithLabelValues("scanned")

	ScanOutputRowsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "scan",
			Name:      "output_rows_total",
			Help:      "Total number of rows handed downstream by table scans.",
		})

	ScanPredicateDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "scan",
			Name:      "predicate_duration_seconds",
			Help:      "Bucketed histogram of predicate filtering duration of one scan.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2.0, 20),
		})

	ScanDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mo",
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Bucketed histogram of table scan duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2.0, 20),
		})
)
