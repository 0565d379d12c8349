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

package pipeline

import (
	"github.com/matrixorigin/vecscan/pkg/vm"
)

// OperatorFactory builds the producing operator of one worker. The worker
// owns partition worker of workers.
type OperatorFactory func(worker, workers int) vm.Operator

// ConsumerFactory builds the consumer a worker pushes its batches to.
type ConsumerFactory func(worker int) vm.Consumer

// Pipeline runs one producer per worker, each with its own consumer, over
// disjoint partitions of the same table.
type Pipeline struct {
	workers     int
	newOperator OperatorFactory
	newConsumer ConsumerFactory
}
