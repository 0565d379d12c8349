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

package vm

import (
	"bytes"

	"github.com/matrixorigin/vecscan/pkg/container/batch"
	"github.com/matrixorigin/vecscan/pkg/vm/process"
)

type ExecStatus int

const (
	ExecStop ExecStatus = iota
	ExecNext
	ExecHasMore
)

// CallResult is what an operator hands back from one Call. A Batch is only
// valid until the next Call of the same operator.
type CallResult struct {
	Status ExecStatus
	Batch  *batch.RowBatch
}

func NewCallResult() CallResult {
	return CallResult{
		Status: ExecNext,
	}
}

var CancelResult = CallResult{
	Status: ExecStop,
}

type Operator interface {
	// String returns the string representation of an operator.
	String(buf *bytes.Buffer)

	//Prepare prepares an operator for execution.
	Prepare(proc *process.Process) error

	//Call calls an operator.
	Call(proc *process.Process) (CallResult, error)

	// Reset rewinds the operator so that it can be called again.
	// pipelineFailed marks the process status of the pipeline when the method is called.
	Reset(proc *process.Process, pipelineFailed bool, err error)

	// Free releases everything the operator holds.
	Free(proc *process.Process, pipelineFailed bool, err error)
}

//go:generate mockgen -source=types.go -destination=mock_vm/types_mock.go -package=mock_vm

// Consumer is the single downstream of a producing operator. It must not
// keep bat or its selection after Consume returns.
type Consumer interface {
	Consume(proc *process.Process, bat *batch.RowBatch) error
}

// ConsumerFunc adapts a function to a Consumer.
type ConsumerFunc func(proc *process.Process, bat *batch.RowBatch) error

func (f ConsumerFunc) Consume(proc *process.Process, bat *batch.RowBatch) error {
	return f(proc, bat)
}
