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

package process

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/config"
	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/txn/txnruntime"
)

// New creates a top process reading at snapshot. A nil params means the
// default scan parameters.
func New(ctx context.Context, params *config.ScanParameters, snapshot txnbase.Snapshot) *Process {
	if params == nil {
		params = config.NewDefaultParameters()
	}
	proc := &Process{
		Id:       uuid.NewString(),
		Snapshot: snapshot,
		Runtime:  txnruntime.New(snapshot),
		Params:   params,
		Analyze:  &AnalyzeInfo{},
		UnixTime: time.Now().UnixNano(),
	}
	proc.Ctx, proc.Cancel = context.WithCancel(ctx)
	return proc
}

// NewFromProc creates a process for one worker of p. The child shares the
// snapshot, the parameters and the statistics of p, and is canceled with it.
func NewFromProc(p *Process, ctx context.Context) *Process {
	proc := &Process{
		Id:       p.Id,
		Snapshot: p.Snapshot,
		Runtime:  txnruntime.New(p.Snapshot),
		Params:   p.Params,
		Analyze:  p.Analyze,
		UnixTime: p.UnixTime,
	}
	proc.Ctx, proc.Cancel = context.WithCancel(ctx)
	return proc
}

func (proc *Process) QueryId() string {
	return proc.Id
}

func (proc *Process) SetQueryId(id string) {
	proc.Id = id
}

func (proc *Process) GetAnalyze() Analyze {
	return &analyze{analInfo: proc.Analyze}
}

func (proc *Process) Debug(msg string, fields ...zap.Field) {
	logutil.DebugCtx(proc.Ctx, msg, append(fields, zap.String("query", proc.Id))...)
}

func (proc *Process) Info(msg string, fields ...zap.Field) {
	logutil.InfoCtx(proc.Ctx, msg, append(fields, zap.String("query", proc.Id))...)
}
