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
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/vm"
	"github.com/matrixorigin/vecscan/pkg/vm/process"
)

func New(workers int, newOperator OperatorFactory, newConsumer ConsumerFactory) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		workers:     workers,
		newOperator: newOperator,
		newConsumer: newConsumer,
	}
}

func (p *Pipeline) String() string {
	var buf bytes.Buffer

	vm.String(p.newOperator(0, p.workers), &buf)
	if p.workers > 1 {
		buf.WriteString(fmt.Sprintf(" x %d", p.workers))
	}
	return buf.String()
}

// Run executes every worker on an ants pool and waits for all of them. The
// first failing worker cancels the others and its error is returned.
func (p *Pipeline) Run(proc *process.Process) error {
	pool, err := ants.NewPool(p.workers, ants.WithPanicHandler(func(v interface{}) {
		logutil.Error("scan worker panic", zap.Any("panic", v))
	}))
	if err != nil {
		return moerr.ConvertGoError(proc.Ctx, err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(proc.Ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < p.workers; i++ {
		worker := i
		wproc := process.NewFromProc(proc, ctx)
		op := p.newOperator(worker, p.workers)
		consumer := p.newConsumer(worker)

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			defer wproc.Cancel()
			if err := vm.Run(op, consumer, wproc); err != nil {
				proc.Debug("scan worker failed", zap.Int("worker", worker), zap.Error(err))
				fail(err)
			}
		}); err != nil {
			wg.Done()
			wproc.Cancel()
			fail(moerr.ConvertGoError(ctx, err))
			break
		}
	}
	wg.Wait()
	return firstErr
}
