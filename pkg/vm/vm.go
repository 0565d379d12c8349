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

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/vm/process"
)

// String calls the operator's string function to show a query plan
func String(op Operator, buf *bytes.Buffer) {
	op.String(buf)
}

func CancelCheck(proc *process.Process) (error, bool) {
	select {
	case <-proc.Ctx.Done():
		return proc.Ctx.Err(), true
	default:
		return nil, false
	}
}

// Run prepares op and pushes every batch it produces to consumer until op
// stops. A panic raised while producing or consuming is returned as an
// error.
func Run(op Operator, consumer Consumer, proc *process.Process) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = moerr.ConvertPanicError(proc.Ctx, e)
		}
		op.Free(proc, err != nil, err)
	}()

	if err = op.Prepare(proc); err != nil {
		return err
	}
	var result CallResult
	for {
		if result, err = op.Call(proc); err != nil {
			return err
		}
		if result.Batch != nil {
			if err = consumer.Consume(proc, result.Batch); err != nil {
				return err
			}
		}
		if result.Status == ExecStop {
			return nil
		}
	}
}
