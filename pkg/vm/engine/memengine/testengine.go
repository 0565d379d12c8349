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

package memengine

import (
	"context"

	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// NewTestEngine returns an engine holding db "test" with no tables, using
// small chunks so that tests span several of them.
func NewTestEngine(chunkCapacity uint32) *Engine {
	return New(&Options{ChunkCapacity: chunkCapacity})
}

// CreateAndLoad creates db.table and appends rows in one committed
// transaction.
func CreateAndLoad(ctx context.Context, e *Engine, db, table string,
	attrs []engine.Attribute, rows [][]types.Datum) error {
	if err := e.Create(ctx, db, table, engine.NewTableDef(table, attrs...)); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	txn := e.Begin()
	if err := txn.Append(ctx, db, table, rows); err != nil {
		_ = txn.Rollback(ctx)
		return err
	}
	return txn.Commit(ctx)
}

// Int64Rows builds single column rows holding vs.
func Int64Rows(vs ...int64) [][]types.Datum {
	rows := make([][]types.Datum, len(vs))
	for i, v := range vs {
		rows[i] = []types.Datum{types.IntDatum(v)}
	}
	return rows
}
