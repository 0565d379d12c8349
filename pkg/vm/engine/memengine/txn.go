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
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
)

type rowRef struct {
	rel   *relation
	chunk *chunk
	tid   uint32
}

// Txn is a write transaction. Its writes are visible to itself at once and
// to other snapshots from its commit ts on.
type Txn struct {
	eng   *Engine
	id    uuid.UUID
	start types.TS

	mu      sync.Mutex
	state   txnbase.TxnState
	end     types.TS
	writes  []rowRef
	deletes []rowRef
}

func (txn *Txn) ID() uuid.UUID {
	return txn.id
}

func (txn *Txn) StartTS() types.TS {
	return txn.start
}

func (txn *Txn) CommitTS() types.TS {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	return txn.end
}

func (txn *Txn) State() txnbase.TxnState {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	return txn.state
}

// Snapshot is the read view of the transaction.
func (txn *Txn) Snapshot() txnbase.Snapshot {
	return txnbase.Snapshot{TxnID: txn.id, TS: txn.start}
}

func (txn *Txn) node() txnbase.TxnMVCCNode {
	return txnbase.NewTxnMVCCNode(txn.id, txn.start)
}

func (txn *Txn) checkActive(ctx context.Context) error {
	if txn.state != txnbase.TxnStateActive {
		return moerr.NewTxnClosed(ctx, txn.id.String())
	}
	return nil
}

// Append inserts rows into db.table. Each row holds one datum per column,
// in the family of the column type.
func (txn *Txn) Append(ctx context.Context, db, table string, rows [][]types.Datum) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.checkActive(ctx); err != nil {
		return err
	}
	rel, err := txn.eng.getRelation(ctx, db, table)
	if err != nil {
		return err
	}
	refs, err := rel.append(txn.node(), rows)
	if err != nil {
		return err
	}
	txn.writes = append(txn.writes, refs...)
	return nil
}

// Delete removes row tid of chunk chunkID from db.table.
func (txn *Txn) Delete(ctx context.Context, db, table string, chunkID, tid uint32) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.checkActive(ctx); err != nil {
		return err
	}
	rel, err := txn.eng.getRelation(ctx, db, table)
	if err != nil {
		return err
	}
	rel.mu.RLock()
	if int(chunkID) >= len(rel.chunks) {
		rel.mu.RUnlock()
		return moerr.NewInvalidInput(ctx, "chunk %d of %s does not exist", chunkID, table)
	}
	c := rel.chunks[chunkID]
	rel.mu.RUnlock()
	if err = c.deleteRow(tid, txn.node()); err != nil {
		return err
	}
	txn.deletes = append(txn.deletes, rowRef{rel: rel, chunk: c, tid: tid})
	return nil
}

func (txn *Txn) Commit(ctx context.Context) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.checkActive(ctx); err != nil {
		return err
	}
	end, _ := txn.eng.opts.Clock.Now()
	for _, ref := range txn.writes {
		ref.chunk.commitCreate(ref.tid, end)
	}
	for _, ref := range txn.deletes {
		ref.chunk.commitDelete(ref.tid, end)
	}
	txn.end = end
	txn.state = txnbase.TxnStateCommitted
	logutil.Debug("memengine txn committed",
		zap.String("txn", txn.id.String()),
		zap.String("commit-ts", end.ToString()),
		zap.Int("writes", len(txn.writes)),
		zap.Int("deletes", len(txn.deletes)))
	return nil
}

func (txn *Txn) Rollback(ctx context.Context) error {
	txn.mu.Lock()
	defer txn.mu.Unlock()
	if err := txn.checkActive(ctx); err != nil {
		return err
	}
	for _, ref := range txn.writes {
		ref.chunk.rollbackCreate(ref.tid)
	}
	for _, ref := range txn.deletes {
		ref.chunk.rollbackDelete(ref.tid)
	}
	txn.state = txnbase.TxnStateRollbacked
	logutil.Debug("memengine txn rollbacked",
		zap.String("txn", txn.id.String()))
	return nil
}
