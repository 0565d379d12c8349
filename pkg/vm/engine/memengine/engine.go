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

	"github.com/google/btree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// Engine is an in-memory columnar engine. Tables are kept in a btree
// ordered by (db, table).
type Engine struct {
	opts *Options

	mu      sync.RWMutex
	catalog *btree.BTree
}

var _ engine.Engine = (*Engine)(nil)

type tableNode struct {
	db   string
	name string
	rel  *relation
}

func (n *tableNode) Less(item btree.Item) bool {
	o := item.(*tableNode)
	if n.db != o.db {
		return n.db < o.db
	}
	return n.name < o.name
}

func New(opts *Options) *Engine {
	return &Engine{
		opts:    opts.FillDefaults(),
		catalog: btree.New(DefaultBTreeDegree),
	}
}

func (e *Engine) Create(ctx context.Context, db, table string, def *engine.TableDef) error {
	if len(def.Attrs) == 0 {
		return moerr.NewInvalidInput(ctx, "table %s has no columns", table)
	}
	for _, attr := range def.Attrs {
		if !attr.Type.Oid.IsFixedLen() && !attr.Type.Oid.IsString() {
			return moerr.NewNotSupported(ctx, "column %s of type %s", attr.Name, attr.Type)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	key := &tableNode{db: db, name: table}
	if e.catalog.Has(key) {
		return moerr.NewTableAlreadyExists(ctx, table)
	}
	key.rel = newRelation(engine.NewTableDef(table, def.Attrs...), e.opts)
	e.catalog.ReplaceOrInsert(key)
	logutil.Debug("memengine create table",
		zap.String("db", db),
		zap.String("table", key.rel.def.String()))
	return nil
}

func (e *Engine) Delete(ctx context.Context, db, table string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.catalog.Delete(&tableNode{db: db, name: table}) == nil {
		return moerr.NewNoSuchTable(ctx, db, table)
	}
	return nil
}

func (e *Engine) Relation(ctx context.Context, db, table string) (engine.Relation, error) {
	return e.getRelation(ctx, db, table)
}

func (e *Engine) getRelation(ctx context.Context, db, table string) (*relation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	item := e.catalog.Get(&tableNode{db: db, name: table})
	if item == nil {
		return nil, moerr.NewNoSuchTable(ctx, db, table)
	}
	return item.(*tableNode).rel, nil
}

// Relations returns the tables of db in name order.
func (e *Engine) Relations(db string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var names []string
	e.catalog.AscendGreaterOrEqual(&tableNode{db: db}, func(item btree.Item) bool {
		n := item.(*tableNode)
		if n.db != db {
			return false
		}
		names = append(names, n.name)
		return true
	})
	return names
}

// Begin starts a transaction reading at the current time.
func (e *Engine) Begin() *Txn {
	start, _ := e.opts.Clock.Now()
	return &Txn{
		eng:   e,
		id:    uuid.New(),
		start: start,
	}
}

// LatestSnapshot returns a read-only snapshot of everything committed so
// far.
func (e *Engine) LatestSnapshot() txnbase.Snapshot {
	ts, _ := e.opts.Clock.Now()
	return txnbase.Snapshot{TxnID: uuid.Nil, TS: ts}
}
