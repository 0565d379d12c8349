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
	"sync"

	hll "github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/container/vector"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
	"github.com/matrixorigin/vecscan/pkg/vm/engine/index"
)

type relation struct {
	def  *engine.TableDef
	opts *Options

	mu     sync.RWMutex
	chunks []*chunk
	sks    []*hll.Sketch
	rows   int64
}

var _ engine.Relation = (*relation)(nil)

func newRelation(def *engine.TableDef, opts *Options) *relation {
	sks := make([]*hll.Sketch, len(def.Attrs))
	for i := range sks {
		sks[i] = hll.New()
	}
	return &relation{
		def:  def,
		opts: opts,
		sks:  sks,
	}
}

func (r *relation) TableDef() *engine.TableDef {
	return r.def
}

func (r *relation) Rows() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows
}

func (r *relation) NDV(col int) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if col < 0 || col >= len(r.sks) {
		return 0
	}
	return r.sks[col].Estimate()
}

func (r *relation) Chunks() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks)
}

func (r *relation) Chunk(i int) (engine.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.chunks) {
		return nil, moerr.NewInternalErrorNoCtx("chunk %d of %s out of range [0, %d)",
			i, r.def.Name, len(r.chunks))
	}
	return r.chunks[i], nil
}

func (r *relation) ZoneMapExists() bool {
	return !r.opts.DisableZoneMaps
}

func (r *relation) ZoneMap(chunkID uint32, col int) (index.ZM, bool) {
	if r.opts.DisableZoneMaps {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(chunkID) >= len(r.chunks) {
		return nil, false
	}
	return r.chunks[chunkID].zoneMap(col)
}

// checkRows rejects rows that cannot be stored before anything is written,
// so that a failed append leaves the relation unchanged.
func (r *relation) checkRows(rows [][]types.Datum) error {
	for i, row := range rows {
		if len(row) != len(r.def.Attrs) {
			return moerr.NewInvalidInputNoCtx("row %d of %s has %d values, want %d",
				i, r.def.Name, len(row), len(r.def.Attrs))
		}
		for j, d := range row {
			typ := r.def.Attrs[j].Type
			if d.Null && !typ.Nullable {
				return moerr.NewInvalidInputNoCtx("null value in column %s of row %d",
					r.def.Attrs[j].Name, i)
			}
			if typ.Oid.IsString() && typ.Width > 0 && len(d.S) > int(typ.Width) {
				return moerr.NewInvalidInputNoCtx("value of column %s of row %d is longer than %s",
					r.def.Attrs[j].Name, i, typ)
			}
		}
	}
	return nil
}

// append writes rows at the tail of the relation, created by node, and
// returns where they landed.
func (r *relation) append(node txnbase.TxnMVCCNode, rows [][]types.Datum) ([]rowRef, error) {
	if err := r.checkRows(rows); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make([]rowRef, 0, len(rows))
	for len(rows) > 0 {
		if len(r.chunks) == 0 || r.chunks[len(r.chunks)-1].full() {
			r.chunks = append(r.chunks,
				newChunk(uint32(len(r.chunks)), r.def, r.opts.ChunkCapacity, !r.opts.DisableZoneMaps))
		}
		c := r.chunks[len(r.chunks)-1]
		n := int(c.capacity - c.Rows())
		if n > len(rows) {
			n = len(rows)
		}
		tids, err := c.appendRows(node, rows[:n])
		if err != nil {
			return nil, err
		}
		for _, tid := range tids {
			refs = append(refs, rowRef{rel: r, chunk: c, tid: tid})
		}
		for _, row := range rows[:n] {
			r.observe(row)
		}
		rows = rows[n:]
	}
	r.rows += int64(len(refs))
	return refs, nil
}

func (r *relation) observe(row []types.Datum) {
	for i, d := range row {
		if d.Null {
			continue
		}
		r.sks[i].Insert(sketchKey(r.def.Attrs[i].Type.Oid.Family(), d))
	}
}

func sketchKey(f types.Family, d types.Datum) []byte {
	switch f {
	case types.FamilyBool:
		return types.EncodeFixed(d.B)
	case types.FamilyInt:
		return types.EncodeFixed(d.I)
	case types.FamilyUint:
		return types.EncodeFixed(d.U)
	case types.FamilyFloat:
		return types.EncodeFixed(d.F)
	}
	return d.S
}

type chunk struct {
	id       uint32
	capacity uint32

	mu       sync.RWMutex
	vecs     []*vector.Vector
	versions []txnbase.RowVersion
	zms      []index.ZM
}

var _ engine.Chunk = (*chunk)(nil)

func newChunk(id uint32, def *engine.TableDef, capacity uint32, withZM bool) *chunk {
	c := &chunk{
		id:       id,
		capacity: capacity,
		vecs:     make([]*vector.Vector, len(def.Attrs)),
		versions: make([]txnbase.RowVersion, 0, capacity),
	}
	for i, attr := range def.Attrs {
		c.vecs[i] = vector.NewVec(attr.Type)
	}
	if withZM {
		c.zms = make([]index.ZM, len(def.Attrs))
		for i, attr := range def.Attrs {
			c.zms[i] = index.NewZM(attr.Type.Oid)
		}
	}
	return c
}

func (c *chunk) ID() uint32 {
	return c.id
}

func (c *chunk) Rows() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint32(len(c.versions))
}

func (c *chunk) full() bool {
	return c.Rows() >= c.capacity
}

// Column returns the storage of column idx. Appends must not run while the
// vector is being read.
func (c *chunk) Column(idx int) (*vector.Vector, error) {
	if idx < 0 || idx >= len(c.vecs) {
		return nil, moerr.NewInternalErrorNoCtx("column %d of chunk %d out of range", idx, c.id)
	}
	return c.vecs[idx], nil
}

func (c *chunk) VersionAt(tid uint32) txnbase.RowVersion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v := c.versions[tid]
	if v.Deleted != nil {
		del := *v.Deleted
		v.Deleted = &del
	}
	return v
}

func (c *chunk) zoneMap(col int) (index.ZM, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if col < 0 || col >= len(c.zms) {
		return nil, false
	}
	return c.zms[col].Clone(), true
}

func (c *chunk) appendRows(node txnbase.TxnMVCCNode, rows [][]types.Datum) ([]uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tids := make([]uint32, 0, len(rows))
	for _, row := range rows {
		for i, d := range row {
			if err := vector.AppendDatum(c.vecs[i], d); err != nil {
				return nil, err
			}
			if c.zms != nil {
				index.UpdateZMDatum(c.zms[i], d)
			}
		}
		tids = append(tids, uint32(len(c.versions)))
		c.versions = append(c.versions, txnbase.RowVersion{Created: node})
	}
	return tids, nil
}

func (c *chunk) deleteRow(tid uint32, node txnbase.TxnMVCCNode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tid >= uint32(len(c.versions)) {
		return moerr.NewInvalidInputNoCtx("row %d of chunk %d does not exist", tid, c.id)
	}
	v := &c.versions[tid]
	snap := txnbase.Snapshot{TxnID: node.TxnID, TS: node.Start}
	if !v.Created.IsVisible(snap) {
		return moerr.NewInvalidInputNoCtx("row %d of chunk %d is not visible", tid, c.id)
	}
	if v.Deleted != nil {
		if err := v.Deleted.CheckConflict(node.TxnID, node.Start); err != nil {
			return err
		}
		if v.Deleted.IsSameTxn(node.TxnID) {
			return nil
		}
		return moerr.NewInvalidInputNoCtx("row %d of chunk %d is already deleted", tid, c.id)
	}
	del := node
	v.Deleted = &del
	return nil
}

func (c *chunk) commitCreate(tid uint32, end types.TS) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[tid].Created.ApplyCommit(end)
}

func (c *chunk) commitDelete(tid uint32, end types.TS) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[tid].Deleted.ApplyCommit(end)
}

func (c *chunk) rollbackCreate(tid uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[tid].Created.ApplyRollback()
}

func (c *chunk) rollbackDelete(tid uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[tid].Deleted = nil
}
