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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

func testAttrs() []engine.Attribute {
	return []engine.Attribute{
		{Name: "a", Type: types.New(types.T_int32, 0, false)},
		{Name: "b", Type: types.New(types.T_float64, 0, true)},
		{Name: "c", Type: types.New(types.T_varchar, 8, true)},
	}
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	require.NoError(t, e.Create(ctx, "db1", "t2", engine.NewTableDef("t2", testAttrs()...)))
	require.NoError(t, e.Create(ctx, "db1", "t1", engine.NewTableDef("t1", testAttrs()...)))
	require.NoError(t, e.Create(ctx, "db2", "t0", engine.NewTableDef("t0", testAttrs()...)))

	err := e.Create(ctx, "db1", "t1", engine.NewTableDef("t1", testAttrs()...))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTableAlreadyExists))
	err = e.Create(ctx, "db1", "t3", engine.NewTableDef("t3"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	require.Equal(t, []string{"t1", "t2"}, e.Relations("db1"))
	require.Equal(t, []string{"t0"}, e.Relations("db2"))
	require.Empty(t, e.Relations("db0"))

	rel, err := e.Relation(ctx, "db1", "t1")
	require.NoError(t, err)
	require.Equal(t, "t1(a INT NOT NULL, b DOUBLE, c VARCHAR(8))", rel.TableDef().String())
	attr, ok := rel.TableDef().Attribute("B")
	require.True(t, ok)
	require.Equal(t, 1, attr.Idx)

	require.NoError(t, e.Delete(ctx, "db1", "t1"))
	_, err = e.Relation(ctx, "db1", "t1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchTable))
	require.True(t, moerr.IsMoErrCode(e.Delete(ctx, "db1", "t1"), moerr.ErrNoSuchTable))
}

func TestAppendChunksAndZoneMaps(t *testing.T) {
	ctx := context.Background()
	e := NewTestEngine(4)
	require.NoError(t, CreateAndLoad(ctx, e, "db", "t",
		[]engine.Attribute{{Name: "x", Type: types.New(types.T_int64, 0, false)}},
		Int64Rows(1, 2, 3, 4, 10, 20, 30, 40, 7)))

	rel, err := e.Relation(ctx, "db", "t")
	require.NoError(t, err)
	require.Equal(t, int64(9), rel.Rows())
	require.Equal(t, 3, rel.Chunks())
	require.True(t, rel.ZoneMapExists())

	zm, ok := rel.ZoneMap(1, 0)
	require.True(t, ok)
	require.Equal(t, int64(10), zm.GetMin())
	require.Equal(t, int64(40), zm.GetMax())
	_, ok = rel.ZoneMap(5, 0)
	require.False(t, ok)

	c, err := rel.Chunk(2)
	require.NoError(t, err)
	require.Equal(t, uint32(2), c.ID())
	require.Equal(t, uint32(1), c.Rows())
	vec, err := c.Column(0)
	require.NoError(t, err)
	require.Equal(t, "[7]", vec.String())
	_, err = c.Column(1)
	require.Error(t, err)
	_, err = rel.Chunk(3)
	require.Error(t, err)

	ndv := rel.NDV(0)
	require.True(t, ndv >= 8 && ndv <= 10, "ndv %d", ndv)
	require.Equal(t, uint64(0), rel.NDV(7))
}

func TestDisableZoneMaps(t *testing.T) {
	ctx := context.Background()
	e := New(&Options{DisableZoneMaps: true})
	require.NoError(t, CreateAndLoad(ctx, e, "db", "t",
		[]engine.Attribute{{Name: "x", Type: types.New(types.T_int64, 0, false)}},
		Int64Rows(1, 2)))
	rel, err := e.Relation(ctx, "db", "t")
	require.NoError(t, err)
	require.False(t, rel.ZoneMapExists())
	_, ok := rel.ZoneMap(0, 0)
	require.False(t, ok)
}

func TestAppendRejectsBadRows(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	require.NoError(t, e.Create(ctx, "db", "t", engine.NewTableDef("t", testAttrs()...)))
	txn := e.Begin()

	err := txn.Append(ctx, "db", "t", [][]types.Datum{{types.IntDatum(1)}})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	err = txn.Append(ctx, "db", "t", [][]types.Datum{
		{types.NullDatum(), types.NullDatum(), types.NullDatum()},
	})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	err = txn.Append(ctx, "db", "t", [][]types.Datum{
		{types.IntDatum(1), types.NullDatum(), types.BytesDatum([]byte("too long value"))},
	})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	err = txn.Append(ctx, "db", "nope", nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchTable))

	rel, _ := e.Relation(ctx, "db", "t")
	require.Equal(t, int64(0), rel.Rows())
}

func TestTxnVisibility(t *testing.T) {
	ctx := context.Background()
	e := NewTestEngine(16)
	attrs := []engine.Attribute{{Name: "x", Type: types.New(types.T_int64, 0, false)}}
	require.NoError(t, CreateAndLoad(ctx, e, "db", "t", attrs, Int64Rows(1, 2, 3)))
	rel, _ := e.Relation(ctx, "db", "t")
	c, _ := rel.Chunk(0)

	before := e.LatestSnapshot()

	writer := e.Begin()
	require.NoError(t, writer.Append(ctx, "db", "t", Int64Rows(4)))
	require.NoError(t, writer.Delete(ctx, "db", "t", 0, 0))
	// deleting twice in one txn is a no-op
	require.NoError(t, writer.Delete(ctx, "db", "t", 0, 0))

	other := e.Begin()
	err := other.Delete(ctx, "db", "t", 0, 0)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTxnWWConflict))
	require.True(t, moerr.IsMoErrCode(other.Delete(ctx, "db", "t", 0, 3), moerr.ErrInvalidInput))
	require.True(t, moerr.IsMoErrCode(other.Delete(ctx, "db", "t", 0, 9), moerr.ErrInvalidInput))
	require.True(t, moerr.IsMoErrCode(other.Delete(ctx, "db", "t", 4, 0), moerr.ErrInvalidInput))

	visible := func(snap txnbase.Snapshot) []uint32 {
		var tids []uint32
		for tid := uint32(0); tid < c.Rows(); tid++ {
			v := c.VersionAt(tid)
			if v.VisibleTo(snap) {
				tids = append(tids, tid)
			}
		}
		return tids
	}
	require.Equal(t, []uint32{1, 2, 3}, visible(writer.Snapshot()))
	require.Equal(t, []uint32{0, 1, 2}, visible(before))

	require.NoError(t, writer.Commit(ctx))
	require.Equal(t, txnbase.TxnStateCommitted, writer.State())
	require.True(t, writer.StartTS().Less(writer.CommitTS()))
	require.Equal(t, []uint32{0, 1, 2}, visible(before))
	require.Equal(t, []uint32{1, 2, 3}, visible(e.LatestSnapshot()))
	require.True(t, moerr.IsMoErrCode(writer.Commit(ctx), moerr.ErrTxnClosed))

	// a txn started before the commit does not see it and conflicts on write
	require.Equal(t, []uint32{0, 1, 2}, visible(other.Snapshot()))
	err = other.Delete(ctx, "db", "t", 0, 0)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTxnWWConflict))

	roller := e.Begin()
	require.NoError(t, roller.Append(ctx, "db", "t", Int64Rows(5)))
	require.NoError(t, roller.Delete(ctx, "db", "t", 0, 1))
	require.Equal(t, []uint32{2, 3, 4}, visible(roller.Snapshot()))
	require.NoError(t, roller.Rollback(ctx))
	require.Equal(t, txnbase.TxnStateRollbacked, roller.State())
	require.Equal(t, []uint32{1, 2, 3}, visible(e.LatestSnapshot()))
	require.True(t, moerr.IsMoErrCode(roller.Append(ctx, "db", "t", Int64Rows(6)), moerr.ErrTxnClosed))
}

func TestLoadCSV(t *testing.T) {
	ctx := context.Background()
	e := New(nil)
	require.NoError(t, e.Create(ctx, "db", "t", engine.NewTableDef("t", testAttrs()...)))

	txn := e.Begin()
	data := "a,b,c\n1,1.5,x\n2,\\N,yy\n# comment\n3,NULL,NULL\n"
	n, err := LoadCSV(ctx, txn, "db", "t", strings.NewReader(data), CSVOptions{Header: true})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, txn.Commit(ctx))

	rel, _ := e.Relation(ctx, "db", "t")
	c, _ := rel.Chunk(0)
	vb, _ := c.Column(1)
	vc, _ := c.Column(2)
	require.Equal(t, "[1.5 NULL NULL]", vb.String())
	require.Equal(t, "[x yy NULL]", vc.String())

	txn = e.Begin()
	_, err = LoadCSV(ctx, txn, "db", "t", strings.NewReader("1;2\n"), CSVOptions{Comma: ';'})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	_, err = LoadCSV(ctx, txn, "db", "t", strings.NewReader("x,1,a\n"), CSVOptions{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	_, err = LoadCSV(ctx, txn, "db", "none", strings.NewReader(""), CSVOptions{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrNoSuchTable))
}

func TestLoadCSVManyBatches(t *testing.T) {
	ctx := context.Background()
	e := NewTestEngine(1024)
	require.NoError(t, e.Create(ctx, "db", "t", engine.NewTableDef("t", testAttrs()...)))

	const records = 2*BatchReadRows + 17
	var sb strings.Builder
	sb.WriteString("a,b,c\n")
	for i := 0; i < records; i++ {
		fmt.Fprintf(&sb, "%d,%d.5,v%d\n", i, i%10, i%100)
	}

	txn := e.Begin()
	n, err := LoadCSV(ctx, txn, "db", "t", strings.NewReader(sb.String()), CSVOptions{Header: true})
	require.NoError(t, err)
	require.Equal(t, records, n)
	require.NoError(t, txn.Commit(ctx))

	rel, err := e.Relation(ctx, "db", "t")
	require.NoError(t, err)
	require.Equal(t, int64(records), rel.Rows())
	last, err := rel.Chunk(rel.Chunks() - 1)
	require.NoError(t, err)
	va, err := last.Column(0)
	require.NoError(t, err)
	require.Equal(t, types.IntDatum(records - 1), va.GetDatum(last.Rows()-1))

	// a bad record past the first batch keeps the rows appended before it
	sb.Reset()
	for i := 0; i < BatchReadRows+1; i++ {
		fmt.Fprintf(&sb, "%d,1,x\n", i)
	}
	sb.WriteString("bad,1,x\n")
	txn = e.Begin()
	n, err = LoadCSV(ctx, txn, "db", "t", strings.NewReader(sb.String()), CSVOptions{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
	require.Equal(t, BatchReadRows, n)
	require.NoError(t, txn.Rollback(ctx))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	txn = e.Begin()
	_, err = LoadCSV(cctx, txn, "db", "t", strings.NewReader("1,1,x\n"), CSVOptions{})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrQueryInterrupted))
	require.NoError(t, txn.Rollback(ctx))
}
