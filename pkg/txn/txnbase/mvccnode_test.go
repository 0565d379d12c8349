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

package txnbase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
)

func committed(id uuid.UUID, start, end int64) TxnMVCCNode {
	n := NewTxnMVCCNode(id, types.BuildTS(start, 0))
	n.ApplyCommit(types.BuildTS(end, 0))
	return n
}

func TestIsVisible(t *testing.T) {
	writer, reader := uuid.New(), uuid.New()

	active := NewTxnMVCCNode(writer, types.BuildTS(1, 0))
	assert.True(t, active.IsVisible(Snapshot{TxnID: writer, TS: types.BuildTS(1, 0)}))
	assert.False(t, active.IsVisible(Snapshot{TxnID: reader, TS: types.MaxTs()}))

	node := committed(writer, 1, 10)
	assert.False(t, node.IsVisible(Snapshot{TxnID: reader, TS: types.BuildTS(9, 0)}))
	assert.True(t, node.IsVisible(Snapshot{TxnID: reader, TS: types.BuildTS(10, 0)}))
	assert.True(t, node.IsVisible(Snapshot{TxnID: reader, TS: types.BuildTS(11, 0)}))

	rolled := NewTxnMVCCNode(writer, types.BuildTS(1, 0))
	rolled.ApplyRollback()
	assert.False(t, rolled.IsVisible(Snapshot{TxnID: writer, TS: types.MaxTs()}))
	assert.False(t, rolled.IsVisible(Snapshot{TxnID: reader, TS: types.MaxTs()}))
}

func TestRowVersionVisibleTo(t *testing.T) {
	w1, w2, reader := uuid.New(), uuid.New(), uuid.New()
	del := committed(w2, 15, 20)
	v := RowVersion{Created: committed(w1, 1, 10), Deleted: &del}

	assert.False(t, v.VisibleTo(Snapshot{TxnID: reader, TS: types.BuildTS(5, 0)}))
	assert.True(t, v.VisibleTo(Snapshot{TxnID: reader, TS: types.BuildTS(15, 0)}))
	assert.False(t, v.VisibleTo(Snapshot{TxnID: reader, TS: types.BuildTS(20, 0)}))

	pending := NewTxnMVCCNode(w2, types.BuildTS(15, 0))
	v.Deleted = &pending
	assert.True(t, v.VisibleTo(Snapshot{TxnID: reader, TS: types.BuildTS(30, 0)}))
	assert.False(t, v.VisibleTo(Snapshot{TxnID: w2, TS: types.BuildTS(30, 0)}))
	assert.Contains(t, v.String(), "Active")
}

func TestCheckConflict(t *testing.T) {
	w1, w2 := uuid.New(), uuid.New()

	active := NewTxnMVCCNode(w1, types.BuildTS(1, 0))
	require.NoError(t, active.CheckConflict(w1, types.BuildTS(1, 0)))
	err := active.CheckConflict(w2, types.BuildTS(2, 0))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTxnWWConflict))

	node := committed(w1, 1, 10)
	require.NoError(t, node.CheckConflict(w2, types.BuildTS(10, 0)))
	err = node.CheckConflict(w2, types.BuildTS(9, 0))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTxnWWConflict))

	node.ApplyRollback()
	require.NoError(t, node.CheckConflict(w2, types.BuildTS(9, 0)))
}
