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
	"fmt"

	"github.com/google/uuid"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
)

type TxnState int8

const (
	TxnStateActive TxnState = iota
	TxnStateCommitted
	TxnStateRollbacked
)

func (s TxnState) String() string {
	switch s {
	case TxnStateActive:
		return "Active"
	case TxnStateCommitted:
		return "Committed"
	case TxnStateRollbacked:
		return "Rollbacked"
	}
	return fmt.Sprintf("TxnState(%d)", int8(s))
}

// Snapshot is the read view of a transaction: every version committed at or
// before TS plus the versions written by TxnID itself.
type Snapshot struct {
	TxnID uuid.UUID
	TS    types.TS
}

func (s Snapshot) String() string {
	return fmt.Sprintf("Snapshot[%s@%s]", s.TxnID, s.TS.ToString())
}

// TxnMVCCNode records which transaction wrote a version and when it
// committed. End is empty until the writer commits.
type TxnMVCCNode struct {
	TxnID      uuid.UUID
	Start, End types.TS
	State      TxnState
}

func NewTxnMVCCNode(txnID uuid.UUID, start types.TS) TxnMVCCNode {
	return TxnMVCCNode{
		TxnID: txnID,
		Start: start,
	}
}

func (un *TxnMVCCNode) IsSameTxn(txnID uuid.UUID) bool {
	return un.TxnID == txnID
}

func (un *TxnMVCCNode) IsActive() bool {
	return un.State == TxnStateActive
}

func (un *TxnMVCCNode) IsCommitted() bool {
	return un.State == TxnStateCommitted
}

func (un *TxnMVCCNode) IsRollbacked() bool {
	return un.State == TxnStateRollbacked
}

// Check whether is mvcc node is visible to snapshot
func (un *TxnMVCCNode) IsVisible(snap Snapshot) bool {
	// Node is always visible to its born txn
	if un.IsSameTxn(snap.TxnID) {
		return !un.IsRollbacked()
	}

	// The born txn of this node has not been commited or was rollbacked
	if !un.IsCommitted() {
		return false
	}

	// Node is visible if the commit ts is le ts
	return un.End.LessEq(snap.TS)
}

// Check w-w confilct
func (un *TxnMVCCNode) CheckConflict(txnID uuid.UUID, start types.TS) error {
	if un.IsRollbacked() {
		return nil
	}
	// If node is held by a active txn
	if un.IsActive() {
		// No conflict if it is the same txn
		if un.IsSameTxn(txnID) {
			return nil
		}
		return moerr.NewTxnWWConflict(moerr.Context())
	}

	// For a committed node, it is w-w conflict if ts is lt the node commit ts
	// -------+-------------+-------------------->
	//        ts         CommitTs            time
	if un.End.Greater(start) {
		return moerr.NewTxnWWConflict(moerr.Context())
	}
	return nil
}

func (un *TxnMVCCNode) ApplyCommit(end types.TS) {
	un.End = end
	un.State = TxnStateCommitted
}

func (un *TxnMVCCNode) ApplyRollback() {
	un.State = TxnStateRollbacked
}

func (un *TxnMVCCNode) String() string {
	return fmt.Sprintf("[%s,%s,%s]%s",
		un.Start.ToString(), un.End.ToString(), un.State, un.TxnID)
}

// RowVersion is the version chain of one row: the node that created it and
// the node that deleted it, if any.
type RowVersion struct {
	Created TxnMVCCNode
	Deleted *TxnMVCCNode
}

// VisibleTo reports whether the row exists in snap.
func (v *RowVersion) VisibleTo(snap Snapshot) bool {
	if !v.Created.IsVisible(snap) {
		return false
	}
	return v.Deleted == nil || !v.Deleted.IsVisible(snap)
}

func (v *RowVersion) String() string {
	if v.Deleted == nil {
		return fmt.Sprintf("C%s", v.Created.String())
	}
	return fmt.Sprintf("C%s D%s", v.Created.String(), v.Deleted.String())
}
