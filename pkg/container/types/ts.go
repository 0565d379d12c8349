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

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const TxnTimestampSize = 12

// TS is a hybrid logical timestamp: 8 bytes of physical time followed by 4
// bytes of logical time, both big endian so that byte order is time order.
type TS [TxnTimestampSize]byte

func BuildTS(p int64, l uint32) (ret TS) {
	binary.BigEndian.PutUint64(ret[:8], uint64(p))
	binary.BigEndian.PutUint32(ret[8:], l)
	return
}

func MaxTs() TS {
	return BuildTS(math.MaxInt64, math.MaxUint32)
}

func (ts TS) Physical() int64 {
	return int64(binary.BigEndian.Uint64(ts[:8]))
}

func (ts TS) Logical() uint32 {
	return binary.BigEndian.Uint32(ts[8:])
}

func (ts TS) IsEmpty() bool {
	return ts == TS{}
}

func (ts TS) Compare(rhs TS) int {
	return bytes.Compare(ts[:], rhs[:])
}

func (ts TS) Equal(rhs TS) bool {
	return ts == rhs
}

func (ts TS) Less(rhs TS) bool {
	return ts.Compare(rhs) < 0
}

func (ts TS) LessEq(rhs TS) bool {
	return ts.Compare(rhs) <= 0
}

func (ts TS) Greater(rhs TS) bool {
	return ts.Compare(rhs) > 0
}

func (ts TS) GreaterEq(rhs TS) bool {
	return ts.Compare(rhs) >= 0
}

// Next returns the smallest timestamp after ts.
func (ts TS) Next() TS {
	if ts.Logical() == math.MaxUint32 {
		return BuildTS(ts.Physical()+1, 0)
	}
	return BuildTS(ts.Physical(), ts.Logical()+1)
}

func (ts TS) ToString() string {
	return fmt.Sprintf("%d-%d", ts.Physical(), ts.Logical())
}

func (ts TS) String() string {
	return ts.ToString()
}
