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

package index

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/container/vector"
)

const (
	ZMSize = 64
)

var MaxBytesValue []byte

func init() {
	MaxBytesValue = bytes.Repeat([]byte{0xff}, 31)
}

// [0,...29, 30, 31,...60, 61, 62, 63]
//
//	-------  --  --------  --  --  --
//	  min     |     max    |    |   |
//	       len(min)    len(max) |   |
//	                     inited |
//	                              type

type ZM []byte

func NewZM(t types.T) ZM {
	zm := ZM(make([]byte, ZMSize))
	zm.SetType(t)
	return zm
}

func BuildZM(t types.T, v []byte) ZM {
	zm := NewZM(t)
	zm.doInit(v)
	return zm
}

func (zm ZM) doInit(v []byte) {
	if zm.IsString() {
		zm.updateMinString(v)
		zm.updateMaxString(v)
	} else {
		zm.updateMinFixed(v)
		zm.updateMaxFixed(v)
	}
	zm.setInited()
}

func (zm ZM) String() string {
	var b strings.Builder
	if zm.IsString() {
		_, _ = b.WriteString(fmt.Sprintf("ZM(%s)[%v,%v]",
			zm.GetType(), printable(zm.GetMinBuf()), printable(zm.GetMaxBuf())))
	} else {
		_, _ = b.WriteString(fmt.Sprintf("ZM(%s)[%v,%v]",
			zm.GetType(), zm.GetMin(), zm.GetMax()))
	}
	if zm.MaxTruncated() {
		_ = b.WriteByte('+')
	}
	if !zm.IsInited() {
		_, _ = b.WriteString("--")
	}
	return b.String()
}

func printable(b []byte) string {
	for _, c := range b {
		if !strconv.IsPrint(rune(c)) {
			return hex.EncodeToString(b)
		}
	}
	return string(b)
}

func (zm ZM) Clone() ZM {
	cloned := make([]byte, ZMSize)
	copy(cloned[:], zm[:])
	return cloned
}

func (zm ZM) GetType() types.T {
	return types.T(zm[63])
}

func (zm ZM) IsString() bool {
	return zm.GetType().FixedLength() < 0
}

func (zm ZM) Valid() bool {
	return len(zm) == ZMSize && zm.IsInited()
}

func (zm ZM) SetType(t types.T) {
	zm[63] &= 0x00
	zm[63] |= byte(t)
	sz := t.FixedLength()
	if sz <= 0 {
		return
	}
	zm[61] = byte(sz)
	zm[30] = byte(sz)
}

func (zm ZM) GetMinBuf() []byte {
	return zm[0 : zm[30]&0x1f]
}

func (zm ZM) GetMaxBuf() []byte {
	return zm[31 : 31+zm[61]&0x1f]
}

// GetMin returns the decoded min value, nil if the zm is not inited.
func (zm ZM) GetMin() any {
	if !zm.IsInited() {
		return nil
	}
	return getValue(zm.GetType(), zm.GetMinBuf())
}

func (zm ZM) GetMax() any {
	if !zm.IsInited() {
		return nil
	}
	return getValue(zm.GetType(), zm.GetMaxBuf())
}

// MinDatum returns the min as a datum of the column family.
func (zm ZM) MinDatum() types.Datum {
	return decodeDatum(zm.GetType(), zm.GetMinBuf())
}

// MaxDatum returns the max as a datum of the column family. The caller must
// check MaxTruncated for string zone maps.
func (zm ZM) MaxDatum() types.Datum {
	return decodeDatum(zm.GetType(), zm.GetMaxBuf())
}

func (zm ZM) MaxTruncated() bool {
	return zm[61]&0x80 != 0
}

func (zm ZM) SetMaxTruncated() {
	zm[61] |= 0x80
}

func (zm ZM) IsInited() bool {
	return len(zm) == ZMSize && zm[62]&0x80 != 0
}

func (zm ZM) Reset() {
	if len(zm) == ZMSize {
		zm[62] &= 0x7f
	}
}

func (zm ZM) setInited() {
	zm[62] |= 0x80
}

func (zm ZM) Marshal() ([]byte, error) {
	buf := make([]byte, ZMSize)
	copy(buf, zm[:])
	return buf, nil
}

func (zm ZM) Unmarshal(buf []byte) (err error) {
	if len(buf) < ZMSize {
		return moerr.NewInvalidInputNoCtx("zone map of %d bytes", len(buf))
	}
	copy(zm[:], buf[:ZMSize])
	return
}

// ContainsKey reports whether min <= k <= max. k is in family f, which
// must be the promoted comparison family of the column.
func (zm ZM) ContainsKey(k types.Datum, f types.Family) bool {
	return zm.AnyLEByValue(k, f) && zm.AnyGEByValue(k, f)
}

// zm.min < k
func (zm ZM) AnyLTByValue(k types.Datum, f types.Family) bool {
	return types.CompareDatum(f, zm.minIn(f), k) == -1
}

// zm.min <= k
func (zm ZM) AnyLEByValue(k types.Datum, f types.Family) bool {
	c := types.CompareDatum(f, zm.minIn(f), k)
	return c == -1 || c == 0
}

// zm.max > k
func (zm ZM) AnyGTByValue(k types.Datum, f types.Family) bool {
	if zm.IsString() && zm.MaxTruncated() {
		return true
	}
	return types.CompareDatum(f, zm.maxIn(f), k) == 1
}

// zm.max >= k
func (zm ZM) AnyGEByValue(k types.Datum, f types.Family) bool {
	if zm.IsString() && zm.MaxTruncated() {
		return true
	}
	c := types.CompareDatum(f, zm.maxIn(f), k)
	return c == 1 || c == 0
}

// AllEqual reports whether every recorded value equals k.
func (zm ZM) AllEqual(k types.Datum, f types.Family) bool {
	if zm.IsString() {
		// a truncated min or max is not the value itself
		if zm.MaxTruncated() || len(zm.GetMinBuf()) >= 30 || len(zm.GetMaxBuf()) >= 30 {
			return false
		}
	}
	return types.CompareDatum(f, zm.minIn(f), k) == 0 &&
		types.CompareDatum(f, zm.maxIn(f), k) == 0
}

func (zm ZM) minIn(f types.Family) types.Datum {
	return zm.MinDatum().Convert(zm.GetType().Family(), f)
}

func (zm ZM) maxIn(f types.Family) types.Datum {
	return zm.MaxDatum().Convert(zm.GetType().Family(), f)
}

func getValue(t types.T, buf []byte) any {
	switch t {
	case types.T_bool:
		return types.DecodeFixed[bool](buf)
	case types.T_int8:
		return types.DecodeFixed[int8](buf)
	case types.T_int16:
		return types.DecodeFixed[int16](buf)
	case types.T_int32:
		return types.DecodeFixed[int32](buf)
	case types.T_int64:
		return types.DecodeFixed[int64](buf)
	case types.T_uint8:
		return types.DecodeFixed[uint8](buf)
	case types.T_uint16:
		return types.DecodeFixed[uint16](buf)
	case types.T_uint32:
		return types.DecodeFixed[uint32](buf)
	case types.T_uint64:
		return types.DecodeFixed[uint64](buf)
	case types.T_float32:
		return types.DecodeFixed[float32](buf)
	case types.T_float64:
		return types.DecodeFixed[float64](buf)
	case types.T_char, types.T_varchar:
		return buf
	}
	panic(fmt.Sprintf("unsupported type: %v", t))
}

func decodeDatum(t types.T, buf []byte) types.Datum {
	switch v := getValue(t, buf).(type) {
	case bool:
		return types.BoolDatum(v)
	case int8:
		return types.IntDatum(int64(v))
	case int16:
		return types.IntDatum(int64(v))
	case int32:
		return types.IntDatum(int64(v))
	case int64:
		return types.IntDatum(v)
	case uint8:
		return types.UintDatum(uint64(v))
	case uint16:
		return types.UintDatum(uint64(v))
	case uint32:
		return types.UintDatum(uint64(v))
	case uint64:
		return types.UintDatum(v)
	case float32:
		return types.FloatDatum(float64(v))
	case float64:
		return types.FloatDatum(v)
	case []byte:
		return types.BytesDatum(v)
	}
	panic(moerr.NewInvalidStateNoCtx("zone map of type %s", t))
}

func (zm ZM) updateMinString(v []byte) {
	size := len(v)
	if size > 30 {
		size = 30
	}
	copy(zm[:], v[:size])
	zm[30] = byte(size)
}

func (zm ZM) updateMaxString(v []byte) {
	size := len(v)
	var flag byte
	if size > 30 {
		size = 30
		copy(zm[31:], v[:size])
		if hasMaxPrefix(v) {
			flag |= 0x80
		} else {
			adjustBytes(zm[31:61])
		}
	} else {
		copy(zm[31:], v[:size])
	}
	flag |= byte(size)
	zm[61] = flag
}

func (zm ZM) updateMinFixed(v []byte) {
	copy(zm[:], v)
	zm[30] = byte(len(v))
}

func (zm ZM) updateMaxFixed(v []byte) {
	copy(zm[31:], v)
	zm[61] = byte(len(v))
}

func hasMaxPrefix(bs []byte) bool {
	for i := 0; i < 3; i++ {
		if types.DecodeFixed[uint64](bs[i*8:(i+1)*8]) != math.MaxUint64 {
			return false
		}
	}
	if types.DecodeFixed[uint32](bs[24:28]) != math.MaxUint32 {
		return false
	}
	return types.DecodeFixed[uint16](bs[28:30]) == math.MaxUint16
}

// adjustBytes turns a truncated prefix into an upper bound of the value it
// was cut from.
func adjustBytes(bs []byte) {
	for i := len(bs) - 1; i >= 0; i-- {
		bs[i] += 1
		if bs[i] != 0 {
			break
		}
	}
}

func compareBuf(t types.T, a, b []byte) int {
	return types.CompareDatum(t.Family(), decodeDatum(t, a), decodeDatum(t, b))
}

// UpdateZM widens the zm to cover v, the encoded value of one row.
func UpdateZM(zm ZM, v []byte) {
	if !zm.IsInited() {
		zm.doInit(v)
		return
	}
	if zm.IsString() {
		if bytes.Compare(v, zm.GetMinBuf()) < 0 {
			zm.updateMinString(v)
		} else if !zm.MaxTruncated() && bytes.Compare(v, zm.GetMaxBuf()) > 0 {
			zm.updateMaxString(v)
		}
		return
	}
	t := zm.GetType()
	if compareBuf(t, v, zm.GetMinBuf()) < 0 {
		zm.updateMinFixed(v)
	} else if compareBuf(t, v, zm.GetMaxBuf()) > 0 {
		zm.updateMaxFixed(v)
	}
}

// UpdateZMDatum widens the zm to cover d. Nulls and NaN are not recorded.
func UpdateZMDatum(zm ZM, d types.Datum) {
	if d.Null {
		return
	}
	var v []byte
	switch zm.GetType() {
	case types.T_bool:
		v = types.EncodeFixed(d.B)
	case types.T_int8:
		v = types.EncodeFixed(int8(d.I))
	case types.T_int16:
		v = types.EncodeFixed(int16(d.I))
	case types.T_int32:
		v = types.EncodeFixed(int32(d.I))
	case types.T_int64:
		v = types.EncodeFixed(d.I)
	case types.T_uint8:
		v = types.EncodeFixed(uint8(d.U))
	case types.T_uint16:
		v = types.EncodeFixed(uint16(d.U))
	case types.T_uint32:
		v = types.EncodeFixed(uint32(d.U))
	case types.T_uint64:
		v = types.EncodeFixed(d.U)
	case types.T_float32:
		if math.IsNaN(d.F) {
			return
		}
		v = types.EncodeFixed(float32(d.F))
	case types.T_float64:
		if math.IsNaN(d.F) {
			return
		}
		v = types.EncodeFixed(d.F)
	case types.T_char, types.T_varchar:
		v = d.S
	default:
		panic(moerr.NewNotSupportedNoCtx("zone map of type %s", zm.GetType()))
	}
	UpdateZM(zm, v)
}

// BatchUpdateZM widens the zm to cover rows [start, end) of vec.
func BatchUpdateZM(zm ZM, vec *vector.Vector, start, end uint32) {
	for i := start; i < end; i++ {
		UpdateZMDatum(zm, vec.GetDatum(i))
	}
}
