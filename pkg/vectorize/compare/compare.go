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

package compare

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/sys/cpu"
)

// Number is the set of element types a lane can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// LaneFunc compares xs[i] with ys[i] for every i < len(xs) <= 64 and sets
// bit i of the result when the comparison holds. ys must be at least as long
// as xs. A constant operand is passed as a splatted slice.
type LaneFunc[T Number] func(xs, ys []T) uint64

// MaxLanes is the widest lane a LaneFunc can evaluate.
const MaxLanes = 64

var unrolled bool

func init() {
	unrolled = cpu.X86.HasAVX2 || cpu.X86.HasAVX512 || cpu.ARM64.HasASIMD
}

// Unrolled reports which kernel variant the constructors hand out.
func Unrolled() bool {
	return unrolled
}

func Eq[T Number]() LaneFunc[T] {
	if unrolled {
		return eqUnrolled[T]
	}
	return eqPure[T]
}

func Ne[T Number]() LaneFunc[T] {
	if unrolled {
		return neUnrolled[T]
	}
	return nePure[T]
}

func Lt[T Number]() LaneFunc[T] {
	if unrolled {
		return ltUnrolled[T]
	}
	return ltPure[T]
}

func Le[T Number]() LaneFunc[T] {
	if unrolled {
		return leUnrolled[T]
	}
	return lePure[T]
}

func Gt[T Number]() LaneFunc[T] {
	if unrolled {
		return gtUnrolled[T]
	}
	return gtPure[T]
}

func Ge[T Number]() LaneFunc[T] {
	if unrolled {
		return geUnrolled[T]
	}
	return gePure[T]
}

// Splat returns a lane of w copies of v.
func Splat[T Number](v T, w int) []T {
	lane := make([]T, w)
	for i := range lane {
		lane[i] = v
	}
	return lane
}

// CastMasked converts src[i] into dst[i] for every bit i set in active.
// Other entries of dst are left as they are.
func CastMasked[S, D Number](dst []D, src []S, active uint64) {
	if active == laneMask(len(src)) {
		dst = dst[:len(src)]
		for i, v := range src {
			dst[i] = D(v)
		}
		return
	}
	for i := range src {
		if active&(1<<uint(i)) != 0 {
			dst[i] = D(src[i])
		}
	}
}

func laneMask(w int) uint64 {
	if w >= MaxLanes {
		return ^uint64(0)
	}
	return 1<<uint(w) - 1
}

func eqPure[T Number](xs, ys []T) uint64 {
	var res uint64
	for i, x := range xs {
		if x == ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func nePure[T Number](xs, ys []T) uint64 {
	var res uint64
	for i, x := range xs {
		if x != ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func ltPure[T Number](xs, ys []T) uint64 {
	var res uint64
	for i, x := range xs {
		if x < ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func lePure[T Number](xs, ys []T) uint64 {
	var res uint64
	for i, x := range xs {
		if x <= ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func gtPure[T Number](xs, ys []T) uint64 {
	var res uint64
	for i, x := range xs {
		if x > ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func gePure[T Number](xs, ys []T) uint64 {
	var res uint64
	for i, x := range xs {
		if x >= ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}
