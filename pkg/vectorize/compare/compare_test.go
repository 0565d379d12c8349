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
	"math"
	"math/rand"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"
)

type kernels[T Number] struct {
	name string
	ctor func() LaneFunc[T]
	ref  func(x, y T) bool
}

func allKernels[T Number]() []kernels[T] {
	return []kernels[T]{
		{"eq", Eq[T], func(x, y T) bool { return x == y }},
		{"ne", Ne[T], func(x, y T) bool { return x != y }},
		{"lt", Lt[T], func(x, y T) bool { return x < y }},
		{"le", Le[T], func(x, y T) bool { return x <= y }},
		{"gt", Gt[T], func(x, y T) bool { return x > y }},
		{"ge", Ge[T], func(x, y T) bool { return x >= y }},
	}
}

func checkKernels[T Number](t *testing.T, xs, ys []T) {
	for _, k := range allKernels[T]() {
		var want uint64
		for i := range xs {
			if k.ref(xs[i], ys[i]) {
				want |= 1 << uint(i)
			}
		}
		for _, flag := range []bool{false, true} {
			stubs := gostub.Stub(&unrolled, flag)
			require.Equal(t, want, k.ctor()(xs, ys), "%s unrolled=%v n=%d", k.name, flag, len(xs))
			stubs.Reset()
		}
	}
}

func TestKernelsInt(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 7, 8, 9, 16, 31, 32, 33, 63, 64} {
		xs, ys := make([]int16, n), make([]int16, n)
		for i := range xs {
			xs[i], ys[i] = int16(r.Intn(5)-2), int16(r.Intn(5)-2)
		}
		checkKernels(t, xs, ys)
	}
}

func TestKernelsUint(t *testing.T) {
	xs := []uint64{0, 1, math.MaxUint64, 5, 5, 6, 7, 8, 9, 10}
	ys := Splat[uint64](5, 16)
	checkKernels(t, xs, ys)
}

func TestKernelsFloat(t *testing.T) {
	nan := math.NaN()
	xs := []float64{nan, 1, -1, 0, math.Inf(1), math.Inf(-1), 2.5, nan, 2.5}
	ys := []float64{1, nan, -1, -0.0, 3, 3, 2.5, nan, 2.4}
	checkKernels(t, xs, ys)

	// NaN satisfies only <>
	for _, k := range allKernels[float64]() {
		got := k.ctor()([]float64{nan}, []float64{nan})
		require.Equal(t, k.name == "ne", got == 1, k.name)
	}
}

func TestSplat(t *testing.T) {
	require.Equal(t, []int32{3, 3, 3, 3}, Splat[int32](3, 4))
	require.Empty(t, Splat[int32](3, 0))
}

func TestCastMasked(t *testing.T) {
	src := []int8{1, -2, 3, -4}
	dst := make([]float64, 4)
	CastMasked(dst, src, 0xf)
	require.Equal(t, []float64{1, -2, 3, -4}, dst)

	dst = []float64{9, 9, 9, 9}
	CastMasked(dst, src, 0x5)
	require.Equal(t, []float64{1, 9, 3, 9}, dst)

	wide := make([]uint32, 64)
	out := make([]int64, 64)
	for i := range wide {
		wide[i] = math.MaxUint32 - 63 + uint32(i)
	}
	CastMasked(out, wide, math.MaxUint64)
	require.Equal(t, int64(math.MaxUint32), out[63])
}
