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

// The kernels below are unrolled in groups of eight lanes. Keep the six
// kernels in sync when changing one.

func eqUnrolled[T Number](xs, ys []T) uint64 {
	var res uint64
	n := len(xs)
	ys = ys[:n]
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := xs[i:i+8:i+8], ys[i:i+8:i+8]
		var m uint64
		if x[0] == y[0] {
			m |= 1 << 0
		}
		if x[1] == y[1] {
			m |= 1 << 1
		}
		if x[2] == y[2] {
			m |= 1 << 2
		}
		if x[3] == y[3] {
			m |= 1 << 3
		}
		if x[4] == y[4] {
			m |= 1 << 4
		}
		if x[5] == y[5] {
			m |= 1 << 5
		}
		if x[6] == y[6] {
			m |= 1 << 6
		}
		if x[7] == y[7] {
			m |= 1 << 7
		}
		res |= m << uint(i)
	}
	for ; i < n; i++ {
		if xs[i] == ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func neUnrolled[T Number](xs, ys []T) uint64 {
	var res uint64
	n := len(xs)
	ys = ys[:n]
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := xs[i:i+8:i+8], ys[i:i+8:i+8]
		var m uint64
		if x[0] != y[0] {
			m |= 1 << 0
		}
		if x[1] != y[1] {
			m |= 1 << 1
		}
		if x[2] != y[2] {
			m |= 1 << 2
		}
		if x[3] != y[3] {
			m |= 1 << 3
		}
		if x[4] != y[4] {
			m |= 1 << 4
		}
		if x[5] != y[5] {
			m |= 1 << 5
		}
		if x[6] != y[6] {
			m |= 1 << 6
		}
		if x[7] != y[7] {
			m |= 1 << 7
		}
		res |= m << uint(i)
	}
	for ; i < n; i++ {
		if xs[i] != ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func ltUnrolled[T Number](xs, ys []T) uint64 {
	var res uint64
	n := len(xs)
	ys = ys[:n]
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := xs[i:i+8:i+8], ys[i:i+8:i+8]
		var m uint64
		if x[0] < y[0] {
			m |= 1 << 0
		}
		if x[1] < y[1] {
			m |= 1 << 1
		}
		if x[2] < y[2] {
			m |= 1 << 2
		}
		if x[3] < y[3] {
			m |= 1 << 3
		}
		if x[4] < y[4] {
			m |= 1 << 4
		}
		if x[5] < y[5] {
			m |= 1 << 5
		}
		if x[6] < y[6] {
			m |= 1 << 6
		}
		if x[7] < y[7] {
			m |= 1 << 7
		}
		res |= m << uint(i)
	}
	for ; i < n; i++ {
		if xs[i] < ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func leUnrolled[T Number](xs, ys []T) uint64 {
	var res uint64
	n := len(xs)
	ys = ys[:n]
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := xs[i:i+8:i+8], ys[i:i+8:i+8]
		var m uint64
		if x[0] <= y[0] {
			m |= 1 << 0
		}
		if x[1] <= y[1] {
			m |= 1 << 1
		}
		if x[2] <= y[2] {
			m |= 1 << 2
		}
		if x[3] <= y[3] {
			m |= 1 << 3
		}
		if x[4] <= y[4] {
			m |= 1 << 4
		}
		if x[5] <= y[5] {
			m |= 1 << 5
		}
		if x[6] <= y[6] {
			m |= 1 << 6
		}
		if x[7] <= y[7] {
			m |= 1 << 7
		}
		res |= m << uint(i)
	}
	for ; i < n; i++ {
		if xs[i] <= ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func gtUnrolled[T Number](xs, ys []T) uint64 {
	var res uint64
	n := len(xs)
	ys = ys[:n]
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := xs[i:i+8:i+8], ys[i:i+8:i+8]
		var m uint64
		if x[0] > y[0] {
			m |= 1 << 0
		}
		if x[1] > y[1] {
			m |= 1 << 1
		}
		if x[2] > y[2] {
			m |= 1 << 2
		}
		if x[3] > y[3] {
			m |= 1 << 3
		}
		if x[4] > y[4] {
			m |= 1 << 4
		}
		if x[5] > y[5] {
			m |= 1 << 5
		}
		if x[6] > y[6] {
			m |= 1 << 6
		}
		if x[7] > y[7] {
			m |= 1 << 7
		}
		res |= m << uint(i)
	}
	for ; i < n; i++ {
		if xs[i] > ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}

func geUnrolled[T Number](xs, ys []T) uint64 {
	var res uint64
	n := len(xs)
	ys = ys[:n]
	i := 0
	for ; i+8 <= n; i += 8 {
		x, y := xs[i:i+8:i+8], ys[i:i+8:i+8]
		var m uint64
		if x[0] >= y[0] {
			m |= 1 << 0
		}
		if x[1] >= y[1] {
			m |= 1 << 1
		}
		if x[2] >= y[2] {
			m |= 1 << 2
		}
		if x[3] >= y[3] {
			m |= 1 << 3
		}
		if x[4] >= y[4] {
			m |= 1 << 4
		}
		if x[5] >= y[5] {
			m |= 1 << 5
		}
		if x[6] >= y[6] {
			m |= 1 << 6
		}
		if x[7] >= y[7] {
			m |= 1 << 7
		}
		res |= m << uint(i)
	}
	for ; i < n; i++ {
		if xs[i] >= ys[i] {
			res |= 1 << uint(i)
		}
	}
	return res
}
