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

package nulls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNulls(t *testing.T) {
	var empty *Nulls
	require.False(t, Any(empty))
	require.False(t, Contains(empty, 3))
	require.Equal(t, 0, Length(empty))
	require.Equal(t, "[]", String(empty))

	nsp := Build(1, 5, 9)
	require.True(t, Any(nsp))
	require.True(t, Contains(nsp, 5))
	require.False(t, Contains(nsp, 4))
	require.Equal(t, 3, Length(nsp))

	Del(nsp, 5)
	require.False(t, Contains(nsp, 5))
	require.Equal(t, []uint32{1, 9}, nsp.ToArray())

	AddRange(nsp, 20, 23)
	require.Equal(t, []uint32{1, 9, 20, 21, 22}, nsp.ToArray())

	cp := nsp.Clone()
	Add(cp, 100)
	require.False(t, Contains(nsp, 100))
}

func TestLaneMask(t *testing.T) {
	nsp := Build(0, 3, 31, 32, 64, 70)
	require.Equal(t, uint64(1|1<<3|1<<31), LaneMask(nsp, 0, 32))
	require.Equal(t, uint64(1|1<<32|1<<38), LaneMask(nsp, 32, 64))
	require.Equal(t, uint64(1<<6), LaneMask(nsp, 64, 8)&^1)
	require.Equal(t, uint64(0), LaneMask(nsp, 8, 16))
	require.Equal(t, uint64(0), LaneMask(&Nulls{}, 0, 32))
}

func TestFilter(t *testing.T) {
	nsp := Build(2, 4, 6)
	got := Filter(nsp, []uint32{1, 2, 3, 6})
	require.Equal(t, []uint32{1, 3}, got.ToArray())
	require.False(t, Any(Filter(&Nulls{}, []uint32{1})))
}
