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
	"github.com/matrixorigin/vecscan/pkg/txn/clock"
)

const (
	DefaultChunkCapacity = 8192
	DefaultBTreeDegree   = 8
)

type Options struct {
	// ChunkCapacity is the number of rows a chunk holds before a new one
	// is started.
	ChunkCapacity uint32
	// DisableZoneMaps stops the engine from keeping zone maps, so that
	// every chunk of every table must be scanned.
	DisableZoneMaps bool
	Clock           clock.Clock
}

func (o *Options) FillDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.ChunkCapacity == 0 {
		o.ChunkCapacity = DefaultChunkCapacity
	}
	if o.Clock == nil {
		o.Clock = clock.NewUnixNanoHLCClock(0)
	}
	return o
}
