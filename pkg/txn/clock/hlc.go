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

package clock

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/logutil"
)

// Clock hands out commit and snapshot timestamps.
type Clock interface {
	// Now returns the current timestamp and the upper bound of the current
	// time given the max clock offset.
	Now() (types.TS, types.TS)
	// Update advances the clock past a timestamp learned elsewhere.
	Update(ts types.TS)
	MaxOffset() time.Duration
}

func toMicrosecond(nanoseconds int64) int64 {
	return nanoseconds / 1000
}

func physicalClock() int64 {
	return time.Now().UTC().UnixNano()
}

// HLCClock is an implementation of the Hybrid Logical Clock as described in
// the paper titled -
//
// Logical Physical Clocks and Consistent Snapshots in Globally Distributed
// Databases
type HLCClock struct {
	maxOffset     time.Duration
	physicalClock func() int64

	mu struct {
		sync.Mutex
		// maxLearnedPhysicalTime is the max learned physical time as defined in
		// section 3.3 of the HLC paper.
		maxLearnedPhysicalTime int64
		// ts records the last HLC timestamp returned by the Now() method.
		ts types.TS
	}
}

var _ Clock = (*HLCClock)(nil)

// NewHLCClock returns a new HLCClock instance reading the physical time
// from clock.
func NewHLCClock(clock func() int64, maxOffset time.Duration) *HLCClock {
	if clock == nil {
		panic("physical clock source not specified")
	}

	return &HLCClock{
		physicalClock: clock,
		maxOffset:     maxOffset,
	}
}

// NewUnixNanoHLCClock returns a new HLCClock instance backed by the local wall
// clock in Unix epoch nanoseconds.
func NewUnixNanoHLCClock(maxOffset time.Duration) *HLCClock {
	return NewHLCClock(physicalClock, maxOffset)
}

// MaxOffset returns the max offset of the physical clocks.
func (c *HLCClock) MaxOffset() time.Duration {
	return c.maxOffset
}

// Now returns the current HLC timestamp and the upper bound timestamp of the
// current time in hlc.
func (c *HLCClock) Now() (types.TS, types.TS) {
	now := c.now()
	return now, types.BuildTS(now.Physical()+int64(c.maxOffset), 0)
}

// Update is called whenever a timestamp produced by another clock is
// observed, so that later timestamps from this clock order after it.
func (c *HLCClock) Update(m types.TS) {
	c.update(m)
}

func (c *HLCClock) getPhysicalClock() int64 {
	newPts := c.physicalClock()
	oldPts := c.keepPhysicalClock(newPts)
	if c.maxOffset > 0 {
		c.handleClockJump(oldPts, newPts)
	}

	return newPts
}

// keepPhysicalClock updates the c.mu.maxLearnedPhysicalTime field when
// necessary and returns the previous maxLearnedPhysicalTime value.
func (c *HLCClock) keepPhysicalClock(pts int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.mu.maxLearnedPhysicalTime
	if pts > c.mu.maxLearnedPhysicalTime {
		c.mu.maxLearnedPhysicalTime = pts
	}

	return old
}

// handleClockJump logs backward jumps and jumps larger than half of the max
// offset. Neither is fatal for a single process clock.
func (c *HLCClock) handleClockJump(oldPts int64, newPts int64) {
	if oldPts == 0 {
		return
	}

	jump := int64(0)
	if oldPts > newPts {
		jump = oldPts - newPts
		logutil.Warn("clock backward jump observed",
			zap.Int64("microseconds", toMicrosecond(jump)))
	} else {
		jump = newPts - oldPts
	}

	if jump > int64(c.maxOffset/2) {
		logutil.Warn("big clock jump observed",
			zap.Int64("microseconds", toMicrosecond(jump)))
	}
}

// now returns the current HLC timestamp. it implements the Send or Local event
// part of Figure 5 of the HLC paper.
func (c *HLCClock) now() types.TS {
	newPts := c.getPhysicalClock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mu.ts.Physical() >= newPts {
		c.mu.ts = c.mu.ts.Next()
	} else {
		c.mu.ts = types.BuildTS(newPts, 0)
	}

	return c.mu.ts
}

// update updates the HLCClock based on the received timestamp, it implements
// the Receive Event of message m part of Figure 5 of the HLC paper.
func (c *HLCClock) update(m types.TS) {
	newPts := c.getPhysicalClock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if newPts > c.mu.ts.Physical() && newPts > m.Physical() {
		// local wall time is the max
		// keep the physical time, reset the logical time
		c.mu.ts = types.BuildTS(newPts, 0)
	} else if m.Physical() == c.mu.ts.Physical() {
		if m.Logical() > c.mu.ts.Logical() {
			c.mu.ts = m
		}
	} else if m.Physical() > c.mu.ts.Physical() {
		c.mu.ts = m
	}
}
