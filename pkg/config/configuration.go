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

package config

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

type ConfigurationKeyType int

const (
	ParameterUnitKey ConfigurationKeyType = 1
)

// FilterStrategy names the order in which a scan applies the predicate and
// transaction visibility to a batch.
type FilterStrategy string

const (
	// PredicateFirst filters the contiguous range by the predicate and then
	// checks visibility of the survivors only.
	PredicateFirst FilterStrategy = "predicate-first"
	// VisibilityFirst checks visibility of the whole range first and masks
	// the predicate lanes with the visible rows.
	VisibilityFirst FilterStrategy = "visibility-first"
)

const (
	defaultBatchCapacity   = 1024
	defaultLaneWidth       = 32
	defaultMaxZoneMapTerms = 4
	defaultParallelism     = 1
)

// ScanParameters of the vectorized scan
type ScanParameters struct {
	//default is 1024. capacity of the selection vector, also the size of a batch sub-range
	BatchCapacity int `toml:"batchCapacity"`

	//default is 32. rows evaluated together by one lane step. one of 8, 16, 32, 64
	LaneWidth int `toml:"laneWidth"`

	//default is predicate-first. predicate-first or visibility-first
	FilterStrategy FilterStrategy `toml:"filterStrategy"`

	//default is 4. leading column-vs-constant terms consulted for zone map pruning, 0 disables pruning
	MaxZoneMapTerms int `toml:"maxZoneMapTerms"`

	//default is 1. count of workers scanning disjoint chunk partitions
	Parallelism int `toml:"parallelism"`

	Log logutil.LogConfig `toml:"log"`
}

// SetDefaultValues fills the zero fields.
func (sp *ScanParameters) SetDefaultValues() {
	if sp.BatchCapacity == 0 {
		sp.BatchCapacity = defaultBatchCapacity
	}
	if sp.LaneWidth == 0 {
		sp.LaneWidth = defaultLaneWidth
	}
	if sp.FilterStrategy == "" {
		sp.FilterStrategy = PredicateFirst
	}
	if sp.MaxZoneMapTerms == 0 {
		sp.MaxZoneMapTerms = defaultMaxZoneMapTerms
	}
	if sp.Parallelism == 0 {
		sp.Parallelism = defaultParallelism
	}
	if sp.Log.Level == "" {
		sp.Log.Level = "info"
	}
	if sp.Log.Format == "" {
		sp.Log.Format = "console"
	}
}

// Validate reports a bad config error for values the scan cannot run with.
func (sp *ScanParameters) Validate(ctx context.Context) error {
	switch sp.LaneWidth {
	case 8, 16, 32, 64:
	default:
		return moerr.NewBadConfig(ctx, "lane width %d, want one of 8, 16, 32, 64", sp.LaneWidth)
	}
	if sp.BatchCapacity < sp.LaneWidth {
		return moerr.NewBadConfig(ctx, "batch capacity %d smaller than lane width %d", sp.BatchCapacity, sp.LaneWidth)
	}
	switch sp.FilterStrategy {
	case PredicateFirst, VisibilityFirst:
	default:
		return moerr.NewBadConfig(ctx, "unknown filter strategy '%s'", sp.FilterStrategy)
	}
	if sp.MaxZoneMapTerms < 0 {
		return moerr.NewBadConfig(ctx, "max zone map terms %d", sp.MaxZoneMapTerms)
	}
	if sp.Parallelism < 1 {
		return moerr.NewBadConfig(ctx, "parallelism %d", sp.Parallelism)
	}
	return nil
}

// LoadParameters decodes a toml file, fills defaults and validates.
func LoadParameters(ctx context.Context, path string) (*ScanParameters, error) {
	sp := &ScanParameters{}
	md, err := toml.DecodeFile(path, sp)
	if err != nil {
		return nil, moerr.NewBadConfig(ctx, "decode %s: %v", path, err)
	}
	terms := sp.MaxZoneMapTerms
	sp.SetDefaultValues()
	// an explicit 0 turns pruning off
	if md.IsDefined("maxZoneMapTerms") {
		sp.MaxZoneMapTerms = terms
	}
	if err := sp.Validate(ctx); err != nil {
		return nil, err
	}
	return sp, nil
}

// NewDefaultParameters returns parameters holding the default values.
func NewDefaultParameters() *ScanParameters {
	sp := &ScanParameters{}
	sp.SetDefaultValues()
	return sp
}

type ParameterUnit struct {
	SV *ScanParameters

	//Storage Engine
	StorageEngine engine.Engine
}

func NewParameterUnit(sv *ScanParameters, storageEngine engine.Engine) *ParameterUnit {
	return &ParameterUnit{
		SV:            sv,
		StorageEngine: storageEngine,
	}
}

// GetParameterUnit gets the configuration from the context.
func GetParameterUnit(ctx context.Context) *ParameterUnit {
	pu, _ := ctx.Value(ParameterUnitKey).(*ParameterUnit)
	if pu == nil {
		panic("parameter unit is invalid")
	}
	return pu
}
