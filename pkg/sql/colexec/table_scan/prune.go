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

package table_scan

import (
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/sql/plan"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// zoneMapPruner decides per chunk whether the leading column vs constant
// terms of the filter can hold for any row of it. A nil pruner never skips.
type zoneMapPruner struct {
	rel   engine.Relation
	terms []plan.SIMDTerm
}

func newZoneMapPruner(rel engine.Relation, pred *plan.Predicate, maxTerms int) *zoneMapPruner {
	if pred == nil || maxTerms <= 0 || !rel.ZoneMapExists() {
		return nil
	}
	terms := pred.LeadingConstTerms(maxTerms)
	if len(terms) == 0 {
		return nil
	}
	return &zoneMapPruner{rel: rel, terms: terms}
}

// skip returns true only if some term is false for every value between
// the chunk's min and max of its column.
func (p *zoneMapPruner) skip(chunkID uint32) bool {
	if p == nil {
		return false
	}
	for i := range p.terms {
		t := &p.terms[i]
		zm, ok := p.rel.ZoneMap(chunkID, t.Left.Idx)
		if !ok || !zm.IsInited() {
			continue
		}
		f := t.CmpType.Oid.Family()
		var maybe bool
		switch t.Op {
		case plan.EQ:
			maybe = zm.ContainsKey(t.Const, f)
		case plan.NE:
			// NaN is never recorded, so a float chunk can't be proven all equal
			maybe = f == types.FamilyFloat || !zm.AllEqual(t.Const, f)
		case plan.LT:
			maybe = zm.AnyLTByValue(t.Const, f)
		case plan.LE:
			maybe = zm.AnyLEByValue(t.Const, f)
		case plan.GT:
			maybe = zm.AnyGTByValue(t.Const, f)
		case plan.GE:
			maybe = zm.AnyGEByValue(t.Const, f)
		default:
			maybe = true
		}
		if !maybe {
			return true
		}
	}
	return false
}
