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

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/container/vector"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine/index"
)

// Attribute describes one column of a table. Idx is the position of the
// column in its TableDef and in every chunk.
type Attribute struct {
	Name string
	Idx  int
	Type types.Type
}

func (attr Attribute) String() string {
	return fmt.Sprintf("%s %s", attr.Name, attr.Type)
}

type TableDef struct {
	Name  string
	Attrs []Attribute
}

// NewTableDef numbers attrs in the given order.
func NewTableDef(name string, attrs ...Attribute) *TableDef {
	def := &TableDef{Name: name, Attrs: make([]Attribute, len(attrs))}
	for i, attr := range attrs {
		attr.Idx = i
		def.Attrs[i] = attr
	}
	return def
}

// Attribute looks a column up by name, ignoring case.
func (def *TableDef) Attribute(name string) (Attribute, bool) {
	for _, attr := range def.Attrs {
		if strings.EqualFold(attr.Name, name) {
			return attr, true
		}
	}
	return Attribute{}, false
}

func (def *TableDef) String() string {
	cols := make([]string, len(def.Attrs))
	for i, attr := range def.Attrs {
		cols[i] = attr.String()
	}
	return fmt.Sprintf("%s(%s)", def.Name, strings.Join(cols, ", "))
}

type Statistics interface {
	Rows() int64
	// NDV estimates the number of distinct non null values of column col.
	NDV(col int) uint64
}

// Chunk is a horizontal slice of a table with column-wise storage. Rows are
// addressed by tuple id, from 0 to Rows()-1.
type Chunk interface {
	ID() uint32
	Rows() uint32
	Column(idx int) (*vector.Vector, error)
	// VersionAt returns the version chain of row tid.
	VersionAt(tid uint32) txnbase.RowVersion
}

type Relation interface {
	Statistics

	TableDef() *TableDef

	Chunks() int
	Chunk(i int) (Chunk, error)

	// ZoneMapExists reports whether the relation keeps zone maps at all.
	ZoneMapExists() bool
	// ZoneMap returns the zone map of column col in chunk chunkID.
	ZoneMap(chunkID uint32, col int) (index.ZM, bool)
}

type Engine interface {
	Create(ctx context.Context, db, table string, def *TableDef) error
	Delete(ctx context.Context, db, table string) error
	Relation(ctx context.Context, db, table string) (Relation, error)
	Relations(db string) []string
}
