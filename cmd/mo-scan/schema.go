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

package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// parseSchema reads a column list such as
//
//	id bigint not null, price double, name varchar(16) null
//
// Columns are nullable unless marked not null.
func parseSchema(ctx context.Context, table, schema string) (*engine.TableDef, error) {
	var attrs []engine.Attribute
	for _, col := range strings.Split(schema, ",") {
		fields := strings.Fields(strings.ToLower(col))
		if len(fields) < 2 {
			return nil, moerr.NewInvalidInput(ctx, "bad column definition '%s'", strings.TrimSpace(col))
		}
		attr := engine.Attribute{Name: fields[0]}
		nullable := true
		rest := fields[1:]
		if n := len(rest); n >= 2 && rest[n-2] == "not" && rest[n-1] == "null" {
			nullable = false
			rest = rest[:n-2]
		} else if n >= 1 && rest[n-1] == "null" {
			rest = rest[:n-1]
		}

		name := strings.Join(rest, " ")
		var width int64
		if i := strings.IndexByte(name, '('); i > 0 && strings.HasSuffix(name, ")") {
			w, err := strconv.ParseInt(name[i+1:len(name)-1], 10, 32)
			if err != nil || w <= 0 {
				return nil, moerr.NewInvalidInput(ctx, "bad width in '%s'", name)
			}
			name, width = strings.TrimSpace(name[:i]), w
		}
		oid, ok := types.TypeByName(name)
		if !ok {
			return nil, moerr.NewInvalidInput(ctx, "unknown type '%s' of column %s", name, attr.Name)
		}
		if width > 0 && !oid.IsString() {
			return nil, moerr.NewInvalidInput(ctx, "type %s takes no width", name)
		}
		if _, dup := findAttr(attrs, attr.Name); dup {
			return nil, moerr.NewInvalidInput(ctx, "duplicate column %s", attr.Name)
		}
		attr.Type = types.New(oid, int32(width), nullable)
		attrs = append(attrs, attr)
	}
	return engine.NewTableDef(table, attrs...), nil
}

func findAttr(attrs []engine.Attribute, name string) (engine.Attribute, bool) {
	for _, attr := range attrs {
		if attr.Name == name {
			return attr, true
		}
	}
	return engine.Attribute{}, false
}
