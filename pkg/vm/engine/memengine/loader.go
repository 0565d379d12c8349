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
	"context"
	"io"

	"github.com/matrixorigin/simdcsv"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
)

// BatchReadRows is the number of csv records parsed and appended at a time.
const BatchReadRows = 4000

type CSVOptions struct {
	// Comma is the field terminator, ',' if zero.
	Comma rune
	// Header skips the first record.
	Header bool
}

// LoadCSV appends every record read from r to db.table within txn, at most
// BatchReadRows rows per append. Fields are parsed by column type; "NULL"
// and \N load as null.
func LoadCSV(ctx context.Context, txn *Txn, db, table string, r io.Reader, opts CSVOptions) (int, error) {
	rel, err := txn.eng.getRelation(ctx, db, table)
	if err != nil {
		return 0, err
	}
	attrs := rel.def.Attrs
	comma := opts.Comma
	if comma == 0 {
		comma = ','
	}
	reader := simdcsv.NewReaderWithOptions(r, comma, '#', false, true)

	lines := make(chan simdcsv.LineOut, BatchReadRows)
	readErr := make(chan error, 1)
	go func() {
		readErr <- reader.ReadLoop(lines)
		close(lines)
	}()
	// keep the reader unblocked when returning before the end of input and
	// close it only once ReadLoop is done with it
	defer func() {
		go func() {
			for range lines {
			}
			reader.Close()
		}()
	}()

	var (
		total int
		line  int
		rows  = make([][]types.Datum, 0, BatchReadRows)
	)
	flush := func() error {
		if ctx.Err() != nil {
			return moerr.NewQueryInterrupted(ctx)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := txn.Append(ctx, db, table, rows); err != nil {
			return err
		}
		total += len(rows)
		rows = make([][]types.Datum, 0, BatchReadRows)
		return nil
	}

	skip := opts.Header
	for out := range lines {
		// a nil line marks the end of input
		if out.Line == nil {
			continue
		}
		line++
		if skip {
			skip = false
			continue
		}
		record := out.Line
		if len(record) != len(attrs) {
			return total, moerr.NewInvalidInput(ctx, "line %d has %d fields, want %d",
				line, len(record), len(attrs))
		}
		row := make([]types.Datum, len(attrs))
		for i, field := range record {
			if row[i], err = types.ParseDatum(attrs[i].Type, field); err != nil {
				return total, moerr.NewInvalidInput(ctx, "line %d column %s: %v",
					line, attrs[i].Name, err)
			}
		}
		rows = append(rows, row)
		if len(rows) == BatchReadRows {
			if err = flush(); err != nil {
				return total, err
			}
		}
	}
	if err = <-readErr; err != nil {
		return total, moerr.NewInvalidInput(ctx, "csv read failed: %v", err)
	}
	if err = flush(); err != nil {
		return total, err
	}
	return total, nil
}
