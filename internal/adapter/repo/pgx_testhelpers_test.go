package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketplace/internal/infra"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

func valuesRow(values ...any) simpleRow {
	return simpleRow{scan: func(dest ...any) error { return assign(dest, values) }}
}

func errRow(err error) simpleRow {
	return simpleRow{scan: func(...any) error { return err }}
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v).Convert(target.Type()))
	}
	return nil
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

type sliceRows struct {
	testRowsBase
	rows [][]any
	idx  int
	err  error
}

func (r *sliceRows) Close() {}

func (r *sliceRows) Err() error { return r.err }

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	return assign(dest, r.rows[r.idx-1])
}

// fakeExecutor routes statements by marker and records the order they ran in.
type fakeExecutor struct {
	rows   map[string]func(args []any) pgx.Row
	execs  map[string]func(args []any) (pgconn.CommandTag, error)
	tables map[string]func(args []any) (pgx.Rows, error)
	calls  []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		rows:   map[string]func([]any) pgx.Row{},
		execs:  map[string]func([]any) (pgconn.CommandTag, error){},
		tables: map[string]func([]any) (pgx.Rows, error){},
	}
}

func (f *fakeExecutor) record(query string) string {
	marker, err := infra.MarkerOf(query)
	if err != nil {
		panic(err)
	}
	f.calls = append(f.calls, marker)
	return marker
}

func (f *fakeExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker := f.record(query)
	if fn, ok := f.execs[marker]; ok {
		return fn(args)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	marker := f.record(query)
	if fn, ok := f.rows[marker]; ok {
		return fn(args)
	}
	return simpleRow{}
}

func (f *fakeExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	marker := f.record(query)
	if fn, ok := f.tables[marker]; ok {
		return fn(args)
	}
	return &sliceRows{}, nil
}

func markerOf(query string) string {
	marker, err := infra.MarkerOf(query)
	if err != nil {
		panic(err)
	}
	return marker
}

var _ infra.SQLExecutor = (*fakeExecutor)(nil)
