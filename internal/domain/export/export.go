package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// TimeLayout renders timestamps as UTC ISO-8601 with milliseconds.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the date suffix of export filenames.
const DateLayout = "2006-01-02"

// ErrUnknownDataset is returned for dataset names without a column set.
var ErrUnknownDataset = errors.New("unknown export dataset")

// Column maps a record key to its header label.
type Column struct {
	Key   string
	Label string
}

// Record is one exported row keyed by column key. Missing keys render as empty cells.
type Record map[string]any

// CSV renders records as comma-separated text: a header row of labels, then one row
// per record in column order.
// PRE: columns is non-empty
// POST: rows are joined by "\n" with no trailing newline
// INVARIANT: cells containing a comma, quote or newline are quoted with quotes doubled
func CSV(records []Record, columns []Column) string {
	lines := make([]string, 0, len(records)+1)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = escape(c.Label)
	}
	lines = append(lines, strings.Join(header, ","))

	cells := make([]string, len(columns))
	for _, rec := range records {
		for i, c := range columns {
			cells[i] = Cell(rec[c.Key])
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// Cell formats a single value for a CSV cell.
// POST: nil, nil pointers and zero times render as ""; times use TimeLayout;
// maps, slices and structs are JSON-encoded before escaping
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return escape(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(TimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return Cell(*x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return escape(x.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Cell(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return escape(string(b))
	}
	return escape(fmt.Sprint(v))
}

func escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename returns "<base>-<YYYY-MM-DD>.csv" for the UTC date of now.
func Filename(base string, now time.Time) string {
	return base + "-" + now.UTC().Format(DateLayout) + ".csv"
}
