// Package query turns request parameters into SQL predicates, pagination
// windows and staged aggregation queries for the sqlite entity store.
package query

import (
	"math"
	"strconv"
	"strings"
)

// Params is the flattened query string of a request.
type Params map[string]string

func (p Params) Get(key string) string { return strings.TrimSpace(p[key]) }

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Filter is a conjunction of predicates with positional arguments.
type Filter struct {
	conds []string
	args  []any
}

// Where appends a raw predicate. Callers own the column names; values go
// through args only.
func (f *Filter) Where(cond string, args ...any) *Filter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

func (f *Filter) Eq(col string, v any) *Filter  { return f.Where(col+" = ?", v) }
func (f *Filter) Gte(col string, v any) *Filter { return f.Where(col+" >= ?", v) }
func (f *Filter) Lte(col string, v any) *Filter { return f.Where(col+" <= ?", v) }
func (f *Filter) Lt(col string, v any) *Filter  { return f.Where(col+" < ?", v) }

// EqIf adds an equality predicate only when raw is non-empty.
func (f *Filter) EqIf(col, raw string) *Filter {
	if raw == "" {
		return f
	}
	return f.Eq(col, raw)
}

// Bool filters on an exact boolean only when raw is the literal "true" or
// "false". Anything else, including absence, leaves the filter unchanged.
func (f *Filter) Bool(col, raw string) *Filter {
	switch raw {
	case "true":
		return f.Eq(col, 1)
	case "false":
		return f.Eq(col, 0)
	}
	return f
}

// Search matches term as a case-insensitive substring against any of cols,
// or against any element of the JSON array columns in listCols.
func (f *Filter) Search(term string, cols []string, listCols ...string) *Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(cols)+len(listCols) == 0 {
		return f
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	ors := make([]string, 0, len(cols)+len(listCols))
	args := make([]any, 0, cap(ors))
	for _, c := range cols {
		ors = append(ors, "LOWER("+c+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	for _, c := range listCols {
		ors = append(ors, "EXISTS (SELECT 1 FROM json_each("+c+") WHERE LOWER(json_each.value) LIKE ? ESCAPE '\\')")
		args = append(args, pattern)
	}
	return f.Where("("+strings.Join(ors, " OR ")+")", args...)
}

// ListContains matches rows whose JSON array column holds value, ignoring case.
func (f *Filter) ListContains(col, value string) *Filter {
	value = strings.TrimSpace(value)
	if value == "" {
		return f
	}
	return f.Where("EXISTS (SELECT 1 FROM json_each("+col+") WHERE LOWER(json_each.value) = ?)", strings.ToLower(value))
}

func (f *Filter) Empty() bool { return len(f.conds) == 0 }

// SQL renders the conjunction without the WHERE keyword.
func (f *Filter) SQL() (string, []any) {
	if f.Empty() {
		return "", nil
	}
	return strings.Join(f.conds, " AND "), append([]any(nil), f.args...)
}

// Number parses raw as a float. Empty, malformed and NaN input all report
// false so the caller can treat the parameter as absent.
func Number(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Int parses raw as an integer, truncating decimals and saturating at the int
// range, with the same absence rules as Number.
func Int(raw string) (int, bool) {
	n, ok := Number(raw)
	if !ok {
		return 0, false
	}
	switch {
	case n >= math.MaxInt:
		return math.MaxInt, true
	case n <= math.MinInt:
		return math.MinInt, true
	}
	return int(n), true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
