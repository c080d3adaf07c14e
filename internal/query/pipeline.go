package query

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Pipeline is a staged aggregation over one source table:
//
//	match -> lookup -> addFields -> group -> (match on grouped rows) -> sort -> skip -> limit -> project
//
// The stages up to and including the grouped match render as an inner
// SELECT. The data query wraps it with sort/skip/limit and the count query
// wraps the very same inner SELECT with COUNT(*), so both stay structurally
// identical up to the pagination suffix.
type Pipeline struct {
	source  string
	fields  []string
	match   Filter
	lookups []string
	added   []string
	group   []string
	post    Filter
	sort    []string
	skip    int
	limit   int
	project []string
}

// Aggregate starts a pipeline over source (for example "products p"),
// selecting fields from it.
func Aggregate(source string, fields ...string) *Pipeline {
	return &Pipeline{source: source, fields: fields}
}

// Match restricts source rows before any join or grouping.
func (pl *Pipeline) Match(f Filter) *Pipeline {
	if cond, args := f.SQL(); cond != "" {
		pl.match.Where(cond, args...)
	}
	return pl
}

// Lookup joins another collection, e.g. "LEFT JOIN products p ON p.category_id = c.id".
func (pl *Pipeline) Lookup(join string) *Pipeline {
	pl.lookups = append(pl.lookups, join)
	return pl
}

// AddFields appends derived expressions, each carrying its own alias.
func (pl *Pipeline) AddFields(exprs ...string) *Pipeline {
	pl.added = append(pl.added, exprs...)
	return pl
}

// Group collapses rows by keys; accumulators go through AddFields.
func (pl *Pipeline) Group(keys ...string) *Pipeline {
	pl.group = append(pl.group, keys...)
	return pl
}

// MatchGrouped filters the staged rows, after grouping. Columns refer to the
// output names of the inner stage.
func (pl *Pipeline) MatchGrouped(f Filter) *Pipeline {
	if cond, args := f.SQL(); cond != "" {
		pl.post.Where(cond, args...)
	}
	return pl
}

// Sort orders staged rows; keys use output column names.
func (pl *Pipeline) Sort(keys ...string) *Pipeline {
	pl.sort = append(pl.sort, keys...)
	return pl
}

func (pl *Pipeline) Skip(n int) *Pipeline {
	pl.skip = max(n, 0)
	return pl
}

func (pl *Pipeline) Limit(n int) *Pipeline {
	pl.limit = n
	return pl
}

// Paginate applies the page's sort key, with tiebreak keys after it, and its
// skip/limit window.
func (pl *Pipeline) Paginate(pg Page, tiebreak ...string) *Pipeline {
	return pl.Sort(pg.OrderBy()).Sort(tiebreak...).Skip(pg.Skip()).Limit(pg.Limit)
}

// Project narrows the output to cols.
func (pl *Pipeline) Project(cols ...string) *Pipeline {
	pl.project = append(pl.project, cols...)
	return pl
}

func (pl *Pipeline) inner() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(append(append([]string{}, pl.fields...), pl.added...), ", "))
	b.WriteString(" FROM ")
	b.WriteString(pl.source)
	for _, l := range pl.lookups {
		b.WriteString(" ")
		b.WriteString(l)
	}
	cond, args := pl.match.SQL()
	if cond != "" {
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}
	if len(pl.group) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(pl.group, ", "))
	}
	return b.String(), args
}

// stage renders the shared prefix of the data and count queries.
func (pl *Pipeline) stage(selectList string) (string, []any) {
	in, args := pl.inner()
	q := "SELECT " + selectList + " FROM (" + in + ") AS staged"
	if cond, pargs := pl.post.SQL(); cond != "" {
		q += " WHERE " + cond
		args = append(args, pargs...)
	}
	return q, args
}

// SQL renders the data query.
func (pl *Pipeline) SQL() (string, []any) {
	sel := "*"
	if len(pl.project) > 0 {
		sel = strings.Join(pl.project, ", ")
	}
	q, args := pl.stage(sel)
	if len(pl.sort) > 0 {
		q += " ORDER BY " + strings.Join(pl.sort, ", ")
	}
	if pl.limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, pl.limit, pl.skip)
	} else if pl.skip > 0 {
		q += " LIMIT -1 OFFSET ?"
		args = append(args, pl.skip)
	}
	return q, args
}

// CountSQL renders the count query: the data query without its sort, skip,
// limit and project stages, reduced to COUNT(*).
func (pl *Pipeline) CountSQL() (string, []any) {
	return pl.stage("COUNT(*)")
}

// Fetch runs the data query into dest and the count query concurrently and
// returns the total count. The two reads share no snapshot.
func (pl *Pipeline) Fetch(ctx context.Context, db sqlx.QueryerContext, dest any) (int, error) {
	q, args := pl.SQL()
	cq, cargs := pl.CountSQL()

	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sqlx.SelectContext(gctx, db, dest, q, args...) })
	g.Go(func() error { return sqlx.GetContext(gctx, db, &total, cq, cargs...) })
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}

// All runs only the data query.
func (pl *Pipeline) All(ctx context.Context, db sqlx.QueryerContext, dest any) error {
	q, args := pl.SQL()
	return sqlx.SelectContext(ctx, db, dest, q, args...)
}
