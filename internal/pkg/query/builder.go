// Package query builds parameterized Spanner SELECT statements.
package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

func (d Direction) keyword() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

type orderKey struct {
	column    string
	direction Direction
}

// Builder is an immutable SELECT builder: every method returns a copy, so a
// base builder can be shared between a row query and its count.
// Condition parameters are named @p0, @p1, ... in WHERE order.
type Builder struct {
	table     string
	columns   []string
	where     []Condition
	orderBy   []orderKey
	limit     int64
	offset    int64
	forUpdate bool
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends columns to the projection. No columns selects *.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.columns = append(nb.columns, columns...)
	return nb
}

// Where adds a condition. Conditions are joined with AND.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.where = append(nb.where, condition)
	return nb
}

// OrderBy adds a sort key. Repeated calls sort by each key in turn.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderKey{column: column, direction: direction})
	return nb
}

// Limit sets the maximum number of rows to return.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limit = limit
	return nb
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offset = offset
	return nb
}

// ForUpdate appends FOR UPDATE so the selected rows are exclusively locked
// until the surrounding read-write transaction ends.
func (b *Builder) ForUpdate() *Builder {
	nb := b.clone()
	nb.forUpdate = true
	return nb
}

// Count keeps FROM and WHERE and selects COUNT(*), dropping ordering,
// pagination and locking.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.columns = []string{"COUNT(*)"}
	nb.orderBy = nil
	nb.limit = 0
	nb.offset = 0
	nb.forUpdate = false
	return nb
}

// Build renders the statement.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.columns, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	b.writeWhere(&sql, params)
	b.writeOrderBy(&sql)

	if b.limit > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = b.limit
	}
	if b.offset > 0 {
		sql.WriteString(" OFFSET @offset")
		params["offset"] = b.offset
	}
	if b.forUpdate {
		sql.WriteString(" FOR UPDATE")
	}

	return spanner.Statement{SQL: sql.String(), Params: params}
}

func (b *Builder) writeWhere(sql *strings.Builder, params map[string]interface{}) {
	if len(b.where) == 0 {
		return
	}
	parts := make([]string, 0, len(b.where))
	next := 0
	for _, cond := range b.where {
		fragment, condParams := cond.SQL(next)
		parts = append(parts, fragment)
		for k, v := range condParams {
			params[k] = v
		}
		next += len(condParams)
	}
	sql.WriteString(" WHERE ")
	sql.WriteString(strings.Join(parts, " AND "))
}

func (b *Builder) writeOrderBy(sql *strings.Builder) {
	if len(b.orderBy) == 0 {
		return
	}
	keys := make([]string, len(b.orderBy))
	for i, k := range b.orderBy {
		keys[i] = k.column + " " + k.direction.keyword()
	}
	sql.WriteString(" ORDER BY ")
	sql.WriteString(strings.Join(keys, ", "))
}

func (b *Builder) clone() *Builder {
	nb := *b
	nb.columns = append([]string(nil), b.columns...)
	nb.where = append([]Condition(nil), b.where...)
	nb.orderBy = append([]orderKey(nil), b.orderBy...)
	return &nb
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}
