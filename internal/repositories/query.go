package repositories

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

// Predicate is a single SQL condition with its bind arguments. Predicates in a
// Query are always AND-ed together.
type Predicate struct {
	Clause string
	Args   []any
}

func Eq(column string, value any) Predicate {
	return Predicate{Clause: column + " = ?", Args: []any{value}}
}

func In[T any](column string, values []T) Predicate {
	return Predicate{Clause: column + " IN ?", Args: []any{values}}
}

func IsNull(column string) Predicate {
	return Predicate{Clause: column + " IS NULL"}
}

func IsNotNull(column string) Predicate {
	return Predicate{Clause: column + " IS NOT NULL"}
}

func Gte(column string, value any) Predicate {
	return Predicate{Clause: column + " >= ?", Args: []any{value}}
}

func Lte(column string, value any) Predicate {
	return Predicate{Clause: column + " <= ?", Args: []any{value}}
}

func Exists(subquery string, args ...any) Predicate {
	return Predicate{Clause: "EXISTS (" + subquery + ")", Args: args}
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %v", p.Clause, p.Args)
}

type Order struct {
	Column string
	Desc   bool
}

func Desc(column string) Order {
	return Order{Column: column, Desc: true}
}

func Asc(column string) Order {
	return Order{Column: column}
}

func (o Order) String() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

// Query is an immutable description of a select statement. Builder methods
// return modified copies and never touch the receiver, so a Query can be
// shared and extended freely before it is handed to a Store.
type Query struct {
	table          string
	columns        []string
	joins          []string
	where          []Predicate
	group          []string
	order          []Order
	limit          int
	offset         int
	includeDeleted bool
}

func From(table string) Query {
	return Query{table: table}
}

func (q Query) Table() string {
	return q.table
}

func (q Query) Predicates() []Predicate {
	return slices.Clone(q.where)
}

func (q Query) Select(columns ...string) Query {
	q.columns = append(slices.Clone(q.columns), columns...)
	return q
}

func (q Query) Join(clause string) Query {
	q.joins = append(slices.Clone(q.joins), clause)
	return q
}

func (q Query) Where(predicates ...Predicate) Query {
	q.where = append(slices.Clone(q.where), predicates...)
	return q
}

func (q Query) GroupBy(columns ...string) Query {
	q.group = append(slices.Clone(q.group), columns...)
	return q
}

func (q Query) OrderBy(orders ...Order) Query {
	q.order = append(slices.Clone(q.order), orders...)
	return q
}

func (q Query) Paginate(limit, offset int) Query {
	q.limit = limit
	q.offset = offset
	return q
}

// IncludeDeleted disables gorm's implicit soft-delete filter for models that
// carry a gorm.DeletedAt field.
func (q Query) IncludeDeleted() Query {
	q.includeDeleted = true
	return q
}

func (q Query) apply(db *gorm.DB) *gorm.DB {
	tx := db.Table(q.table)
	if q.includeDeleted {
		tx = tx.Unscoped()
	}
	if len(q.columns) > 0 {
		tx = tx.Select(strings.Join(q.columns, ", "))
	}
	for _, join := range q.joins {
		tx = tx.Joins(join)
	}
	for _, p := range q.where {
		tx = tx.Where(p.Clause, p.Args...)
	}
	if len(q.group) > 0 {
		tx = tx.Group(strings.Join(q.group, ", "))
	}
	for _, o := range q.order {
		tx = tx.Order(o.String())
	}
	if q.limit > 0 {
		tx = tx.Limit(q.limit)
	}
	if q.offset > 0 {
		tx = tx.Offset(q.offset)
	}
	return tx
}
