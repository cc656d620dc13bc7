// Package catalog discovers and caches table metadata (columns, types,
// primary keys) through information_schema queries. The cache is filled
// lazily per (schema, table) and cleared only by Refresh; concurrent misses
// may each introspect and converge on an equivalent result.
package catalog

import (
	"context"
	"sync"

	"github.com/tabrest/tabrest/pkg/db"
)

// Kind is the coarse value category the statement builder coerces toward.
type Kind int

const (
	KindOther Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBoolean
	KindDate
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	default:
		return "other"
	}
}

type Column struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	Kind         Kind   `json:"-"`
	Nullable     bool   `json:"nullable"`
	IsPrimaryKey bool   `json:"is_primary_key"`
}

type Table struct {
	Schema  string   `json:"schema"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

type Constraint struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Column string `json:"column"`
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey resolves the table's identity column: the catalog-flagged
// primary key if exactly one exists, else a column literally named "id".
func (t Table) PrimaryKey() (Column, error) {
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			return c, nil
		}
	}
	if c, ok := t.Column("id"); ok {
		return c, nil
	}
	return Column{}, &UnsupportedSchemaError{Schema: t.Schema, Table: t.Name}
}

// Catalog caches table metadata per (schema, table) for the process
// lifetime. Reads share an RWMutex; a miss introspects outside the lock and
// publishes atomically, so racing misses do equivalent work.
type Catalog struct {
	pool   db.Pool
	mu     sync.RWMutex
	tables map[string]Table
	// onMiss, when set, observes cache misses (metrics hook).
	onMiss func()
}

func New(pool db.Pool) *Catalog {
	return &Catalog{
		pool:   pool,
		tables: make(map[string]Table),
	}
}

// OnMiss registers a callback invoked on every cache miss.
func (c *Catalog) OnMiss(fn func()) { c.onMiss = fn }

// Table returns cached metadata for schema.table, introspecting on first
// use. Unknown tables fail with NotFoundError.
func (c *Catalog) Table(ctx context.Context, schema, table string) (Table, error) {
	key := schema + "." + table

	c.mu.RLock()
	t, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	if c.onMiss != nil {
		c.onMiss()
	}

	t, err := c.introspectTable(ctx, schema, table)
	if err != nil {
		return Table{}, err
	}

	c.mu.Lock()
	c.tables[key] = t
	c.mu.Unlock()
	return t, nil
}

// Refresh drops every cached table so the next access re-introspects.
func (c *Catalog) Refresh() {
	c.mu.Lock()
	c.tables = make(map[string]Table)
	c.mu.Unlock()
}
