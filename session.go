/*
Copyright 2024 piercefreeman

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package iceaxe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/piercefreeman/iceaxe/driver"
	"github.com/piercefreeman/iceaxe/internal/reflectlite"
)

// Session is a wrapper of sql.DB and sql.Tx.
type Session interface {
	// QueryContext executes the query and returns the direct result.
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// ExecContext executes a query without returning any rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	// ensure that the sql.DB implements the Session interface.
	_ Session = (*sql.DB)(nil)

	// ensure that the sql.Tx implements the Session interface.
	_ Session = (*sql.Tx)(nil)
)

// Conn runs selection plans and model CRUD against a database and feeds
// SELECT results through the hydration engine.
type Conn struct {
	session Session
	driver  driver.Driver

	// Logger receives executed queries when set. Nil disables query
	// logging entirely.
	Logger *log.Logger
}

// NewConn wraps an open session with the given dialect driver.
func NewConn(drv driver.Driver, session Session) *Conn {
	return &Conn{driver: drv, session: session}
}

// Open connects to the database registered under driverName and returns a
// Conn for it.
func Open(driverName, datasource string, opts ...driver.ConnectOptionFunc) (*Conn, error) {
	drv, err := driver.Get(driverName)
	if err != nil {
		return nil, err
	}
	db, err := driver.Connect(driverName, datasource, opts...)
	if err != nil {
		return nil, err
	}
	return NewConn(drv, db), nil
}

// Tx runs fn inside a transaction, committing when it returns nil and
// rolling back otherwise.
func (c *Conn) Tx(ctx context.Context, fn func(tx *Conn) error) error {
	db, ok := c.session.(*sql.DB)
	if !ok {
		return errors.New("iceaxe: transaction already in progress")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txConn := &Conn{session: tx, driver: c.driver, Logger: c.Logger}
	if err := fn(txConn); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ExecSelect runs a selection plan, materializes the result rows, and
// hydrates them into typed values in row order.
func (c *Conn) ExecSelect(ctx context.Context, plan *Plan, opts ...Option) ([]any, error) {
	query := c.translate(plan.SQL)
	if c.Logger != nil {
		c.Logger.Printf("query: %s args: %v", query, plan.Args)
	}
	rows, err := c.session.QueryContext(ctx, query, plan.Args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	raw, err := CollectRows(rows)
	if err != nil {
		return nil, err
	}
	return Hydrate(raw, plan.Selects, opts...)
}

// Get fetches a single model instance by primary key. It returns nil when no
// record matches.
func Get[T any](ctx context.Context, c *Conn, pk any) (*T, error) {
	info, err := Register[T]()
	if err != nil {
		return nil, err
	}
	pkField, ok := info.PrimaryKey()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, info.Name())
	}
	plan := selectPlanFor(info, fmt.Sprintf("%s.%s = ?", quoteIdent(info.Name()), quoteIdent(pkField.Column)), pk)
	results, err := c.ExecSelect(ctx, plan)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0] == nil {
		return nil, nil
	}
	instance, ok := results[0].(*T)
	if !ok {
		return nil, fmt.Errorf("iceaxe: unexpected result type %T", results[0])
	}
	return instance, nil
}

// Insert writes one or more model instances, grouped per table. Objects must
// be pointers to registered structs; autoincrement primary keys are
// populated on the instances after insertion.
func (c *Conn) Insert(ctx context.Context, objects ...any) error {
	groups, err := aggregateByModel(objects)
	if err != nil {
		return err
	}
	for _, group := range groups {
		if err := c.insertGroup(ctx, group.info, group.objects); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) insertGroup(ctx context.Context, info *TableInfo, objects []any) error {
	var fields []FieldInfo
	for _, f := range info.Fields() {
		if !f.Exclude && !f.Autoincrement {
			fields = append(fields, f)
		}
	}
	columns := make([]string, len(fields))
	markers := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = quoteIdent(f.Column)
		markers[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(info.Name()), strings.Join(columns, ", "), strings.Join(markers, ", "))

	pk, hasPK := info.PrimaryKey()
	useReturning := hasPK && pk.Autoincrement && driver.SupportsReturning(c.driver)
	if useReturning {
		query += " RETURNING " + quoteIdent(pk.Column)
	}
	query = c.translate(query)

	for _, obj := range objects {
		args, err := fieldValues(obj, fields)
		if err != nil {
			return err
		}
		if c.Logger != nil {
			c.Logger.Printf("query: %s args: %v", query, args)
		}
		if useReturning {
			var generated any
			row, err := c.session.QueryContext(ctx, query, args...)
			if err != nil {
				return err
			}
			if row.Next() {
				if err := row.Scan(&generated); err != nil {
					_ = row.Close()
					return err
				}
			}
			if err := row.Close(); err != nil {
				return err
			}
			if err := row.Err(); err != nil {
				return err
			}
			if generated != nil {
				if err := setField(obj, info, pk, generated); err != nil {
					return err
				}
			}
			continue
		}
		result, err := c.session.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if hasPK && pk.Autoincrement {
			if id, err := result.LastInsertId(); err == nil {
				if err := setField(obj, info, pk, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Update writes every non-excluded column of the given instances, keyed by
// primary key.
func (c *Conn) Update(ctx context.Context, objects ...any) error {
	groups, err := aggregateByModel(objects)
	if err != nil {
		return err
	}
	for _, group := range groups {
		info := group.info
		pk, ok := info.PrimaryKey()
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoPrimaryKey, info.Name())
		}
		var fields []FieldInfo
		for _, f := range info.Fields() {
			if !f.Exclude && !f.PrimaryKey {
				fields = append(fields, f)
			}
		}
		assignments := make([]string, len(fields))
		for i, f := range fields {
			assignments[i] = quoteIdent(f.Column) + " = ?"
		}
		query := c.translate(fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			quoteIdent(info.Name()), strings.Join(assignments, ", "), quoteIdent(pk.Column)))
		for _, obj := range group.objects {
			args, err := fieldValues(obj, fields)
			if err != nil {
				return err
			}
			pkValue, err := fieldValue(obj, pk)
			if err != nil {
				return err
			}
			args = append(args, pkValue)
			if c.Logger != nil {
				c.Logger.Printf("query: %s args: %v", query, args)
			}
			if _, err := c.session.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete removes the given instances by primary key.
func (c *Conn) Delete(ctx context.Context, objects ...any) error {
	groups, err := aggregateByModel(objects)
	if err != nil {
		return err
	}
	for _, group := range groups {
		info := group.info
		pk, ok := info.PrimaryKey()
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoPrimaryKey, info.Name())
		}
		query := c.translate(fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
			quoteIdent(info.Name()), quoteIdent(pk.Column)))
		for _, obj := range group.objects {
			pkValue, err := fieldValue(obj, pk)
			if err != nil {
				return err
			}
			if c.Logger != nil {
				c.Logger.Printf("query: %s args: %v", query, pkValue)
			}
			if _, err := c.session.ExecContext(ctx, query, pkValue); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollectRows drains a sql.Rows into the raw key-value form the hydration
// engine consumes. Driver byte slices are normalized to strings so JSON text
// and character columns survive row reuse.
func CollectRows(rows *sql.Rows) ([]RawRow, error) {
	if rows == nil {
		return nil, ErrNilRows
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []RawRow
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(RawRow, len(columns))
		for i, column := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[column] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// selectPlanFor builds the aliased SELECT for one model, optionally with a
// WHERE clause. Every column is aliased to its raw-row key so the hydrator
// can read it back.
func selectPlanFor(info *TableInfo, where string, args ...any) *Plan {
	var columns []string
	for _, f := range info.Fields() {
		if f.Exclude {
			continue
		}
		columns = append(columns, fmt.Sprintf("%s.%s AS %s",
			quoteIdent(info.Name()), quoteIdent(f.Column), quoteIdent(FieldKey(info.Name(), f.Column))))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), quoteIdent(info.Name()))
	if where != "" {
		query += " WHERE " + where
	}
	return NewPlan(query, args, SelectModel(info))
}

// translate rewrites ? placeholders into the driver's dialect.
func (c *Conn) translate(query string) string {
	if c.driver == nil {
		return query
	}
	translator := c.driver.Translator()
	var b strings.Builder
	b.Grow(len(query))
	for _, r := range query {
		if r == '?' {
			b.WriteString(translator.Translate("?"))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quoteIdent quotes an identifier the way the planner aliases them.
func quoteIdent(name string) string {
	return `"` + name + `"`
}

type modelGroup struct {
	info    *TableInfo
	objects []any
}

// aggregateByModel groups instances by their registered model, preserving
// first-seen order.
func aggregateByModel(objects []any) ([]*modelGroup, error) {
	var groups []*modelGroup
	index := make(map[*TableInfo]*modelGroup)
	for _, obj := range objects {
		info, err := lookupModel(obj)
		if err != nil {
			return nil, err
		}
		group, ok := index[info]
		if !ok {
			group = &modelGroup{info: info}
			index[info] = group
			groups = append(groups, group)
		}
		group.objects = append(group.objects, obj)
	}
	return groups, nil
}

// fieldValues extracts the database values of the given columns from a model
// instance, encoding JSON columns on the way out.
func fieldValues(obj any, fields []FieldInfo) ([]any, error) {
	args := make([]any, len(fields))
	for i, f := range fields {
		v, err := fieldValue(obj, f)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func fieldValue(obj any, f FieldInfo) (any, error) {
	rv := reflectlite.ValueOf(obj).Unwrap()
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("iceaxe: expected struct instance, got %T", obj)
	}
	v := rv.Field(f.index).Interface()
	if f.IsJSON {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("iceaxe: encoding field %s: %w", f.Column, err)
		}
		return string(raw), nil
	}
	return v, nil
}

func setField(obj any, info *TableInfo, f FieldInfo, value any) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("iceaxe: %s instance must be a non-nil pointer to receive generated keys", info.Name())
	}
	return assignValue(rv.Elem().Field(f.index), value)
}
