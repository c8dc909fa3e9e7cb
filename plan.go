package iceaxe

import "fmt"

// FieldKey returns the raw-row key of a table column. The planning layer
// aliases every selected column to this exact shape, and the hydrator reads
// rows back with it; the convention must match bit for bit.
func FieldKey(table, column string) string {
	return table + "_" + column
}

// TableRef selects a whole model row.
type TableRef struct {
	Model *TableInfo
}

// ColumnRef selects a single column of a table.
type ColumnRef struct {
	Table  string
	Column string
}

// FuncMetadata selects the output of a computed function under a locally
// assigned name, e.g. an aggregate.
type FuncMetadata struct {
	Name string
}

// AliasValue wraps another selection under an explicit name. The wrapper
// takes precedence over the wrapped entry for name resolution.
type AliasValue struct {
	Name string
	Expr any
}

// SelectModel selects all client-visible columns of a registered model.
func SelectModel(info *TableInfo) *TableRef {
	return &TableRef{Model: info}
}

// SelectColumn selects one column of a registered model.
func SelectColumn(info *TableInfo, column string) (*ColumnRef, error) {
	if _, ok := info.columnByName(column); !ok {
		return nil, fmt.Errorf("iceaxe: table %s has no column %q", info.Name(), column)
	}
	return &ColumnRef{Table: info.Name(), Column: column}, nil
}

// SelectFunc selects a computed function output by its local name.
func SelectFunc(name string) *FuncMetadata {
	return &FuncMetadata{Name: name}
}

// Alias wraps a selection under an explicit output name.
func Alias(name string, expr any) *AliasValue {
	return &AliasValue{Name: name, Expr: expr}
}

// Plan is one executable query: its SQL text, arguments, and the ordered
// selection list the hydration engine classifies. The selection list is
// fixed for the lifetime of one result batch.
type Plan struct {
	SQL     string
	Args    []any
	Selects []any
}

// NewPlan builds a Plan from SQL text, bind arguments and selection entries.
func NewPlan(sql string, args []any, selects ...any) *Plan {
	return &Plan{SQL: sql, Args: args, Selects: selects}
}
