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
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/piercefreeman/iceaxe/internal/reflectlite"
)

// TableNamer lets a model override its table name. Without it, the table
// name is the lower-cased struct name.
type TableNamer interface {
	TableName() string
}

// Constructor builds a model instance from an assembled field mapping.
// The engine resolves one constructor per (row, table target) and invokes it
// with the accumulated column values keyed by column name.
type Constructor func(fields map[string]any) (any, error)

// FieldInfo describes one registered column of a model.
type FieldInfo struct {
	// Name is the Go struct field name.
	Name string
	// Column is the column name used in row keys.
	Column string
	// IsJSON marks the column as JSON-encoded text that must be decoded
	// during hydration.
	IsJSON bool
	// Exclude removes the column from selection and persistence.
	Exclude bool
	// PrimaryKey marks the table's primary key column.
	PrimaryKey bool
	// Autoincrement columns are skipped on insert and populated from the
	// database afterwards.
	Autoincrement bool
	// Discriminator marks the column whose value selects the concrete
	// subtype during polymorphic hydration.
	Discriminator bool

	index int
	typ   reflect.Type
}

// TableInfo is the registered schema of one model: its table name, column
// set, and constructor. It is built once per type and shared read-only.
type TableInfo struct {
	name    string
	goType  reflect.Type
	fields  []FieldInfo
	pk      int // index into fields, -1 if none
	disc    int // index into fields of the discriminator column, -1 if none
	subtype map[any]Constructor
}

// Name returns the table name.
func (t *TableInfo) Name() string { return t.name }

// Type returns the model's struct type.
func (t *TableInfo) Type() reflect.Type { return t.goType }

// Fields returns the registered columns in declaration order.
func (t *TableInfo) Fields() []FieldInfo { return t.fields }

// PrimaryKey returns the primary key column, if any.
func (t *TableInfo) PrimaryKey() (FieldInfo, bool) {
	if t.pk < 0 {
		return FieldInfo{}, false
	}
	return t.fields[t.pk], true
}

// columnTag is the parsed form of a `column` struct tag. The first item is
// the column name, the rest are options.
type columnTag struct {
	Name          string
	JSON          bool
	Exclude       bool
	PrimaryKey    bool
	Autoincrement bool
	Discriminator bool
}

func (c *columnTag) parse(tag string) {
	items := strings.Split(tag, ",")
	if len(items) > 0 {
		c.Name = items[0]
	}
	for _, item := range items[1:] {
		switch item {
		case "json":
			c.JSON = true
		case "exclude":
			c.Exclude = true
		case "primary_key":
			c.PrimaryKey = true
		case "autoincrement":
			c.Autoincrement = true
		case "discriminator":
			c.Discriminator = true
		}
	}
}

var (
	// registeredModels maps struct types to their schema.
	registeredModels = make(map[reflect.Type]*TableInfo)

	// registryLock guards registeredModels. Registration happens at
	// program start; hydration only reads.
	registryLock sync.RWMutex
)

// Register reflects over the model struct T and records its schema. Columns
// are declared with the `column` tag: the first item is the column name,
// followed by any of the options json, exclude, primary_key, autoincrement
// and discriminator. Untagged and ignored ("-") fields are skipped.
// Registering the same type twice returns the existing schema.
func Register[T any]() (*TableInfo, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	return registerType(rt)
}

// MustRegister is like Register but panics on error. It is intended for
// package-level model declarations.
func MustRegister[T any]() *TableInfo {
	info, err := Register[T]()
	if err != nil {
		panic(err)
	}
	return info
}

func registerType(rt reflect.Type) (*TableInfo, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("iceaxe: model must be a struct, got %s", rt)
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if info, ok := registeredModels[rt]; ok {
		return info, nil
	}
	info := &TableInfo{
		name:   tableNameOf(rt),
		goType: rt,
		pk:     -1,
		disc:   -1,
	}
	var tag columnTag
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		raw := field.Tag.Get("column")
		if raw == "" || raw == "-" || field.Anonymous {
			continue
		}
		tag = columnTag{}
		tag.parse(raw)
		if tag.Name == "" {
			return nil, fmt.Errorf("iceaxe: field %s.%s has an empty column name", rt.Name(), field.Name)
		}
		if tag.Discriminator {
			if info.disc >= 0 {
				return nil, fmt.Errorf("iceaxe: model %s declares more than one discriminator column", rt.Name())
			}
			info.disc = len(info.fields)
		}
		if tag.PrimaryKey {
			if info.pk >= 0 {
				return nil, fmt.Errorf("iceaxe: model %s declares more than one primary key", rt.Name())
			}
			info.pk = len(info.fields)
		}
		info.fields = append(info.fields, FieldInfo{
			Name:          field.Name,
			Column:        tag.Name,
			IsJSON:        tag.JSON,
			Exclude:       tag.Exclude,
			PrimaryKey:    tag.PrimaryKey,
			Autoincrement: tag.Autoincrement || (tag.PrimaryKey && isIntegerKind(field.Type)),
			Discriminator: tag.Discriminator,
			index:         i,
			typ:           field.Type,
		})
	}
	if len(info.fields) == 0 {
		return nil, fmt.Errorf("iceaxe: model %s has no column-tagged fields", rt.Name())
	}
	registeredModels[rt] = info
	return info, nil
}

// lookupModel returns the registered schema for the dynamic type of v.
func lookupModel(v any) (*TableInfo, error) {
	rt := reflectlite.ValueOf(v).IndirectType()
	registryLock.RLock()
	info, ok := registeredModels[rt]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, rt)
	}
	return info, nil
}

func tableNameOf(rt reflect.Type) string {
	if namer, ok := reflect.New(rt).Interface().(TableNamer); ok {
		return namer.TableName()
	}
	return strings.ToLower(rt.Name())
}

func isIntegerKind(rt reflect.Type) bool {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// Construct is the model's own constructor: it builds a *T and assigns the
// accumulated column values onto its fields. Unknown keys are rejected so
// that plan/schema drift surfaces as a ConstructionError instead of silently
// dropped data.
func (t *TableInfo) Construct(fields map[string]any) (any, error) {
	instance := reflect.New(t.goType)
	elem := instance.Elem()
	known := 0
	for i := range t.fields {
		f := &t.fields[i]
		v, ok := fields[f.Column]
		if !ok {
			continue
		}
		known++
		if err := assignValue(elem.Field(f.index), v); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Column, err)
		}
	}
	if known != len(fields) {
		for column := range fields {
			if _, ok := t.columnByName(column); !ok {
				return nil, fmt.Errorf("unknown column %q for table %s", column, t.name)
			}
		}
	}
	return instance.Interface(), nil
}

func (t *TableInfo) columnByName(column string) (*FieldInfo, bool) {
	for i := range t.fields {
		if t.fields[i].Column == column {
			return &t.fields[i], true
		}
	}
	return nil, false
}

// assignValue sets a raw database value onto a struct field, allocating
// through pointers and converting the numeric widenings drivers produce.
func assignValue(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	for dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}
	rv := reflectlite.ValueOf(v).Unwrap()
	if !rv.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	switch {
	case rv.Type().AssignableTo(dst.Type()):
		dst.Set(rv)
		return nil
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 && dst.Kind() == reflect.String:
		dst.SetString(string(rv.Bytes()))
		return nil
	case rv.Kind() == reflect.String && dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
		dst.SetBytes([]byte(rv.String()))
		return nil
	case rv.Type().ConvertibleTo(dst.Type()) && isScalarKind(rv.Kind()) && isScalarKind(dst.Kind()):
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	// Structured values produced by the JSON decode step land here when the
	// declared field is a typed struct, slice or map.
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct:
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Errorf("cannot assign %s to %s: %w", rv.Type(), dst.Type(), err)
		}
		if err := json.Unmarshal(raw, dst.Addr().Interface()); err != nil {
			return fmt.Errorf("cannot assign %s to %s: %w", rv.Type(), dst.Type(), err)
		}
		return nil
	}
	return fmt.Errorf("cannot assign %s to %s", rv.Type(), dst.Type())
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return true
	}
	return false
}
