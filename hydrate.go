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
	"reflect"
)

// RawRow is one materialized result row: a mapping from row key to a raw
// scalar or JSON-encoded text. Rows are owned by the caller and read-only to
// the engine.
type RawRow map[string]any

// hydrateRow converts one raw row into its per-target outputs, in target
// order. Rows are independent of one another; the only shared state is the
// read-only target metadata.
func hydrateRow(row RawRow, targets []*selectTarget, rowIdx int, tracer TraceFunc) ([]any, error) {
	out := make([]any, len(targets))
	for i, t := range targets {
		v, err := hydrateTarget(row, t, rowIdx, tracer)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func hydrateTarget(row RawRow, t *selectTarget, rowIdx int, tracer TraceFunc) (any, error) {
	if t.kind != targetTable {
		v, ok := row[t.key]
		if !ok {
			return nil, &MissingKeyError{Row: rowIdx, Key: t.key}
		}
		return v, nil
	}
	return hydrateModel(row, t, rowIdx, tracer)
}

// hydrateModel assembles a table target's field mapping from the row,
// decodes JSON-flagged values, and invokes the resolved constructor. A row
// whose every field is null models an outer join that matched nothing and
// hydrates to nil instead of an instance.
func hydrateModel(row RawRow, t *selectTarget, rowIdx int, tracer TraceFunc) (any, error) {
	values := make(map[string]any, len(t.fields))
	allNull := true
	for i := range t.fields {
		spec := &t.fields[i]
		v, ok := row[spec.key]
		if !ok {
			return nil, &MissingKeyError{Row: rowIdx, Key: spec.key}
		}
		if v != nil {
			allNull = false
			if spec.isJSON {
				decoded, err := decodeJSONValue(v, spec.typ)
				if err != nil {
					return nil, &DecodeError{Row: rowIdx, Field: spec.name, Err: err}
				}
				v = decoded
			}
		}
		values[spec.name] = v
	}
	if allNull {
		if tracer != nil {
			tracer("row %d: %s: all fields null, skipping construction", rowIdx, t.model.Name())
		}
		return nil, nil
	}
	construct := t.resolveConstructor(values, rowIdx, tracer)
	instance, err := construct(values)
	if err != nil {
		return nil, &ConstructionError{Row: rowIdx, Table: t.model.Name(), Err: err}
	}
	return instance, nil
}

// resolveConstructor picks the concrete constructor for one row of a table
// target. A registered discriminator value dispatches to its subtype; an
// unregistered or null value falls back to the target's own constructor.
// The fallback is silent by contract.
func (t *selectTarget) resolveConstructor(values map[string]any, rowIdx int, tracer TraceFunc) Constructor {
	if t.disc == nil {
		return t.model.Construct
	}
	dv := values[t.disc.field]
	if dv == nil {
		return t.model.Construct
	}
	if c, ok := t.disc.resolve(dv); ok {
		if tracer != nil {
			tracer("row %d: %s: discriminator %v resolved a subtype", rowIdx, t.model.Name(), dv)
		}
		return c
	}
	if tracer != nil {
		tracer("row %d: %s: discriminator %v unregistered, using base constructor", rowIdx, t.model.Name(), dv)
	}
	return t.model.Construct
}

// decodeJSONValue decodes a JSON-encoded value into the declared field type.
// Values that are already structured (drivers with native JSON support) pass
// through untouched.
func decodeJSONValue(v any, typ reflect.Type) (any, error) {
	var raw []byte
	switch s := v.(type) {
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	case json.RawMessage:
		raw = s
	default:
		return v, nil
	}
	if typ != nil && typ.Kind() != reflect.Interface {
		target := reflect.New(typ)
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			return nil, err
		}
		return target.Elem().Interface(), nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
