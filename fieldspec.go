package iceaxe

import "reflect"

// fieldSpec is one precomputed field descriptor of a table target: the
// output column name, the raw-row key it reads, and whether the value is
// JSON-encoded text. Descriptor lists are computed once per batch and shared
// read-only across all rows; they are never re-derived per row.
type fieldSpec struct {
	name   string
	key    string
	isJSON bool

	// typ is the declared Go type of the field, used to decode JSON text
	// directly into the right shape. A nil or interface type decodes into
	// a generic value.
	typ reflect.Type
}

// precomputeFields fills the descriptor list of every table target. The cost
// is proportional to the number of exposed fields across table targets and
// independent of the row count. Exceeding the descriptor limit fails the
// whole batch before any row work starts.
func precomputeFields(targets []*selectTarget, limit int) error {
	if limit > 0 {
		total := 0
		for _, t := range targets {
			if t.kind != targetTable {
				continue
			}
			for i := range t.model.fields {
				if !t.model.fields[i].Exclude {
					total++
				}
			}
		}
		if total > limit {
			return &ResourceExhaustionError{Fields: total, Limit: limit}
		}
	}
	for _, t := range targets {
		if t.kind != targetTable {
			continue
		}
		fields := t.model.Fields()
		specs := make([]fieldSpec, 0, len(fields))
		for i := range fields {
			f := &fields[i]
			if f.Exclude {
				continue
			}
			specs = append(specs, fieldSpec{
				name:   f.Column,
				key:    FieldKey(t.model.Name(), f.Column),
				isJSON: f.IsJSON,
				typ:    f.typ,
			})
		}
		t.fields = specs
	}
	return nil
}
