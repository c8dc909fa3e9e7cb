package iceaxe

import "fmt"

// targetKind is the resolved classification of one selection entry. The four
// kinds are exhaustive and mutually exclusive; classification happens exactly
// once per batch and never changes mid-batch.
type targetKind uint8

const (
	targetTable targetKind = iota
	targetColumn
	targetFunction
	targetAlias
)

func (k targetKind) String() string {
	switch k {
	case targetTable:
		return "table"
	case targetColumn:
		return "column"
	case targetFunction:
		return "function"
	case targetAlias:
		return "alias"
	}
	return "unknown"
}

// selectTarget is one classified selection entry together with its
// precomputed hydration metadata. Built once at the start of result
// processing, read-only for the remainder of the batch.
type selectTarget struct {
	kind  targetKind
	model *TableInfo
	disc  *discriminatorInfo

	// key is the raw-row key for column, function and alias targets.
	key string

	// fields is the precomputed descriptor list for table targets; empty
	// for every other kind.
	fields []fieldSpec
}

// classifyTargets resolves every selection entry into its target kind. An
// alias wrapper wins over whatever it wraps. An entry of any other type is a
// programming error in the selection plan.
func classifyTargets(selects []any) ([]*selectTarget, error) {
	targets := make([]*selectTarget, len(selects))
	for i, raw := range selects {
		switch s := raw.(type) {
		case *AliasValue:
			targets[i] = &selectTarget{kind: targetAlias, key: s.Name}
		case *TableRef:
			if s.Model == nil {
				return nil, fmt.Errorf("%w: entry %d references no model", ErrInvalidSelect, i)
			}
			targets[i] = &selectTarget{
				kind:  targetTable,
				model: s.Model,
				disc:  s.Model.discriminator(),
			}
		case *ColumnRef:
			targets[i] = &selectTarget{kind: targetColumn, key: FieldKey(s.Table, s.Column)}
		case *FuncMetadata:
			targets[i] = &selectTarget{kind: targetFunction, key: s.Name}
		default:
			return nil, fmt.Errorf("%w: entry %d has type %T", ErrInvalidSelect, i, raw)
		}
	}
	return targets, nil
}
