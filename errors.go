package iceaxe

import (
	"errors"
	"fmt"
)

// ErrInvalidSelect is returned when a selection entry matches none of the
// known select kinds. It signals a misconfigured selection plan upstream,
// not a runtime data error.
var ErrInvalidSelect = errors.New("iceaxe: invalid select target")

// ErrNilRows is returned when a nil row set is handed to the session.
var ErrNilRows = errors.New("iceaxe: nil rows")

// ErrNoPrimaryKey is returned by session operations that require a primary
// key on the model.
var ErrNoPrimaryKey = errors.New("iceaxe: model has no primary key")

// ErrNotRegistered is returned when a value's type has not been registered
// with the model registry.
var ErrNotRegistered = errors.New("iceaxe: type not registered")

// MissingKeyError reports a raw row that does not contain a key required by
// one of the active select targets. It aborts the whole batch.
type MissingKeyError struct {
	Row int
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("iceaxe: row %d: missing key %q", e.Row, e.Key)
}

// DecodeError reports a JSON-flagged field whose raw value could not be
// decoded. It aborts the whole batch.
type DecodeError struct {
	Row   int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("iceaxe: row %d: decoding field %q: %v", e.Row, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConstructionError reports a constructor that rejected the assembled field
// mapping for a table target. It aborts the whole batch.
type ConstructionError struct {
	Row   int
	Table string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("iceaxe: row %d: constructing %s: %v", e.Row, e.Table, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// ResourceExhaustionError reports that the schema metadata for a batch would
// exceed the configured field-descriptor limit. It is raised once per batch,
// before any row is hydrated.
type ResourceExhaustionError struct {
	Fields int
	Limit  int
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("iceaxe: schema metadata requires %d field descriptors, limit is %d", e.Fields, e.Limit)
}
