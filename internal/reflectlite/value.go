package reflectlite

import "reflect"

type Value struct {
	reflect.Value
}

// Unwrap returns the value behind any chain of pointers and interfaces.
func (v Value) Unwrap() reflect.Value {
	value := v.Value
	for {
		switch value.Kind() {
		case reflect.Ptr, reflect.Interface:
			value = value.Elem()
		default:
			return value
		}
	}
}

// IndirectType returns the type of the unwrapped value.
func (v Value) IndirectType() reflect.Type {
	return v.Unwrap().Type()
}

// NilAble returns true if the value's kind can hold nil.
func (v Value) NilAble() bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return true
	}
	return false
}

// ValueOf returns a new Value initialized to the concrete value
// stored in the interface i. ValueOf(nil) returns the zero Value.
func ValueOf(v any) Value {
	return Value{reflect.ValueOf(v)}
}

// From returns a new Value wrapping v.
func From(v reflect.Value) Value {
	return Value{v}
}
