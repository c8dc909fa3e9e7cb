package iceaxe

import (
	"database/sql/driver"
	"fmt"
	"reflect"
)

// discriminatorInfo is the per-target view of a model's polymorphic
// configuration: the discriminator column and the value→constructor lookup.
// It is resolved once by the classifier and shared read-only by every row.
type discriminatorInfo struct {
	field  string
	lookup map[any]Constructor
}

// RegisterSubtype binds a discriminator value to a concrete subtype of this
// model. The subtype's own constructor is invoked whenever a hydrated row
// carries the value in the discriminator column. The model must declare a
// discriminator column and the value must be usable as a map key.
func (t *TableInfo) RegisterSubtype(value any, sub *TableInfo) error {
	return t.RegisterSubtypeConstructor(value, sub.Construct)
}

// RegisterSubtypeConstructor is like RegisterSubtype but accepts an arbitrary
// constructor.
func (t *TableInfo) RegisterSubtypeConstructor(value any, c Constructor) error {
	if t.disc < 0 {
		return fmt.Errorf("iceaxe: model %s has no discriminator column", t.name)
	}
	if value == nil || !reflect.TypeOf(value).Comparable() {
		return fmt.Errorf("iceaxe: discriminator value %v is not usable as a registry key", value)
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if t.subtype == nil {
		t.subtype = make(map[any]Constructor)
	}
	if _, ok := t.subtype[value]; ok {
		return fmt.Errorf("iceaxe: discriminator value %v already registered for %s", value, t.name)
	}
	t.subtype[value] = c
	return nil
}

// discriminator returns the target-level discriminator info, or nil when the
// model is not polymorphic or no subtypes are registered.
func (t *TableInfo) discriminator() *discriminatorInfo {
	registryLock.RLock()
	defer registryLock.RUnlock()
	if t.disc < 0 || len(t.subtype) == 0 {
		return nil
	}
	lookup := make(map[any]Constructor, len(t.subtype))
	for k, v := range t.subtype {
		lookup[k] = v
	}
	return &discriminatorInfo{field: t.fields[t.disc].Column, lookup: lookup}
}

// resolve maps a row's discriminator value to a registered constructor.
// When the value wraps an underlying primitive (a driver.Valuer, the usual
// shape of enum wrappers), the unwrapped representation is tried first and
// the original value second. The registry's key representation is not
// normalized, so both attempts must stay, in this order.
func (d *discriminatorInfo) resolve(value any) (Constructor, bool) {
	if value == nil {
		return nil, false
	}
	if valuer, ok := value.(driver.Valuer); ok {
		if unwrapped, err := valuer.Value(); err == nil {
			if c, ok := d.lookupValue(unwrapped); ok {
				return c, true
			}
		}
	}
	return d.lookupValue(value)
}

func (d *discriminatorInfo) lookupValue(value any) (Constructor, bool) {
	if value == nil || !reflect.TypeOf(value).Comparable() {
		return nil, false
	}
	c, ok := d.lookup[value]
	return c, ok
}
