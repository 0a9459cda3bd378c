// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "reflect"

// DeepFree releases a sample's owned substructures — external/optional
// pointers, strings, and sequences — by resetting them to their zero
// value. Go's garbage collector reclaims the underlying memory once
// unreferenced; DeepFree exists so that pooled sample buffers (spec.md
// §4.4's WHC reuse) can be handed back with deterministic, immediate
// release of any large owned allocations rather than waiting on GC.
//
// scope selects which top-level fields are touched: FreeAll frees
// everything, FreeKeysOnly frees only the fields named in d.Keys, and
// FreeContentsOnly frees every field that isn't one of d.Keys. Key and
// non-key fields are disjoint at the top level, so once a field is
// selected it is freed in full, including any nested structure.
func DeepFree(d *TypeDescriptor, value reflect.Value, scope FreeScope) {
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return
	}
	keys := keyFieldSet(d)
	for i := 0; i < value.NumField(); i++ {
		if !includeField(i, keys, scope) {
			continue
		}
		freeField(value.Field(i))
	}
}

func keyFieldSet(d *TypeDescriptor) map[int]bool {
	set := make(map[int]bool, len(d.Keys))
	for _, k := range d.Keys {
		set[k.Field] = true
	}
	return set
}

func includeField(idx int, keys map[int]bool, scope FreeScope) bool {
	switch scope {
	case FreeKeysOnly:
		return keys[idx]
	case FreeContentsOnly:
		return !keys[idx]
	default:
		return true
	}
}

func freeField(field reflect.Value) {
	if !field.CanSet() {
		return
	}
	switch field.Kind() {
	case reflect.Ptr:
		if !field.IsNil() {
			freeStructOrSkip(field.Elem())
		}
		field.Set(reflect.Zero(field.Type()))
	case reflect.Slice:
		field.Set(reflect.Zero(field.Type()))
	case reflect.String:
		field.SetString("")
	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			freeField(field.Field(i))
		}
	case reflect.Map:
		field.Set(reflect.Zero(field.Type()))
	}
}

func freeStructOrSkip(v reflect.Value) {
	if v.Kind() == reflect.Struct {
		for i := 0; i < v.NumField(); i++ {
			freeField(v.Field(i))
		}
	}
}
