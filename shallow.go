package simplestate

import "reflect"

// ShallowCompare reports whether next differs from prev one level deep.
//
// Maps, structs, pointers to structs, slices and arrays are compared key by
// key (map key, exported field or index). Only the keys of next are visited,
// so a key that exists in prev but was removed from next does not count as a
// change. Values are compared with == when comparable and by reference
// otherwise; nested values are never descended into. Non-nil funcs always
// count as changed, as do structs and arrays holding non-comparable values.
//
// If either value is not one of the supported kinds, or the two values have
// different types, ShallowCompare reports a change.
func ShallowCompare(prev, next any) bool {
	pv, ok := mappingValue(prev)
	if !ok {
		return true
	}
	nv, ok := mappingValue(next)
	if !ok {
		return true
	}
	if pv.Type() != nv.Type() {
		return true
	}

	switch nv.Kind() {
	case reflect.Map:
		iter := nv.MapRange()
		for iter.Next() {
			old := pv.MapIndex(iter.Key())
			if !old.IsValid() || !sameValue(old, iter.Value()) {
				return true
			}
		}
	case reflect.Struct:
		t := nv.Type()
		for i := 0; i < nv.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if !sameValue(pv.Field(i), nv.Field(i)) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < nv.Len(); i++ {
			if i >= pv.Len() || !sameValue(pv.Index(i), nv.Index(i)) {
				return true
			}
		}
	}
	return false
}

// mappingValue unwraps v into a value ShallowCompare can iterate
func mappingValue(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return rv, false
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return rv, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv, !rv.IsNil()
	case reflect.Struct, reflect.Array:
		return rv, true
	default:
		return rv, false
	}
}

// sameValue compares two values without descending into them
func sameValue(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Func:
		// Closures of one literal share a code pointer, so only nil funcs match.
		return a.IsNil() && b.IsNil()
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	}

	if a.Comparable() && b.Comparable() {
		return a.Equal(b)
	}
	// Composites holding non-comparable values are never equal one level deep.
	return false
}
