package streamenc

import (
	"reflect"
	"sort"
)

// Fielder lets a type customize the keys and values it exposes as an
// object, instead of relying on reflection over its exported fields.
type Fielder interface {
	// StreamFields returns the object's keys, in the order they should
	// be enumerated, and a getter for each key's value.
	StreamFields() (keys []string, get func(key string) any)
}

// objectAccessor snapshots the key list for an object value at the
// moment its frame is pushed, so keys added by a later mutation of the
// underlying value are not encoded. The getter reads the live value: a
// snapshotted key that has since been removed from a map reads as
// Undefined and is elided.
type objectAccessor struct {
	keys []string
	get  func(key string) any
}

func newObjectAccessor(v any) objectAccessor {
	if f, ok := v.(Fielder); ok {
		keys, get := f.StreamFields()
		return objectAccessor{keys: keys, get: get}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, rv.Len())
		mapKeys := rv.MapKeys()
		for i, k := range mapKeys {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return objectAccessor{
			keys: keys,
			get: func(key string) any {
				val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
				if !val.IsValid() {
					return Undefined
				}
				return val.Interface()
			},
		}
	case reflect.Struct:
		return structAccessor(rv)
	default:
		return objectAccessor{}
	}
}

func structAccessor(rv reflect.Value) objectAccessor {
	t := rv.Type()
	keys := make([]string, 0, t.NumField())
	indexByKey := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name, omit := fieldName(field)
		if omit {
			continue
		}
		keys = append(keys, name)
		indexByKey[name] = i
	}
	return objectAccessor{
		keys: keys,
		get: func(key string) any {
			idx, ok := indexByKey[key]
			if !ok {
				return Undefined
			}
			return rv.Field(idx).Interface()
		},
	}
}

func fieldName(field reflect.StructField) (name string, omit bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if tag == "" {
		return field.Name, false
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			if i == 0 {
				return field.Name, false
			}
			return tag[:i], false
		}
	}
	return tag, false
}

// Indexer lets a type customize how it is exposed as an array, instead of
// relying on reflection over a slice/array kind.
type Indexer interface {
	StreamLen() int
	StreamIndex(i int) any
}

type arrayAccessor struct {
	length int
	get    func(i int) any
}

func newArrayAccessor(v any) arrayAccessor {
	if ix, ok := v.(Indexer); ok {
		return arrayAccessor{length: ix.StreamLen(), get: ix.StreamIndex}
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	return arrayAccessor{
		length: rv.Len(),
		get: func(i int) any {
			return rv.Index(i).Interface()
		},
	}
}

// identity returns a pointer suitable for cycle detection, and whether v
// is the kind of value that can legitimately participate in a cycle at
// all (maps, slices and pointers — the only Go values that can refer back
// to themselves).
func identity(v any) (typ reflect.Type, ptr uintptr, ok bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr:
		if rv.IsNil() {
			return nil, 0, false
		}
		return rv.Type(), rv.Pointer(), true
	default:
		return nil, 0, false
	}
}
