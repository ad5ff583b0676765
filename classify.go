package streamenc

import "reflect"

// Category is the Type Classifier's output: the six semantic buckets any
// value (after the replacer pipeline has run) is placed into before the
// state machine decides how to encode it.
type Category int

const (
	// CategoryPrimitive covers strings, numbers, booleans, null and
	// undefined, and anything else the classifier cannot place
	// elsewhere.
	CategoryPrimitive Category = iota
	// CategoryObject is an unordered mapping from string keys to values.
	CategoryObject
	// CategoryArray is an ordered sequence of values.
	CategoryArray
	// CategoryDeferred is a value that resolves, or rejects, later.
	CategoryDeferred
	// CategoryByteStream is an incremental source of raw text chunks.
	CategoryByteStream
	// CategoryRecordStream is an incremental source of values to encode
	// as array elements.
	CategoryRecordStream
)

// undefinedType is the sentinel used internally for Go's closest
// analogue of JavaScript's undefined: a value that, in an object, elides
// its key entirely, and in an array, encodes as null. reflect.Func,
// reflect.Chan and reflect.UnsafePointer values collapse to this
// sentinel, the closest Go equivalent of a function or symbol value.
type undefinedType struct{}

// Undefined is the exported handle for the sentinel; a replacer function
// may return it explicitly to elide a key.
var Undefined = undefinedType{}

func isUndefined(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(undefinedType); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	case reflect.Invalid:
		return false
	default:
		return false
	}
}

// isNullEquivalent reports whether v should be encoded as the JSON literal
// null: a nil interface, or a nil pointer/map/slice/interface value.
func isNullEquivalent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil() && rv.Kind() != reflect.Func && rv.Kind() != reflect.Chan
	default:
		return false
	}
}

// classify maps a value, already passed through the replacer pipeline, to
// its Category. The ordering below is significant: Deferred and stream
// interfaces are checked before any reflect-based structural check, so a
// struct that happens to also implement RecordSource is treated as a
// stream, not an object. Nil pointers, maps and slices are primitives
// (encoded as null), and a Fielder or Indexer is an object or array
// whatever its underlying kind.
func classify(v any) Category {
	if v == nil {
		return CategoryPrimitive
	}
	if isUndefined(v) {
		return CategoryPrimitive
	}
	if _, ok := v.(Deferred); ok {
		return CategoryDeferred
	}
	if _, ok := v.(RecordSource); ok {
		return CategoryRecordStream
	}
	if _, ok := v.(ByteSource); ok {
		return CategoryByteStream
	}
	if isNullEquivalent(v) {
		return CategoryPrimitive
	}
	if _, ok := v.(Fielder); ok {
		return CategoryObject
	}
	if _, ok := v.(Indexer); ok {
		return CategoryArray
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return CategoryPrimitive
		}
		elem := rv.Elem()
		switch elem.Kind() {
		case reflect.Struct:
			return CategoryObject
		default:
			return classify(elem.Interface())
		}
	case reflect.Slice, reflect.Array:
		return CategoryArray
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return CategoryPrimitive
		}
		return CategoryObject
	case reflect.Struct:
		return CategoryObject
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return CategoryPrimitive
	default:
		return CategoryPrimitive
	}
}
