package streamenc

// ReplacerFunc is the transform-function shape of a Replacer: called with
// the property key (the empty string for the root value) and the current
// value, it returns the value that should be encoded in its place. Go has
// no implicit receiver binding, so unlike some JSON-replacer designs a
// ReplacerFunc is simply a plain function value with no enclosing
// container passed along.
type ReplacerFunc func(key string, value any) any

// JSONer is a toJSON-style customization hook: if a value implements it,
// MarshalStream's result substitutes for the value before the replacer
// function and classifier run.
type JSONer interface {
	MarshalStream(key string) any
}

// Replacer bundles the two replacer shapes this package recognizes: an
// arbitrary transform function, and/or an allow-list of object keys.
// Both may be set; Func runs first, then Allow filters the (possibly
// already-replaced) object's keys. A zero (or nil) Replacer disables the
// transform function and the allow-list; a value's JSONer hook still runs.
type Replacer struct {
	Func  ReplacerFunc
	Allow []string
}

// apply runs the toJSON hook and the replacer function, in that order.
// It never fails on its own; a panicking replacer is caught by the
// caller and turned into a ReplacerFailure.
func (r *Replacer) apply(key string, value any) any {
	if j, ok := value.(JSONer); ok {
		value = j.MarshalStream(key)
	}
	if r != nil && r.Func != nil {
		value = r.Func(key, value)
	}
	if isUndefined(value) {
		return Undefined
	}
	return value
}

// filterKeys applies the allow-list, if any, to an object's snapshotted
// key list. The result is in allow-list order, not the object's own
// insertion/enumeration order: an allow-list reads as "exactly these
// keys, in this order," not merely a filter.
func (r *Replacer) filterKeys(keys []string) []string {
	if r == nil || r.Allow == nil {
		return keys
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	filtered := make([]string, 0, len(r.Allow))
	for _, k := range r.Allow {
		if present[k] {
			filtered = append(filtered, k)
		}
	}
	return filtered
}
