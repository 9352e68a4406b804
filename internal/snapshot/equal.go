package snapshot

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/mohae/deepcopy"
)

// Equal reports whether a and b are structurally equal: their JSON
// documents match, ignoring key order and number encoding, and so do the
// fields JSON does not carry (unexported or tagged "-"). Values that cannot
// be encoded fall back to reflect.DeepEqual.
func Equal[T any](a, b T) bool {
	na, err := normalize(a)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	nb, err := normalize(b)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(na, nb) && hiddenEqual(a, b)
}

// hiddenEqual compares the parts of a and b that maskVisible leaves.
func hiddenEqual[T any](a, b T) bool {
	ma, mb := a, b
	maskVisible(reflect.ValueOf(&ma).Elem())
	maskVisible(reflect.ValueOf(&mb).Elem())
	return reflect.DeepEqual(ma, mb)
}

// normalize converts v into its generic JSON document form
// (map[string]any, []any, json.Number, string, bool, nil).
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeGeneric(data)
}

func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clone returns a deep copy of v. deepcopy skips unexported fields, so for
// structs those are carried over from v by value.
func Clone[T any](v T) T {
	c, ok := deepcopy.Copy(v).(T)
	if !ok {
		return v
	}

	out := v
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(&c).Elem()
	switch {
	case dst.Kind() == reflect.Struct:
		overlayExported(dst, src)
	case dst.Kind() == reflect.Pointer && !dst.IsNil() && dst.Type().Elem().Kind() == reflect.Struct:
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(dst.Elem())
		overlayExported(p.Elem(), src.Elem())
		dst.Set(p)
	default:
		return c
	}
	return out
}

// overlayExported copies the exported fields of src into dst, descending
// into nested structs so their unexported fields stay those of dst.
func overlayExported(dst, src reflect.Value) {
	for i := range dst.NumField() {
		if !dst.Type().Field(i).IsExported() {
			continue
		}
		f := dst.Field(i)
		if f.Kind() == reflect.Struct {
			overlayExported(f, src.Field(i))
			continue
		}
		f.Set(src.Field(i))
	}
}

// IsNil reports whether v is nil or a nil map, pointer, slice, interface,
// channel, or function.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
