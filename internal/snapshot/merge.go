package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Merge shallowly applies patch over a copy of base. Each patch key must be
// the exact JSON name of a top-level field of T (any key for map types) and
// replaces that field; every other field, including ones JSON never sees,
// keeps its base value. When hasBase is false the patch is applied over the
// zero T.
//
// Returns types.ErrInvalidArgument when patch is nil, when T is neither a
// struct, a pointer to a struct nor a string-keyed map, or when a patch key
// or value does not fit T. The returned value never shares memory with
// base or patch.
func Merge[T any](base T, hasBase bool, patch types.Patch) (T, error) {
	var zero T
	if patch == nil {
		return zero, fmt.Errorf("merge: nil patch: %w", types.ErrInvalidArgument)
	}

	var out T
	if hasBase {
		out = Clone(base)
	}
	target, err := patchTarget(reflect.ValueOf(&out).Elem())
	if err != nil {
		return zero, err
	}

	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		raw, err := json.Marshal(patch[key])
		if err != nil {
			return zero, fmt.Errorf("merge: encode field %q: %v: %w", key, err, types.ErrInvalidArgument)
		}
		if err := setField(target, key, raw); err != nil {
			return zero, fmt.Errorf("merge: field %q: %w", key, err)
		}
	}
	return out, nil
}

// patchTarget returns the struct or map that patch fields are written to.
func patchTarget(v reflect.Value) (reflect.Value, error) {
	switch {
	case v.Kind() == reflect.Struct:
		return v, nil
	case v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Struct:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return v.Elem(), nil
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		if v.IsNil() {
			v.Set(reflect.MakeMap(v.Type()))
		}
		return v, nil
	default:
		return reflect.Value{}, fmt.Errorf("merge: %s values have no fields: %w", v.Type(), types.ErrInvalidArgument)
	}
}

// setField decodes raw into the field named key. Struct fields are decoded
// through a one-field document so field tags such as ",string" apply.
func setField(target reflect.Value, key string, raw json.RawMessage) error {
	if target.Kind() == reflect.Map {
		elem := reflect.New(target.Type().Elem())
		if err := json.Unmarshal(raw, elem.Interface()); err != nil {
			return fmt.Errorf("%v: %w", err, types.ErrInvalidArgument)
		}
		target.SetMapIndex(reflect.ValueOf(key).Convert(target.Type().Key()), elem.Elem())
		return nil
	}

	index, ok := jsonFields(target.Type())[key]
	if !ok {
		return fmt.Errorf("no such field in %s: %w", target.Type(), types.ErrInvalidArgument)
	}

	doc, err := json.Marshal(map[string]json.RawMessage{key: raw})
	if err != nil {
		return fmt.Errorf("%v: %w", err, types.ErrInvalidArgument)
	}
	scratch := reflect.New(target.Type())
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(scratch.Interface()); err != nil {
		return fmt.Errorf("%v: %w", err, types.ErrInvalidArgument)
	}

	src, _ := fieldByIndex(scratch.Elem(), index)
	dst, ok := fieldByIndex(target, index)
	if !ok {
		return fmt.Errorf("field of %s cannot be set: %w", target.Type(), types.ErrInvalidArgument)
	}
	dst.Set(src)
	return nil
}
