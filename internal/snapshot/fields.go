package snapshot

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// fieldInfo locates one JSON-visible field of a struct type.
type fieldInfo struct {
	index     []int
	tagged    bool
	ambiguous bool
}

var fieldCache sync.Map // reflect.Type -> map[string][]int

var marshalerType = reflect.TypeFor[json.Marshaler]()

// jsonFields maps the exact JSON names of a struct type's fields to their
// index paths, following encoding/json's visibility and embedding rules.
// Names that collide at the same depth are left out.
func jsonFields(t reflect.Type) map[string][]int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string][]int)
	}

	found := map[string]fieldInfo{}
	collectFields(t, nil, map[reflect.Type]bool{t: true}, found)

	out := make(map[string][]int, len(found))
	for name, f := range found {
		if !f.ambiguous {
			out[name] = f.index
		}
	}
	fieldCache.Store(t, out)
	return out
}

func collectFields(t reflect.Type, index []int, seen map[reflect.Type]bool, found map[string]fieldInfo) {
	for i := range t.NumField() {
		sf := t.Field(i)
		name, tagged, visible := jsonName(sf)
		if !visible {
			continue
		}
		idx := append(slices.Clone(index), i)

		if sf.Anonymous && !tagged {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if !seen[ft] {
					seen[ft] = true
					collectFields(ft, idx, seen, found)
					delete(seen, ft)
				}
				continue
			}
		}
		addField(found, name, fieldInfo{index: idx, tagged: tagged})
	}
}

// addField keeps the shallowest field for a name. At equal depth a tagged
// field wins over an untagged one; otherwise the name is ambiguous.
func addField(found map[string]fieldInfo, name string, f fieldInfo) {
	old, ok := found[name]
	switch {
	case !ok || len(f.index) < len(old.index):
		found[name] = f
	case len(f.index) > len(old.index):
	case f.tagged && !old.tagged:
		found[name] = f
	case old.tagged && !f.tagged:
	default:
		old.ambiguous = true
		found[name] = old
	}
}

// jsonName returns the JSON name of a struct field, whether it came from a
// tag, and whether encoding/json encodes the field at all.
func jsonName(sf reflect.StructField) (name string, tagged, visible bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, false
	}
	if sf.Anonymous {
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if !sf.IsExported() && ft.Kind() != reflect.Struct {
			return "", false, false
		}
	} else if !sf.IsExported() {
		return "", false, false
	}

	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		return sf.Name, false, true
	}
	return name, true, true
}

// fieldByIndex walks index from v, allocating nil embedded pointers on the
// way. It returns false if the field cannot be set.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, v.CanSet()
}

// maskVisible zeroes, in place, everything encoding/json would encode,
// leaving only the fields a JSON comparison cannot see. Pointers to structs
// are replaced by masked copies so the pointee is untouched.
func maskVisible(v reflect.Value) {
	t := v.Type()
	if t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType) {
		if v.CanSet() {
			v.SetZero()
		}
		return
	}

	switch {
	case t.Kind() == reflect.Struct:
		// Exported fields of an embedded unexported struct stay settable.
		for i := range t.NumField() {
			if _, _, visible := jsonName(t.Field(i)); visible {
				maskVisible(v.Field(i))
			}
		}
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		if v.IsNil() || !v.CanSet() {
			return
		}
		cp := reflect.New(t.Elem())
		cp.Elem().Set(v.Elem())
		maskVisible(cp.Elem())
		v.Set(cp)
	case v.CanSet():
		v.SetZero()
	}
}
