package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mesh-intelligence/apiconf/internal/tracking"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Edit operation names.
const (
	opSet     = "set"
	opDelete  = "delete"
	opRestore = "restore"
	opUndo    = "undo"
	opRedo    = "redo"
)

// op is one step of an edit command.
type op struct {
	name  string
	path  string
	value string
}

func (o op) String() string {
	if o.name == opSet {
		return fmt.Sprintf("%s %s=%s", o.name, o.path, o.value)
	}
	return o.name
}

// parseOps reads "set path=value", "delete", "restore", "undo" and "redo"
// from args.
func parseOps(args []string) ([]op, error) {
	var ops []op
	for i := 0; i < len(args); i++ {
		switch name := args[i]; name {
		case opDelete, opRestore, opUndo, opRedo:
			ops = append(ops, op{name: name})
		case opSet:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("set: missing path=value: %w", types.ErrInvalidArgument)
			}
			i++
			path, value, ok := strings.Cut(args[i], "=")
			if !ok || path == "" {
				return nil, fmt.Errorf("set %q: expected path=value: %w", args[i], types.ErrInvalidArgument)
			}
			ops = append(ops, op{name: opSet, path: path, value: value})
		default:
			return nil, fmt.Errorf("unknown operation %q (valid: set, delete, restore, undo, redo): %w", name, types.ErrInvalidArgument)
		}
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("no operations given: %w", types.ErrInvalidArgument)
	}
	return ops, nil
}

// applyOp runs o against rec. Undo and redo with nothing to step to are
// no-ops.
func applyOp[T any](rec *tracking.Record[T], o op) error {
	switch o.name {
	case opSet:
		var base any
		if current, ok := rec.Current(); ok {
			base = current
		}
		patch, err := setPatch(base, o.path, o.value)
		if err != nil {
			return err
		}
		return rec.Update(patch)
	case opDelete:
		rec.Delete()
	case opRestore:
		rec.Restore()
	case opUndo:
		rec.Undo()
	case opRedo:
		rec.Redo()
	default:
		return fmt.Errorf("unknown operation %q: %w", o.name, types.ErrInvalidArgument)
	}
	return nil
}

// setPatch turns a dotted path assignment into a top-level patch. The
// value is set on a JSON copy of current and the whole top-level field the
// path lives under becomes the patch entry. A value that is not valid JSON
// is taken as a string.
func setPatch(current any, path, value string) (types.Patch, error) {
	doc := []byte("{}")
	if current != nil {
		raw, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("encode current value: %w", err)
		}
		if gjson.ParseBytes(raw).IsObject() {
			doc = raw
		}
	}

	var err error
	if gjson.Valid(value) {
		doc, err = sjson.SetRawBytes(doc, path, []byte(value))
	} else {
		doc, err = sjson.SetBytes(doc, path, value)
	}
	if err != nil {
		return nil, fmt.Errorf("set %s: %v: %w", path, err, types.ErrInvalidArgument)
	}

	field := topLevelField(path)
	return types.Patch{field: gjson.GetBytes(doc, gjsonEscape(field)).Value()}, nil
}

// topLevelField returns the first segment of a dotted path, honoring
// backslash escapes.
func topLevelField(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '\\' && i+1 < len(path) {
			i++
			b.WriteByte(path[i])
			continue
		}
		if c == '.' {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

// gjsonEscape escapes the characters gjson treats as path syntax.
func gjsonEscape(field string) string {
	var b strings.Builder
	for i := 0; i < len(field); i++ {
		switch c := field[i]; c {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
