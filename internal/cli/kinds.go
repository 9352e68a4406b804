package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mesh-intelligence/apiconf/internal/session"
	"github.com/mesh-intelligence/apiconf/internal/tracking"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// recordKind runs tracked edits against one table with its document type.
type recordKind interface {
	create(s *session.Session, doc []byte, save bool) (editResult, error)
	edit(s *session.Session, id string, ops []op, save bool) (editResult, error)
	remove(s *session.Session, id string, save bool) (editResult, error)
}

var kinds = map[string]recordKind{
	types.TableEntities:   kind[types.Entity]{table: types.TableEntities},
	types.TableAttributes: kind[types.Attribute]{table: types.TableAttributes},
	types.TableSecurity:   kind[types.SecurityRule]{table: types.TableSecurity},
	types.TableDeployment: kind[types.Deployment]{table: types.TableDeployment},
}

// editResult describes a record after a command's edits.
type editResult struct {
	ID      string          `json:"id"`
	Status  types.Status    `json:"status"`
	CanUndo bool            `json:"can_undo"`
	CanRedo bool            `json:"can_redo"`
	Current json.RawMessage `json:"current,omitempty"`
	Diff    string          `json:"diff,omitempty"`
	Saved   bool            `json:"saved"`
	Report  *session.Report `json:"report,omitempty"`
}

type kind[T any] struct {
	table string
}

func (k kind[T]) create(s *session.Session, doc []byte, save bool) (editResult, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return editResult{}, fmt.Errorf("create %s: document must be a JSON object: %w", k.table, types.ErrInvalidData)
	}
	if gjson.GetBytes(doc, "id").String() == "" {
		var err error
		if doc, err = sjson.SetBytes(doc, "id", tracking.NewUUID()); err != nil {
			return editResult{}, fmt.Errorf("create %s: set id: %w", k.table, err)
		}
	}

	var value T
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&value); err != nil {
		return editResult{}, fmt.Errorf("create %s: %v: %w", k.table, err, types.ErrInvalidData)
	}

	coll, err := session.Load[T](s, k.table)
	if err != nil {
		return editResult{}, err
	}
	if _, exists := k.find(coll, storeID(value)); exists {
		return editResult{}, fmt.Errorf("create %s: id %q already exists: %w", k.table, storeID(value), types.ErrInvalidID)
	}
	rec, err := coll.Create(value)
	if err != nil {
		return editResult{}, fmt.Errorf("create %s: %w", k.table, err)
	}
	return k.finish(s, coll, rec, save)
}

func (k kind[T]) edit(s *session.Session, id string, ops []op, save bool) (editResult, error) {
	coll, err := session.Load[T](s, k.table)
	if err != nil {
		return editResult{}, err
	}
	rec, ok := k.find(coll, id)
	if !ok {
		return editResult{}, fmt.Errorf("%s %q: %w", k.table, id, types.ErrNotFound)
	}
	for _, o := range ops {
		if err := applyOp(rec, o); err != nil {
			return editResult{}, fmt.Errorf("%s %q: %s: %w", k.table, id, o, err)
		}
	}
	return k.finish(s, coll, rec, save)
}

func (k kind[T]) remove(s *session.Session, id string, save bool) (editResult, error) {
	return k.edit(s, id, []op{{name: opDelete}}, save)
}

// find returns the record whose stored id is id.
func (k kind[T]) find(coll *tracking.Collection[T], id string) (*tracking.Record[T], bool) {
	return coll.Find(func(v T) bool { return storeID(v) == id })
}

func (k kind[T]) finish(s *session.Session, coll *tracking.Collection[T], rec *tracking.Record[T], save bool) (editResult, error) {
	res := editResult{
		Status:  rec.Status(),
		CanUndo: rec.CanUndo(),
		CanRedo: rec.CanRedo(),
	}
	if original, ok := rec.Original(); ok {
		res.ID = storeID(original)
	}
	if current, ok := rec.Current(); ok {
		res.ID = storeID(current)
		raw, err := json.Marshal(current)
		if err != nil {
			return res, fmt.Errorf("encode %s: %w", k.table, err)
		}
		res.Current = raw
	}

	diff, err := rec.Diff()
	if err != nil {
		return res, err
	}
	res.Diff = diff

	if !save {
		return res, nil
	}
	report, err := session.Save(s, k.table, coll)
	if err != nil {
		return res, err
	}
	res.Saved = true
	res.Report = &report
	return res, nil
}
