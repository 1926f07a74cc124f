package schema

import (
	"errors"
	"fmt"
)

// Validate checks s for structural and referential problems. It returns nil
// for a confirmed schema, or a ValidationErrors value holding every problem
// found, ordered by entity declaration order and then member order.
//
// Checks performed:
//   - entity names are non-empty and unique
//   - field and relation names are unique within an entity
//   - each entity has exactly one primary field
//   - field types and relation kinds are known
//   - relation targets resolve to a defined entity
//   - many_to_many relations name a through entity holding keys to both sides
//   - defaults are compatible with the field type
//   - implied foreign keys agree with declared fields and with each other
//
// An empty schema is valid.
func Validate(s *Schema) error {
	v := &validator{schema: s}
	v.run()
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// Errors returns the validation errors of err, or nil if err does not carry
// any.
func Errors(err error) ValidationErrors {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

type validator struct {
	schema *Schema
	errs   ValidationErrors

	// fkErrs holds foreign-key errors keyed by the "Entity.relation" that
	// introduced them, so they are reported in member order.
	fkErrs map[string][]ValidationError
}

func (v *validator) add(kind ErrorKind, path string, pos Position, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
		Pos:     pos,
	})
}

func (v *validator) run() {
	v.checkForeignKeys()

	seen := make(map[string]bool, len(v.schema.Entities))
	for i := range v.schema.Entities {
		e := &v.schema.Entities[i]
		if e.Name == "" {
			v.add(KindInvalidName, fmt.Sprintf("entities[%d]", i), e.Pos, "entity name is empty")
		} else if seen[e.Name] {
			v.add(KindDuplicateEntity, e.Name, e.Pos, "entity %q is defined more than once", e.Name)
		}
		seen[e.Name] = true
		v.checkEntity(e)
	}
}

func (v *validator) checkEntity(e *Entity) {
	members := make(map[string]bool, len(e.Fields)+len(e.Relations))
	primaries := 0

	for _, f := range e.Fields {
		path := e.Name + "." + f.Name
		if f.Name == "" {
			v.add(KindInvalidName, e.Name, f.Pos, "entity %q has a field with an empty name", e.Name)
		} else if members[f.Name] {
			v.add(KindDuplicateField, path, f.Pos, "field %q is declared more than once in entity %q", f.Name, e.Name)
		}
		members[f.Name] = true
		if f.Primary {
			primaries++
		}
		if !f.Type.Valid() {
			v.add(KindInvalidType, path, f.Pos, "field %q has unknown type %q", f.Name, f.Type)
			continue
		}
		if f.Default != nil {
			if err := checkDefault(f); err != nil {
				v.add(KindInvalidDefault, path, f.Pos, "field %q: %v", f.Name, err)
			}
		}
	}

	switch {
	case primaries == 0:
		v.add(KindMissingPrimaryKey, e.Name, e.Pos, "entity %q has no primary field", e.Name)
	case primaries > 1:
		v.add(KindMultiplePrimaryKeys, e.Name, e.Pos, "entity %q has %d primary fields, want exactly one", e.Name, primaries)
	}

	for _, rel := range e.Relations {
		path := e.Name + "." + rel.Name
		if rel.Name == "" {
			v.add(KindInvalidName, e.Name, rel.Pos, "entity %q has a relation with an empty name", e.Name)
		} else if members[rel.Name] {
			v.add(KindDuplicateField, path, rel.Pos, "relation %q clashes with another member of entity %q", rel.Name, e.Name)
		}
		members[rel.Name] = true
		if !rel.Kind.Valid() {
			v.add(KindInvalidType, path, rel.Pos, "relation %q has unknown kind %q", rel.Name, rel.Kind)
			continue
		}
		if v.schema.Entity(rel.Target) == nil {
			msg := fmt.Sprintf("relation %q targets undefined entity %q", rel.Name, rel.Target)
			if s := Suggest(rel.Target, v.schema.EntityNames()); s != "" {
				msg += fmt.Sprintf(" (did you mean %q?)", s)
			}
			v.add(KindDanglingRelation, path, rel.Pos, "%s", msg)
			continue
		}
		if rel.Kind == ManyToMany {
			v.checkJoin(e, rel, path)
		}
		v.errs = append(v.errs, v.fkErrs[path]...)
	}
}

func (v *validator) checkJoin(e *Entity, rel Relation, path string) {
	if rel.Through == "" {
		v.add(KindUnresolvedJoin, path, rel.Pos,
			"many_to_many relation %q needs a through entity holding keys to %q and %q", rel.Name, e.Name, rel.Target)
		return
	}
	if v.schema.Entity(rel.Through) == nil {
		v.add(KindUnresolvedJoin, path, rel.Pos, "relation %q goes through undefined entity %q", rel.Name, rel.Through)
		return
	}
	if _, _, ok := v.schema.ThroughColumns(e.Name, rel); !ok {
		v.add(KindUnresolvedJoin, path, rel.Pos,
			"through entity %q must hold foreign keys to both %q and %q", rel.Through, e.Name, rel.Target)
	}
}

// checkForeignKeys finds implied foreign keys that disagree with a declared
// field or with another relation implying the same column.
func (v *validator) checkForeignKeys() {
	v.fkErrs = make(map[string][]ValidationError)
	type slot struct{ holder, column string }
	claimed := make(map[slot]ForeignKey)

	for _, fk := range v.schema.ForeignKeys() {
		holder := v.schema.Entity(fk.Holder)
		target := v.schema.Entity(fk.Target)
		if holder == nil || target == nil {
			continue
		}
		key := slot{fk.Holder, fk.Column}
		if prev, ok := claimed[key]; ok {
			if prev.Target != fk.Target {
				v.fkErrs[fk.Source] = append(v.fkErrs[fk.Source], ValidationError{
					Kind: KindConflictingForeignKey,
					Message: fmt.Sprintf("column %s.%s references %q via %s but %q via %s",
						fk.Holder, fk.Column, prev.Target, prev.Source, fk.Target, fk.Source),
					Path: fk.Source,
					Pos:  fk.Pos,
				})
			}
			continue
		}
		claimed[key] = fk

		declared := holder.Field(fk.Column)
		pk := target.PrimaryKey()
		if declared == nil || pk == nil || !declared.Type.Valid() {
			continue
		}
		if declared.Type != pk.Type {
			v.fkErrs[fk.Source] = append(v.fkErrs[fk.Source], ValidationError{
				Kind: KindForeignKeyTypeMismatch,
				Message: fmt.Sprintf("field %s.%s has type %s but references %s.%s of type %s",
					fk.Holder, fk.Column, declared.Type, fk.Target, pk.Name, pk.Type),
				Path: fk.Source,
				Pos:  fk.Pos,
			})
		}
	}
}

func checkDefault(f Field) error {
	d := f.Default
	switch d.Kind {
	case DefaultNow:
		if f.Type != TypeTimestamp && f.Type != TypeDate {
			return fmt.Errorf("default now() requires a timestamp or date field, not %s", f.Type)
		}
	case DefaultUUIDv4:
		if f.Type != TypeUUID {
			return fmt.Errorf("default uuid_v4() requires a uuid field, not %s", f.Type)
		}
	case DefaultLiteral:
		if d.Value == nil {
			if f.Required {
				return fmt.Errorf("default null on a required field")
			}
			return nil
		}
		if err := CheckValue(f.Type, d.Value); err != nil {
			return fmt.Errorf("invalid default: %w", err)
		}
	default:
		return fmt.Errorf("unknown default kind %q", d.Kind)
	}
	return nil
}
