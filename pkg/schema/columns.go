package schema

// Column is a physical column of an entity's table: either a declared field
// or a foreign-key column implied by a relation.
type Column struct {
	Name     string
	Type     FieldType
	Primary  bool
	Required bool
	Unique   bool
	Default  *Default
	// References is the entity this column points at, if it is a foreign key.
	References string
	// Synthesized is true when no field declares the column.
	Synthesized bool
}

// ForeignKey is a foreign-key column implied by a relation.
type ForeignKey struct {
	// Holder is the entity whose table holds the column.
	Holder string
	Column string
	// Target is the referenced entity.
	Target string
	// Source is "Entity.relation" of the declaring relation.
	Source string
	Pos    Position
}

// ForeignKeyColumn returns the entity holding the foreign key for rel, as
// declared on owner, and the column name. It returns empty strings for
// many_to_many relations, whose keys live on the through entity.
func ForeignKeyColumn(owner string, rel Relation) (holder, column string) {
	switch rel.Kind {
	case OneToOne, OneToMany:
		if rel.ForeignKey != "" {
			return rel.Target, rel.ForeignKey
		}
		return rel.Target, Snake(owner) + "_id"
	case ManyToOne:
		if rel.ForeignKey != "" {
			return owner, rel.ForeignKey
		}
		return owner, rel.Name + "_id"
	}
	return "", ""
}

// ForeignKeys lists every foreign key implied by the relations of s, in
// entity then relation declaration order. Many-to-many relations contribute
// nothing here; their join entity declares its own keys.
func (s *Schema) ForeignKeys() []ForeignKey {
	var keys []ForeignKey
	for _, e := range s.Entities {
		for _, rel := range e.Relations {
			holder, col := ForeignKeyColumn(e.Name, rel)
			if holder == "" {
				continue
			}
			target := rel.Target
			if rel.Kind == OneToOne || rel.Kind == OneToMany {
				target = e.Name
			}
			keys = append(keys, ForeignKey{
				Holder: holder,
				Column: col,
				Target: target,
				Source: e.Name + "." + rel.Name,
				Pos:    rel.Pos,
			})
		}
	}
	return keys
}

// Columns returns the table columns of e: declared fields in declaration
// order, followed by synthesized foreign-key columns in the order their
// relations are declared. When several relations imply the same column the
// first one wins.
func (s *Schema) Columns(e *Entity) []Column {
	cols := make([]Column, 0, len(e.Fields))
	index := make(map[string]int, len(e.Fields))
	for _, f := range e.Fields {
		index[f.Name] = len(cols)
		cols = append(cols, Column{
			Name:     f.Name,
			Type:     f.Type,
			Primary:  f.Primary,
			Required: f.Required,
			Unique:   f.Unique,
			Default:  f.Default,
		})
	}
	for _, fk := range s.ForeignKeys() {
		if fk.Holder != e.Name {
			continue
		}
		if i, ok := index[fk.Column]; ok {
			if cols[i].References == "" {
				cols[i].References = fk.Target
			}
			continue
		}
		typ := TypeInteger
		if target := s.Entity(fk.Target); target != nil {
			if pk := target.PrimaryKey(); pk != nil {
				typ = pk.Type
			}
		}
		index[fk.Column] = len(cols)
		cols = append(cols, Column{
			Name:        fk.Column,
			Type:        typ,
			References:  fk.Target,
			Synthesized: true,
		})
	}
	return cols
}

// Column returns the named column of e, including synthesized foreign keys.
func (s *Schema) Column(e *Entity, name string) (Column, bool) {
	for _, c := range s.Columns(e) {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ThroughColumns resolves the join columns of a many_to_many relation
// declared on owner. ownerCol is the column of the through entity that
// references owner, targetCol the one that references rel.Target. ok is
// false when either side cannot be resolved.
//
// rel.ForeignKey, if set, names ownerCol explicitly.
func (s *Schema) ThroughColumns(owner string, rel Relation) (ownerCol, targetCol string, ok bool) {
	through := s.Entity(rel.Through)
	if rel.Kind != ManyToMany || through == nil {
		return "", "", false
	}
	var toOwner, toTarget []string
	for _, c := range s.Columns(through) {
		switch {
		case c.References == "" && c.Name == Snake(owner)+"_id":
			toOwner = append(toOwner, c.Name)
		case c.References == "" && c.Name == Snake(rel.Target)+"_id":
			toTarget = append(toTarget, c.Name)
		case c.References == owner && owner == rel.Target:
			toOwner = append(toOwner, c.Name)
			toTarget = append(toTarget, c.Name)
		case c.References == owner:
			toOwner = append(toOwner, c.Name)
		case c.References == rel.Target:
			toTarget = append(toTarget, c.Name)
		}
	}
	if rel.ForeignKey != "" {
		ownerCol = rel.ForeignKey
		if _, found := s.Column(through, ownerCol); !found {
			return "", "", false
		}
	} else if len(toOwner) > 0 {
		ownerCol = toOwner[0]
	}
	for _, c := range toTarget {
		if c != ownerCol {
			targetCol = c
			break
		}
	}
	if ownerCol == "" || targetCol == "" {
		return "", "", false
	}
	return ownerCol, targetCol, true
}
