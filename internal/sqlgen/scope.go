package sqlgen

import (
	"strconv"
	"strings"

	"github.com/dperalta86/chameleondb/internal/sqlgen/sqldsl"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// source is a table visible to a statement: the root entity or an entity
// reached through a relation path.
type source struct {
	entity *schema.Entity
	// ref qualifies columns of this source (quoted alias or table name).
	ref string
	// prefix is the unquoted alias used to name projected relation columns.
	prefix string
}

// scope resolves field paths against the root entity of a statement and
// accumulates the LEFT JOINs the paths require, in first-reference order.
type scope struct {
	schema *schema.Schema
	naming schema.Naming
	root   source

	// allowJoins is false for mutations, which only address root columns.
	allowJoins bool
	joins      []sqldsl.JoinClause
	paths      map[string]*source
	aliases    map[string]bool
}

func newScope(s *schema.Schema, root *schema.Entity, opts Options, allowJoins bool) *scope {
	table := opts.Naming.Table(root.Name)
	return &scope{
		schema:     s,
		naming:     opts.Naming,
		root:       source{entity: root, ref: table},
		allowJoins: allowJoins,
		paths:      map[string]*source{},
		aliases:    map[string]bool{table: true},
	}
}

// qualified reports whether column references carry a table qualifier.
func (sc *scope) qualified() bool { return len(sc.joins) > 0 }

func (sc *scope) col(src *source, name string) sqldsl.Col {
	c := sqldsl.Col{Column: sc.naming.Column(name)}
	if sc.qualified() {
		c.Table = src.ref
	}
	return c
}

// alias returns a quoted alias for a relation path that does not collide
// with the root table or an earlier alias.
func (sc *scope) alias(base string) (quoted, prefix string) {
	prefix = base
	for n := 2; sc.aliases[schema.QuoteIdent(prefix)]; n++ {
		prefix = base + "_" + strconv.Itoa(n)
	}
	quoted = schema.QuoteIdent(prefix)
	sc.aliases[quoted] = true
	return quoted, prefix
}

// resolve walks a relation path from the root, joining each relation the
// first time it is seen.
func (sc *scope) resolve(rels []string) (*source, error) {
	cur := &sc.root
	if len(rels) > 0 && !sc.allowJoins {
		return nil, schema.Generationf(schema.KindInvalidMutation, sc.root.entity.Name+"."+strings.Join(rels, "."),
			"relation paths are not allowed in mutation filters: %s", strings.Join(rels, "."))
	}
	for i := range rels {
		key := strings.Join(rels[:i+1], ".")
		if next, ok := sc.paths[key]; ok {
			cur = next
			continue
		}
		next, err := sc.join(cur, rels[i], key)
		if err != nil {
			return nil, err
		}
		sc.paths[key] = next
		cur = next
	}
	return cur, nil
}

func (sc *scope) join(parent *source, name, key string) (*source, error) {
	path := sc.root.entity.Name + "." + key
	rel := parent.entity.Relation(name)
	if rel == nil {
		err := schema.Generationf(schema.KindUnknownRelation, path,
			"entity %s has no relation %q", parent.entity.Name, name)
		err.Suggestion = schema.Suggest(name, relationNames(parent.entity))
		return nil, err
	}
	target := sc.schema.Entity(rel.Target)
	if target == nil {
		return nil, schema.Generationf(schema.KindUnknownEntity, path,
			"relation %s.%s targets unknown entity %q", parent.entity.Name, rel.Name, rel.Target)
	}

	ref, prefix := sc.alias(strings.ReplaceAll(key, ".", "_"))
	next := &source{entity: target, ref: ref, prefix: prefix}

	// Qualified references are needed from here on, including in the ON
	// clause of this first join.
	qualify := func(src *source, column string) sqldsl.Col {
		return sqldsl.Col{Table: src.ref, Column: sc.naming.Column(column)}
	}

	switch rel.Kind {
	case schema.OneToOne, schema.OneToMany:
		pk, err := primaryKey(parent.entity, path)
		if err != nil {
			return nil, err
		}
		_, fk := schema.ForeignKeyColumn(parent.entity.Name, *rel)
		sc.joins = append(sc.joins, sqldsl.JoinClause{
			Type:  "LEFT",
			Table: sqldsl.TableAs(sc.naming.Table(target.Name), ref),
			On:    sqldsl.Eq{Left: qualify(next, fk), Right: qualify(parent, pk)},
		})
	case schema.ManyToOne:
		pk, err := primaryKey(target, path)
		if err != nil {
			return nil, err
		}
		_, fk := schema.ForeignKeyColumn(parent.entity.Name, *rel)
		sc.joins = append(sc.joins, sqldsl.JoinClause{
			Type:  "LEFT",
			Table: sqldsl.TableAs(sc.naming.Table(target.Name), ref),
			On:    sqldsl.Eq{Left: qualify(next, pk), Right: qualify(parent, fk)},
		})
	case schema.ManyToMany:
		ownerCol, targetCol, ok := sc.schema.ThroughColumns(parent.entity.Name, *rel)
		if !ok {
			return nil, schema.Generationf(schema.KindAmbiguousRelation, path,
				"cannot resolve the join path of %s.%s through %q", parent.entity.Name, rel.Name, rel.Through)
		}
		parentPK, err := primaryKey(parent.entity, path)
		if err != nil {
			return nil, err
		}
		targetPK, err := primaryKey(target, path)
		if err != nil {
			return nil, err
		}
		linkRef, _ := sc.alias(prefix + "_link")
		link := &source{ref: linkRef}
		sc.joins = append(sc.joins,
			sqldsl.JoinClause{
				Type:  "LEFT",
				Table: sqldsl.TableAs(sc.naming.Table(rel.Through), linkRef),
				On:    sqldsl.Eq{Left: qualify(link, ownerCol), Right: qualify(parent, parentPK)},
			},
			sqldsl.JoinClause{
				Type:  "LEFT",
				Table: sqldsl.TableAs(sc.naming.Table(target.Name), ref),
				On:    sqldsl.Eq{Left: qualify(next, targetPK), Right: qualify(link, targetCol)},
			},
		)
	default:
		return nil, schema.Generationf(schema.KindAmbiguousRelation, path,
			"relation %s.%s has unsupported kind %q", parent.entity.Name, rel.Name, rel.Kind)
	}
	return next, nil
}

// register resolves the relation part of a field path so its joins exist
// before any column is rendered. With allowRelation, a path whose last
// segment names a relation rather than a column is joined as a whole.
func (sc *scope) register(path string, allowRelation bool) error {
	rels, field := query.SplitPath(path)
	src, err := sc.resolve(rels)
	if err != nil {
		return err
	}
	if allowRelation && src.entity.Relation(field) != nil {
		if _, isColumn := sc.schema.Column(src.entity, field); !isColumn {
			_, err = sc.resolve(append(rels, field))
		}
	}
	return err
}

// column resolves a field path to a column of the root or a joined entity.
func (sc *scope) column(path string) (sqldsl.Col, schema.Column, *source, error) {
	rels, field := query.SplitPath(path)
	src, err := sc.resolve(rels)
	if err != nil {
		return sqldsl.Col{}, schema.Column{}, nil, err
	}
	c, ok := sc.schema.Column(src.entity, field)
	if !ok {
		err := schema.Generationf(schema.KindUnknownField, sc.root.entity.Name+"."+path,
			"entity %s has no field %q", src.entity.Name, field)
		err.Suggestion = schema.Suggest(field, columnNames(sc.schema, src.entity))
		return sqldsl.Col{}, schema.Column{}, nil, err
	}
	return sc.col(src, c.Name), c, src, nil
}

func primaryKey(e *schema.Entity, path string) (string, error) {
	pk := e.PrimaryKey()
	if pk == nil {
		return "", schema.Generationf(schema.KindAmbiguousRelation, path,
			"entity %s has no primary key to join on", e.Name)
	}
	return pk.Name, nil
}

func relationNames(e *schema.Entity) []string {
	names := make([]string, len(e.Relations))
	for i, r := range e.Relations {
		names[i] = r.Name
	}
	return names
}

func columnNames(s *schema.Schema, e *schema.Entity) []string {
	cols := s.Columns(e)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
