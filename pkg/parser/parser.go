// Package parser parses the chameleon schema DSL.
//
// The parser is a hand-written lexer and a single-pass recursive-descent
// parser. It stops at the first syntax error and reports exactly one
// *ParseError carrying the line, column and an expected-vs-found
// description. Semantic checks (unknown relation targets, duplicate names,
// primary keys) are left to schema.Validate.
//
// # Basic Usage
//
// Parse a schema file:
//
//	s, err := parser.ParseSchema("schemas/app.cham")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse schema from a string:
//
//	s, err := parser.ParseSchemaString(content)
//
// # Grammar
//
//	entity User {
//	    id: uuid primary,
//	    email: string required unique,
//	    created_at: timestamp default now(),
//	    orders: [Order] via user_id,          // one_to_many shorthand
//	    team: Team,                           // many_to_one shorthand
//	    relation tags: many_to_many Tag through UserTag,
//	}
//
// Comments use // and /* */. Members are separated by commas or semicolons
// and a trailing separator is allowed.
package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// FileExtension is the conventional extension of schema DSL files.
const FileExtension = ".cham"

// ParseSchema reads a DSL file and parses it. Positions in the result and
// in errors carry the file path.
func ParseSchema(path string) (*schema.Schema, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted source
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return ParseNamed(path, string(content))
}

// ParseSchemaString parses DSL content.
func ParseSchemaString(content string) (*schema.Schema, error) {
	return ParseNamed("", content)
}

// ParseNamed parses DSL content, recording filename in every position.
func ParseNamed(filename, content string) (*schema.Schema, error) {
	p := &parser{lex: newLexer(filename, content)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	s, err := p.parseSchema()
	if err != nil {
		return nil, err
	}
	s.Normalize()
	return s, nil
}

type parser struct {
	lex *lexer
	tok token
	// ahead holds a token read by peek.
	ahead *token
}

func (p *parser) advance() error {
	if p.ahead != nil {
		p.tok = *p.ahead
		p.ahead = nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) peek() (token, error) {
	if p.ahead == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.ahead = &t
	}
	return *p.ahead, nil
}

func (p *parser) errorf(expected string) error {
	return &ParseError{Pos: p.tok.pos, Expected: expected, Found: p.tok.describe()}
}

// expect consumes a token of the given kind and returns it.
func (p *parser) expect(kind tokenKind, expected string) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errorf(expected)
	}
	t := p.tok
	return t, p.advance()
}

func (p *parser) isKeyword(word string) bool {
	return p.tok.kind == tokIdent && p.tok.text == word
}

func (p *parser) parseSchema() (*schema.Schema, error) {
	s := &schema.Schema{Version: schema.Version}
	for p.tok.kind != tokEOF {
		if !p.isKeyword("entity") {
			return nil, p.errorf(`"entity"`)
		}
		e, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		s.Entities = append(s.Entities, *e)
	}
	return s, nil
}

func (p *parser) parseEntity() (*schema.Entity, error) {
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(tokIdent, "entity name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return nil, err
	}
	e := &schema.Entity{Name: name.text, Pos: pos}
	for p.tok.kind != tokRBrace {
		if p.tok.kind != tokIdent {
			return nil, p.errorf(`field, relation or "}"`)
		}
		if err := p.parseMember(e); err != nil {
			return nil, err
		}
		switch p.tok.kind {
		case tokComma, tokSemicolon:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRBrace:
		default:
			return nil, p.errorf(`"," or "}"`)
		}
	}
	return e, p.advance()
}

func (p *parser) parseMember(e *schema.Entity) error {
	if p.isKeyword("relation") {
		next, err := p.peek()
		if err != nil {
			return err
		}
		if next.kind == tokIdent {
			return p.parseRelation(e)
		}
	}

	name := p.tok
	if err := p.advance(); err != nil {
		return err
	}
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return err
	}

	switch p.tok.kind {
	case tokLBracket:
		if err := p.advance(); err != nil {
			return err
		}
		target, err := p.expect(tokIdent, "entity name")
		if err != nil {
			return err
		}
		if _, err := p.expect(tokRBracket, `"]"`); err != nil {
			return err
		}
		rel := schema.Relation{Name: name.text, Kind: schema.OneToMany, Target: target.text, Pos: name.pos}
		if err := p.parseRelationOptions(&rel); err != nil {
			return err
		}
		e.Relations = append(e.Relations, rel)
		return nil
	case tokIdent:
	default:
		return p.errorf("type or entity name")
	}

	if typ, ok := schema.ParseFieldType(p.tok.text); ok {
		if err := p.advance(); err != nil {
			return err
		}
		f := schema.Field{Name: name.text, Type: typ, Pos: name.pos}
		if err := p.parseModifiers(&f); err != nil {
			return err
		}
		e.Fields = append(e.Fields, f)
		return nil
	}
	if !startsUpper(p.tok.text) {
		return p.errorf("field type (uuid, string, integer, float, decimal, boolean, timestamp, date, json)")
	}
	rel := schema.Relation{Name: name.text, Kind: schema.ManyToOne, Target: p.tok.text, Pos: name.pos}
	if err := p.advance(); err != nil {
		return err
	}
	if err := p.parseRelationOptions(&rel); err != nil {
		return err
	}
	e.Relations = append(e.Relations, rel)
	return nil
}

// parseRelation parses the keyword form:
//
//	relation name: kind Target [via fk] [through Join]
func (p *parser) parseRelation(e *schema.Entity) error {
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.expect(tokIdent, "relation name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return err
	}
	if p.tok.kind != tokIdent {
		return p.errorf("relation kind")
	}
	kind, ok := schema.ParseRelationKind(p.tok.text)
	if !ok {
		return p.errorf("relation kind (one_to_one, one_to_many, many_to_one, many_to_many)")
	}
	if err := p.advance(); err != nil {
		return err
	}
	target, err := p.expect(tokIdent, "target entity name")
	if err != nil {
		return err
	}
	rel := schema.Relation{Name: name.text, Kind: kind, Target: target.text, Pos: name.pos}
	if err := p.parseRelationOptions(&rel); err != nil {
		return err
	}
	e.Relations = append(e.Relations, rel)
	return nil
}

func (p *parser) parseRelationOptions(rel *schema.Relation) error {
	for {
		switch {
		case p.isKeyword("via"):
			if err := p.advance(); err != nil {
				return err
			}
			fk, err := p.expect(tokIdent, "foreign key field name")
			if err != nil {
				return err
			}
			rel.ForeignKey = fk.text
		case p.isKeyword("through"):
			if err := p.advance(); err != nil {
				return err
			}
			through, err := p.expect(tokIdent, "join entity name")
			if err != nil {
				return err
			}
			rel.Through = through.text
		default:
			return nil
		}
	}
}

func (p *parser) parseModifiers(f *schema.Field) error {
	for p.tok.kind == tokIdent {
		switch p.tok.text {
		case "primary":
			f.Primary = true
		case "required":
			f.Required = true
		case "unique":
			f.Unique = true
		case "nullable":
			f.Required = false
		case "default":
			if err := p.advance(); err != nil {
				return err
			}
			d, err := p.parseDefault()
			if err != nil {
				return err
			}
			f.Default = d
			continue
		default:
			return p.errorf(`modifier (primary, required, unique, nullable, default) or ","`)
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseDefault() (*schema.Default, error) {
	t := p.tok
	var d *schema.Default
	switch t.kind {
	case tokString:
		d = &schema.Default{Kind: schema.DefaultLiteral, Value: t.text}
	case tokNumber:
		d = &schema.Default{Kind: schema.DefaultLiteral, Value: json.Number(t.text)}
	case tokIdent:
		switch t.text {
		case "true", "false":
			d = &schema.Default{Kind: schema.DefaultLiteral, Value: t.text == "true"}
		case "null":
			d = &schema.Default{Kind: schema.DefaultLiteral}
		case "now", "uuid_v4":
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(tokLParen, `"("`); err != nil {
				return nil, err
			}
			if p.tok.kind != tokRParen {
				return nil, p.errorf(`")"`)
			}
			kind := schema.DefaultNow
			if t.text == "uuid_v4" {
				kind = schema.DefaultUUIDv4
			}
			d = &schema.Default{Kind: kind}
		}
	}
	if d == nil {
		return nil, p.errorf("default value (literal, now() or uuid_v4())")
	}
	return d, p.advance()
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
