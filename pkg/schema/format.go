package schema

import (
	"strings"
)

// Format renders s as DSL text. Parsing the result yields a schema equal to
// s at the JSON-model level. Relations are always written in the keyword
// form (relation name: kind Target ...).
func Format(s *Schema) string {
	var b strings.Builder
	for i, e := range s.Entities {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("entity ")
		b.WriteString(e.Name)
		b.WriteString(" {\n")
		for _, f := range e.Fields {
			b.WriteString("    ")
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(string(f.Type))
			for _, m := range modifiers(f) {
				b.WriteByte(' ')
				b.WriteString(m)
			}
			b.WriteString(",\n")
		}
		for _, r := range e.Relations {
			b.WriteString("    relation ")
			b.WriteString(r.Name)
			b.WriteString(": ")
			b.WriteString(string(r.Kind))
			b.WriteByte(' ')
			b.WriteString(r.Target)
			if r.ForeignKey != "" {
				b.WriteString(" via ")
				b.WriteString(r.ForeignKey)
			}
			if r.Through != "" {
				b.WriteString(" through ")
				b.WriteString(r.Through)
			}
			b.WriteString(",\n")
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func modifiers(f Field) []string {
	var mods []string
	if f.Primary {
		mods = append(mods, "primary")
	} else {
		if f.Required {
			mods = append(mods, "required")
		}
		if f.Unique {
			mods = append(mods, "unique")
		}
	}
	if f.Default != nil {
		mods = append(mods, "default "+f.Default.String())
	}
	return mods
}
