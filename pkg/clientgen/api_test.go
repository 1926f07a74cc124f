package clientgen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dperalta86/chameleondb/pkg/clientgen"
	"github.com/dperalta86/chameleondb/pkg/parser"
)

func TestGenerate(t *testing.T) {
	s, err := parser.ParseSchemaString(`entity Note { id: integer primary, text: string required }`)
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "python", "typescript"}, clientgen.Languages())

	var buf bytes.Buffer
	require.NoError(t, clientgen.GenerateGo(&buf, s, clientgen.DefaultGenerateConfig()))
	assert.Contains(t, buf.String(), "type Note struct")

	for _, lang := range clientgen.Languages() {
		t.Run(lang, func(t *testing.T) {
			files, err := clientgen.Generate(lang, s, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, files)
		})
	}

	_, err = clientgen.Generate("cobol", s, nil)
	assert.ErrorContains(t, err, `unknown language "cobol"`)
}
