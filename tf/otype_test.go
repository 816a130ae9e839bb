package tf

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func mustRegistry(t *testing.T, text string) *Registry {
	t.Helper()
	reg, err := ReadRegistry(strings.NewReader(text))
	require.NoError(t, err)
	return reg
}

func TestReadRegistry(t *testing.T) {
	reg := mustRegistry(t, "@node\n@valueType=str\n\n1-2\tword\n3-3\tclause\n")
	assert.Equal(t, []TypeRange{{"word", 1, 2}, {"clause", 3, 3}}, reg.Ranges())
	assert.Equal(t, []string{"word", "clause"}, reg.Labels())

	tr, err := reg.TypeOf(3)
	require.NoError(t, err)
	assert.Equal(t, "clause", tr.Label)
	tr, err = reg.TypeOf(1)
	require.NoError(t, err)
	assert.Equal(t, "word", tr.Label)
}

func TestRegistryLookupMiss(t *testing.T) {
	reg := mustRegistry(t, "@node\n\n1-2\tword\n10-20\tsentence\n")
	for _, n := range []uint64{0, 3, 9, 21} {
		_, err := reg.TypeOf(n)
		var le *LookupError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, n, le.Node)
	}
	tr, err := reg.TypeOf(15)
	require.NoError(t, err)
	assert.Equal(t, TypeRange{"sentence", 10, 20}, tr)
}

func TestRegistryUnorderedAndReversed(t *testing.T) {
	reg, err := NewRegistry([]TypeRange{{"book", 100, 90}, {"word", 1, 89}, {"chapter", 101, 101}})
	require.NoError(t, err)
	assert.Equal(t, []TypeRange{{"book", 90, 100}, {"word", 1, 89}, {"chapter", 101, 101}}, reg.Ranges())
	for n, want := range map[uint64]string{1: "word", 89: "word", 90: "book", 100: "book", 101: "chapter"} {
		tr, err := reg.TypeOf(n)
		require.NoError(t, err)
		assert.Equal(t, want, tr.Label, n)
	}
}

func TestRegistrySameLabelTwice(t *testing.T) {
	reg := mustRegistry(t, "@node\n\n1-5\tword\n6-7\tphrase\n8-9\tword\n")
	assert.Equal(t, []string{"word", "phrase"}, reg.Labels())
	assert.Equal(t, 3, reg.Len())
}

func TestReadRegistryErrors(t *testing.T) {
	tests := []struct {
		name, text string
		line       int
	}{
		{"no tab", "@node\n\n1-2 word\n", 3},
		{"bad bounds", "@node\n\n1-x\tword\n", 3},
		{"empty label", "@node\n\n1-2\t\n", 3},
		{"overlap", "@node\n\n1-5\tword\n5-7\tphrase\n", 0},
		{"no types", "@node\n@valueType=str\n\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRegistry(strings.NewReader(tt.text))
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.line, fe.Line)
		})
	}
}

func TestTypeRangeString(t *testing.T) {
	assert.Equal(t, "1-2\tword", TypeRange{"word", 1, 2}.String())
}
