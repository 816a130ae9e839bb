package tf

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func decodeNodes(t *testing.T, text string, vt ValueType) ([]NodeRecord, error) {
	t.Helper()
	var recs []NodeRecord
	d := NewNodeDecoder(strings.NewReader(text), vt)
	for d.Next() {
		recs = append(recs, d.Records()...)
	}
	return recs, d.Err()
}

func decodeEdges(t *testing.T, text string, vt ValueType, edgeValues bool) ([]EdgeRecord, error) {
	t.Helper()
	var recs []EdgeRecord
	d := NewEdgeDecoder(strings.NewReader(text), vt, edgeValues)
	for d.Next() {
		recs = append(recs, d.Records()...)
	}
	return recs, d.Err()
}

func TestNodeDecoderImplicitNumbering(t *testing.T) {
	recs, err := decodeNodes(t, "@node\n@valueType=str\n\na\nb\nc\n", String)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{{1, "a"}, {2, "b"}, {3, "c"}}, recs)
}

func TestNodeDecoderHeaderWithoutBlankLine(t *testing.T) {
	recs, err := decodeNodes(t, "@node\n@valueType=str\nr\nu\nn", String)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{{1, "r"}, {2, "u"}, {3, "n"}}, recs)
}

func TestNodeDecoderExplicitNodes(t *testing.T) {
	text := "@node\n@valueType=str\n\nx\n5-6\ty\nz\n2,9\tw\nv\n"
	recs, err := decodeNodes(t, text, String)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{
		{1, "x"},
		{5, "y"}, {6, "y"},
		{7, "z"},
		{2, "w"}, {9, "w"},
		{10, "v"},
	}, recs)
}

func TestNodeDecoderEmptyLineIsAValue(t *testing.T) {
	recs, err := decodeNodes(t, "@node\n@valueType=str\n\na\n\nc\n", String)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{{1, "a"}, {2, ""}, {3, "c"}}, recs)
}

func TestNodeDecoderUnescapes(t *testing.T) {
	recs, err := decodeNodes(t, "@node\n@valueType=str\n\n1\ta\\tb\n", String)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{{1, "a\tb"}}, recs)
}

func TestNodeDecoderIntegers(t *testing.T) {
	recs, err := decodeNodes(t, "@node\n@valueType=int\n\n3\n\n4-5\t-7\n", Integer)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{{1, int64(3)}, {2, nil}, {4, int64(-7)}, {5, int64(-7)}}, recs)

	_, err = decodeNodes(t, "@node\n@valueType=int\n\nthree\n", Integer)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 4, fe.Line)
}

func TestNodeDecoderMalformedLine(t *testing.T) {
	recs, err := decodeNodes(t, "@node\n@valueType=str\n\na\n1\t2\t3\nb\n", String)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 5, fe.Line)
	assert.Equal(t, []NodeRecord{{1, "a"}}, recs)

	_, err = decodeNodes(t, "@node\n@valueType=str\n\nx-y\tvalue\n", String)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 4, fe.Line)
}

func TestNodeDecoderCRLF(t *testing.T) {
	recs, err := decodeNodes(t, "@node\r\n@valueType=str\r\n\r\na\r\nb\r\n", String)
	require.NoError(t, err)
	assert.Equal(t, []NodeRecord{{1, "a"}, {2, "b"}}, recs)
}

func TestEdgeDecoderFanOut(t *testing.T) {
	recs, err := decodeEdges(t, "@edge\n@valueType=str\n\n1-2\t3-4\tX\n", String, false)
	require.NoError(t, err)
	assert.Equal(t, []EdgeRecord{
		{1, 3, "X"}, {1, 4, "X"}, {2, 3, "X"}, {2, 4, "X"},
	}, recs)
}

func TestEdgeDecoderFieldCounts(t *testing.T) {
	t.Run("two fields without edge values", func(t *testing.T) {
		recs, err := decodeEdges(t, "@edge\n@valueType=str\n\n5\t7,9\n8\n", String, false)
		require.NoError(t, err)
		assert.Equal(t, []EdgeRecord{{5, 7, ""}, {5, 9, ""}, {6, 8, ""}}, recs)
	})
	t.Run("two fields with edge values", func(t *testing.T) {
		text := "@edge\n@edgeValues\n@valueType=int\n\n7\t2\n10-11\t9\t-1\n3\t4\n"
		recs, err := decodeEdges(t, text, Integer, true)
		require.NoError(t, err)
		assert.Equal(t, []EdgeRecord{
			{1, 7, int64(2)},
			{10, 9, int64(-1)}, {11, 9, int64(-1)},
			{12, 3, int64(4)},
		}, recs)
	})
	t.Run("one field", func(t *testing.T) {
		recs, err := decodeEdges(t, "@edge\n@valueType=str\n\n3\n4-5\n", String, false)
		require.NoError(t, err)
		assert.Equal(t, []EdgeRecord{{1, 3, ""}, {2, 4, ""}, {2, 5, ""}}, recs)
	})
	t.Run("one field integer feature", func(t *testing.T) {
		recs, err := decodeEdges(t, "@edge\n@valueType=int\n\n3\n", Integer, false)
		require.NoError(t, err)
		assert.Equal(t, []EdgeRecord{{1, 3, nil}}, recs)
	})
	t.Run("too many fields", func(t *testing.T) {
		_, err := decodeEdges(t, "@edge\n@valueType=str\n\n1\t2\t3\t4\n", String, false)
		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, 4, fe.Line)
	})
}

func TestEdgeDecoderStopsAtEmptyLine(t *testing.T) {
	recs, err := decodeEdges(t, "@edge\n@valueType=str\n\n1\t2\n\n3\t4\n", String, false)
	require.NoError(t, err)
	assert.Equal(t, []EdgeRecord{{1, 2, ""}}, recs)
}

func TestImplicitNodeIsPerDecoder(t *testing.T) {
	text := "@node\n@valueType=str\n\na\nb\n"
	first, err := decodeNodes(t, text, String)
	require.NoError(t, err)
	second, err := decodeNodes(t, text, String)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
