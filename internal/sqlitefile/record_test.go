package sqlitefile

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRecordEncoding(t *testing.T) {
	rec := &Record{}
	rec.AppendInt(0)
	rec.AppendString("ab")
	rec.AppendNull()
	assert.Equal(t, []byte{4, 8, 17, 0, 'a', 'b'}, rec.AppendTo(nil))

	rec.Reset()
	rec.AppendInt(1)
	rec.AppendInt(-1)
	rec.AppendInt(300)
	rec.AppendInt(1 << 40)
	assert.Equal(t, []byte{
		5, 9, 1, 2, 5,
		0xff,
		0x01, 0x2c,
		0x01, 0, 0, 0, 0, 0,
	}, rec.AppendTo(nil))
}

func TestRecordAppendValue(t *testing.T) {
	rec := &Record{}
	for _, v := range []any{nil, int64(7), 7, uint64(7), "x", []byte{1}} {
		require.NoError(t, rec.AppendValue(v))
	}
	assert.Equal(t, []byte{7, 0, 1, 1, 1, 15, 14, 7, 7, 7, 'x', 1}, rec.AppendTo(nil))

	assert.Error(t, rec.AppendValue(1.5))
	assert.Error(t, rec.AppendValue(uint64(1<<63)))
}
