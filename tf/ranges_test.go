package tf

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand"
	"slices"
	"testing"
)

func TestDecodeRanges(t *testing.T) {
	tests := []struct {
		text string
		want []uint64
	}{
		{"45", []uint64{45}},
		{"5-13", []uint64{5, 6, 7, 8, 9, 10, 11, 12, 13}},
		{"1-3,5-10,15,23-25", []uint64{1, 2, 3, 5, 6, 7, 8, 9, 10, 15, 23, 24, 25}},
		{"3-1", []uint64{1, 2, 3}},
		{"1-5,2-7", []uint64{1, 2, 3, 4, 5, 6, 7}},
		{"9,2,9", []uint64{9, 2}},
		{"0", []uint64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := DecodeRanges(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRangesErrors(t *testing.T) {
	for _, text := range []string{"", "a", "1-", "-3", "1-2-3", "1,,2", " 4", "1.5", "-"} {
		t.Run(text, func(t *testing.T) {
			_, err := DecodeRanges(text)
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestDecodeRangesTooLarge(t *testing.T) {
	for _, text := range []string{"1-4000000000", "1-16777217", "1-10,11-16777217", "4000000000-1"} {
		t.Run(text, func(t *testing.T) {
			_, err := DecodeRanges(text)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Msg, "spans more than")
		})
	}
}

func TestDecodePair(t *testing.T) {
	lo, hi, err := DecodePair("12-4")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), lo)
	assert.Equal(t, uint64(12), hi)

	lo, hi, err = DecodePair("7")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), lo)
	assert.Equal(t, uint64(7), hi)
}

func TestEncodeRanges(t *testing.T) {
	assert.Equal(t, "", EncodeRanges(nil))
	assert.Equal(t, "45", EncodeRanges([]uint64{45}))
	assert.Equal(t, "1-3,5-10,15", EncodeRanges([]uint64{15, 1, 2, 3, 5, 6, 7, 8, 9, 10, 2}))
	assert.Equal(t, "1,3,5", EncodeRanges([]uint64{5, 3, 1}))
}

// Decoding the encoded form of a decoded list gives back the same set,
// whatever order and overlap the list was written with.
func TestRangesRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		want := map[uint64]bool{}
		var parts []string
		for j := rng.Intn(5) + 1; j > 0; j-- {
			a, b := uint64(rng.Intn(50)), uint64(rng.Intn(50))
			for n := min(a, b); n <= max(a, b); n++ {
				want[n] = true
			}
			if a == b {
				parts = append(parts, EncodeRanges([]uint64{a}))
			} else {
				parts = append(parts, EncodeRanges([]uint64{a})+"-"+EncodeRanges([]uint64{b}))
			}
		}
		text := parts[0]
		for _, p := range parts[1:] {
			text += "," + p
		}

		decoded, err := DecodeRanges(text)
		require.NoError(t, err, text)
		again, err := DecodeRanges(EncodeRanges(decoded))
		require.NoError(t, err, text)

		var wantList []uint64
		for n := range want {
			wantList = append(wantList, n)
		}
		slices.Sort(wantList)
		slices.Sort(decoded)
		assert.Equal(t, wantList, decoded, text)
		assert.Equal(t, wantList, again, text)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "abc", "abc"},
		{"tab", `a\tb`, "a\tb"},
		{"newline", `a\nb`, "a\nb"},
		{"backslash", `a\\b`, `a\b`},
		{"backslash before t", `a\\tb`, `a\tb`},
		{"backslash before n", `a\\nb`, `a\nb`},
		{"escaped backslash then tab", `\\\t`, "\\\t"},
		{"lone backslash", `a\b`, `a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unescape(tt.in))
		})
	}
}

func TestUnescapeIdempotentWithoutEscapes(t *testing.T) {
	for _, s := range []string{"", "word", "ὁ λόγος", "a\tb", `back\slash`} {
		assert.Equal(t, Unescape(s), Unescape(Unescape(s)))
	}
}
