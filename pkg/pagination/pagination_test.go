package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{ID: 42})
	cursor, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, uint(42), cursor.ID)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"%%%", encodeRaw("nope"), encodeRaw("id:abc"), encodeRaw("id:0")} {
		_, err := ParseCursor(raw)
		assert.Error(t, err, "cursor %q", raw)
	}
}

func TestTrim(t *testing.T) {
	ids := []uint{9, 8, 7}
	page, next := Trim(ids, 2, func(id uint) uint { return id })
	assert.Equal(t, []uint{9, 8}, page)

	cursor, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, uint(8), cursor.ID)

	page, next = Trim(ids[:2], 2, func(id uint) uint { return id })
	assert.Len(t, page, 2)
	assert.Empty(t, next)
}

func encodeRaw(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}
