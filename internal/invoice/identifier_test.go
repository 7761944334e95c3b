package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"123", "123"},
		{"123.0", "123"},
		{"123.00", "123"},
		{" 123.0 ", "123"},
		{"123.4", "123.4"},
		{"123.40", "123.4"},
		{"0123", "123"},
		{"0", "0"},
		{"", ""},
		{"   ", ""},
		{"ABC-1", "ABC-1"},
		{"1.2.3", "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdentifier(tt.raw))
		})
	}
}

func TestNormalizeIdentifier_Equivalence(t *testing.T) {
	assert.Equal(t, NormalizeIdentifier("123"), NormalizeIdentifier("123.0"))
	assert.NotEqual(t, NormalizeIdentifier("123.0"), NormalizeIdentifier("123.4"))
}

func TestNormalizeQuery(t *testing.T) {
	t.Run("integer-like and float-like queries match", func(t *testing.T) {
		a, err := NormalizeQuery("123")
		require.NoError(t, err)
		b, err := NormalizeQuery(" 123.0 ")
		require.NoError(t, err)

		assert.Equal(t, "123", a)
		assert.Equal(t, a, b)
	})

	t.Run("decimal query stays distinct", func(t *testing.T) {
		q, err := NormalizeQuery("123.4")
		require.NoError(t, err)

		assert.Equal(t, "123.4", q)
	})

	t.Run("rejects non-numeric query", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "12a", "1e3"} {
			_, err := NormalizeQuery(raw)
			assert.ErrorIs(t, err, ErrInvalidIdentifier, raw)
		}
	})
}
