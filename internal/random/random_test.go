package random_test

import (
	"github.com/Roderick111/auror/internal/random"
	"github.com/stretchr/testify/require"
	"testing"
	"unicode"
)

func TestLetters(t *testing.T) {
	tests := []struct {
		name string
		n    uint
	}{
		{name: "empty", n: 0},
		{name: "single letter", n: 1},
		{name: "database name length", n: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			letters, err := random.Letters(tt.n)
			require.NoError(t, err)
			require.Len(t, letters, int(tt.n))
			for _, r := range letters {
				require.True(t, unicode.IsLetter(r), "expected letter, got %q", r)
			}
		})
	}
}

func TestLetters_distinct(t *testing.T) {
	a, err := random.Letters(20)
	require.NoError(t, err)
	b, err := random.Letters(20)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "two random IDs should not collide")
}
